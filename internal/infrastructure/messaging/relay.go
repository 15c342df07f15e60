package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// EventPublisher destino de los eventos del outbox.
type EventPublisher interface {
	Publish(ctx context.Context, e *entity.OutboxEvent) error
}

// Relay drena el outbox hacia el broker. Entrega al menos una vez: si el commit falla
// después de publicar, el evento se vuelve a enviar en la siguiente vuelta.
type Relay struct {
	tx        inventory.TxRunner
	publisher EventPublisher
	batchSize int
	log       zerolog.Logger
}

// NewRelay construye el relay.
func NewRelay(tx inventory.TxRunner, publisher EventPublisher, batchSize int, log zerolog.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		tx:        tx,
		publisher: publisher,
		batchSize: batchSize,
		log:       log.With().Str("component", "outbox_relay").Logger(),
	}
}

// RelayResult conteo de una vuelta.
type RelayResult struct {
	Published int
	Failed    int
}

// RunOnce toma un lote de eventos pendientes, los publica y marca el resultado en la misma transacción.
func (r *Relay) RunOnce(ctx context.Context) (RelayResult, error) {
	var res RelayResult
	err := r.tx.Run(ctx, func(repos inventory.Repos) error {
		res = RelayResult{}
		events, err := repos.Outbox.FetchPending(ctx, r.batchSize)
		if err != nil {
			return err
		}
		published := make([]string, 0, len(events))
		for _, e := range events {
			if err := r.publisher.Publish(ctx, e); err != nil {
				r.log.Warn().Err(err).Str("event_id", e.ID).Str("event_type", e.EventType).
					Int("attempts", e.Attempts+1).Msg("publicación fallida")
				if err := repos.Outbox.MarkFailed(ctx, e.ID); err != nil {
					return err
				}
				res.Failed++
				continue
			}
			published = append(published, e.ID)
		}
		if err := repos.Outbox.MarkPublished(ctx, published, time.Now().UTC()); err != nil {
			return err
		}
		res.Published = len(published)
		return nil
	})
	return res, err
}

// Run repite RunOnce cada interval hasta que ctx se cancele. Un lote lleno se drena sin esperar.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res, err := r.RunOnce(ctx)
		switch {
		case err != nil:
			r.log.Error().Err(err).Msg("vuelta del relay fallida")
		case res.Published > 0 || res.Failed > 0:
			r.log.Info().Int("published", res.Published).Int("failed", res.Failed).Msg("outbox drenado")
		}
		if err == nil && res.Published+res.Failed >= r.batchSize && res.Failed == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
