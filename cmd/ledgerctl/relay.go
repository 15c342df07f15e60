package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/messaging"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
)

type relayOptions struct {
	*rootOptions
	once bool
}

func newRelayCommand(root *rootOptions) *cobra.Command {
	opts := &relayOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publica en RabbitMQ los eventos de movimientos pendientes del outbox",
		Long: `Lee outbox_events pendientes y los publica en el exchange configurado
(RABBITMQ_URL, RABBITMQ_EXCHANGE). La entrega es al menos una vez: los
consumidores deduplican por message_id.

Ejemplos:
  ledgerctl relay            # bucle hasta SIGINT/SIGTERM
  ledgerctl relay --once     # una sola vuelta`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.once, "once", false, "procesa un solo lote y termina")
	return cmd
}

func runRelay(ctx context.Context, opts *relayOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := opts.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	pub, err := messaging.DialMovementPublisher(opts.cfg.RabbitMQ.URL, opts.cfg.RabbitMQ.Exchange)
	if err != nil {
		return err
	}
	defer pub.Close()

	relay := messaging.NewRelay(postgres.NewTxRunner(pool), pub, opts.cfg.Ledger.RelayBatchSize, opts.log.Component("relay"))
	if opts.once {
		res, err := relay.RunOnce(ctx)
		if err != nil {
			return err
		}
		opts.log.Info().Int("published", res.Published).Int("failed", res.Failed).Msg("relay: vuelta completa")
		return nil
	}

	interval := time.Duration(opts.cfg.Ledger.RelayIntervalSeconds) * time.Second
	opts.log.Info().Dur("interval", interval).Str("exchange", opts.cfg.RabbitMQ.Exchange).Msg("relay iniciado")
	if err := relay.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	opts.log.Info().Msg("relay detenido")
	return nil
}
