package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

type recordingPublisher struct {
	sent []*entity.OutboxEvent
	fail map[string]bool // por tipo de evento
}

func (p *recordingPublisher) Publish(_ context.Context, e *entity.OutboxEvent) error {
	if p.fail[e.EventType] {
		return errors.New("broker caído")
	}
	p.sent = append(p.sent, e)
	return nil
}

func seedTwoLots(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	repos := store.Repos()
	ledger := inventory.NewLedger(repos.Movements, zerolog.Nop())
	engine := inventory.NewQuantityEngine(repos.Locations, ledger, zerolog.Nop())
	for _, qty := range []int64{5, 7} {
		_, err := store.SeedStock(ctx, engine, memory.SeedLot{
			SellerID:   "seller-1",
			ProductID:  "prod-milk",
			Location:   entity.ShopLocation("shop-1"),
			Quantity:   decimal.NewFromInt(qty),
			Expiration: time.Now().UTC().AddDate(0, 0, 10),
		})
		require.NoError(t, err)
	}
	return store
}

func TestRelay_PublicaYMarca(t *testing.T) {
	ctx := context.Background()
	store := seedTwoLots(t)
	pub := &recordingPublisher{}
	relay := NewRelay(store, pub, 10, zerolog.Nop())

	res, err := relay.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Published)
	require.Len(t, pub.sent, 2)
	assert.Equal(t, "movement.INITIAL", pub.sent[0].EventType)
	assert.Contains(t, string(pub.sent[0].Payload), `"type":"INITIAL"`)

	// Caso 2: la segunda vuelta no reenvía nada
	res, err = relay.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Published)
	assert.Len(t, pub.sent, 2)
}

func TestRelay_FalloDejaPendienteYCuentaIntento(t *testing.T) {
	ctx := context.Background()
	store := seedTwoLots(t)
	pub := &recordingPublisher{fail: map[string]bool{"movement.INITIAL": true}}
	relay := NewRelay(store, pub, 10, zerolog.Nop())

	res, err := relay.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)

	pending, err := store.Repos().Outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 1, pending[0].Attempts)

	// Caso 2: el broker vuelve y el relay entrega
	pub.fail = nil
	res, err = relay.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Published)
}

func TestRelay_RespetaTamanoDeLote(t *testing.T) {
	ctx := context.Background()
	store := seedTwoLots(t)
	pub := &recordingPublisher{}
	relay := NewRelay(store, pub, 1, zerolog.Nop())

	res, err := relay.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Published)

	pending, err := store.Repos().Outbox.FetchPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRelay_RunTerminaConContexto(t *testing.T) {
	store := seedTwoLots(t)
	pub := &recordingPublisher{}
	relay := NewRelay(store, pub, 10, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := relay.Run(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, pub.sent, 2)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "movement.transfer_out", routingKey(&entity.OutboxEvent{EventType: "movement.TRANSFER_OUT"}))
}
