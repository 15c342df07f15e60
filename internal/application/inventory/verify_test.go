package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

func newVerifier(store *memory.Store) *inventory.Verifier {
	repos := store.Repos()
	return inventory.NewVerifier(repos.Batches, repos.Locations, repos.Movements, zerolog.Nop())
}

func TestVerify_LibroCuadrado(t *testing.T) {
	store, engine := newEngine(t)
	a := seed(t, store, engine, 10)
	seed(t, store, engine, 3)
	require.NoError(t, apply(store, engine, a.ID, -4, entity.MovementTypeSale))

	report, err := newVerifier(store).Verify(context.Background(), testSeller)
	require.NoError(t, err)
	assert.True(t, report.OK(), "inconsistencias: %v", report.Mismatches)
	assert.Equal(t, 2, report.BatchLocations)
	assert.Equal(t, 3, report.Movements)
}

// Una escritura directa al saldo, sin movimiento, rompe el saldo final y el total del lote.
func TestVerify_DetectaEscrituraSinMovimiento(t *testing.T) {
	store, engine := newEngine(t)
	bl := seed(t, store, engine, 10)
	ctx := context.Background()

	require.NoError(t, store.Repos().Locations.CompareAndSwap(ctx, bl.ID, bl.Version, decimal.NewFromInt(12), decimal.Zero))

	report, err := newVerifier(store).Verify(ctx, testSeller)
	require.NoError(t, err)
	require.False(t, report.OK())

	kinds := map[string]bool{}
	for _, m := range report.Mismatches {
		kinds[m.Kind] = true
	}
	assert.True(t, kinds[inventory.MismatchFinalBalance])
	assert.True(t, kinds[inventory.MismatchBatchTotal])
}

func TestVerify_RequiereVendedor(t *testing.T) {
	store, _ := newEngine(t)
	_, err := newVerifier(store).Verify(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
