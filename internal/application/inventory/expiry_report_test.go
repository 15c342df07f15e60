package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
)

func TestExpiryReport_PrioridadPorVencimiento(t *testing.T) {
	store, engine := newEngine(t)
	ctx := context.Background()
	now := time.Now().UTC()
	store.PutProduct(entity.Product{ID: testProduct, SellerID: testSeller, Name: "Yogur"})

	lot := func(qty int64, days int) *entity.BatchLocation {
		bl, err := store.SeedStock(ctx, engine, memory.SeedLot{
			SellerID: testSeller, ProductID: testProduct, Location: testShop,
			Quantity: decimal.NewFromInt(qty), Expiration: now.AddDate(0, 0, days),
		})
		require.NoError(t, err)
		return bl
	}
	later := lot(3, 5)
	expired := lot(2, -1)
	lot(9, 60) // fuera de la ventana
	lot(0, 1)  // sin stock

	report := inventory.NewExpiryReport(store.Repos().Locations, store)
	out, err := report.Generate(ctx, testSeller, testShop, 7)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, expired.ID, out[0].BatchLocationID)
	assert.True(t, out[0].Expired)
	assert.Equal(t, 1, out[0].Priority)
	assert.Equal(t, later.ID, out[1].BatchLocationID)
	assert.Equal(t, "Yogur", out[1].ProductName)
	assert.True(t, out[1].Available.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, 2, out[1].Priority)
}

func TestExpiryReport_UbicacionInvalida(t *testing.T) {
	store, _ := newEngine(t)
	report := inventory.NewExpiryReport(store.Repos().Locations, store)
	_, err := report.Generate(context.Background(), testSeller, entity.Location{}, 7)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
