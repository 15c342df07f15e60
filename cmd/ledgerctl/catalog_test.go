package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

type fakeProducts struct{ got []entity.Product }

func (f *fakeProducts) Upsert(_ context.Context, p entity.Product) error {
	f.got = append(f.got, p)
	return nil
}

type fakeLocations struct{ got []entity.LocationInfo }

func (f *fakeLocations) Upsert(_ context.Context, info entity.LocationInfo) error {
	f.got = append(f.got, info)
	return nil
}

func TestImportCatalog(t *testing.T) {
	in := `{
	  "products": [
	    {"id":"p1","seller_id":"s1","name":"Leche","category":"lácteos",
	     "conditions":{"code":"COLD","temperature_min":2,"temperature_max":6,"humidity_min":30,"humidity_max":70,"degradation_coefficient":1.5}},
	    {"id":"p2","seller_id":"s1","name":"Arroz"}
	  ],
	  "locations": [{"type":"warehouse","id":"bod-1","seller_id":"s1","name":"Bodega","temperature":4,"humidity":50}]
	}`
	products, locations := &fakeProducts{}, &fakeLocations{}

	np, nl, err := importCatalog(context.Background(), strings.NewReader(in), products, locations)
	require.NoError(t, err)
	assert.Equal(t, 2, np)
	assert.Equal(t, 1, nl)

	assert.Equal(t, "COLD", products.got[0].Conditions.Code)
	assert.Equal(t, 1.5, products.got[0].Conditions.DegradationCoefficient)
	// Caso: sin preset se usa el de ambiente.
	assert.Equal(t, entity.DefaultStorageConditions(), products.got[1].Conditions)
	assert.Equal(t, entity.WarehouseLocation("bod-1"), locations.got[0].Location)
	assert.Equal(t, 4.0, locations.got[0].Profile.Temperature)
}

func TestImportCatalog_UbicacionInvalida(t *testing.T) {
	in := `{"locations":[{"type":"planeta","id":"x","seller_id":"s1"}]}`
	_, _, err := importCatalog(context.Background(), strings.NewReader(in), &fakeProducts{}, &fakeLocations{})
	assert.Error(t, err)
}

func TestImportCatalog_ProductoSinVendedor(t *testing.T) {
	in := `{"products":[{"id":"p1"}]}`
	products := &fakeProducts{}
	_, _, err := importCatalog(context.Background(), strings.NewReader(in), products, &fakeLocations{})
	assert.Error(t, err)
	assert.Empty(t, products.got)
}
