package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

type mapStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMapStore() *mapStore { return &mapStore{data: map[string][]byte{}} }

func (s *mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, false, errors.New("redis caído")
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

type countingSource struct {
	products  map[string]entity.Product
	locations map[entity.Location]entity.LocationInfo
	calls     int
}

func (c *countingSource) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	c.calls++
	p, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *countingSource) GetLocation(_ context.Context, loc entity.Location) (*entity.LocationInfo, error) {
	c.calls++
	info, ok := c.locations[loc]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func newSource() *countingSource {
	shop := entity.ShopLocation("shop-1")
	return &countingSource{
		products: map[string]entity.Product{
			"prod-milk": {ID: "prod-milk", Name: "Leche", Category: "LACTEOS", Conditions: entity.DefaultStorageConditions()},
		},
		locations: map[entity.Location]entity.LocationInfo{
			shop: {Location: shop, SellerID: "seller-1", Name: "Centro", Profile: entity.StorageProfile{Temperature: 21, Humidity: 50}},
		},
	}
}

func TestCatalogCache_SegundaLecturaNoVaALaFuente(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	c := NewCatalogCache(src, src, newMapStore(), time.Minute, zerolog.Nop())

	p1, err := c.GetProduct(ctx, "prod-milk")
	require.NoError(t, err)
	p2, err := c.GetProduct(ctx, "prod-milk")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, p1, p2)
	assert.Equal(t, 1.0, p2.Conditions.DegradationCoefficient)
}

func TestCatalogCache_NoExisteNoSeCachea(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	store := newMapStore()
	c := NewCatalogCache(src, src, store, time.Minute, zerolog.Nop())

	p, err := c.GetProduct(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
	_, _ = c.GetProduct(ctx, "nope")
	assert.Equal(t, 2, src.calls)
	assert.Empty(t, store.data)
}

func TestCatalogCache_UbicacionEInvalidacion(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	c := NewCatalogCache(src, src, newMapStore(), time.Minute, zerolog.Nop())
	shop := entity.ShopLocation("shop-1")

	info, err := c.GetLocation(ctx, shop)
	require.NoError(t, err)
	assert.Equal(t, 21.0, info.Profile.Temperature)
	assert.Equal(t, shop, info.Location)

	_, _ = c.GetLocation(ctx, shop)
	assert.Equal(t, 1, src.calls)

	require.NoError(t, c.InvalidateLocation(ctx, shop))
	_, _ = c.GetLocation(ctx, shop)
	assert.Equal(t, 2, src.calls)
}

func TestCatalogCache_StoreCaidoVaALaFuente(t *testing.T) {
	ctx := context.Background()
	src := newSource()
	store := newMapStore()
	store.failGet = true
	c := NewCatalogCache(src, src, store, time.Minute, zerolog.Nop())

	p, err := c.GetProduct(ctx, "prod-milk")
	require.NoError(t, err)
	assert.Equal(t, "Leche", p.Name)
}
