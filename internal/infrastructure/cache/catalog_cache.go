package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

var (
	_ inventory.Catalog           = (*CatalogCache)(nil)
	_ inventory.LocationDirectory = (*CatalogCache)(nil)
)

// CatalogCache decorador de lectura sobre el catálogo y el directorio de ubicaciones.
// Un fallo del Store nunca falla la consulta: se registra y se va a la fuente.
// Los "no existe" no se cachean.
type CatalogCache struct {
	catalog   inventory.Catalog
	directory inventory.LocationDirectory
	store     Store
	ttl       time.Duration
	log       zerolog.Logger
}

// NewCatalogCache envuelve catalog y directory.
func NewCatalogCache(catalog inventory.Catalog, directory inventory.LocationDirectory, store Store, ttl time.Duration, log zerolog.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{
		catalog:   catalog,
		directory: directory,
		store:     store,
		ttl:       ttl,
		log:       log.With().Str("component", "catalog_cache").Logger(),
	}
}

func productKey(id string) string { return "catalog:product:" + id }

func locationKey(loc entity.Location) string { return "catalog:location:" + loc.String() }

func (c *CatalogCache) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	key := productKey(productID)
	var cached entity.Product
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	p, err := c.catalog.GetProduct(ctx, productID)
	if err != nil || p == nil {
		return p, err
	}
	c.save(ctx, key, p)
	return p, nil
}

func (c *CatalogCache) GetLocation(ctx context.Context, loc entity.Location) (*entity.LocationInfo, error) {
	key := locationKey(loc)
	var cached entity.LocationInfo
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	info, err := c.directory.GetLocation(ctx, loc)
	if err != nil || info == nil {
		return info, err
	}
	c.save(ctx, key, info)
	return info, nil
}

// InvalidateProduct descarta la entrada de un producto.
func (c *CatalogCache) InvalidateProduct(ctx context.Context, productID string) error {
	return c.store.Del(ctx, productKey(productID))
}

// InvalidateLocation descarta la entrada de una ubicación.
func (c *CatalogCache) InvalidateLocation(ctx context.Context, loc entity.Location) error {
	return c.store.Del(ctx, locationKey(loc))
}

func (c *CatalogCache) lookup(ctx context.Context, key string, dst any) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("entrada de caché corrupta")
		return false
	}
	return true
}

func (c *CatalogCache) save(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
}
