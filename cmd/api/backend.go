package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// backend agrupa los puertos que necesitan los casos de uso, sea sobre Postgres o en memoria.
type backend struct {
	tx        inventory.TxRunner
	repos     inventory.Repos
	catalog   inventory.Catalog
	directory inventory.LocationDirectory
	closers   []func()
}

func (b *backend) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	b := &backend{}
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.New()
		b.tx, b.repos, b.catalog, b.directory = store, store.Repos(), store, store
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			b.close()
			return nil, err
		}
		b.tx = postgres.NewTxRunner(pool)
		b.repos = postgres.NewRepos(pool)
		b.catalog = postgres.NewProductRepository(pool)
		b.directory = postgres.NewLocationRepository(pool)
	}

	if cfg.Redis.Addr == "" {
		return b, nil
	}
	rs := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, catálogo sin caché")
		_ = rs.Close()
		return b, nil
	}
	b.closers = append(b.closers, func() { _ = rs.Close() })
	cc := cache.NewCatalogCache(b.catalog, b.directory, rs, time.Duration(cfg.Redis.CatalogTTLSeconds)*time.Second, log.Component("catalog_cache"))
	b.catalog, b.directory = cc, cc
	return b, nil
}
