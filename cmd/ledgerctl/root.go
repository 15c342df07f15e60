package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// rootOptions estado compartido por los subcomandos; se llena en PersistentPreRunE.
type rootOptions struct {
	cfg *config.Config
	log *logger.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operación del libro de inventario",
		Long:          "Herramientas de operación: esquema, relay de eventos de movimientos, verificación del libro y tokens de actor.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			opts.cfg = cfg
			opts.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "ledgerctl", Out: cmd.ErrOrStderr()})
			return nil
		},
	}

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newRelayCommand(opts))
	cmd.AddCommand(newVerifyCommand(opts))
	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newCatalogCommand(opts))
	return cmd
}

// openPool abre el pool de Postgres; los subcomandos del libro solo operan sobre Postgres.
func (o *rootOptions) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if o.cfg.Store == config.StoreMemory {
		return nil, fmt.Errorf("STORE=%s no tiene estado persistente que operar", config.StoreMemory)
	}
	pool, err := postgres.NewPool(ctx, o.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return pool, nil
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema SQL (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := opts.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := postgres.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			opts.log.Info().Msg("esquema aplicado")
			return nil
		},
	}
}
