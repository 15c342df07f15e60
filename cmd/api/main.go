package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Inventario-ledger/internal/application/audit"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/receiving"
	"github.com/jhoicas/Inventario-ledger/internal/application/transfer"
	httpRouter "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer b.close()

	ledger := inventory.NewLedger(b.repos.Movements, log.Component("ledger"))
	engine := inventory.NewQuantityEngine(b.repos.Locations, ledger, log.Component("engine"))
	retries := cfg.Ledger.NumberRetries

	stockUC := inventory.NewStockUseCase(b.tx, engine, log.Component("stock"))
	expiry := inventory.NewExpiryReport(b.repos.Locations, b.catalog)
	receivingUC := receiving.NewUseCase(b.tx, b.repos.Receivings, engine, b.catalog, b.directory, log.Component("receiving"), retries)
	transferUC := transfer.NewUseCase(b.tx, b.repos.Transfers, engine, b.catalog, b.directory, log.Component("transfer"), retries, cfg.Ledger.TransferFreshnessPenalty)
	auditUC := audit.NewUseCase(b.tx, b.repos.Audits, engine, b.catalog, b.directory, log.Component("audit"), retries)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventory Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Stock:     stockUC,
		Ledger:    ledger,
		Expiry:    expiry,
		Receiving: receivingUC,
		Transfer:  transferUC,
		Audit:     auditUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
