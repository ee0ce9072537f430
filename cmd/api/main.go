package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/ledger"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/usecase"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/infrastructure/postgres"
	httpRouter "github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/interfaces/http"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/pkg/config"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	entryRepo := postgres.NewMovementEntryRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout)

	ledgerUC := ledger.NewUseCase(txRunner, ledger.Config{
		DefaultMarginPercent: decimal.NewFromFloat(cfg.Inventory.DefaultMarginPercent),
		AllowZeroUnitCost:    cfg.Inventory.AllowZeroUnitCost,
	})
	reportUC := ledger.NewReportUseCase(productRepo, lotRepo, entryRepo)
	productUC := usecase.NewProductUseCase(productRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		LedgerUC:  ledgerUC,
		ReportUC:  reportUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Fatal().Err(err).Msg("servidor HTTP")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("API escuchando")

	// Apagado ordenado: esperar SIGINT/SIGTERM y drenar conexiones.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
}
