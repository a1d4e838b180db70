package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/agrocampo/agro-inventario/internal/application/auth"
	"github.com/agrocampo/agro-inventario/internal/application/ledger"
	"github.com/agrocampo/agro-inventario/internal/application/lot"
	"github.com/agrocampo/agro-inventario/internal/application/masterdata"
	"github.com/agrocampo/agro-inventario/internal/application/movement"
	"github.com/agrocampo/agro-inventario/internal/application/report"
	"github.com/agrocampo/agro-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/agrocampo/agro-inventario/internal/interfaces/http"
	"github.com/agrocampo/agro-inventario/pkg/config"
	"github.com/agrocampo/agro-inventario/pkg/logger"
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
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	farmRepo := postgres.NewFarmRepository(pool)
	sectorRepo := postgres.NewSectorRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	positionRepo := postgres.NewPositionRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	policy := ledger.Policy{
		StrictRelease:   cfg.Ledger.StrictRelease,
		ConflictRetries: cfg.Ledger.ConflictRetries,
	}
	ledgerUC := ledger.NewLedgerUseCase(txRunner, productRepo, sectorRepo, lotRepo, policy)
	movementUC := movement.NewEngine(txRunner, ledgerUC, productRepo, sectorRepo, farmRepo, lotRepo, movementRepo, policy)
	lotUC := lot.NewTrackerUseCase(txRunner, productRepo, lotRepo, lot.Config{
		ExpiryWarningDays: cfg.Ledger.ExpiryWarningDays,
		ConflictRetries:   cfg.Ledger.ConflictRetries,
	})
	reportUC := report.NewUseCase(reportRepo, cfg.Ledger.ExpiryWarningDays)
	masterDataUC := masterdata.NewUseCase(companyRepo, farmRepo, sectorRepo, productRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		MasterDataUC: masterDataUC,
		LedgerUC:     ledgerUC,
		MovementUC:   movementUC,
		LotUC:        lotUC,
		ReportUC:     reportUC,
		PositionRepo: positionRepo,
		JWTSecret:    cfg.JWT.Secret,
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
