package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/retail-analytics/internal/application/analytics"
	"github.com/tu-usuario/retail-analytics/internal/application/importer"
	"github.com/tu-usuario/retail-analytics/internal/domain/repository"
	"github.com/tu-usuario/retail-analytics/internal/infrastructure/cache"
	"github.com/tu-usuario/retail-analytics/internal/infrastructure/memory"
	"github.com/tu-usuario/retail-analytics/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/retail-analytics/internal/interfaces/http"
	"github.com/tu-usuario/retail-analytics/pkg/config"
	"github.com/tu-usuario/retail-analytics/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Storage.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		catalogRepo repository.CatalogRepository
		demandRepo  repository.DemandRepository
		eoqRepo     repository.EOQResultRepository
		batchRepo   repository.ImportBatchRepository
		txRunner    importer.TxRunner
		dbPinger    httpRouter.Pinger
	)

	switch cfg.Storage.Backend {
	case "memory":
		// Modo demo / desarrollo sin base de datos
		store := memory.NewStore()
		catalogRepo = store
		demandRepo = store
		eoqRepo = store
		batchRepo = store
		txRunner = store
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		catalogRepo = postgres.NewCatalogRepository(pool)
		demandRepo = postgres.NewDemandRepository(pool)
		eoqRepo = postgres.NewEOQRepository(pool)
		batchRepo = postgres.NewImportBatchRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
		dbPinger = pool
	}

	// Cache Redis de existencia de catálogo (opcional)
	if cfg.Redis.Addr != "" {
		cached := cache.NewCachedCatalog(
			catalogRepo,
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSecs)*time.Second,
			log.Component("catalog-cache"),
		)
		if err := cached.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible; continuando sin cache de catálogo")
		} else {
			catalogRepo = cached
			defer cached.Close()
		}
	}

	defaultCosts := importer.CostInputs{
		HoldingCost:     cfg.EOQ.HoldingCost,
		OrderingCost:    cfg.EOQ.OrderingCost,
		UnitCost:        cfg.EOQ.UnitCost,
		LeadTimeDays:    cfg.EOQ.LeadTimeDays,
		ConfidenceLevel: cfg.EOQ.ConfidenceLevel,
	}
	importUC := importer.NewImportUseCase(
		importer.NewExistenceValidator(catalogRepo, log.Component("validator")),
		importer.NewReconcileEngine(txRunner, log.Component("reconcile")),
		importer.NewDemandAggregator(demandRepo, log.Component("aggregator")),
		importer.NewRecalcScheduler(eoqRepo, log.Component("recalc")),
		importer.NewBatchTracker(batchRepo),
		defaultCosts,
		log.Component("import"),
	)
	analyticsUC := analytics.NewUseCase(demandRepo, eoqRepo, catalogRepo, log.Component("analytics"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    32 * 1024 * 1024, // archivos de ventas grandes
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ImportUC:    importUC,
		AnalyticsUC: analyticsUC,
		DB:          dbPinger,
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
