package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almacen-api/docs"
	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/catalog"
	"github.com/jhoicas/almacen-api/internal/application/delivery"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/importer"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/application/reports"
	"github.com/jhoicas/almacen-api/internal/application/services"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/almacen-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// backend transacciones más repos fuera de transacción.
type backend interface {
	ports.TxRunner
	Repos() ports.Repos
}

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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var store backend
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		store = memory.NewStore()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		store = postgres.NewTxRunner(pool)
	}
	repos := store.Repos()

	now := time.Now
	engine := stock.NewEngine()
	recorder := audit.NewRecorder(now)
	m := metrics.New(cfg.App.MetricsPrefix)
	pdfGenerator := infrapdf.NewGenerator(cfg.App.OrgName)

	authUC := auth.NewUseCase(repos.Users, repos.Categories, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, now)
	bootstrapAdmin(ctx, authUC, cfg.App, log)

	catalogUC := catalog.NewUseCase(store, repos, engine, recorder, now)
	purchasingUC := purchasing.NewUseCase(store, repos, engine, recorder, now)
	deliveryUC := delivery.NewUseCase(store, repos, engine, recorder, pdfGenerator, m, now)
	servicesUC := services.NewUseCase(store, repos, recorder, now, cfg.Services.ExpiringDays)
	reportsUC := reports.NewUseCase(repos, reports.Config{
		LowStockThreshold:     cfg.Stock.LowStockThreshold,
		OrderExpiryWindowDays: cfg.Stock.OrderExpiryWindowDays,
		ServiceExpiringDays:   cfg.Services.ExpiringDays,
	}, now, xlsx.NewExporter(), pdfGenerator)
	auditUC := audit.NewUseCase(repos.Audit)
	imp := importer.New(store, engine, recorder, log.Component("importer"), now, importer.Options{
		Mode:              cfg.Import.Mode,
		SentinelPrice:     cfg.Import.SentinelPrice,
		DefaultSupplier:   cfg.Import.DefaultSupplier,
		DefaultOrderStart: cfg.Import.DefaultOrderStart,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    20 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: docs.JSON(),
		Path:        "docs",
		Title:       "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", m.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		CatalogUC:     catalogUC,
		PurchasingUC:  purchasingUC,
		DeliveryUC:    deliveryUC,
		ServicesUC:    servicesUC,
		ReportsUC:     reportsUC,
		AuditUC:       auditUC,
		Importer:      imp,
		ImportReaders: httpRouter.ImportReaders{Orders: xlsx.ReadOrderRows, Deliveries: xlsx.ReadDeliveryRows},
		JWTSecret:     cfg.JWT.Secret,
		Logger:        log.Component("http"),
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

// bootstrapAdmin crea el administrador inicial si ADMIN_EMAIL está definido.
func bootstrapAdmin(ctx context.Context, uc *auth.UseCase, app config.AppConfig, log *logger.Logger) {
	if app.AdminEmail == "" {
		return
	}
	_, err := uc.Register(ctx, dto.RegisterRequest{
		Email:    app.AdminEmail,
		Password: app.AdminPassword,
		Name:     "Administrador",
		Role:     entity.RoleAdmin,
	})
	switch {
	case err == nil:
		log.Info().Str("email", app.AdminEmail).Msg("administrador inicial creado")
	case errors.Is(err, domain.ErrDuplicate):
		log.Debug().Str("email", app.AdminEmail).Msg("administrador inicial ya existe")
	default:
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
}
