package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/catalog"
	"github.com/jhoicas/almacen-api/internal/application/delivery"
	"github.com/jhoicas/almacen-api/internal/application/importer"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/application/reports"
	"github.com/jhoicas/almacen-api/internal/application/services"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.UseCase
	CatalogUC     *catalog.UseCase
	PurchasingUC  *purchasing.UseCase
	DeliveryUC    *delivery.UseCase
	ServicesUC    *services.UseCase
	ReportsUC     *reports.UseCase
	AuditUC       *audit.UseCase
	Importer      *importer.Importer
	ImportReaders ImportReaders
	JWTSecret     string
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")

	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth (login público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", adminOnly, authHandler.Register)

	// Catálogo: lectura para todos, alta y edición solo admin
	catalogHandler := NewCatalogHandler(deps.CatalogUC, log)
	protected.Get("/categories", catalogHandler.ListCategories)
	protected.Post("/categories", adminOnly, catalogHandler.CreateCategory)
	protected.Put("/categories/:id", adminOnly, catalogHandler.UpdateCategory)
	protected.Delete("/categories/:id", adminOnly, catalogHandler.DeleteCategory)

	orderHandler := NewOrderHandler(deps.PurchasingUC, log)
	protected.Get("/goods", catalogHandler.ListGoods)
	protected.Post("/goods", adminOnly, catalogHandler.CreateGood)
	protected.Get("/goods/:id", catalogHandler.GetGood)
	protected.Get("/goods/:id/image", catalogHandler.GoodImage)
	protected.Get("/goods/:id/orders", orderHandler.OrdersWithStock)
	protected.Put("/goods/:id", adminOnly, catalogHandler.UpdateGood)
	protected.Delete("/goods/:id", adminOnly, catalogHandler.DeleteGood)

	// Órdenes de compra
	orders := protected.Group("/orders")
	orders.Get("/", orderHandler.List)
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.Get)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Get("/:id/goods", orderHandler.Goods)
	orders.Get("/:id/goods/:good_id/price", orderHandler.Price)

	// Remitos
	deliveries := protected.Group("/deliveries")
	deliveryHandler := NewDeliveryHandler(deps.DeliveryUC, log)
	deliveries.Get("/", deliveryHandler.List)
	deliveries.Post("/", deliveryHandler.Create)
	deliveries.Get("/:id", deliveryHandler.Get)
	deliveries.Put("/:id", deliveryHandler.Update)
	deliveries.Delete("/:id", deliveryHandler.Delete)
	deliveries.Get("/:id/pdf", deliveryHandler.NotePDF)

	// Contratos de servicio
	svc := protected.Group("/services")
	serviceHandler := NewServiceHandler(deps.ServicesUC, log)
	svc.Get("/", serviceHandler.List)
	svc.Post("/", serviceHandler.Create)
	svc.Get("/:id", serviceHandler.Get)
	svc.Put("/:id", serviceHandler.Update)
	svc.Delete("/:id", serviceHandler.Delete)
	svc.Post("/:id/schedule", serviceHandler.GenerateSchedule)
	svc.Get("/:id/payments", serviceHandler.ListPayments)
	svc.Post("/:id/renew", serviceHandler.Renew)
	protected.Post("/payments/:id/pay", serviceHandler.MarkPaid)

	// Tablero y reportes
	reportHandler := NewReportHandler(deps.ReportsUC, log)
	protected.Get("/dashboard", reportHandler.Dashboard)
	rep := protected.Group("/reports")
	rep.Get("/stock-by-good", reportHandler.StockByGood)
	rep.Get("/stock-by-category", reportHandler.StockByCategory)
	rep.Get("/deliveries-by-year", reportHandler.DeliveriesByYear)
	rep.Get("/deliveries-by-area", reportHandler.DeliveriesByArea)
	rep.Get("/good-ranking", reportHandler.GoodRanking)
	rep.Get("/supplier-ranking", reportHandler.SupplierRanking)
	rep.Get("/totals", reportHandler.Totals)
	rep.Get("/services-by-status", reportHandler.ServicesByStatus)
	rep.Get("/:kind/export", reportHandler.Export)

	// Bitácora e importación (solo admin)
	auditHandler := NewAuditHandler(deps.AuditUC, log)
	protected.Get("/audit", adminOnly, auditHandler.List)

	if deps.Importer != nil {
		importHandler := NewImportHandler(deps.Importer, deps.ImportReaders, log)
		protected.Post("/import/orders", adminOnly, importHandler.Orders)
		protected.Post("/import/deliveries", adminOnly, importHandler.Deliveries)
	}
}
