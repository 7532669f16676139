package ports

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Categories    repository.CategoryRepository
	Goods         repository.GoodRepository
	Orders        repository.PurchaseOrderRepository
	OrderLines    repository.PurchaseOrderLineRepository
	Deliveries    repository.DeliveryRepository
	DeliveryLines repository.DeliveryLineRepository
	Stock         repository.StockRepository
	Services      repository.ServiceContractRepository
	Payments      repository.ServicePaymentRepository
	Audit         repository.AuditLogRepository
	Users         repository.UserRepository
	Reports       repository.ReportRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a ella.
// Si fn devuelve error se hace rollback y no queda ninguna escritura.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// Clock fuente de "hoy"; se inyecta para poder fijar fechas en las pruebas.
type Clock func() time.Time
