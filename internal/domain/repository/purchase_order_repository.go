package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// OrderFilter filtros del listado de órdenes de compra.
type OrderFilter struct {
	Search string // número o proveedor
	Scope  entity.UserScope
	Limit  int
	Offset int
}

// PurchaseOrderRepository puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, o *entity.PurchaseOrder) error
	Update(ctx context.Context, o *entity.PurchaseOrder) error
	// Delete elimina la orden y sus renglones; remitos y renglones de remito quedan sin orden.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetByNumber compara sin distinguir mayúsculas.
	GetByNumber(ctx context.Context, number string) (*entity.PurchaseOrder, error)
	List(ctx context.Context, f OrderFilter) ([]*entity.PurchaseOrder, int, error)
	// ListEndingBefore órdenes con fecha de fin <= until, ordenadas por fecha de fin.
	ListEndingBefore(ctx context.Context, until time.Time, scope entity.UserScope) ([]*entity.PurchaseOrder, error)
}

// PurchaseOrderLineRepository puerto de persistencia para renglones de OC.
// Los listados respetan el orden de inserción.
type PurchaseOrderLineRepository interface {
	Create(ctx context.Context, l *entity.PurchaseOrderLine) error
	Update(ctx context.Context, l *entity.PurchaseOrderLine) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrderLine, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.PurchaseOrderLine, error)
	ListByGood(ctx context.Context, goodID string) ([]*entity.PurchaseOrderLine, error)
	ListByOrderAndGood(ctx context.Context, orderID, goodID string) ([]*entity.PurchaseOrderLine, error)
}
