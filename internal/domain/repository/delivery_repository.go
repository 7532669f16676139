package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DeliveryFilter filtros del listado de remitos.
type DeliveryFilter struct {
	Search string // área/persona o observaciones
	Scope  entity.UserScope
	Limit  int
	Offset int
}

// DeliveryRepository puerto de persistencia para remitos. Update no modifica Timestamp.
type DeliveryRepository interface {
	Create(ctx context.Context, d *entity.Delivery) error
	Update(ctx context.Context, d *entity.Delivery) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	List(ctx context.Context, f DeliveryFilter) ([]*entity.Delivery, int, error)
	// FindByAreaAndDay remito del área creado en esa fecha (usado por la importación).
	FindByAreaAndDay(ctx context.Context, area string, day time.Time) (*entity.Delivery, error)
}

// DeliveryLineRepository puerto de persistencia para renglones de remito.
type DeliveryLineRepository interface {
	Create(ctx context.Context, l *entity.DeliveryLine) error
	Update(ctx context.Context, l *entity.DeliveryLine) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.DeliveryLine, error)
	ListByDelivery(ctx context.Context, deliveryID string) ([]*entity.DeliveryLine, error)
}
