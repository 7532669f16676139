package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ServiceFilter filtros del listado de contratos. Status se compara con el valor guardado.
type ServiceFilter struct {
	Search     string
	Frequency  string
	CategoryID *string
	Scope      entity.UserScope
}

// ServiceContractRepository puerto de persistencia para contratos de servicio.
type ServiceContractRepository interface {
	Create(ctx context.Context, s *entity.ServiceContract) error
	Update(ctx context.Context, s *entity.ServiceContract) error
	// Delete elimina el contrato y sus cuotas.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.ServiceContract, error)
	List(ctx context.Context, f ServiceFilter) ([]*entity.ServiceContract, error)
}

// ServicePaymentRepository puerto de persistencia para cuotas.
type ServicePaymentRepository interface {
	// ReplaceForService borra las cuotas del contrato e inserta las nuevas.
	ReplaceForService(ctx context.Context, serviceID string, payments []*entity.ServicePayment) error
	Update(ctx context.Context, p *entity.ServicePayment) error
	GetByID(ctx context.Context, id string) (*entity.ServicePayment, error)
	ListByService(ctx context.Context, serviceID string) ([]*entity.ServicePayment, error)
}
