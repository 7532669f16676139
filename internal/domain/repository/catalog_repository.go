package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Las búsquedas por id devuelven (nil, nil) cuando el registro no existe.

// CategoryRepository puerto de persistencia para rubros.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	Update(ctx context.Context, c *entity.Category) error
	// Delete elimina el rubro; bienes, órdenes y servicios quedan sin rubro.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context, search string) ([]*entity.Category, error)
}

// GoodFilter filtros del listado de bienes.
type GoodFilter struct {
	Search     string // nombre, código de catálogo o renglón
	CategoryID *string
	Limit      int
	Offset     int
}

// GoodRepository puerto de persistencia para bienes.
type GoodRepository interface {
	Create(ctx context.Context, g *entity.Good) error
	Update(ctx context.Context, g *entity.Good) error
	// Delete devuelve domain.ErrGoodInUse si hay renglones que lo referencian.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Good, error)
	GetByNameInCategory(ctx context.Context, name string, categoryID *string) (*entity.Good, error)
	List(ctx context.Context, f GoodFilter) ([]*entity.Good, int, error)
	IsReferenced(ctx context.Context, id string) (bool, error)
}
