package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// GoodBalance totales comprados y entregados de un bien (cantidades y valores).
type GoodBalance struct {
	GoodID         string
	GoodName       string
	CatalogCode    string
	LineReference  string
	CategoryID     *string
	CategoryName   string
	PurchasedQty   int
	PurchasedValue decimal.Decimal
	DeliveredQty   int
	DeliveredValue decimal.Decimal
}

// Available stock global del bien.
func (b GoodBalance) Available() int { return b.PurchasedQty - b.DeliveredQty }

// DeliveryFact un renglón de remito con los datos necesarios para agregaciones.
type DeliveryFact struct {
	DeliveryID   string
	Timestamp    time.Time
	AreaOrPerson string
	GoodID       string
	GoodName     string
	CategoryName string
	Supplier     string // proveedor de la OC del renglón; vacío si no tiene OC
	Quantity     int
	Total        decimal.Decimal
}

// FactFilter rango de fechas [From, To) y alcance.
type FactFilter struct {
	From  *time.Time
	To    *time.Time
	Scope entity.UserScope
}

// ReportRepository consultas de solo lectura para tablero y reportes.
type ReportRepository interface {
	// GoodBalances un registro por bien visible en el alcance (por rubro del bien).
	GoodBalances(ctx context.Context, scope entity.UserScope, search string) ([]GoodBalance, error)
	// DeliveryFacts renglones de remito; el alcance filtra por rubro de la OC del renglón.
	DeliveryFacts(ctx context.Context, f FactFilter) ([]DeliveryFact, error)
}
