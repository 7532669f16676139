package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder representa una orden de compra (OC). Number y Supplier van en mayúsculas;
// Number es único. CategoryID es el rubro principal usado para el alcance por usuario.
type PurchaseOrder struct {
	ID         string
	Number     string
	StartDate  time.Time
	EndDate    *time.Time
	Supplier   string
	CategoryID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (o *PurchaseOrder) AuditType() string { return "PurchaseOrder" }
func (o *PurchaseOrder) AuditID() string   { return o.ID }
func (o *PurchaseOrder) AuditRepr() string { return "OC #" + o.Number }

func (o *PurchaseOrder) AuditFields() map[string]string {
	return map[string]string{
		"number":     o.Number,
		"start_date": formatDate(&o.StartDate),
		"end_date":   formatDate(o.EndDate),
		"supplier":   o.Supplier,
		"category":   deref(o.CategoryID),
	}
}

// PurchaseOrderLine renglón de una OC: lado de oferta del libro de stock.
// La identidad lógica del renglón es (orden, bien); LineNumber es solo un ordinal de presentación.
type PurchaseOrderLine struct {
	ID              string
	PurchaseOrderID string
	GoodID          string
	GoodName        string // solo lectura (JOIN)
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	LineNumber      int
}

func (l *PurchaseOrderLine) AuditType() string { return "PurchaseOrderLine" }
func (l *PurchaseOrderLine) AuditID() string   { return l.ID }

func (l *PurchaseOrderLine) AuditRepr() string {
	name := l.GoodName
	if name == "" {
		name = l.GoodID
	}
	return fmt.Sprintf("%s x %d", name, l.Quantity)
}

func (l *PurchaseOrderLine) AuditFields() map[string]string {
	return map[string]string{
		"purchase_order": l.PurchaseOrderID,
		"good":           l.GoodID,
		"quantity":       itoa(l.Quantity),
		"unit_price":     l.UnitPrice.StringFixed(2),
		"total_price":    l.TotalPrice.StringFixed(2),
		"line_number":    itoa(l.LineNumber),
	}
}

// OrderWithStock orden que todavía tiene stock disponible de un bien.
type OrderWithStock struct {
	Order     PurchaseOrder
	Available int
	UnitPrice decimal.Decimal
}

// MaxQuantity tope de cantidad por renglón; las columnas de cantidad son INTEGER.
const MaxQuantity = math.MaxInt32

// ValidQuantity indica si la cantidad de un renglón es positiva y entra en la base.
func ValidQuantity(q int) bool {
	return q > 0 && q <= MaxQuantity
}

// LineTotal calcula precio_total = cantidad × precio_unitario, redondeado a 2 decimales.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
