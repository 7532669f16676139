package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Delivery representa un remito (entrega). Timestamp se fija al crear y no cambia.
// Si la OC referenciada se elimina, PurchaseOrderID queda en nil y el remito sobrevive.
type Delivery struct {
	ID              string
	Timestamp       time.Time
	AreaOrPerson    string
	Notes           string
	PurchaseOrderID *string
}

func (d *Delivery) AuditType() string { return "Delivery" }
func (d *Delivery) AuditID() string   { return d.ID }

func (d *Delivery) AuditRepr() string {
	return fmt.Sprintf("Remito #%s - %s - %s", d.ID, d.Timestamp.Format("2006-01-02"), d.AreaOrPerson)
}

func (d *Delivery) AuditFields() map[string]string {
	return map[string]string{
		"timestamp":      d.Timestamp.Format(time.RFC3339),
		"area_or_person": d.AreaOrPerson,
		"notes":          d.Notes,
		"purchase_order": deref(d.PurchaseOrderID),
	}
}

// DeliveryLine renglón de un remito: lado de demanda del libro de stock.
// UnitPrice se toma siempre del renglón de la OC, nunca del cliente.
type DeliveryLine struct {
	ID              string
	DeliveryID      string
	PurchaseOrderID *string
	GoodID          string
	GoodName        string // solo lectura (JOIN)
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
}

func (l *DeliveryLine) AuditType() string { return "DeliveryLine" }
func (l *DeliveryLine) AuditID() string   { return l.ID }

func (l *DeliveryLine) AuditRepr() string {
	name := l.GoodName
	if name == "" {
		name = l.GoodID
	}
	return fmt.Sprintf("%s x %d", name, l.Quantity)
}

func (l *DeliveryLine) AuditFields() map[string]string {
	return map[string]string{
		"delivery":       l.DeliveryID,
		"purchase_order": deref(l.PurchaseOrderID),
		"good":           l.GoodID,
		"quantity":       itoa(l.Quantity),
		"unit_price":     l.UnitPrice.StringFixed(2),
		"total_price":    l.TotalPrice.StringFixed(2),
	}
}

// DeliveryTotal suma los precio_total de los renglones.
func DeliveryTotal(lines []*DeliveryLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice)
	}
	return total
}
