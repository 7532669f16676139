package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*reportRepo)(nil)

type reportRepo struct{ *view }

func (r *reportRepo) GoodBalances(_ context.Context, scope entity.UserScope, search string) ([]repository.GoodBalance, error) {
	defer r.lock()()
	t := r.t()
	out := []repository.GoodBalance{}
	for _, g := range t.goods {
		if !scope.Allows(g.CategoryID) {
			continue
		}
		if search != "" && !contains(g.Name, search) && !contains(g.CatalogCode, search) && !contains(g.LineReference, search) {
			continue
		}
		b := repository.GoodBalance{
			GoodID:         g.ID,
			GoodName:       g.Name,
			CatalogCode:    g.CatalogCode,
			LineReference:  g.LineReference,
			CategoryID:     g.CategoryID,
			PurchasedValue: decimal.Zero,
			DeliveredValue: decimal.Zero,
		}
		if g.CategoryID != nil {
			if c := r.category(*g.CategoryID); c != nil {
				b.CategoryName = c.Name
			}
		}
		for _, l := range t.orderLines {
			if l.GoodID == g.ID {
				b.PurchasedQty += l.Quantity
				b.PurchasedValue = b.PurchasedValue.Add(l.TotalPrice)
			}
		}
		for _, l := range t.deliveryLines {
			if l.GoodID == g.ID {
				b.DeliveredQty += l.Quantity
				b.DeliveredValue = b.DeliveredValue.Add(l.TotalPrice)
			}
		}
		out = append(out, b)
	}
	sortStable(out, func(a, b repository.GoodBalance) bool { return a.GoodName < b.GoodName })
	return out, nil
}

func (r *reportRepo) DeliveryFacts(_ context.Context, f repository.FactFilter) ([]repository.DeliveryFact, error) {
	defer r.lock()()
	t := r.t()
	byID := make(map[string]entity.Delivery, len(t.deliveries))
	for _, d := range t.deliveries {
		byID[d.ID] = d
	}
	out := []repository.DeliveryFact{}
	for _, l := range t.deliveryLines {
		d, ok := byID[l.DeliveryID]
		if !ok {
			continue
		}
		if f.From != nil && d.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && !d.Timestamp.Before(*f.To) {
			continue
		}
		orderID := l.PurchaseOrderID
		if orderID == nil {
			orderID = d.PurchaseOrderID
		}
		if !f.Scope.Unrestricted() && !r.orderInScope(orderID, f.Scope) {
			continue
		}
		fact := repository.DeliveryFact{
			DeliveryID:   d.ID,
			Timestamp:    d.Timestamp,
			AreaOrPerson: d.AreaOrPerson,
			GoodID:       l.GoodID,
			Quantity:     l.Quantity,
			Total:        l.TotalPrice,
		}
		if g := r.good(l.GoodID); g != nil {
			fact.GoodName = g.Name
			if g.CategoryID != nil {
				if c := r.category(*g.CategoryID); c != nil {
					fact.CategoryName = c.Name
				}
			}
		}
		if orderID != nil {
			if o := r.order(*orderID); o != nil {
				fact.Supplier = o.Supplier
			}
		}
		out = append(out, fact)
	}
	return out, nil
}
