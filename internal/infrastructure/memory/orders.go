package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.PurchaseOrderRepository     = (*orderRepo)(nil)
	_ repository.PurchaseOrderLineRepository = (*orderLineRepo)(nil)
)

type orderRepo struct{ *view }

func (r *orderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.lock()()
	for _, existing := range r.t().orders {
		if strings.EqualFold(existing.Number, o.Number) {
			return domain.ErrDuplicate
		}
	}
	r.t().orders = append(r.t().orders, *o)
	return nil
}

func (r *orderRepo) Update(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.lock()()
	idx := -1
	for i, existing := range r.t().orders {
		if existing.ID == o.ID {
			idx = i
		} else if strings.EqualFold(existing.Number, o.Number) {
			return domain.ErrDuplicate
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	r.t().orders[idx] = *o
	return nil
}

func (r *orderRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	t := r.t()
	idx := -1
	for i := range t.orders {
		if t.orders[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	t.orders = append(t.orders[:idx:idx], t.orders[idx+1:]...)

	lines := t.orderLines[:0:0]
	for _, l := range t.orderLines {
		if l.PurchaseOrderID != id {
			lines = append(lines, l)
		}
	}
	t.orderLines = lines

	for i := range t.deliveries {
		if t.deliveries[i].PurchaseOrderID != nil && *t.deliveries[i].PurchaseOrderID == id {
			t.deliveries[i].PurchaseOrderID = nil
		}
	}
	for i := range t.deliveryLines {
		if t.deliveryLines[i].PurchaseOrderID != nil && *t.deliveryLines[i].PurchaseOrderID == id {
			t.deliveryLines[i].PurchaseOrderID = nil
		}
	}
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	defer r.lock()()
	return r.order(id), nil
}

func (v *view) order(id string) *entity.PurchaseOrder {
	for _, o := range v.t().orders {
		if o.ID == id {
			cp := o
			return &cp
		}
	}
	return nil
}

func (r *orderRepo) GetByNumber(_ context.Context, number string) (*entity.PurchaseOrder, error) {
	defer r.lock()()
	for _, o := range r.t().orders {
		if strings.EqualFold(o.Number, number) {
			cp := o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *orderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.PurchaseOrder, int, error) {
	defer r.lock()()
	var out []*entity.PurchaseOrder
	for _, o := range r.t().orders {
		if !f.Scope.Allows(o.CategoryID) {
			continue
		}
		if f.Search != "" && !contains(o.Number, f.Search) && !contains(o.Supplier, f.Search) {
			continue
		}
		cp := o
		out = append(out, &cp)
	}
	sortStable(out, func(a, b *entity.PurchaseOrder) bool { return a.StartDate.After(b.StartDate) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *orderRepo) ListEndingBefore(_ context.Context, until time.Time, scope entity.UserScope) ([]*entity.PurchaseOrder, error) {
	defer r.lock()()
	var out []*entity.PurchaseOrder
	for _, o := range r.t().orders {
		if o.EndDate == nil || o.EndDate.After(until) || !scope.Allows(o.CategoryID) {
			continue
		}
		cp := o
		out = append(out, &cp)
	}
	sortStable(out, func(a, b *entity.PurchaseOrder) bool { return a.EndDate.Before(*b.EndDate) })
	return out, nil
}

type orderLineRepo struct{ *view }

func (r *orderLineRepo) Create(_ context.Context, l *entity.PurchaseOrderLine) error {
	defer r.lock()()
	r.t().orderLines = append(r.t().orderLines, *l)
	return nil
}

func (r *orderLineRepo) Update(_ context.Context, l *entity.PurchaseOrderLine) error {
	defer r.lock()()
	for i := range r.t().orderLines {
		if r.t().orderLines[i].ID == l.ID {
			r.t().orderLines[i] = *l
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *orderLineRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	t := r.t()
	for i := range t.orderLines {
		if t.orderLines[i].ID == id {
			t.orderLines = append(t.orderLines[:i:i], t.orderLines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *orderLineRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrderLine, error) {
	defer r.lock()()
	for _, l := range r.t().orderLines {
		if l.ID == id {
			return r.withGoodName(l), nil
		}
	}
	return nil, nil
}

func (r *orderLineRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.PurchaseOrderLine, error) {
	defer r.lock()()
	return r.filter(func(l entity.PurchaseOrderLine) bool { return l.PurchaseOrderID == orderID }), nil
}

func (r *orderLineRepo) ListByGood(_ context.Context, goodID string) ([]*entity.PurchaseOrderLine, error) {
	defer r.lock()()
	return r.filter(func(l entity.PurchaseOrderLine) bool { return l.GoodID == goodID }), nil
}

func (r *orderLineRepo) ListByOrderAndGood(_ context.Context, orderID, goodID string) ([]*entity.PurchaseOrderLine, error) {
	defer r.lock()()
	return r.filter(func(l entity.PurchaseOrderLine) bool {
		return l.PurchaseOrderID == orderID && l.GoodID == goodID
	}), nil
}

func (r *orderLineRepo) filter(keep func(entity.PurchaseOrderLine) bool) []*entity.PurchaseOrderLine {
	out := []*entity.PurchaseOrderLine{}
	for _, l := range r.t().orderLines {
		if keep(l) {
			out = append(out, r.withGoodName(l))
		}
	}
	return out
}

func (r *orderLineRepo) withGoodName(l entity.PurchaseOrderLine) *entity.PurchaseOrderLine {
	l.GoodName = r.goodName(l.GoodID)
	return &l
}
