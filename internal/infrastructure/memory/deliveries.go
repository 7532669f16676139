package memory

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/schedule"
)

var (
	_ repository.DeliveryRepository     = (*deliveryRepo)(nil)
	_ repository.DeliveryLineRepository = (*deliveryLineRepo)(nil)
)

type deliveryRepo struct{ *view }

func (r *deliveryRepo) Create(_ context.Context, d *entity.Delivery) error {
	defer r.lock()()
	r.t().deliveries = append(r.t().deliveries, *d)
	return nil
}

func (r *deliveryRepo) Update(_ context.Context, d *entity.Delivery) error {
	defer r.lock()()
	for i := range r.t().deliveries {
		if r.t().deliveries[i].ID == d.ID {
			updated := *d
			updated.Timestamp = r.t().deliveries[i].Timestamp
			r.t().deliveries[i] = updated
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *deliveryRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	t := r.t()
	idx := -1
	for i := range t.deliveries {
		if t.deliveries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	t.deliveries = append(t.deliveries[:idx:idx], t.deliveries[idx+1:]...)
	lines := t.deliveryLines[:0:0]
	for _, l := range t.deliveryLines {
		if l.DeliveryID != id {
			lines = append(lines, l)
		}
	}
	t.deliveryLines = lines
	return nil
}

func (r *deliveryRepo) GetByID(_ context.Context, id string) (*entity.Delivery, error) {
	defer r.lock()()
	for _, d := range r.t().deliveries {
		if d.ID == id {
			cp := d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *deliveryRepo) List(_ context.Context, f repository.DeliveryFilter) ([]*entity.Delivery, int, error) {
	defer r.lock()()
	var out []*entity.Delivery
	for _, d := range r.t().deliveries {
		if !r.deliveryInScope(d, f.Scope) {
			continue
		}
		if f.Search != "" && !contains(d.AreaOrPerson, f.Search) && !contains(d.Notes, f.Search) {
			continue
		}
		cp := d
		out = append(out, &cp)
	}
	sortStable(out, func(a, b *entity.Delivery) bool { return a.Timestamp.After(b.Timestamp) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

// deliveryInScope un remito es visible si su OC o la OC de alguno de sus renglones está en el alcance.
func (v *view) deliveryInScope(d entity.Delivery, scope entity.UserScope) bool {
	if scope.Unrestricted() {
		return true
	}
	if v.orderInScope(d.PurchaseOrderID, scope) {
		return true
	}
	for _, l := range v.t().deliveryLines {
		if l.DeliveryID == d.ID && v.orderInScope(l.PurchaseOrderID, scope) {
			return true
		}
	}
	return false
}

func (v *view) orderInScope(orderID *string, scope entity.UserScope) bool {
	if orderID == nil {
		return false
	}
	o := v.order(*orderID)
	return o != nil && scope.Allows(o.CategoryID)
}

func (r *deliveryRepo) FindByAreaAndDay(_ context.Context, area string, day time.Time) (*entity.Delivery, error) {
	defer r.lock()()
	target := schedule.Day(day)
	for _, d := range r.t().deliveries {
		if d.AreaOrPerson == area && schedule.Day(d.Timestamp).Equal(target) {
			cp := d
			return &cp, nil
		}
	}
	return nil, nil
}

type deliveryLineRepo struct{ *view }

func (r *deliveryLineRepo) Create(_ context.Context, l *entity.DeliveryLine) error {
	defer r.lock()()
	r.t().deliveryLines = append(r.t().deliveryLines, *l)
	return nil
}

func (r *deliveryLineRepo) Update(_ context.Context, l *entity.DeliveryLine) error {
	defer r.lock()()
	for i := range r.t().deliveryLines {
		if r.t().deliveryLines[i].ID == l.ID {
			r.t().deliveryLines[i] = *l
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *deliveryLineRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	t := r.t()
	for i := range t.deliveryLines {
		if t.deliveryLines[i].ID == id {
			t.deliveryLines = append(t.deliveryLines[:i:i], t.deliveryLines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *deliveryLineRepo) GetByID(_ context.Context, id string) (*entity.DeliveryLine, error) {
	defer r.lock()()
	for _, l := range r.t().deliveryLines {
		if l.ID == id {
			l.GoodName = r.goodName(l.GoodID)
			return &l, nil
		}
	}
	return nil, nil
}

func (r *deliveryLineRepo) ListByDelivery(_ context.Context, deliveryID string) ([]*entity.DeliveryLine, error) {
	defer r.lock()()
	out := []*entity.DeliveryLine{}
	for _, l := range r.t().deliveryLines {
		if l.DeliveryID == deliveryID {
			l.GoodName = r.goodName(l.GoodID)
			cp := l
			out = append(out, &cp)
		}
	}
	return out, nil
}
