package memory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.ServiceContractRepository = (*serviceRepo)(nil)
	_ repository.ServicePaymentRepository  = (*paymentRepo)(nil)
)

type serviceRepo struct{ *view }

func (r *serviceRepo) Create(_ context.Context, s *entity.ServiceContract) error {
	defer r.lock()()
	r.t().services = append(r.t().services, *s)
	return nil
}

func (r *serviceRepo) Update(_ context.Context, s *entity.ServiceContract) error {
	defer r.lock()()
	for i := range r.t().services {
		if r.t().services[i].ID == s.ID {
			r.t().services[i] = *s
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *serviceRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	t := r.t()
	idx := -1
	for i := range t.services {
		if t.services[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	t.services = append(t.services[:idx:idx], t.services[idx+1:]...)
	payments := t.payments[:0:0]
	for _, p := range t.payments {
		if p.ServiceID != id {
			payments = append(payments, p)
		}
	}
	t.payments = payments
	return nil
}

func (r *serviceRepo) GetByID(_ context.Context, id string) (*entity.ServiceContract, error) {
	defer r.lock()()
	for _, s := range r.t().services {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *serviceRepo) List(_ context.Context, f repository.ServiceFilter) ([]*entity.ServiceContract, error) {
	defer r.lock()()
	out := []*entity.ServiceContract{}
	for _, s := range r.t().services {
		if !f.Scope.Allows(s.CategoryID) {
			continue
		}
		if f.Frequency != "" && s.Frequency != f.Frequency {
			continue
		}
		if f.CategoryID != nil && !entity.SameRef(s.CategoryID, f.CategoryID) {
			continue
		}
		if f.Search != "" && !contains(s.Name, f.Search) && !contains(s.Supplier, f.Search) {
			continue
		}
		cp := s
		out = append(out, &cp)
	}
	sortStable(out, func(a, b *entity.ServiceContract) bool { return a.Name < b.Name })
	return out, nil
}

type paymentRepo struct{ *view }

func (r *paymentRepo) ReplaceForService(_ context.Context, serviceID string, payments []*entity.ServicePayment) error {
	defer r.lock()()
	t := r.t()
	kept := t.payments[:0:0]
	for _, p := range t.payments {
		if p.ServiceID != serviceID {
			kept = append(kept, p)
		}
	}
	for _, p := range payments {
		kept = append(kept, *p)
	}
	t.payments = kept
	return nil
}

func (r *paymentRepo) Update(_ context.Context, p *entity.ServicePayment) error {
	defer r.lock()()
	for i := range r.t().payments {
		if r.t().payments[i].ID == p.ID {
			r.t().payments[i] = *p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *paymentRepo) GetByID(_ context.Context, id string) (*entity.ServicePayment, error) {
	defer r.lock()()
	for _, p := range r.t().payments {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *paymentRepo) ListByService(_ context.Context, serviceID string) ([]*entity.ServicePayment, error) {
	defer r.lock()()
	out := []*entity.ServicePayment{}
	for _, p := range r.t().payments {
		if p.ServiceID == serviceID {
			cp := p
			out = append(out, &cp)
		}
	}
	sortStable(out, func(a, b *entity.ServicePayment) bool { return a.DueDate.Before(b.DueDate) })
	return out, nil
}
