package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.AuditLogRepository = (*auditRepo)(nil)
	_ repository.UserRepository     = (*userRepo)(nil)
)

type auditRepo struct{ *view }

func (r *auditRepo) Create(_ context.Context, e *entity.AuditLogEntry) error {
	defer r.lock()()
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	r.t().audit = append(r.t().audit, *e)
	return nil
}

func (r *auditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLogEntry, error) {
	defer r.lock()()
	var out []*entity.AuditLogEntry
	for _, e := range r.t().audit {
		if f.TargetType != "" && e.TargetType != f.TargetType {
			continue
		}
		if f.TargetID != "" && e.TargetID != f.TargetID {
			continue
		}
		cp := e
		out = append(out, &cp)
	}
	sortStable(out, func(a, b *entity.AuditLogEntry) bool { return a.Timestamp.After(b.Timestamp) })
	return page(out, f.Limit, f.Offset), nil
}

type userRepo struct{ *view }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	defer r.lock()()
	for _, existing := range r.t().users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	r.t().users = append(r.t().users, *u)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.lock()()
	for _, u := range r.t().users {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.lock()()
	for _, u := range r.t().users {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}
