package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*categoryRepo)(nil)
	_ repository.GoodRepository     = (*goodRepo)(nil)
)

type categoryRepo struct{ *view }

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	defer r.lock()()
	for _, existing := range r.t().categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	r.t().categories = append(r.t().categories, *c)
	return nil
}

func (r *categoryRepo) Update(_ context.Context, c *entity.Category) error {
	defer r.lock()()
	idx := -1
	for i, existing := range r.t().categories {
		if existing.ID == c.ID {
			idx = i
		} else if strings.EqualFold(existing.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	r.t().categories[idx] = *c
	return nil
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	t := r.t()
	kept := t.categories[:0:0]
	found := false
	for _, c := range t.categories {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return domain.ErrNotFound
	}
	t.categories = kept
	for i := range t.goods {
		if t.goods[i].CategoryID != nil && *t.goods[i].CategoryID == id {
			t.goods[i].CategoryID = nil
		}
	}
	for i := range t.orders {
		if t.orders[i].CategoryID != nil && *t.orders[i].CategoryID == id {
			t.orders[i].CategoryID = nil
		}
	}
	for i := range t.services {
		if t.services[i].CategoryID != nil && *t.services[i].CategoryID == id {
			t.services[i].CategoryID = nil
		}
	}
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	defer r.lock()()
	return r.category(id), nil
}

func (v *view) category(id string) *entity.Category {
	for _, c := range v.t().categories {
		if c.ID == id {
			cp := c
			return &cp
		}
	}
	return nil
}

func (r *categoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	defer r.lock()()
	for _, c := range r.t().categories {
		if strings.EqualFold(c.Name, name) {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *categoryRepo) List(_ context.Context, search string) ([]*entity.Category, error) {
	defer r.lock()()
	out := make([]*entity.Category, 0, len(r.t().categories))
	for _, c := range r.t().categories {
		if search != "" && !contains(c.Name, search) {
			continue
		}
		cp := c
		out = append(out, &cp)
	}
	sortStable(out, func(a, b *entity.Category) bool { return a.Name < b.Name })
	return out, nil
}

type goodRepo struct{ *view }

func (r *goodRepo) Create(_ context.Context, g *entity.Good) error {
	defer r.lock()()
	r.t().goods = append(r.t().goods, *g)
	return nil
}

func (r *goodRepo) Update(_ context.Context, g *entity.Good) error {
	defer r.lock()()
	for i := range r.t().goods {
		if r.t().goods[i].ID == g.ID {
			r.t().goods[i] = *g
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *goodRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if r.goodReferenced(id) {
		return domain.ErrGoodInUse
	}
	t := r.t()
	for i := range t.goods {
		if t.goods[i].ID == id {
			t.goods = append(t.goods[:i:i], t.goods[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *goodRepo) GetByID(_ context.Context, id string) (*entity.Good, error) {
	defer r.lock()()
	return r.good(id), nil
}

func (v *view) good(id string) *entity.Good {
	for _, g := range v.t().goods {
		if g.ID == id {
			cp := g
			return &cp
		}
	}
	return nil
}

func (v *view) goodName(id string) string {
	if g := v.good(id); g != nil {
		return g.Name
	}
	return ""
}

func (r *goodRepo) GetByNameInCategory(_ context.Context, name string, categoryID *string) (*entity.Good, error) {
	defer r.lock()()
	for _, g := range r.t().goods {
		if strings.EqualFold(g.Name, name) && entity.SameRef(g.CategoryID, categoryID) {
			cp := g
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *goodRepo) List(_ context.Context, f repository.GoodFilter) ([]*entity.Good, int, error) {
	defer r.lock()()
	var out []*entity.Good
	for _, g := range r.t().goods {
		if f.CategoryID != nil && !entity.SameRef(g.CategoryID, f.CategoryID) {
			continue
		}
		if f.Search != "" && !contains(g.Name, f.Search) && !contains(g.CatalogCode, f.Search) && !contains(g.LineReference, f.Search) {
			continue
		}
		cp := g
		out = append(out, &cp)
	}
	sortStable(out, func(a, b *entity.Good) bool { return a.Name < b.Name })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *goodRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	defer r.lock()()
	return r.goodReferenced(id), nil
}

func (v *view) goodReferenced(id string) bool {
	for _, l := range v.t().orderLines {
		if l.GoodID == id {
			return true
		}
	}
	for _, l := range v.t().deliveryLines {
		if l.GoodID == id {
			return true
		}
	}
	return false
}
