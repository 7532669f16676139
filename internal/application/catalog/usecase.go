package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/application/stock"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/textnorm"
)

// UseCase casos de uso del catálogo: rubros y bienes.
type UseCase struct {
	tx       ports.TxRunner
	repos    ports.Repos
	engine   *stock.Engine
	recorder *audit.Recorder
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, repos ports.Repos, engine *stock.Engine, recorder *audit.Recorder, now func() time.Time) *UseCase {
	if now == nil {
		now = time.Now
	}
	return &UseCase{tx: tx, repos: repos, engine: engine, recorder: recorder, now: now}
}

// ─── Rubros ───────────────────────────────────────────────────────────────────

// CreateCategory crea un rubro; el nombre se guarda en mayúsculas y es único.
func (uc *UseCase) CreateCategory(ctx context.Context, actor *entity.Actor, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := textnorm.Upper(in.Name)
	if name == "" {
		return nil, requiredField("name", "El nombre del rubro es obligatorio")
	}
	c := &entity.Category{ID: uuid.New().String(), Name: name, CreatedAt: uc.now(), UpdatedAt: uc.now()}
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		if err := uc.checkCategoryName(ctx, r, name, ""); err != nil {
			return err
		}
		if err := r.Categories.Create(ctx, c); err != nil {
			return duplicateAsValidation(err, "name", name)
		}
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Created(c))
	})
	if err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name}, nil
}

// UpdateCategory renombra un rubro.
func (uc *UseCase) UpdateCategory(ctx context.Context, actor *entity.Actor, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := textnorm.Upper(in.Name)
	if name == "" {
		return nil, requiredField("name", "El nombre del rubro es obligatorio")
	}
	var out *entity.Category
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := r.Categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if err := uc.checkCategoryName(ctx, r, name, id); err != nil {
			return err
		}
		updated := *current
		updated.Name = name
		updated.UpdatedAt = uc.now()
		if err := r.Categories.Update(ctx, &updated); err != nil {
			return duplicateAsValidation(err, "name", name)
		}
		out = &updated
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Updated(current, &updated))
	})
	if err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: out.ID, Name: out.Name}, nil
}

// DeleteCategory elimina un rubro; bienes, órdenes y servicios quedan sin rubro.
func (uc *UseCase) DeleteCategory(ctx context.Context, actor *entity.Actor, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := r.Categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if err := r.Categories.Delete(ctx, id); err != nil {
			return err
		}
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Deleted(current))
	})
}

// ListCategories lista rubros ordenados por nombre.
func (uc *UseCase) ListCategories(ctx context.Context, search string) ([]dto.CategoryResponse, error) {
	items, err := uc.repos.Categories.List(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

func (uc *UseCase) checkCategoryName(ctx context.Context, r ports.Repos, name, selfID string) error {
	dup, err := r.Categories.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if dup != nil && dup.ID != selfID {
		ve := &domain.ValidationError{}
		ve.AddField("name", domain.CodeDuplicateName, fmt.Sprintf("Ya existe el rubro %s", name))
		return ve
	}
	return nil
}

// ─── Bienes ───────────────────────────────────────────────────────────────────

// CreateGood crea un bien. Nombre, código y renglón se guardan en mayúsculas; el nombre no se
// puede repetir dentro del mismo rubro.
func (uc *UseCase) CreateGood(ctx context.Context, actor *entity.Actor, in dto.GoodRequest) (*dto.GoodResponse, error) {
	g := &entity.Good{
		ID:            uuid.New().String(),
		Name:          textnorm.Upper(in.Name),
		CategoryID:    normalizeRef(in.CategoryID),
		CatalogCode:   textnorm.Upper(in.CatalogCode),
		LineReference: textnorm.Upper(in.LineReference),
		Image:         in.Image,
		CreatedAt:     uc.now(),
		UpdatedAt:     uc.now(),
	}
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		if err := uc.validateGood(ctx, r, g); err != nil {
			return err
		}
		if err := r.Goods.Create(ctx, g); err != nil {
			return duplicateAsValidation(err, "name", g.Name)
		}
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Created(g))
	})
	if err != nil {
		return nil, err
	}
	return uc.GetGood(ctx, g.ID)
}

// UpdateGood actualiza un bien. Image nil conserva la imagen actual.
func (uc *UseCase) UpdateGood(ctx context.Context, actor *entity.Actor, id string, in dto.GoodRequest) (*dto.GoodResponse, error) {
	err := uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := r.Goods.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		updated := *current
		updated.Name = textnorm.Upper(in.Name)
		updated.CategoryID = normalizeRef(in.CategoryID)
		updated.CatalogCode = textnorm.Upper(in.CatalogCode)
		updated.LineReference = textnorm.Upper(in.LineReference)
		if in.Image != nil {
			updated.Image = in.Image
		}
		updated.UpdatedAt = uc.now()
		if err := uc.validateGood(ctx, r, &updated); err != nil {
			return err
		}
		if err := r.Goods.Update(ctx, &updated); err != nil {
			return duplicateAsValidation(err, "name", updated.Name)
		}
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Updated(current, &updated))
	})
	if err != nil {
		return nil, err
	}
	return uc.GetGood(ctx, id)
}

// DeleteGood elimina un bien; devuelve domain.ErrGoodInUse si algún renglón lo referencia.
func (uc *UseCase) DeleteGood(ctx context.Context, actor *entity.Actor, id string) error {
	return uc.tx.Run(ctx, func(ctx context.Context, r ports.Repos) error {
		current, err := r.Goods.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		used, err := r.Goods.IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return domain.ErrGoodInUse
		}
		if err := r.Goods.Delete(ctx, id); err != nil {
			return err
		}
		return uc.recorder.Record(ctx, r.Audit, actor, audit.Deleted(current))
	})
}

// GetGood devuelve el bien con su stock global.
func (uc *UseCase) GetGood(ctx context.Context, id string) (*dto.GoodResponse, error) {
	g, err := uc.repos.Goods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	available, err := uc.engine.Available(ctx, uc.repos, id)
	if err != nil {
		return nil, err
	}
	resp := toGoodResponse(g, available)
	return &resp, nil
}

// GoodImage devuelve la imagen del bien; ErrNotFound si no tiene.
func (uc *UseCase) GoodImage(ctx context.Context, id string) ([]byte, error) {
	g, err := uc.repos.Goods.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil || len(g.Image) == 0 {
		return nil, domain.ErrNotFound
	}
	return g.Image, nil
}

// ListGoods lista bienes con búsqueda por nombre, código o renglón, con su stock global.
func (uc *UseCase) ListGoods(ctx context.Context, f dto.GoodFilter) (*dto.GoodListResponse, error) {
	f.DefaultPage()
	items, total, err := uc.repos.Goods.List(ctx, repository.GoodFilter{
		Search:     f.Search,
		CategoryID: normalizeRef(f.CategoryID),
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.GoodListResponse{
		Items: make([]dto.GoodResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}
	for _, g := range items {
		available, err := uc.engine.Available(ctx, uc.repos, g.ID)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, toGoodResponse(g, available))
	}
	return out, nil
}

func (uc *UseCase) validateGood(ctx context.Context, r ports.Repos, g *entity.Good) error {
	ve := &domain.ValidationError{}
	if g.Name == "" {
		ve.AddField("name", domain.CodeRequired, "El nombre del bien es obligatorio")
	}
	if g.CategoryID != nil {
		c, err := r.Categories.GetByID(ctx, *g.CategoryID)
		if err != nil {
			return err
		}
		if c == nil {
			ve.AddField("category_id", domain.CodeCategoryNotFound, "El rubro no existe")
		}
	}
	if g.Name != "" {
		dup, err := r.Goods.GetByNameInCategory(ctx, g.Name, g.CategoryID)
		if err != nil {
			return err
		}
		if dup != nil && dup.ID != g.ID {
			ve.AddField("name", domain.CodeDuplicateName, fmt.Sprintf("Ya existe el bien %s en el rubro", g.Name))
		}
	}
	return ve.OrNil()
}

func toGoodResponse(g *entity.Good, available int) dto.GoodResponse {
	return dto.GoodResponse{
		ID:            g.ID,
		Name:          g.Name,
		CategoryID:    g.CategoryID,
		CatalogCode:   g.CatalogCode,
		LineReference: g.LineReference,
		HasImage:      len(g.Image) > 0,
		Available:     available,
	}
}

func normalizeRef(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func requiredField(field, msg string) error {
	ve := &domain.ValidationError{}
	ve.AddField(field, domain.CodeRequired, msg)
	return ve
}

// duplicateAsValidation traduce la violación de unicidad de la BD (carrera entre la consulta
// previa y el insert) al mismo error de validación.
func duplicateAsValidation(err error, field, value string) error {
	if errors.Is(err, domain.ErrDuplicate) {
		ve := &domain.ValidationError{}
		ve.AddField(field, domain.CodeDuplicateName, fmt.Sprintf("%s ya existe", value))
		return ve
	}
	return err
}
