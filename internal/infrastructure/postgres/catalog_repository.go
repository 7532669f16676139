package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.GoodRepository     = (*GoodRepo)(nil)
)

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL (usable con pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de persistencia para rubros.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const categoryColumns = `id, name, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un rubro. El nombre es único sin distinguir mayúsculas.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO categories (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// Update renombra un rubro.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE categories SET name = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Name, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el rubro; las claves foráneas dejan sin rubro a bienes, órdenes y servicios.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un rubro por ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// GetByName obtiene un rubro por nombre sin distinguir mayúsculas.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE upper(name) = upper($1)`, name))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

// List lista rubros por nombre, con búsqueda opcional.
func (r *CategoryRepo) List(ctx context.Context, search string) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE ($1 = '' OR name ILIKE $1) ORDER BY name`,
		like(search),
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	list := []*entity.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GoodRepo implementación del puerto GoodRepository sobre PostgreSQL.
type GoodRepo struct {
	q Querier
}

// NewGoodRepository construye el adaptador de persistencia para bienes.
func NewGoodRepository(q Querier) *GoodRepo {
	return &GoodRepo{q: q}
}

const goodColumns = `id, name, category_id, catalog_code, line_reference, image, created_at, updated_at`

func scanGood(row interface{ Scan(...any) error }) (*entity.Good, error) {
	var g entity.Good
	if err := row.Scan(&g.ID, &g.Name, &g.CategoryID, &g.CatalogCode, &g.LineReference, &g.Image, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create persiste un bien.
func (r *GoodRepo) Create(ctx context.Context, g *entity.Good) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO goods (id, name, category_id, catalog_code, line_reference, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.Name, g.CategoryID, g.CatalogCode, g.LineReference, g.Image, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert good: %w", err)
	}
	return nil
}

// Update actualiza un bien.
func (r *GoodRepo) Update(ctx context.Context, g *entity.Good) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE goods SET name = $2, category_id = $3, catalog_code = $4, line_reference = $5, image = $6, updated_at = $7
		WHERE id = $1`,
		g.ID, g.Name, g.CategoryID, g.CatalogCode, g.LineReference, g.Image, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update good: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un bien. Las FK RESTRICT de los renglones se traducen a domain.ErrGoodInUse.
func (r *GoodRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM goods WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrGoodInUse
		}
		return fmt.Errorf("delete good: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un bien por ID.
func (r *GoodRepo) GetByID(ctx context.Context, id string) (*entity.Good, error) {
	g, err := scanGood(r.q.QueryRow(ctx, `SELECT `+goodColumns+` FROM goods WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get good: %w", err)
	}
	return g, nil
}

// GetByNameInCategory busca por nombre dentro del rubro; categoryID nil busca bienes sin rubro.
func (r *GoodRepo) GetByNameInCategory(ctx context.Context, name string, categoryID *string) (*entity.Good, error) {
	g, err := scanGood(r.q.QueryRow(ctx,
		`SELECT `+goodColumns+` FROM goods WHERE upper(name) = upper($1) AND category_id IS NOT DISTINCT FROM $2 LIMIT 1`,
		name, categoryID,
	))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get good by name: %w", err)
	}
	return g, nil
}

// List lista bienes por nombre con búsqueda por nombre, código de catálogo o renglón.
func (r *GoodRepo) List(ctx context.Context, f repository.GoodFilter) ([]*entity.Good, int, error) {
	const where = `
		WHERE ($1::text IS NULL OR category_id = $1)
		  AND ($2 = '' OR name ILIKE $2 OR catalog_code ILIKE $2 OR line_reference ILIKE $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM goods`+where, f.CategoryID, like(f.Search)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count goods: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+goodColumns+` FROM goods`+where+` ORDER BY name, id LIMIT $3 OFFSET $4`,
		f.CategoryID, like(f.Search), limitArg(f.Limit), offsetArg(f.Offset),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list goods: %w", err)
	}
	defer rows.Close()
	list := []*entity.Good{}
	for rows.Next() {
		g, err := scanGood(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan good: %w", err)
		}
		list = append(list, g)
	}
	return list, total, rows.Err()
}

// IsReferenced indica si algún renglón de OC o de remito referencia al bien.
func (r *GoodRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	var used bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM purchase_order_lines WHERE good_id = $1)
		    OR EXISTS (SELECT 1 FROM delivery_lines WHERE good_id = $1)`, id,
	).Scan(&used)
	if err != nil {
		return false, fmt.Errorf("good references: %w", err)
	}
	return used, nil
}
