package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.PurchaseOrderRepository     = (*OrderRepo)(nil)
	_ repository.PurchaseOrderLineRepository = (*OrderLineRepo)(nil)
)

// OrderRepo implementación del puerto PurchaseOrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para órdenes de compra.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, number, start_date, end_date, supplier, category_id, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	if err := row.Scan(&o.ID, &o.Number, &o.StartDate, &o.EndDate, &o.Supplier, &o.CategoryID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste una OC. El número es único.
func (r *OrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, number, start_date, end_date, supplier, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Number, o.StartDate, o.EndDate, o.Supplier, o.CategoryID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

// Update actualiza la cabecera de una OC.
func (r *OrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET number = $2, start_date = $3, end_date = $4, supplier = $5, category_id = $6, updated_at = $7
		WHERE id = $1`,
		o.ID, o.Number, o.StartDate, o.EndDate, o.Supplier, o.CategoryID, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update purchase order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la OC; sus renglones caen en cascada y los remitos quedan sin orden.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una OC por ID.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	return o, nil
}

// GetByNumber obtiene una OC por número sin distinguir mayúsculas.
func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE upper(number) = upper($1)`, number))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order by number: %w", err)
	}
	return o, nil
}

// List lista OCs por fecha de inicio descendente, con búsqueda por número o proveedor.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.PurchaseOrder, int, error) {
	const where = `
		WHERE ($1::text IS NULL OR category_id = $1)
		  AND ($2 = '' OR number ILIKE $2 OR supplier ILIKE $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM purchase_orders`+where, scopeArg(f.Scope), like(f.Search)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+orderColumns+` FROM purchase_orders`+where+` ORDER BY start_date DESC, number LIMIT $3 OFFSET $4`,
		scopeArg(f.Scope), like(f.Search), limitArg(f.Limit), offsetArg(f.Offset),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	list, err := collectOrders(rows)
	return list, total, err
}

// ListEndingBefore órdenes con fin <= until, ordenadas por fecha de fin.
func (r *OrderRepo) ListEndingBefore(ctx context.Context, until time.Time, scope entity.UserScope) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM purchase_orders
		WHERE end_date IS NOT NULL AND end_date <= $1 AND ($2::text IS NULL OR category_id = $2)
		ORDER BY end_date, number`,
		until, scopeArg(scope),
	)
	if err != nil {
		return nil, fmt.Errorf("list expiring purchase orders: %w", err)
	}
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]*entity.PurchaseOrder, error) {
	defer rows.Close()
	list := []*entity.PurchaseOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// OrderLineRepo implementación del puerto PurchaseOrderLineRepository sobre PostgreSQL.
type OrderLineRepo struct {
	q Querier
}

// NewOrderLineRepository construye el adaptador de persistencia para renglones de OC.
func NewOrderLineRepository(q Querier) *OrderLineRepo {
	return &OrderLineRepo{q: q}
}

const orderLineSelect = `
	SELECT l.id, l.purchase_order_id, l.good_id, g.name, l.quantity, l.unit_price, l.total_price, l.line_number
	FROM purchase_order_lines l JOIN goods g ON g.id = l.good_id`

func scanOrderLine(row interface{ Scan(...any) error }) (*entity.PurchaseOrderLine, error) {
	var l entity.PurchaseOrderLine
	if err := row.Scan(&l.ID, &l.PurchaseOrderID, &l.GoodID, &l.GoodName, &l.Quantity, &l.UnitPrice, &l.TotalPrice, &l.LineNumber); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un renglón de OC.
func (r *OrderLineRepo) Create(ctx context.Context, l *entity.PurchaseOrderLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_order_lines (id, purchase_order_id, good_id, quantity, unit_price, total_price, line_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.PurchaseOrderID, l.GoodID, l.Quantity, l.UnitPrice, l.TotalPrice, l.LineNumber,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert purchase order line: %w", err)
	}
	return nil
}

// Update actualiza bien, cantidad y precios de un renglón.
func (r *OrderLineRepo) Update(ctx context.Context, l *entity.PurchaseOrderLine) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_order_lines SET good_id = $2, quantity = $3, unit_price = $4, total_price = $5, line_number = $6
		WHERE id = $1`,
		l.ID, l.GoodID, l.Quantity, l.UnitPrice, l.TotalPrice, l.LineNumber,
	)
	if err != nil {
		return fmt.Errorf("update purchase order line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un renglón de OC.
func (r *OrderLineRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM purchase_order_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase order line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un renglón por ID.
func (r *OrderLineRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrderLine, error) {
	l, err := scanOrderLine(r.q.QueryRow(ctx, orderLineSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order line: %w", err)
	}
	return l, nil
}

// ListByOrder renglones de la OC en orden de inserción.
func (r *OrderLineRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.PurchaseOrderLine, error) {
	return r.list(ctx, ` WHERE l.purchase_order_id = $1 ORDER BY l.seq`, orderID)
}

// ListByGood renglones de todas las OCs para un bien.
func (r *OrderLineRepo) ListByGood(ctx context.Context, goodID string) ([]*entity.PurchaseOrderLine, error) {
	return r.list(ctx, ` WHERE l.good_id = $1 ORDER BY l.seq`, goodID)
}

// ListByOrderAndGood renglones del par (orden, bien).
func (r *OrderLineRepo) ListByOrderAndGood(ctx context.Context, orderID, goodID string) ([]*entity.PurchaseOrderLine, error) {
	return r.list(ctx, ` WHERE l.purchase_order_id = $1 AND l.good_id = $2 ORDER BY l.seq`, orderID, goodID)
}

func (r *OrderLineRepo) list(ctx context.Context, where string, args ...any) ([]*entity.PurchaseOrderLine, error) {
	rows, err := r.q.Query(ctx, orderLineSelect+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	list := []*entity.PurchaseOrderLine{}
	for rows.Next() {
		l, err := scanOrderLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
