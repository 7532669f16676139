package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/domain/schedule"
)

var (
	_ repository.DeliveryRepository     = (*DeliveryRepo)(nil)
	_ repository.DeliveryLineRepository = (*DeliveryLineRepo)(nil)
)

// DeliveryRepo implementación del puerto DeliveryRepository sobre PostgreSQL.
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador de persistencia para remitos.
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

const deliveryColumns = `d.id, d.timestamp, d.area_or_person, d.notes, d.purchase_order_id`

// deliveryScope un remito es visible si su OC o la OC de alguno de sus renglones está en el rubro.
const deliveryScope = `($1::text IS NULL
	OR EXISTS (SELECT 1 FROM purchase_orders o WHERE o.id = d.purchase_order_id AND o.category_id = $1)
	OR EXISTS (SELECT 1 FROM delivery_lines l JOIN purchase_orders o ON o.id = l.purchase_order_id
	           WHERE l.delivery_id = d.id AND o.category_id = $1))`

func scanDelivery(row interface{ Scan(...any) error }) (*entity.Delivery, error) {
	var d entity.Delivery
	if err := row.Scan(&d.ID, &d.Timestamp, &d.AreaOrPerson, &d.Notes, &d.PurchaseOrderID); err != nil {
		return nil, err
	}
	d.Timestamp = d.Timestamp.UTC()
	return &d, nil
}

// Create persiste un remito.
func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO deliveries (id, timestamp, area_or_person, notes, purchase_order_id)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Timestamp, d.AreaOrPerson, d.Notes, d.PurchaseOrderID,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// Update actualiza la cabecera. Timestamp no se modifica.
func (r *DeliveryRepo) Update(ctx context.Context, d *entity.Delivery) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE deliveries SET area_or_person = $2, notes = $3, purchase_order_id = $4 WHERE id = $1`,
		d.ID, d.AreaOrPerson, d.Notes, d.PurchaseOrderID,
	)
	if err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el remito y sus renglones.
func (r *DeliveryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un remito por ID.
func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries d WHERE d.id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

// List lista remitos por fecha descendente, con búsqueda en área/persona u observaciones.
func (r *DeliveryRepo) List(ctx context.Context, f repository.DeliveryFilter) ([]*entity.Delivery, int, error) {
	where := ` WHERE ` + deliveryScope + ` AND ($2 = '' OR d.area_or_person ILIKE $2 OR d.notes ILIKE $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM deliveries d`+where, scopeArg(f.Scope), like(f.Search)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deliveries: %w", err)
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries d`+where+` ORDER BY d.timestamp DESC, d.id LIMIT $3 OFFSET $4`,
		scopeArg(f.Scope), like(f.Search), limitArg(f.Limit), offsetArg(f.Offset),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()
	list := []*entity.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

// FindByAreaAndDay remito del área con fecha en el día indicado (UTC).
func (r *DeliveryRepo) FindByAreaAndDay(ctx context.Context, area string, day time.Time) (*entity.Delivery, error) {
	from := schedule.Day(day)
	d, err := scanDelivery(r.q.QueryRow(ctx, `
		SELECT `+deliveryColumns+` FROM deliveries d
		WHERE d.area_or_person = $1 AND d.timestamp >= $2 AND d.timestamp < $3
		ORDER BY d.timestamp LIMIT 1`,
		area, from, from.AddDate(0, 0, 1),
	))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find delivery by area and day: %w", err)
	}
	return d, nil
}

// DeliveryLineRepo implementación del puerto DeliveryLineRepository sobre PostgreSQL.
type DeliveryLineRepo struct {
	q Querier
}

// NewDeliveryLineRepository construye el adaptador de persistencia para renglones de remito.
func NewDeliveryLineRepository(q Querier) *DeliveryLineRepo {
	return &DeliveryLineRepo{q: q}
}

const deliveryLineSelect = `
	SELECT l.id, l.delivery_id, l.purchase_order_id, l.good_id, g.name, l.quantity, l.unit_price, l.total_price
	FROM delivery_lines l JOIN goods g ON g.id = l.good_id`

func scanDeliveryLine(row interface{ Scan(...any) error }) (*entity.DeliveryLine, error) {
	var l entity.DeliveryLine
	if err := row.Scan(&l.ID, &l.DeliveryID, &l.PurchaseOrderID, &l.GoodID, &l.GoodName, &l.Quantity, &l.UnitPrice, &l.TotalPrice); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un renglón de remito.
func (r *DeliveryLineRepo) Create(ctx context.Context, l *entity.DeliveryLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO delivery_lines (id, delivery_id, purchase_order_id, good_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.DeliveryID, l.PurchaseOrderID, l.GoodID, l.Quantity, l.UnitPrice, l.TotalPrice,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert delivery line: %w", err)
	}
	return nil
}

// Update actualiza un renglón de remito.
func (r *DeliveryLineRepo) Update(ctx context.Context, l *entity.DeliveryLine) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE delivery_lines SET purchase_order_id = $2, good_id = $3, quantity = $4, unit_price = $5, total_price = $6
		WHERE id = $1`,
		l.ID, l.PurchaseOrderID, l.GoodID, l.Quantity, l.UnitPrice, l.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("update delivery line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un renglón de remito.
func (r *DeliveryLineRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM delivery_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete delivery line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un renglón de remito por ID.
func (r *DeliveryLineRepo) GetByID(ctx context.Context, id string) (*entity.DeliveryLine, error) {
	l, err := scanDeliveryLine(r.q.QueryRow(ctx, deliveryLineSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery line: %w", err)
	}
	return l, nil
}

// ListByDelivery renglones del remito en orden de inserción.
func (r *DeliveryLineRepo) ListByDelivery(ctx context.Context, deliveryID string) ([]*entity.DeliveryLine, error) {
	rows, err := r.q.Query(ctx, deliveryLineSelect+` WHERE l.delivery_id = $1 ORDER BY l.seq`, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("list delivery lines: %w", err)
	}
	defer rows.Close()
	list := []*entity.DeliveryLine{}
	for rows.Next() {
		l, err := scanDeliveryLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
