package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de solo lectura para tablero y reportes.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// GoodBalances totales comprados y entregados por bien, en cantidad y valor.
func (r *ReportRepo) GoodBalances(ctx context.Context, scope entity.UserScope, search string) ([]repository.GoodBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT g.id, g.name, g.catalog_code, g.line_reference, g.category_id, COALESCE(c.name, ''),
		       COALESCE(p.qty, 0), COALESCE(p.value, 0), COALESCE(d.qty, 0), COALESCE(d.value, 0)
		FROM goods g
		LEFT JOIN categories c ON c.id = g.category_id
		LEFT JOIN (SELECT good_id, SUM(quantity) AS qty, SUM(total_price) AS value
		           FROM purchase_order_lines GROUP BY good_id) p ON p.good_id = g.id
		LEFT JOIN (SELECT good_id, SUM(quantity) AS qty, SUM(total_price) AS value
		           FROM delivery_lines GROUP BY good_id) d ON d.good_id = g.id
		WHERE ($1::text IS NULL OR g.category_id = $1)
		  AND ($2 = '' OR g.name ILIKE $2 OR g.catalog_code ILIKE $2 OR g.line_reference ILIKE $2)
		ORDER BY g.name, g.id`,
		scopeArg(scope), like(search),
	)
	if err != nil {
		return nil, fmt.Errorf("good balances: %w", err)
	}
	defer rows.Close()
	out := []repository.GoodBalance{}
	for rows.Next() {
		var b repository.GoodBalance
		if err := rows.Scan(&b.GoodID, &b.GoodName, &b.CatalogCode, &b.LineReference, &b.CategoryID, &b.CategoryName,
			&b.PurchasedQty, &b.PurchasedValue, &b.DeliveredQty, &b.DeliveredValue); err != nil {
			return nil, fmt.Errorf("scan good balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeliveryFacts renglones de remito con fecha, área, rubro del bien y proveedor de la OC.
// La OC del renglón tiene prioridad sobre la OC de la cabecera.
func (r *ReportRepo) DeliveryFacts(ctx context.Context, f repository.FactFilter) ([]repository.DeliveryFact, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.timestamp, d.area_or_person, l.good_id, COALESCE(g.name, ''), COALESCE(c.name, ''),
		       COALESCE(o.supplier, ''), l.quantity, l.total_price
		FROM delivery_lines l
		JOIN deliveries d ON d.id = l.delivery_id
		LEFT JOIN goods g ON g.id = l.good_id
		LEFT JOIN categories c ON c.id = g.category_id
		LEFT JOIN purchase_orders o ON o.id = COALESCE(l.purchase_order_id, d.purchase_order_id)
		WHERE ($1::timestamptz IS NULL OR d.timestamp >= $1)
		  AND ($2::timestamptz IS NULL OR d.timestamp < $2)
		  AND ($3::text IS NULL OR o.category_id = $3)
		ORDER BY d.timestamp, l.seq`,
		f.From, f.To, scopeArg(f.Scope),
	)
	if err != nil {
		return nil, fmt.Errorf("delivery facts: %w", err)
	}
	defer rows.Close()
	out := []repository.DeliveryFact{}
	for rows.Next() {
		var fact repository.DeliveryFact
		if err := rows.Scan(&fact.DeliveryID, &fact.Timestamp, &fact.AreaOrPerson, &fact.GoodID, &fact.GoodName,
			&fact.CategoryName, &fact.Supplier, &fact.Quantity, &fact.Total); err != nil {
			return nil, fmt.Errorf("scan delivery fact: %w", err)
		}
		fact.Timestamp = fact.Timestamp.UTC()
		out = append(out, fact)
	}
	return out, rows.Err()
}
