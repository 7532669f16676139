package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo agregados del libro de stock calculados sobre los renglones.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar la tx para que LockOrderGood tenga efecto.
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) sum(ctx context.Context, op, query string, args ...any) (int, error) {
	var total int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// PurchasedByGood cantidad comprada del bien en todas las OCs.
func (r *StockRepo) PurchasedByGood(ctx context.Context, goodID string) (int, error) {
	return r.sum(ctx, "purchased by good",
		`SELECT COALESCE(SUM(quantity), 0) FROM purchase_order_lines WHERE good_id = $1`, goodID)
}

// DeliveredByGood cantidad entregada del bien en todos los remitos.
func (r *StockRepo) DeliveredByGood(ctx context.Context, goodID string) (int, error) {
	return r.sum(ctx, "delivered by good",
		`SELECT COALESCE(SUM(quantity), 0) FROM delivery_lines WHERE good_id = $1`, goodID)
}

// PurchasedByOrder cantidad comprada en los renglones (orden, bien).
func (r *StockRepo) PurchasedByOrder(ctx context.Context, orderID, goodID string) (int, error) {
	return r.sum(ctx, "purchased by order",
		`SELECT COALESCE(SUM(quantity), 0) FROM purchase_order_lines WHERE purchase_order_id = $1 AND good_id = $2`,
		orderID, goodID)
}

// DeliveredByOrder cantidad entregada contra (orden, bien), sin los renglones excluidos.
func (r *StockRepo) DeliveredByOrder(ctx context.Context, orderID, goodID string, excludeLineIDs []string) (int, error) {
	if excludeLineIDs == nil {
		excludeLineIDs = []string{}
	}
	return r.sum(ctx, "delivered by order", `
		SELECT COALESCE(SUM(quantity), 0) FROM delivery_lines
		WHERE purchase_order_id = $1 AND good_id = $2 AND NOT (id = ANY($3))`,
		orderID, goodID, excludeLineIDs)
}

// LockOrderGood bloquea los renglones de OC del par hasta el fin de la transacción, de modo que
// dos remitos concurrentes contra la misma (orden, bien) se validen uno después del otro.
func (r *StockRepo) LockOrderGood(ctx context.Context, orderID, goodID string) error {
	rows, err := r.q.Query(ctx,
		`SELECT id FROM purchase_order_lines WHERE purchase_order_id = $1 AND good_id = $2 ORDER BY id FOR UPDATE`,
		orderID, goodID)
	if err != nil {
		return fmt.Errorf("lock order lines: %w", err)
	}
	rows.Close()
	return rows.Err()
}
