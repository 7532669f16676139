package repository

import "context"

// StockRepository agregados del libro de stock. Siempre se recalculan sobre los renglones,
// no hay contadores acumulados.
type StockRepository interface {
	// PurchasedByGood / DeliveredByGood totales globales del bien.
	PurchasedByGood(ctx context.Context, goodID string) (int, error)
	DeliveredByGood(ctx context.Context, goodID string) (int, error)
	// PurchasedByOrder cantidad comprada en renglones (orden, bien).
	PurchasedByOrder(ctx context.Context, orderID, goodID string) (int, error)
	// DeliveredByOrder cantidad entregada contra (orden, bien), sin contar los renglones excluidos.
	DeliveredByOrder(ctx context.Context, orderID, goodID string, excludeLineIDs []string) (int, error)
	// LockOrderGood bloquea los renglones de OC de (orden, bien) hasta el fin de la transacción.
	LockOrderGood(ctx context.Context, orderID, goodID string) error
}
