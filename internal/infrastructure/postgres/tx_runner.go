package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// txAttempts intentos ante interbloqueo o fallo de serialización.
const txAttempts = 3

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si PostgreSQL aborta la tx por interbloqueo (40P01) o serialización (40001) se reintenta
// completa; fn debe poder ejecutarse más de una vez.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ports.Repos) error) error {
	return retryTx(ctx, txAttempts, func() error { return r.runOnce(ctx, fn) })
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func retryTx(ctx context.Context, attempts int, once func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = once(); err == nil || !isRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return err
		}
	}
	return err
}

// Repos repositorios sobre el pool, para lecturas fuera de transacción.
func (r *TxRunner) Repos() ports.Repos {
	return NewRepos(r.pool)
}

// NewRepos arma el juego de repositorios sobre un pool o una tx.
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Categories:    NewCategoryRepository(q),
		Goods:         NewGoodRepository(q),
		Orders:        NewOrderRepository(q),
		OrderLines:    NewOrderLineRepository(q),
		Deliveries:    NewDeliveryRepository(q),
		DeliveryLines: NewDeliveryLineRepository(q),
		Stock:         NewStockRepository(q),
		Services:      NewServiceRepository(q),
		Payments:      NewPaymentRepository(q),
		Audit:         NewAuditRepository(q),
		Users:         NewUserRepository(q),
		Reports:       NewReportRepository(q),
	}
}
