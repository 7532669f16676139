package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRetryTx_ReintentaInterbloqueo(t *testing.T) {
	calls := 0
	err := retryTx(context.Background(), txAttempts, func() error {
		calls++
		if calls == 1 {
			return fmt.Errorf("stock.Validate: %w", &pgconn.PgError{Code: "40P01"})
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryTx_AgotaIntentos(t *testing.T) {
	calls := 0
	err := retryTx(context.Background(), txAttempts, func() error {
		calls++
		return &pgconn.PgError{Code: "40001"}
	})

	assert.True(t, isRetryable(err))
	assert.Equal(t, txAttempts, calls)
}

func TestRetryTx_NoReintentaOtrosErrores(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := retryTx(context.Background(), txAttempts, func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	calls = 0
	err = retryTx(context.Background(), txAttempts, func() error {
		calls++
		return &pgconn.PgError{Code: "23505"}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryTx_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := retryTx(ctx, txAttempts, func() error {
		calls++
		return &pgconn.PgError{Code: "40P01"}
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
