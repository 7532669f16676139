package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Stock.LowStockThreshold)
	assert.Equal(t, 120, cfg.Stock.OrderExpiryWindowDays)
	assert.Equal(t, ImportStrict, cfg.Import.Mode)
	assert.Equal(t, "1", cfg.Import.SentinelPrice.String())
	assert.Equal(t, "DESCONOCIDO", cfg.Import.DefaultSupplier)
	assert.Equal(t, 60, cfg.Services.ExpiringDays)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("IMPORT_MODE", "LENIENT")
	t.Setenv("IMPORT_SENTINEL_PRICE", "2.50")
	t.Setenv("LOW_STOCK_THRESHOLD", "5")
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ImportLenient, cfg.Import.Mode)
	assert.Equal(t, "2.5", cfg.Import.SentinelPrice.String())
	assert.Equal(t, 5, cfg.Stock.LowStockThreshold)
	assert.Equal(t, DriverMemory, cfg.DB.Driver)
}

func TestLoad_ModoImportacionInvalido(t *testing.T) {
	t.Setenv("IMPORT_MODE", "loose")

	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "almacen", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/almacen?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoad_AdminInicial(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "admin@almacen.gob")
	t.Setenv("ADMIN_PASSWORD", "secreto123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "admin@almacen.gob", cfg.App.AdminEmail)
	assert.Equal(t, "secreto123", cfg.App.AdminPassword)
	assert.Equal(t, "almacen", cfg.App.MetricsPrefix)
}
