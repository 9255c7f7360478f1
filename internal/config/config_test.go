package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, uint(1), cfg.WalkInCustomerID)
	assert.Equal(t, 1, cfg.SaleStockRetries)
	assert.Equal(t, 60, cfg.JWTTTLMinutes)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Len(t, cfg.Warnings, 2)
}

func TestLoadRequestTimeout(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())

	t.Setenv("REQUEST_TIMEOUT_SECONDS", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT_SECONDS")
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.ErrorContains(t, err, "at least 32")
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("WALK_IN_CUSTOMER_ID", "abc")

	_, err := Load()
	assert.ErrorContains(t, err, "WALK_IN_CUSTOMER_ID")
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "erp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_port: "9090"
jwt_secret: "`+testSecret+`"
walk_in_customer_id: 7
sale_stock_retries: 3
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SALE_STOCK_RETRIES", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, uint(7), cfg.WalkInCustomerID)
	assert.Equal(t, 2, cfg.SaleStockRetries)
}

func TestAllowedOriginsTrimsSpaces(t *testing.T) {
	cfg := &Config{CORSOrigins: "http://a.test , http://b.test"}
	assert.Equal(t, "http://a.test,http://b.test", cfg.AllowedOrigins())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "not supported")
}

func TestLoadPrometheusFlag(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PROMETHEUS_ENABLED", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.PrometheusEnabled)

	t.Setenv("PROMETHEUS_ENABLED", "sometimes")
	_, err = Load()
	assert.Error(t, err)
}
