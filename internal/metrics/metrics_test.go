package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	before := testutil.ToFloat64(saleOutcomes.WithLabelValues("Conflict"))
	SaleOutcome("Conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(saleOutcomes.WithLabelValues("Conflict")))

	conflicts := testutil.ToFloat64(stockConflicts)
	StockConflict()
	assert.Equal(t, conflicts+1, testutil.ToFloat64(stockConflicts))

	app := fiber.New()
	app.Get("/metrics", Handler())
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(raw), "erp_sales_stock_conflicts_total")
}
