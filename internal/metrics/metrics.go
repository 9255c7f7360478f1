// Package metrics holds the Prometheus collectors of the sale engine.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	saleOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "erp",
		Subsystem: "sales",
		Name:      "created_total",
		Help:      "Sale creation attempts by outcome.",
	}, []string{"outcome"})

	stockConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "erp",
		Subsystem: "sales",
		Name:      "stock_conflicts_total",
		Help:      "Product writes that lost a version race during a sale.",
	})
)

func init() {
	prometheus.MustRegister(saleOutcomes, stockConflicts)
}

// SaleOutcome counts one createSale call; outcome is "ok" or an error kind.
func SaleOutcome(outcome string) {
	saleOutcomes.WithLabelValues(outcome).Inc()
}

func StockConflict() {
	stockConflicts.Inc()
}

// Handler serves the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
