package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "terrascore_redis_errors_total",
		Help: "Total number of Redis command errors.",
	},
	[]string{"command"},
)

// ApprovalDecisions counts terminal request transitions by kind and outcome.
var ApprovalDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "terrascore_approval_decisions_total",
		Help: "Total number of registration/account request decisions.",
	},
	[]string{"request_kind", "decision"},
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler recording HTTP metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
