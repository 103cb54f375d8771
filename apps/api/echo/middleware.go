package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coachreports",
	Name:      "http_requests_total",
	Help:      "Number of HTTP requests, by route and status code",
}, []string{"method", "route", "code"})

// metricsMiddleware counts the requests per matched route; unmatched paths share the "" route.
// Errors are handled here so that the counted code is the one actually sent.
func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}
			code := ctx.Response().Status
			httpRequests.WithLabelValues(ctx.Request().Method, ctx.Path(), strconv.Itoa(code)).Inc()
			return nil
		}
	}
}
