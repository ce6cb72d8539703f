package middleware

import (
	"strconv"
	"time"

	"signal-desk/pkg/logger"
	"signal-desk/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// Metrics records request count and latency per route template, and logs
// server errors and requests slower than slowThreshold.
func Metrics(log *logger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	metrics.Register()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			code := c.Response().Status
			duration := time.Since(start)
			reqLog := log.FromContext(c.Request().Context())

			metrics.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(route, method, metrics.StatusClass(code)).Observe(duration.Seconds())

			switch {
			case code >= 500:
				reqLog.Error("http request failed",
					logger.StringField("route", route),
					logger.StringField("method", method),
					logger.IntField("status", code),
					logger.StringField("duration", duration.String()),
				)
			case slowThreshold > 0 && duration >= slowThreshold:
				reqLog.Warn("http request slow",
					logger.StringField("route", route),
					logger.StringField("method", method),
					logger.IntField("status", code),
					logger.StringField("duration", duration.String()),
				)
			}
			return nil
		}
	}
}
