package middleware

import (
	"signal-desk/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogger puts a logger tagged with the request id into the request
// context so the *Context logging methods downstream pick it up. It must run
// after echo's RequestID middleware.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}
			if rid != "" {
				scoped := log.With(logger.StringField("request_id", rid))
				c.SetRequest(req.WithContext(logger.NewContext(req.Context(), scoped)))
			}
			return next(c)
		}
	}
}
