package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const HeaderAPIKey = "X-API-Key"

// NewAPIKeyMiddleware requires the X-API-Key header to match apiKey. An empty
// apiKey leaves the route open.
func NewAPIKeyMiddleware(apiKey string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			return apiKey == ""
		},
		KeyLookup: "header:" + HeaderAPIKey,
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, Response{
				Code:    http.StatusUnauthorized,
				Message: "Unauthorized: missing or invalid API key",
			})
		},
	})
}
