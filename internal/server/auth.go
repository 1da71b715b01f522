package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminSecretHeader carries the shared secret for admin routes.
const AdminSecretHeader = "X-Admin-AI-Secret"

// SecretFunc returns the current shared secret. It is called once per request.
type SecretFunc func() string

// SharedSecretMiddleware creates an Echo middleware that requires the
// AdminSecretHeader to equal the secret returned by secretFn for this request.
// If secretFn is nil or returns "", no check is made.
func SharedSecretMiddleware(secretFn SecretFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var secret string
			if secretFn != nil {
				secret = secretFn()
			}
			// If no secret is configured, allow all requests
			if secret == "" {
				return next(c)
			}

			provided := c.Request().Header.Get(AdminSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"error": map[string]interface{}{
						"type":    "authentication_error",
						"message": "Forbidden",
					},
				})
			}

			return next(c)
		}
	}
}
