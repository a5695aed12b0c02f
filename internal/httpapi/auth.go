package httpapi

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims is the bearer-token payload the control-plane API expects.
type Claims struct {
	Subject string   `json:"sub"`
	Roles   []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthConfig configures the JWT middleware, a trimmed-down version of the
// teacher's middleware.AuthConfig (API-key auth dropped — this is a single
// internal control plane, not a multi-tenant public API).
type AuthConfig struct {
	Secret    []byte
	SkipPaths []string
}

// JWT builds bearer-token authentication middleware, grounded on the
// teacher's middleware.JWT.
func JWT(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			for _, skip := range cfg.SkipPaths {
				if strings.HasPrefix(path, skip) {
					return next(c)
				}
			}

			authHeader := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "unexpected signing method")
				}
				return cfg.Secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("claims", claims)
			return next(c)
		}
	}
}
