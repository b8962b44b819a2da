package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/estetica/salon-booking/internal/core/domain"
)

// Context keys set by Auth.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
	KeyName   = "name"
)

// Auth validates the JWT and injects the session claims into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sub, _ := claims["sub"].(string)
			rawRole, _ := claims["role"].(string)
			role, err := domain.ParseRole(rawRole)
			if sub == "" || err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing session identity")
			}
			name, _ := claims["name"].(string)

			c.Set(KeyUserID, sub)
			c.Set(KeyRole, role)
			c.Set(KeyName, name)

			return next(c)
		}
	}
}
