package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estetica/salon-booking/internal/api/middleware"
	"github.com/estetica/salon-booking/internal/core/domain"
)

// ctxActor extracts the session injected by the Auth middleware and fails
// fast with 401 when it is absent.
func ctxActor(c echo.Context) (domain.Actor, error) {
	userID, _ := c.Get(middleware.KeyUserID).(string)
	role, _ := c.Get(middleware.KeyRole).(domain.Role)
	if userID == "" || role == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Actor{UserID: userID, Role: role}, nil
}
