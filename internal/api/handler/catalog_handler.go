package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estetica/salon-booking/internal/core/domain"
)

type CatalogHandler struct {
	catalog domain.Catalog
}

func NewCatalogHandler(catalog domain.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List returns the bookable services.
//
// @Summary      Service catalog
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  catalogResponse
// @Router       /v1/services [get]
func (h *CatalogHandler) List(c echo.Context) error {
	items := make([]catalogItemResponse, 0, len(h.catalog))
	for _, s := range h.catalog {
		items = append(items, catalogItemResponse{
			ID:              s.ID,
			Name:            s.Name,
			PriceCents:      s.PriceCents,
			Currency:        s.Currency,
			DurationMinutes: int(s.Duration.Minutes()),
		})
	}
	return c.JSON(http.StatusOK, catalogResponse{Items: items})
}
