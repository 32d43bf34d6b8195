package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kontakty/contacts-api/internal/core/ports"
)

// CategoryHandler serves the category taxonomy used by contact forms.
type CategoryHandler struct {
	service ports.CategoryService
}

func NewCategoryHandler(service ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List handles GET /api/category.
//
// @Summary      List categories with their subcategories
// @Tags         category
// @Produce      json
// @Success      200  {array}  categoryResponse
// @Router       /api/category [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCategoryResponses(categories))
}
