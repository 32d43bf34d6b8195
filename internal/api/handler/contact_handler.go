package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kontakty/contacts-api/internal/core/domain"
	"github.com/kontakty/contacts-api/internal/core/ports"
)

// ContactHandler handles HTTP requests for contact operations.
type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(service ports.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// List handles GET /api/contact.
//
// @Summary      List contacts
// @Tags         contact
// @Produce      json
// @Success      200  {array}   contactListResponse
// @Router       /api/contact [get]
func (h *ContactHandler) List(c echo.Context) error {
	contacts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContactListResponses(contacts))
}

// Search handles GET /api/contact/search.
//
// @Summary      Search contacts by last name and phone number
// @Tags         contact
// @Produce      json
// @Param        lastName     query     string  false  "Last name substring (case-sensitive)"
// @Param        phoneNumber  query     string  false  "Phone number substring"
// @Success      200          {array}   contactListResponse
// @Router       /api/contact/search [get]
func (h *ContactHandler) Search(c echo.Context) error {
	contacts, err := h.service.Search(c.Request().Context(), domain.ContactFilter{
		LastName:    c.QueryParam("lastName"),
		PhoneNumber: c.QueryParam("phoneNumber"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContactListResponses(contacts))
}

// Get handles GET /api/contact/:id.
//
// @Summary      Get a contact
// @Tags         contact
// @Produce      json
// @Param        id   path      int  true  "Contact id"
// @Success      200  {object}  contactDetailResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/contact/{id} [get]
func (h *ContactHandler) Get(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}
	contact, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContactDetailResponse(contact))
}

// Create handles POST /api/contact.
//
// @Summary      Create a contact
// @Tags         contact
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      contactRequest  true  "Contact"
// @Success      201   {object}  contactDetailResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/contact [post]
func (h *ContactHandler) Create(c echo.Context) error {
	input, err := bindContact(c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/contact/%d", created.ID))
	return c.JSON(http.StatusCreated, toContactDetailResponse(created))
}

// Update handles PUT /api/contact/:id.
//
// @Summary      Update a contact
// @Tags         contact
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Contact id"
// @Param        body  body      contactRequest  true  "Contact"
// @Success      200   {object}  contactDetailResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /api/contact/{id} [put]
func (h *ContactHandler) Update(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}
	input, err := bindContact(c)
	if err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContactDetailResponse(updated))
}

// Delete handles DELETE /api/contact/:id.
//
// @Summary      Delete a contact
// @Tags         contact
// @Security     BearerAuth
// @Param        id   path  int  true  "Contact id"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/contact/{id} [delete]
func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// contactID parses the :id path segment. Anything that is not a positive
// integer cannot name a stored contact.
func contactID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrContactNotFound
	}
	return id, nil
}

func bindContact(c echo.Context) (ports.ContactInput, error) {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return ports.ContactInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.ContactInput{}, err
	}
	return toContactInput(req)
}
