package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/agrimarket/api/internal/registration"
	"github.com/octobees/agrimarket/api/internal/service"
)

// RegistrationHandler exposes the role specific sign-up endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// RegisterGuest handles POST /api/auth/register/.
func (h *RegistrationHandler) RegisterGuest(c echo.Context) error {
	return h.register(c, registration.RoleGuest)
}

// RegisterFarmer handles POST /api/auth/register/farmer/.
func (h *RegistrationHandler) RegisterFarmer(c echo.Context) error {
	return h.register(c, registration.RoleFarmer)
}

// RegisterBuyer handles POST /api/auth/register/buyer/.
func (h *RegistrationHandler) RegisterBuyer(c echo.Context) error {
	return h.register(c, registration.RoleBuyer)
}

func (h *RegistrationHandler) register(c echo.Context, role registration.Role) error {
	payload, err := decodeObject(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.registrations.Register(c.Request().Context(), role, payload)
	if err != nil {
		if verrs, ok := registration.AsValidationErrors(err); ok {
			return ValidationFailed(c, verrs)
		}
		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			return Error(c, http.StatusConflict, "email already exists")
		default:
			return Error(c, http.StatusInternalServerError, "unable to register user")
		}
	}

	return Success(c, http.StatusCreated, "registration successful", resp)
}

// decodeObject reads the body as a JSON object. Numbers stay json.Number so
// integer fields are not routed through float64.
func decodeObject(c echo.Context) (map[string]any, error) {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("payload must be a JSON object")
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON object")
	}
	return payload, nil
}
