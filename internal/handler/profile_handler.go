package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/agrimarket/api/internal/middleware"
	"github.com/octobees/agrimarket/api/internal/registration"
	"github.com/octobees/agrimarket/api/internal/repository"
	"github.com/octobees/agrimarket/api/internal/service"
)

// ProfileHandler serves the authenticated account and its profile.
type ProfileHandler struct {
	users *service.UserService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(users *service.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Me handles GET /api/auth/me/.
func (h *ProfileHandler) Me(c echo.Context) error {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "unauthenticated")
	}

	user, err := h.users.GetUser(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Error(c, http.StatusNotFound, "user not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load user")
	}
	return Success(c, http.StatusOK, "user retrieved", user)
}

// FarmerProfile handles GET /api/auth/profiles/farmer/me/.
func (h *ProfileHandler) FarmerProfile(c echo.Context) error {
	return h.profile(c, registration.RoleFarmer)
}

// BuyerProfile handles GET /api/auth/profiles/buyer/me/.
func (h *ProfileHandler) BuyerProfile(c echo.Context) error {
	return h.profile(c, registration.RoleBuyer)
}

func (h *ProfileHandler) profile(c echo.Context, role registration.Role) error {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "unauthenticated")
	}

	user, err := h.users.GetProfile(c.Request().Context(), id, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoleMismatch):
			return Error(c, http.StatusForbidden, err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			return Error(c, http.StatusNotFound, "user not found")
		case errors.Is(err, repository.ErrProfileNotFound):
			return Error(c, http.StatusNotFound, string(role)+" profile not found")
		default:
			return Error(c, http.StatusInternalServerError, "failed to load profile")
		}
	}
	return Success(c, http.StatusOK, "profile retrieved", user)
}
