package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/agrimarket/api/internal/dto"
	"github.com/octobees/agrimarket/api/internal/repository"
	"github.com/octobees/agrimarket/api/internal/service"
)

// UserAdminHandler exposes administrative user management endpoints.
type UserAdminHandler struct {
	users *service.UserService
}

// NewUserAdminHandler constructs a handler instance.
func NewUserAdminHandler(users *service.UserService) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

// List returns all users.
func (h *UserAdminHandler) List(c echo.Context) error {
	records, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list users")
	}
	return Success(c, http.StatusOK, "users retrieved", records)
}

// Verify sets or clears the verified flag of an account.
func (h *UserAdminHandler) Verify(c echo.Context) error {
	var req dto.VerifyUserRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	verified := true
	if req.Verified != nil {
		verified = *req.Verified
	}

	user, err := h.users.VerifyUser(c.Request().Context(), c.Param("id"), verified)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUserID):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			return Error(c, http.StatusNotFound, "user not found")
		default:
			return Error(c, http.StatusInternalServerError, "failed to update user")
		}
	}

	return Success(c, http.StatusOK, "user updated", user)
}

// Delete removes a user.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	if err := h.users.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUserID):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			return Error(c, http.StatusNotFound, "user not found")
		default:
			return Error(c, http.StatusInternalServerError, "failed to delete user")
		}
	}

	return Success(c, http.StatusOK, "user deleted", nil)
}
