package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/octobees/agrimarket/api/internal/dto"
	"github.com/octobees/agrimarket/api/internal/entity"
	"github.com/octobees/agrimarket/api/internal/registration"
	"github.com/octobees/agrimarket/api/internal/repository"
)

var (
	// ErrInvalidUserID is returned for malformed account identifiers.
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrRoleMismatch is returned when an account asks for a profile kind it cannot own.
	ErrRoleMismatch = errors.New("profile not available for this role")
)

// UserService serves account lookups and administrative operations.
type UserService struct {
	repo repository.UsersRepository
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo}
}

// GetUser returns the account view, with its profile when one exists.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		farmer *entity.FarmerProfile
		buyer  *entity.BuyerProfile
	)
	switch registration.Role(user.Role) {
	case registration.RoleFarmer:
		farmer, err = s.repo.FindFarmerProfile(ctx, id)
	case registration.RoleBuyer:
		buyer, err = s.repo.FindBuyerProfile(ctx, id)
	}
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, err
	}

	resp := toUserResponse(user, farmer, buyer)
	return &resp, nil
}

// GetProfile returns the account together with the profile of the given role.
// It fails with ErrRoleMismatch when the account holds another role and with
// repository.ErrProfileNotFound when the profile row is missing.
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID, role registration.Role) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if registration.Role(user.Role) != role {
		return nil, ErrRoleMismatch
	}

	var resp dto.UserResponse
	switch role {
	case registration.RoleFarmer:
		farmer, err := s.repo.FindFarmerProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		resp = toUserResponse(user, farmer, nil)
	case registration.RoleBuyer:
		buyer, err := s.repo.FindBuyerProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		resp = toUserResponse(user, nil, buyer)
	default:
		return nil, ErrRoleMismatch
	}
	return &resp, nil
}

// ListUsers returns all users as DTOs.
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i], nil, nil))
	}
	return responses, nil
}

// VerifyUser sets the verified flag of an account.
func (s *UserService) VerifyUser(ctx context.Context, id string, verified bool) (*dto.UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	user, err := s.repo.SetVerified(ctx, userID, verified)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user, nil, nil)
	return &resp, nil
}

// DeleteUser removes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidUserID
	}
	return s.repo.Delete(ctx, userID)
}
