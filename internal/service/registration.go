package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/agrimarket/api/internal/auth"
	"github.com/octobees/agrimarket/api/internal/dto"
	"github.com/octobees/agrimarket/api/internal/entity"
	"github.com/octobees/agrimarket/api/internal/metrics"
	"github.com/octobees/agrimarket/api/internal/registration"
	"github.com/octobees/agrimarket/api/internal/repository"
)

// ErrEmailAlreadyExists is returned when a registration reuses a known email.
var ErrEmailAlreadyExists = errors.New("email already registered")

// RegistrationService turns validated payloads into persisted accounts.
type RegistrationService struct {
	validator  *registration.Validator
	users      repository.UsersRepository
	jwt        *auth.JWTManager
	bcryptCost int
	logger     *zap.Logger
}

// NewRegistrationService wires the registration flow. A zero bcrypt cost
// selects bcrypt.DefaultCost and a nil logger discards output.
func NewRegistrationService(validator *registration.Validator, users repository.UsersRepository, jwtManager *auth.JWTManager, bcryptCost int, logger *zap.Logger) *RegistrationService {
	if validator == nil {
		validator = registration.NewValidator(registration.DefaultPhoneRegion)
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		validator:  validator,
		users:      users,
		jwt:        jwtManager,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register validates payload for role, stores the account with its profile and
// returns the public view plus an access token. Validation problems come back
// as registration.ValidationErrors.
func (s *RegistrationService) Register(ctx context.Context, role registration.Role, payload map[string]any) (*dto.RegistrationResponse, error) {
	start := time.Now()
	defer func() {
		metrics.RegistrationDuration.WithLabelValues(string(role)).Observe(time.Since(start).Seconds())
	}()

	req, err := s.validator.Validate(payload, role)
	if err != nil {
		if verrs, ok := registration.AsValidationErrors(err); ok {
			metrics.ObserveRegistration(string(role), metrics.OutcomeInvalid)
			for _, fe := range verrs {
				metrics.ObserveFieldErrors(string(fe.Code))
			}
			s.logger.Debug("registration rejected", zap.String("role", string(role)), zap.Int("errors", len(verrs)))
		}
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		metrics.ObserveRegistration(string(role), metrics.OutcomeError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := newAccount(req, string(hashed))
	user, err := s.users.Create(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			metrics.ObserveRegistration(string(role), metrics.OutcomeDuplicate)
			return nil, ErrEmailAlreadyExists
		}
		metrics.ObserveRegistration(string(role), metrics.OutcomeError)
		s.logger.Error("persist registration", zap.String("role", string(role)), zap.Error(err))
		return nil, fmt.Errorf("create account: %w", err)
	}

	token, err := s.jwt.GenerateToken(user.ID.String(), user.Email, user.Role)
	if err != nil {
		metrics.ObserveRegistration(string(role), metrics.OutcomeError)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.ObserveRegistration(string(role), metrics.OutcomeCreated)
	s.logger.Info("account registered", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))

	view := toUserResponse(user, account.Farmer, account.Buyer)
	return &dto.RegistrationResponse{AccessToken: token, User: view}, nil
}

func newAccount(req registration.Request, passwordHash string) repository.NewAccount {
	account := repository.NewAccount{
		User: entity.User{
			Email:             req.Email,
			PasswordHash:      passwordHash,
			Role:              string(req.Role),
			PhoneNumber:       req.PhoneNumber,
			Location:          req.Location,
			PreferredLanguage: req.PreferredLanguage,
		},
	}

	if f := req.Farmer; f != nil {
		account.Farmer = &entity.FarmerProfile{
			FarmSize:            f.FarmSize,
			FarmSizeUnit:        string(f.FarmSizeUnit),
			ExpectedHarvestDate: f.ExpectedHarvestDate.Time,
			IDCardNumber:        f.IDCardNumber,
			Certification:       f.Certification,
			YearsOfExperience:   f.YearsOfExperience,
		}
	}
	if b := req.Buyer; b != nil {
		account.Buyer = &entity.BuyerProfile{
			BusinessName:           b.BusinessName,
			RegistrationNumber:     b.RegistrationNumber,
			CompanyType:            string(b.CompanyType),
			PreferredProducts:      b.PreferredProducts,
			DeliveryAddress:        b.DeliveryAddress,
			AdditionalAddresses:    b.AdditionalAddresses,
			ContactPerson:          b.ContactPerson,
			ContactPhone:           b.ContactPhone,
			TaxIdentification:      b.TaxIdentification,
			PreferredCommunication: string(b.PreferredCommunication),
		}
	}
	return account
}

func toUserResponse(u *entity.User, farmer *entity.FarmerProfile, buyer *entity.BuyerProfile) dto.UserResponse {
	resp := dto.UserResponse{
		ID:                u.ID.String(),
		Email:             u.Email,
		Role:              u.Role,
		PhoneNumber:       u.PhoneNumber,
		Location:          u.Location,
		PreferredLanguage: u.PreferredLanguage,
		Verified:          u.Verified,
	}
	if farmer != nil {
		resp.FarmerProfile = &dto.FarmerProfileResponse{
			FarmSize:            farmer.FarmSize,
			FarmSizeUnit:        farmer.FarmSizeUnit,
			ExpectedHarvestDate: farmer.ExpectedHarvestDate.Format(registration.DateLayout),
			IDCardNumber:        farmer.IDCardNumber,
			Certification:       farmer.Certification,
			YearsOfExperience:   farmer.YearsOfExperience,
		}
	}
	if buyer != nil {
		resp.BuyerProfile = &dto.BuyerProfileResponse{
			BusinessName:           buyer.BusinessName,
			RegistrationNumber:     buyer.RegistrationNumber,
			CompanyType:            buyer.CompanyType,
			PreferredProducts:      buyer.PreferredProducts,
			DeliveryAddress:        buyer.DeliveryAddress,
			AdditionalAddresses:    buyer.AdditionalAddresses,
			ContactPerson:          buyer.ContactPerson,
			ContactPhone:           buyer.ContactPhone,
			TaxIdentification:      buyer.TaxIdentification,
			PreferredCommunication: buyer.PreferredCommunication,
		}
	}
	return resp
}
