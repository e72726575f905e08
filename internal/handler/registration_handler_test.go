package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/agrimarket/api/internal/auth"
	"github.com/octobees/agrimarket/api/internal/entity"
	"github.com/octobees/agrimarket/api/internal/registration"
	"github.com/octobees/agrimarket/api/internal/repository"
	"github.com/octobees/agrimarket/api/internal/service"
)

const farmerBody = `{
  "email": "farmer@example.com",
  "password": "secret123",
  "password2": "secret123",
  "phone_number": "+255123456789",
  "location": "Arusha",
  "preferred_language": "sw",
  "farmer_profile": {
    "farm_size": 5.5,
    "farm_size_unit": "acres",
    "expected_harvest_date": "2023-12-15",
    "id_card_number": "12345678",
    "years_of_experience": 10
  }
}`

func newRegistrationHandler(repo repository.UsersRepository) *RegistrationHandler {
	svc := service.NewRegistrationService(registration.NewValidator("TZ"), repo, auth.NewJWTManager("test-secret", 0), bcrypt.MinCost, nil)
	return NewRegistrationHandler(svc)
}

func storingRepo() *stubUsersRepo {
	return &stubUsersRepo{
		create: func(ctx context.Context, account repository.NewAccount) (*entity.User, error) {
			u := account.User
			u.ID = uuid.New()
			return &u, nil
		},
	}
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestRegistrationHandler_RegisterFarmer(t *testing.T) {
	e := echo.New()
	c, rec := postJSON(e, "/api/auth/register/farmer/", farmerBody)

	if err := newRegistrationHandler(storingRepo()).RegisterFarmer(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
			User        struct {
				Email         string `json:"email"`
				Role          string `json:"role"`
				FarmerProfile struct {
					FarmSize string `json:"farm_size"`
				} `json:"farmer_profile"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.AccessToken == "" || body.Data.User.Role != "farmer" || body.Data.User.FarmerProfile.FarmSize != "5.5" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "secret123") {
		t.Fatalf("password leaked into response")
	}
}

func TestRegistrationHandler_ValidationErrors(t *testing.T) {
	e := echo.New()

	tests := map[string]struct {
		register func(h *RegistrationHandler, c echo.Context) error
		body     string
		codes    []registration.ErrorCode
	}{
		"farmer payload on buyer route": {
			register: (*RegistrationHandler).RegisterBuyer,
			body:     farmerBody,
			codes:    []registration.ErrorCode{registration.CodeProfileMismatch},
		},
		"farmer payload on guest route": {
			register: (*RegistrationHandler).RegisterGuest,
			body:     farmerBody,
			codes:    []registration.ErrorCode{registration.CodeProfileMismatch},
		},
		"empty object": {
			register: (*RegistrationHandler).RegisterGuest,
			body:     `{}`,
			codes: []registration.ErrorCode{
				registration.CodeMissingField, registration.CodeMissingField, registration.CodeMissingField,
				registration.CodeMissingField, registration.CodeMissingField, registration.CodeMissingField,
			},
		},
		"password mismatch": {
			register: (*RegistrationHandler).RegisterFarmer,
			body:     strings.Replace(farmerBody, `"password2": "secret123"`, `"password2": "other"`, 1),
			codes:    []registration.ErrorCode{registration.CodePasswordMismatch},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, rec := postJSON(e, "/", tt.body)
			if err := tt.register(newRegistrationHandler(storingRepo()), c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			payload := decodeEnvelope(t, rec)
			if len(payload.Errors) != len(tt.codes) {
				t.Fatalf("expected %d errors, got %+v", len(tt.codes), payload.Errors)
			}
			for i, code := range tt.codes {
				if payload.Errors[i].Code != code {
					t.Fatalf("error %d: expected %s, got %s", i, code, payload.Errors[i].Code)
				}
			}
		})
	}
}

func TestRegistrationHandler_InvalidBody(t *testing.T) {
	e := echo.New()
	for _, body := range []string{"{", "[]", "null", `{"email":"a"} {}`, `"text"`} {
		c, rec := postJSON(e, "/", body)
		_ = newRegistrationHandler(storingRepo()).RegisterGuest(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
		if payload := decodeEnvelope(t, rec); payload.Message != "invalid payload" {
			t.Fatalf("body %q: unexpected message %q", body, payload.Message)
		}
	}
}

func TestRegistrationHandler_DuplicateEmail(t *testing.T) {
	e := echo.New()
	c, rec := postJSON(e, "/", farmerBody)
	repo := &stubUsersRepo{
		create: func(ctx context.Context, account repository.NewAccount) (*entity.User, error) {
			return nil, repository.ErrEmailDuplicate
		},
	}

	_ = newRegistrationHandler(repo).RegisterFarmer(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegistrationHandler_RepositoryFailure(t *testing.T) {
	e := echo.New()
	c, rec := postJSON(e, "/", farmerBody)
	repo := &stubUsersRepo{
		create: func(ctx context.Context, account repository.NewAccount) (*entity.User, error) {
			return nil, errors.New("db down")
		},
	}

	_ = newRegistrationHandler(repo).RegisterFarmer(c)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRegistrationHandler_PasswordOverBcryptLimit(t *testing.T) {
	e := echo.New()
	long := strings.Repeat("s", 80)
	body := strings.Replace(farmerBody, `"password": "secret123"`, `"password": "`+long+`"`, 1)
	c, rec := postJSON(e, "/", body)

	_ = newRegistrationHandler(storingRepo()).RegisterFarmer(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if len(payload.Errors) != 1 || payload.Errors[0].Field != registration.FieldPassword {
		t.Fatalf("expected a single password error, got %+v", payload.Errors)
	}
}

func TestRegistrationHandler_UnsupportedRoleIsServerError(t *testing.T) {
	e := echo.New()
	c, rec := postJSON(e, "/", farmerBody)

	_ = newRegistrationHandler(storingRepo()).register(c, registration.Role("admin"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
