package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octobees/agrimarket/api/internal/config"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")

	err := Logging(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	entries := logs.FilterField(zap.String("request_id", "rid-123")).All()
	if len(entries) != 1 || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("expected one info entry with request id, got %+v", logs.All())
	}
	if entries[0].ContextMap()["status"] != int64(http.StatusOK) {
		t.Fatalf("expected status field, got %v", entries[0].ContextMap())
	}

	// errors are rendered, logged and propagated
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging(logger)(func(c echo.Context) error {
		return expected
	})(c)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
	second := logs.FilterField(zap.String("request_id", "rid-456")).All()
	if len(second) != 1 || second[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected one error entry, got %+v", second)
	}
}

func newIPContext(e *echo.Echo, ip string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register/", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/auth/register/")
	return c, rec
}

func TestRegistrationRateLimiter(t *testing.T) {
	mw := RegistrationRateLimiter(config.RateLimitConfig{Requests: 1, Interval: time.Minute})

	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusCreated)
	}

	c, rec := newIPContext(e, "10.0.0.1")
	_ = mw(next)(c)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	c, rec = newIPContext(e, "10.0.0.1")
	_ = mw(next)(c)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request rejected, got %d", rec.Code)
	}

	c, rec = newIPContext(e, "10.0.0.2")
	_ = mw(next)(c)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected other client to have its own bucket, got %d", rec.Code)
	}
	if nextCalls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", nextCalls)
	}

	// zero config behaves as passthrough
	mw = RegistrationRateLimiter(config.RateLimitConfig{})
	for i := 0; i < 3; i++ {
		c, rec = newIPContext(e, "10.0.0.1")
		_ = mw(next)(c)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected passthrough when limiter disabled")
		}
	}
}

func TestClientLimiter_SweepsIdleClientsPeriodically(t *testing.T) {
	l := newClientLimiter(time.Second, 5)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	l.allow("10.0.0.1", start)
	l.allow("10.0.0.2", start)

	// Idle long enough to expire, but the sweep interval has not elapsed.
	l.allow("10.0.0.3", start.Add(idleClientTTL-time.Second))
	if len(l.clients) != 3 {
		t.Fatalf("expected no sweep before the interval, got %d clients", len(l.clients))
	}

	l.allow("10.0.0.3", start.Add(idleClientTTL+time.Second))
	if len(l.clients) != 1 {
		t.Fatalf("expected idle clients swept, got %d clients", len(l.clients))
	}
	if _, ok := l.clients["10.0.0.3"]; !ok {
		t.Fatalf("active client must survive the sweep")
	}
	if !l.lastSweep.Equal(start.Add(idleClientTTL + time.Second)) {
		t.Fatalf("unexpected last sweep %v", l.lastSweep)
	}
}

func TestClientLimiter_BucketPerKey(t *testing.T) {
	l := newClientLimiter(time.Minute, 1)
	now := time.Now()
	if !l.allow("a", now) || l.allow("a", now) {
		t.Fatalf("expected a single token for client a")
	}
	if !l.allow("b", now) {
		t.Fatalf("client b must have its own bucket")
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	mw := RequireRole("farmer", "admin")

	t.Run("missing role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("incorrect role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserRole, "buyer")

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	for _, role := range []string{"farmer", "admin"} {
		t.Run("allowed "+role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.Set(ContextKeyUserRole, role)

			called := false
			if err := mw(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !called {
				t.Fatalf("expected handler to run")
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestID()

	t.Run("reuse incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "incoming")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) != "incoming" {
				t.Fatalf("expected request id to be stored")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") != "incoming" {
			t.Fatalf("expected response header to propagate request id")
		}
	})

	t.Run("generate when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) == "" {
				t.Fatalf("expected generated request id")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("expected response header set")
		}
	})
}
