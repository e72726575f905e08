package router

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/agrimarket/api/internal/auth"
	"github.com/octobees/agrimarket/api/internal/config"
	"github.com/octobees/agrimarket/api/internal/handler"
	middlewarepkg "github.com/octobees/agrimarket/api/internal/middleware"
	"github.com/octobees/agrimarket/api/internal/registration"
)

// registrationBodyLimit caps sign-up payloads.
const registrationBodyLimit = "64K"

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Health       *handler.HealthHandler
	Registration *handler.RegistrationHandler
	Auth         *handler.AuthHandler
	Profiles     *handler.ProfileHandler
	Users        *handler.UserAdminHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", handlers.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	register := api.Group("/auth/register",
		middlewarepkg.RegistrationRateLimiter(cfg.RateLimitRegister),
		echoMiddleware.BodyLimit(registrationBodyLimit),
	)
	register.POST("/", handlers.Registration.RegisterGuest)
	register.POST("/farmer/", handlers.Registration.RegisterFarmer)
	register.POST("/buyer/", handlers.Registration.RegisterBuyer)

	api.POST("/auth/login/", handlers.Auth.Login)

	secured := api.Group("", middlewarepkg.JWT(jwtManager))
	secured.GET("/auth/me/", handlers.Profiles.Me)
	secured.GET("/auth/profiles/farmer/me/", handlers.Profiles.FarmerProfile, middlewarepkg.RequireRole(string(registration.RoleFarmer)))
	secured.GET("/auth/profiles/buyer/me/", handlers.Profiles.BuyerProfile, middlewarepkg.RequireRole(string(registration.RoleBuyer)))

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/users", handlers.Users.List)
	admin.PATCH("/users/:id/verify", handlers.Users.Verify)
	admin.DELETE("/users/:id", handlers.Users.Delete)
}
