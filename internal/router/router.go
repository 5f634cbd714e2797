package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/gvriil/habit-tracker/internal/config"
	"github.com/gvriil/habit-tracker/internal/handler"
	"github.com/gvriil/habit-tracker/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// The health endpoint can be used by load balancers or monitoring
	// systems to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Token issuing endpoints do not require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access only issues a new
	// access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts either a refresh token in the body or a bearer access
	// token, so it lives outside the JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterHabits registers the habit, completion, digest and profile
// endpoints.  All of them require a valid access token.
func RegisterHabits(e *echo.Echo, h *handler.HabitHandler, cp *handler.CompletionHandler, d *handler.DigestHandler, p *handler.ProfileHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))

	auth.GET("/habits", h.List)
	auth.POST("/habits", h.Create)
	auth.GET("/habits/:id", h.Get)
	auth.PUT("/habits/:id", h.Update)
	auth.DELETE("/habits/:id", h.Delete)

	auth.POST("/habits/:id/complete", cp.Create)
	auth.GET("/habits/:id/completions", cp.ListByHabit)
	auth.GET("/completions", cp.ListMine)
	auth.DELETE("/completions/:id", cp.Delete)

	auth.GET("/digest", d.Get)

	auth.POST("/profile/telegram", p.LinkTelegram)
	auth.GET("/me/telegram", p.GetTelegram)
	auth.DELETE("/me/telegram", p.UnlinkTelegram)
	auth.GET("/me/notifications", p.ListNotifications)
}

// RegisterPublic registers the unauthenticated public habit listing.  The
// route sits behind the Redis token bucket and response cache when a Redis
// client is available; without one both middlewares are skipped and the
// endpoint degrades to uncached, unthrottled serving.
func RegisterPublic(e *echo.Echo, h *handler.HabitHandler, rdb *redis.Client) {
	g := e.Group("/v1")
	if rdb != nil {
		g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	g.GET("/public-habits", h.ListPublic)
}

// RegisterWebhook registers the Telegram webhook endpoint.  Authentication
// is the shared secret header, not a JWT.
func RegisterWebhook(e *echo.Echo, w *handler.WebhookHandler) {
	e.POST("/v1/telegram/webhook", w.Receive)
}
