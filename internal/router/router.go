package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hieplq/barber-queue/internal/config"
	"github.com/hieplq/barber-queue/internal/handler"
	"github.com/hieplq/barber-queue/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, used by
// load balancers or monitoring systems to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterQueue registers the customer-facing queue surface. Ticket creation
// accepts both guests and authenticated customers, so it uses the optional
// JWT middleware; the read endpoints are public and sit behind the Redis
// rate limiter plus, for the heavily polled board, a short response cache.
func RegisterQueue(e *echo.Echo, t *handler.TicketHandler, cat *handler.CatalogHandler,
	jwtSecret string, rl config.RateLimitConfig, cache config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.RateLimit(rl, rdb))

	// Walk-in ticket creation: a guest gets an anonymous ticket, a logged-in
	// customer gets an owned one (owned tickets can earn loyalty credits).
	g.POST("/tickets", t.CreateTicket, middleware.JWTOptional(jwtSecret))

	// The live board every waiting customer polls.
	g.GET("/queue", t.GetQueue, middleware.QueueCache(cache, rdb))
	g.GET("/queue/estimate", t.GetEstimate)
	g.GET("/tickets/:number", t.GetTicket)
	g.GET("/services", cat.ListServices)
}

// RegisterStaff registers the endpoints used by barbers and the owner to
// drive tickets through their lifecycle. All of them require a valid access
// token with a staff role.
func RegisterStaff(e *echo.Echo, t *handler.TicketHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "BARBER"))
	g.PATCH("/tickets/:id/status", t.UpdateStatus)
}

// RegisterAdmin registers the owner-only configuration endpoints: shop
// settings and the shift roster.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.GET("/settings", a.GetSettings)
	g.PUT("/settings", a.UpdateSettings)
	g.GET("/barbers", a.ListBarbers)
	g.PATCH("/barbers/:id", a.SetBarberActive)
}

// RegisterProfile registers the authenticated account endpoint: identity,
// role and the credit balance.
func RegisterProfile(e *echo.Echo, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("/me", p.Me)
}

// RegisterOrders registers the credit top-up endpoints. Orders belong to an
// authenticated customer; settlement arrives later through the bank webhook.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, jwtSecret string) {
	g := e.Group("/v1/orders")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", o.CreateOrder)
	g.GET("/:code", o.GetOrder)
}

// RegisterWebhooks registers the payment gateway callback. It authenticates
// with a shared secret inside the handler rather than a JWT, since the
// caller is the gateway, not a user.
func RegisterWebhooks(e *echo.Echo, w *handler.WebhookHandler) {
	e.POST("/v1/webhooks/bank", w.BankTransfer)
}
