package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/iliyamo/flash-sale-tickets/internal/handler" // handlers implementing the endpoints
)

// RegisterRoutes registers routes that do not require any middleware on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use /healthz to verify that
	// the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the flash-sale endpoints under /v1.  The purchase
// endpoint additionally runs through the provided rate limiter, since it
// is the one route a sale hammers; pass nil to disable limiting (tests).
func RegisterAPI(e *echo.Echo, users *handler.UserHandler, tickets *handler.TicketHandler,
	purchases *handler.PurchaseHandler, purchaseLimiter echo.MiddlewareFunc) {
	g := e.Group("/v1")

	// Buyer registration and lookup.  Registration is idempotent so the
	// simulator and retrying clients can repeat it safely.
	g.POST("/users", users.Register)
	g.GET("/users/:id", users.Get)
	g.GET("/users/:id/exists", users.Exists)

	// Read-only ticket listings and the fast stock status.
	g.GET("/tickets", tickets.ListAll)
	g.GET("/tickets/available", tickets.ListAvailable)
	g.GET("/tickets/status", tickets.Status)

	// The purchase endpoint drives the concurrency controller.
	if purchaseLimiter != nil {
		g.POST("/purchases", purchases.Purchase, purchaseLimiter)
	} else {
		g.POST("/purchases", purchases.Purchase)
	}
	g.GET("/purchases/user/:id", purchases.History)
	g.GET("/purchases/user/:id/count", purchases.Count)
}
