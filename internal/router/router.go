package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"  // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9" // Redis client backing the cache and rate limiter

	"github.com/iliyamo/reeliz-ticketing/internal/config"     // cache and rate-limit configuration
	"github.com/iliyamo/reeliz-ticketing/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/reeliz-ticketing/internal/middleware" // import middleware for auth, caching and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterBooking registers the public booking endpoints under /api/booking.
// Prepare and confirm are rate limited per client so a single kiosk cannot
// flood the id allocator; the occupied-seats lookup is cached in Redis
// because every open seat picker polls it.  A nil Redis client disables
// both middlewares (the constructors degrade to pass-through).
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, rdb *redis.Client) {
	g := e.Group("/api/booking")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	// Phase one: allocate a ticket id and barcode without writing anything.
	g.POST("/prepare", b.Prepare)
	// Phase two: validate seats and persist the ticket atomically.
	g.POST("/confirm", b.Confirm)
	// Seat-map lookup used by the seat picker.
	g.GET("/occupied-seats", b.OccupiedSeats, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
}

// RegisterScanner registers the door-scanner endpoints under /api/scanner.
// The scan endpoint is called by the hardware bridge and authenticates with
// a station key; the poll endpoint feeds the staff display and requires a
// staff JWT with a scanner-capable role.
func RegisterScanner(e *echo.Echo, s *handler.ScannerHandler, jwtSecret, stationKeyHash string) {
	g := e.Group("/api/scanner")
	g.POST("/scan", s.Scan, middleware.StationKey(stationKeyHash))
	g.GET("/poll", s.Poll, middleware.JWTAuth(jwtSecret), middleware.RequireRole("SCANNER", "ADMIN"))
}

// RegisterAdmin registers the staff ticket-management endpoints under
// /api/admin.  All of them require a staff JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/api/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.GET("/tickets", a.ListTickets)
	g.DELETE("/tickets/:id", a.DeleteTicket)
}
