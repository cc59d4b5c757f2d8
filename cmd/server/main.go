package main // Entry point package

import (
	"context" // Context for the schema bootstrap
	"log"     // Logging library
	"time"    // Hold-expiry ticker interval

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/reeliz-ticketing/internal/admission" // Barcode validation and the scan mailbox
	"github.com/iliyamo/reeliz-ticketing/internal/booking"   // Two-phase booking coordinator
	"github.com/iliyamo/reeliz-ticketing/internal/config"    // Internal config loader
	"github.com/iliyamo/reeliz-ticketing/internal/database"  // MySQL connection helper
	"github.com/iliyamo/reeliz-ticketing/internal/handler"   // HTTP handlers
	"github.com/iliyamo/reeliz-ticketing/internal/queue"     // RabbitMQ consumer and door publisher
	"github.com/iliyamo/reeliz-ticketing/internal/router"    // Internal router setup
	"github.com/iliyamo/reeliz-ticketing/internal/store"     // Ticket storage backends
)

func main() {
	// Load a local .env file when present; real deployments set the
	// environment directly and the missing file is not an error.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	// Open the ticket store.  MySQL is the production backend; tests use
	// the in-memory store instead.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("[main] database connection failed: %v", err)
	}
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("[main] schema bootstrap failed: %v", err)
	}
	ts := store.NewMySQLStore(db)

	// The coordinator owns id/barcode allocation and the confirm path.
	coord := booking.NewCoordinator(ts, time.Duration(cfg.HoldTTLMin)*time.Minute)
	avail := booking.NewAvailability(ts)

	// The validator drives the door via RabbitMQ; the mailbox feeds the
	// staff poll endpoint with the latest scan outcome.
	validator := admission.NewValidator(ts, queue.NewAMQPDoor())
	mailbox := admission.NewMailbox()

	// Redis backs response caching and rate limiting.  A nil client just
	// disables both; the service stays fully functional without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("[main] redis unavailable, cache and rate limit disabled")
	}

	// Consume confirmed-ticket events for the audit log.
	go queue.StartTicketConsumer()

	// Expire stale prepare holds so abandoned checkouts return their ids
	// to the allocator.  Barcodes stay burned either way.
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for range t.C {
			if n := coord.ExpireHolds(); n > 0 {
				log.Printf("[main] expired %d stale holds", n)
			}
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterBooking(e, handler.NewBookingHandler(coord, avail), rdb)
	router.RegisterScanner(e, handler.NewScannerHandler(validator, mailbox), cfg.JWTSecret, cfg.StationKeyHash)
	router.RegisterAdmin(e, handler.NewAdminHandler(ts, coord), cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
