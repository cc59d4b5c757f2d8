package handler

import (
	"context"  // detached context for the event publish
	"errors"   // errors.Is comparisons against booking sentinels
	"log"      // best-effort event publish logging
	"net/http" // HTTP status codes
	"time"     // confirmation timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/reeliz-ticketing/internal/booking"
	"github.com/iliyamo/reeliz-ticketing/internal/model"
	"github.com/iliyamo/reeliz-ticketing/internal/queue"
	queuepublisher "github.com/iliyamo/reeliz-ticketing/internal/service"
)

// BookingHandler exposes the two-phase reservation protocol and the
// occupied-seats query over HTTP.  Prepare allocates an id and barcode
// with no durable write; Confirm re-validates the seats and commits.
// Response shapes follow the legacy booking client: every body carries a
// "success" flag and failures carry a "message".
type BookingHandler struct {
	Coordinator  *booking.Coordinator
	Availability *booking.Availability
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies must
// be non-nil.
func NewBookingHandler(co *booking.Coordinator, av *booking.Availability) *BookingHandler {
	if co == nil || av == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Coordinator: co, Availability: av}
}

// Prepare handles POST /api/booking/prepare.  The body carries the
// selected date, room and total amount; the response returns the
// allocated transaction id, barcode and the MM/DD:HH stamp the client
// must echo back on confirm.  The allocation is held in memory only and
// may be abandoned without cleanup.
func (h *BookingHandler) Prepare(c echo.Context) error {
	var body struct {
		SelectedDate string           `json:"selectedDate"`
		Showtime     string           `json:"showtime"`
		CinemaRoom   string           `json:"cinemaRoom"`
		TotalAmount  model.FlexAmount `json:"totalAmount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	hold, err := h.Coordinator.Prepare(c.Request().Context(), booking.PrepareRequest{
		SelectedDate: body.SelectedDate,
		Showtime:     body.Showtime,
		CinemaRoom:   body.CinemaRoom,
		TotalAmount:  uint32(body.TotalAmount),
	})
	if err != nil {
		if errors.Is(err, booking.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "date and room are required"})
		}
		if errors.Is(err, booking.ErrAllocationExhausted) {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "no ticket ids available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to prepare reservation"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"transaction_id": hold.TicketID,
		"barcode":        hold.Barcode,
		"db_date":        hold.DBDate,
	})
}

// Confirm handles POST /api/booking/confirm.  It finalises a prepared
// reservation: seats are re-checked against confirmed tickets for the
// same showtime and the ticket is written atomically.  On a seat
// conflict the client must restart from seat selection; nothing is
// written.  A successful confirm also publishes a ticket.confirmed
// event, best effort.
func (h *BookingHandler) Confirm(c echo.Context) error {
	var body struct {
		TransactionID uint64           `json:"transaction_id"`
		Barcode       string           `json:"barcode"`
		DBDate        string           `json:"db_date"`
		SelectedDate  string           `json:"selectedDate"`
		CinemaRoom    string           `json:"cinemaRoom"`
		MovieTitle    string           `json:"movieTitle"`
		Name          string           `json:"name"`
		SelectedSeats string           `json:"selectedSeats"`
		TotalAmount   model.FlexAmount `json:"totalAmount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	ticket, err := h.Coordinator.Confirm(c.Request().Context(), booking.ConfirmRequest{
		TransactionID: body.TransactionID,
		Barcode:       body.Barcode,
		DBDate:        body.DBDate,
		CinemaRoom:    body.CinemaRoom,
		MovieTitle:    body.MovieTitle,
		HolderName:    body.Name,
		SelectedSeats: body.SelectedSeats,
		TotalAmount:   uint32(body.TotalAmount),
	})
	if err != nil {
		if errors.Is(err, booking.ErrSeatConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "some seats are already taken; please reselect"})
		}
		if errors.Is(err, booking.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "missing or malformed reservation fields"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to save transaction"})
	}

	// Publish off the request path; a broker outage must not fail a
	// committed booking.
	ev := queue.TicketConfirmedEvent{
		TicketID:    ticket.ID,
		Barcode:     ticket.Barcode,
		HolderName:  ticket.HolderName,
		MovieTitle:  ticket.Movie,
		CinemaRoom:  ticket.Room,
		ShowDate:    ticket.Date,
		Seats:       ticket.Seats,
		Amount:      ticket.Amount,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		// Detach from the request context; the response is already on
		// its way when this runs.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queuepublisher.PublishTicketConfirmed(ctx, ev); err != nil {
			log.Printf("booking: ticket.confirmed publish failed for %d: %v", ev.TicketID, err)
		}
	}()

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Transaction saved successfully"})
}

// OccupiedSeats handles GET /api/booking/occupied-seats.  Query params:
// movie, room and an optional date (MM/DD or MM/DD:HH).  Only confirmed
// tickets contribute; prepared holds never appear.
func (h *BookingHandler) OccupiedSeats(c echo.Context) error {
	movie := c.QueryParam("movie")
	room := c.QueryParam("room")
	date := c.QueryParam("date")
	seats, err := h.Availability.OccupiedSeats(c.Request().Context(), movie, room, date)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidKey) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "movie and room are required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to load occupied seats"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"occupied_seats": seats,
	})
}
