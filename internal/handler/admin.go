package handler

import (
	"errors"   // sentinel comparisons
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/reeliz-ticketing/internal/booking"
	"github.com/iliyamo/reeliz-ticketing/internal/store"
)

// AdminHandler exposes the staff ticket views.  Routes using it are
// wrapped in JWT auth with the ADMIN role; the handlers themselves only
// deal with tickets.
type AdminHandler struct {
	Store       store.TicketStore
	Coordinator *booking.Coordinator
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(ts store.TicketStore, co *booking.Coordinator) *AdminHandler {
	if ts == nil || co == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Store: ts, Coordinator: co}
}

// ListTickets handles GET /api/admin/tickets.  It returns every stored
// ticket, newest first.
func (h *AdminHandler) ListTickets(c echo.Context) error {
	tickets, err := h.Store.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to load tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "tickets": tickets})
}

// DeleteTicket handles DELETE /api/admin/tickets/:id.  Deleting a ticket
// frees its id for reuse by the next prepare; the barcode stays burned
// so it can never be reissued.
func (h *AdminHandler) DeleteTicket(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid ticket id"})
	}
	if err := h.Store.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to delete ticket"})
	}
	// Drop any stale pending hold on the same id so the allocator state
	// stays consistent.
	h.Coordinator.Release(id)
	return c.NoContent(http.StatusNoContent)
}
