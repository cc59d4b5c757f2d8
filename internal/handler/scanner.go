package handler

import (
	"net/http" // HTTP status codes
	"time"     // scan timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/reeliz-ticketing/internal/admission"
)

// ScannerHandler bridges the hardware barcode scanner and the polling
// gate display.  Scan runs the admission state machine and drops the
// result into the single-slot mailbox; Poll atomically drains it.  The
// display client polls every 500ms, so a result is picked up well before
// the next patron reaches the gate.
type ScannerHandler struct {
	Validator *admission.Validator
	Mailbox   *admission.Mailbox
}

// NewScannerHandler constructs a ScannerHandler.  Both dependencies must
// be non-nil.
func NewScannerHandler(v *admission.Validator, m *admission.Mailbox) *ScannerHandler {
	if v == nil || m == nil {
		panic("nil dependency passed to NewScannerHandler")
	}
	return &ScannerHandler{Validator: v, Mailbox: m}
}

// Scan handles POST /api/scanner/scan, the ingest endpoint the hardware
// bridge posts decoded barcodes to.  Every domain outcome, success or
// any denial, is published to the mailbox for the display and echoed in
// the response; only store unavailability yields a 500.
func (h *ScannerHandler) Scan(c echo.Context) error {
	var body struct {
		Barcode string `json:"barcode"`
	}
	if err := c.Bind(&body); err != nil || body.Barcode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "barcode is required"})
	}
	result, err := h.Validator.Validate(c.Request().Context(), body.Barcode, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "ticket store unavailable"})
	}
	h.Mailbox.Publish(result)
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"scan_result": result,
	})
}

// Poll handles GET /api/scanner/poll for the gate display.  It returns
// the pending scan result, clearing the slot, or has_scan:false when
// nothing happened since the last poll.  It never blocks.
func (h *ScannerHandler) Poll(c echo.Context) error {
	result, ok := h.Mailbox.PollOnce()
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"has_scan": false})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"has_scan":    true,
		"scan_result": result,
	})
}
