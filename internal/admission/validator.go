// Package admission implements the per-scan validation state machine and
// the single-slot mailbox that relays scan results to the polling gate
// display.  The check order is an observable contract: lookup, void,
// date, expiry, consumption, then the one mutating step.  Every deny
// path is read-only, so repeated deny-path scans are idempotent.
package admission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
	"github.com/iliyamo/reeliz-ticketing/internal/store"
)

// expiryWindow is how long after the showtime start a ticket stays
// scannable.  Arrival before the start is always allowed.
const expiryWindow = 2 * time.Hour

// DoorController actuates the physical gate.  The production controller
// publishes an unlock command for the hardware bridge; tests substitute
// a fake.
type DoorController interface {
	Unlock(ctx context.Context, room string) error
}

// Validator decides admit/deny for one barcode scan and mutates the
// ticket's scan-consumption counter on success.
type Validator struct {
	store store.TicketStore
	door  DoorController
}

// NewValidator wires a validator to the ticket store and door.
func NewValidator(ts store.TicketStore, door DoorController) *Validator {
	return &Validator{store: ts, door: door}
}

// Validate runs the scan state machine for a barcode at the given time.
// Domain denials come back as tagged results, never as errors; the error
// return is reserved for store unavailability, which an outer layer may
// retry.
func (v *Validator) Validate(ctx context.Context, barcode string, now time.Time) (model.ScanResult, error) {
	res := model.ScanResult{Status: "error", ScannedAt: now}

	// 1. Lookup by barcode.
	t, err := v.store.FindByBarcode(ctx, barcode)
	if errors.Is(err, store.ErrTicketNotFound) {
		res.ErrorType = model.ScanErrNotFound
		res.Message = "The scanned barcode does not match any ticket"
		return res, nil
	}
	if err != nil {
		return res, err
	}

	// 2. Voided tickets are rejected with their void reason.
	if t.Status == model.StatusVoid {
		res.ErrorType = model.ScanErrInvalid
		res.Message = "This ticket is not valid or has been cancelled"
		res.Remarks = t.VoidReason
		return res, nil
	}

	dc, err := model.ParseDateCode(t.Date)
	if err != nil {
		res.ErrorType = model.ScanErrInvalid
		res.Message = "Ticket carries an unreadable date"
		return res, nil
	}

	// 3. Calendar day must match today.
	switch dc.CompareDay(now) {
	case -1:
		res.ErrorType = model.ScanErrWrongDate
		res.Message = "This ticket is not valid for today"
		res.TicketDate = dc.DateOnly()
		res.Today = model.NewDateCode(now).DateOnly()
		return res, nil
	case 1:
		res.ErrorType = model.ScanErrFutureDate
		res.Message = "This ticket is for a future date"
		res.TicketDate = dc.DateOnly()
		return res, nil
	}

	// 4. Same day: valid until two hours past the showtime start.
	start := dc.ShowStart(now)
	if now.After(start.Add(expiryWindow)) {
		res.ErrorType = model.ScanErrExpired
		res.Message = "Tickets are only valid up to 2 hours after the showtime"
		res.Showtime = showtimeDisplay(dc.Hour)
		return res, nil
	}

	// 5. Every admission credit already used.
	if t.FullyScanned() {
		res.ErrorType = model.ScanErrAlreadyScanned
		res.Message = "All tickets for this barcode have already been scanned"
		return res, nil
	}

	// 6. Consume one credit.  A concurrent scan may win the race between
	// the check above and the increment; the store then reports the
	// ticket fully scanned and nothing was lost or double-applied.
	used, err := v.store.MarkScanned(ctx, t.ID)
	if errors.Is(err, store.ErrFullyScanned) {
		res.ErrorType = model.ScanErrAlreadyScanned
		res.Message = "All tickets for this barcode have already been scanned"
		return res, nil
	}
	if err != nil {
		return res, err
	}
	t.ScanConsumed = used

	info := &model.ScanInfo{
		CurrentScan:    used,
		TotalTickets:   len(t.Seats),
		ScansRemaining: len(t.Seats) - used,
		AllScanned:     used == len(t.Seats),
	}

	// 7. Actuate the door.  A failure here does not roll back the
	// consumed credit: replaying the barcode must never regain an
	// already-granted credit, so staff admit manually on door_error.
	if err := v.door.Unlock(ctx, t.Room); err != nil {
		log.Printf("admission: door unlock failed for room %s: %v", t.Room, err)
		res.ErrorType = model.ScanErrDoor
		res.Message = "Unable to open the door; the ticket is valid"
		res.Ticket = t.View()
		res.ScanInfo = info
		return res, nil
	}

	res.Status = "success"
	res.ErrorType = ""
	res.Ticket = t.View()
	res.DoorUnlocked = true
	res.ScanInfo = info
	return res, nil
}

// showtimeDisplay renders a start hour as "6:00 PM" for the expiry
// message on the gate display.
func showtimeDisplay(hour int) string {
	ampm := "AM"
	h := hour
	if h >= 12 {
		ampm = "PM"
	}
	h = h % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, ampm)
}
