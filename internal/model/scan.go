package model

import "time"

// Scan outcome error types.  The gate display keys its templated
// messages off these values, so they are part of the wire contract.
const (
	ScanErrNotFound       = "not_found"
	ScanErrInvalid        = "invalid"
	ScanErrWrongDate      = "wrong_date"
	ScanErrFutureDate     = "future_date"
	ScanErrExpired        = "expired"
	ScanErrAlreadyScanned = "already_scanned"
	ScanErrDoor           = "door_error"
)

// ScanInfo summarises admission-credit consumption after a successful
// scan of a multi-seat ticket.
type ScanInfo struct {
	CurrentScan    int  `json:"current_scan"`    // credits used including this scan
	TotalTickets   int  `json:"total_tickets"`   // seats on the barcode
	ScansRemaining int  `json:"scans_remaining"` // credits left
	AllScanned     bool `json:"all_scanned"`     // entry complete
}

// TicketView is the subset of a ticket shown on the gate display.
type TicketView struct {
	Name    string `json:"name"`
	Barcode string `json:"barcode"`
	Room    string `json:"room"`
	Movie   string `json:"movie"`
	Seats   string `json:"sits"`
	Date    string `json:"date"`
}

// ScanResult is the transient outcome of one physical scan.  It lives in
// the scan mailbox until the display polls it and is never persisted.
// Status is "success" or "error"; on error ErrorType selects the display
// template and the remaining optional fields fill it in.
type ScanResult struct {
	Status       string     `json:"status"`
	Ticket       *TicketView `json:"ticket,omitempty"`
	DoorUnlocked bool       `json:"door_unlocked,omitempty"`
	ScanInfo     *ScanInfo  `json:"scan_info,omitempty"`
	ErrorType    string     `json:"error_type,omitempty"`
	Message      string     `json:"message,omitempty"`
	Showtime     string     `json:"showtime,omitempty"`    // original showtime, set on expired
	TicketDate   string     `json:"ticket_date,omitempty"` // set on wrong_date/future_date
	Today        string     `json:"today,omitempty"`       // set on wrong_date
	Remarks      string     `json:"remarks,omitempty"`     // set on invalid (void reason)
	ScannedAt    time.Time  `json:"scanned_at"`
}

// View projects a ticket into its gate-display form.
func (t *Ticket) View() *TicketView {
	return &TicketView{
		Name:    t.HolderName,
		Barcode: t.Barcode,
		Room:    t.Room,
		Movie:   t.Movie,
		Seats:   t.SeatList(),
		Date:    t.Date,
	}
}
