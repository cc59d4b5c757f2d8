package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TicketStatus enumerates the lifecycle states of a ticket.  A ticket is
// born PREPARED when an id and barcode are allocated, becomes CONFIRMED
// once payment completes and the record is durably written, and may be
// marked VOID by administrative action.  Only CONFIRMED tickets count
// toward seat occupancy.
type TicketStatus string

const (
	StatusPrepared  TicketStatus = "PREPARED"
	StatusConfirmed TicketStatus = "CONFIRMED"
	StatusVoid      TicketStatus = "VOID"
)

// Ticket is a paid admission record for one or more seats of a single
// screening.  The barcode is the sole lookup key at the gate; one physical
// scan consumes one seat's admission credit regardless of which seat code
// is printed on the stub.
//
// Fields:
//  ID           – transaction id; smallest free positive integer, reused
//                 after deletion.
//  Barcode      – opaque unique string, never reused.
//  HolderName   – name the booking was made under.
//  Movie        – movie title at time of booking.
//  Room         – cinema room identifier ("1", "2", ...).
//  Date         – MM/DD:HH wire encoding of booking date + showtime hour.
//  Seats        – seat codes covered by this ticket ("A1", "A2", ...).
//  Amount       – total paid.
//  Status       – lifecycle state (see TicketStatus).
//  VoidReason   – remarks explaining a VOID status, empty otherwise.
//  ScanConsumed – admission credits used so far, 0..len(Seats).
//  CreatedAt    – when the confirmed record was written.
type Ticket struct {
	ID           uint64       `json:"id"`
	Barcode      string       `json:"barcode"`
	HolderName   string       `json:"name"`
	Movie        string       `json:"movie"`
	Room         string       `json:"room"`
	Date         string       `json:"date"`
	Seats        []string     `json:"sits"`
	Amount       uint32       `json:"amount"`
	Status       TicketStatus `json:"status"`
	VoidReason   string       `json:"void_reason,omitempty"`
	ScanConsumed int          `json:"scan_consumed"`
	CreatedAt    time.Time    `json:"created_at"`
}

// FullyScanned reports whether every seat's admission credit is used.
func (t *Ticket) FullyScanned() bool {
	return len(t.Seats) > 0 && t.ScanConsumed >= len(t.Seats)
}

// SeatList renders the seats in the "A1, A2" wire form used by the
// booking endpoints and the transaction table.
func (t *Ticket) SeatList() string {
	return strings.Join(t.Seats, ", ")
}

// SplitSeats parses the "A1, A2" wire form into trimmed, de-duplicated
// seat codes.  Empty entries are dropped.
func SplitSeats(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Amount is sent as a bare number by newer clients and as a quoted string
// by the legacy booking page.  FlexAmount accepts both.
type FlexAmount uint32

// UnmarshalJSON implements json.Unmarshaler for FlexAmount.
func (a *FlexAmount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*a = FlexAmount(n)
	return nil
}

// MarshalJSON emits the numeric form.
func (a FlexAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint32(a))
}
