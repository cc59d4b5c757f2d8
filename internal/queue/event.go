// Package queue defines the message payloads exchanged over the broker,
// the background consumer that appends confirmed tickets to
// logs/ticket.log, and the AMQP-backed door controller.
package queue

// TicketConfirmedEvent is published when a reservation is successfully
// confirmed.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type TicketConfirmedEvent struct {
	TicketID    uint64   `json:"ticket_id"`
	Barcode     string   `json:"barcode"`
	HolderName  string   `json:"name"`
	MovieTitle  string   `json:"movie_title"`
	CinemaRoom  string   `json:"room"`
	ShowDate    string   `json:"show_date"` // MM/DD:HH wire encoding
	Seats       []string `json:"seats"`
	Amount      uint32   `json:"amount"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// DoorUnlockCommand is published for the hardware bridge that drives the
// gate servos.  Room selects which door to open.
type DoorUnlockCommand struct {
	Room        string `json:"room"`
	RequestedAt string `json:"requested_at"`
}
