// Package store defines the durable ticket store used by the booking
// coordinator and the admission validator.  The store owns the
// barcode→ticket index and the per-ticket scan-consumption counters.
// Implementations must make every mutating call on a given ticket id
// linearizable with respect to other calls on the same id; calls touching
// different ids need no shared lock.
package store

import (
	"context"
	"errors"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
)

// ErrTicketNotFound is returned when no ticket matches the given id or
// barcode.  Handlers translate it into not_found scan results or 404s.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrDuplicateID is returned by Insert when the ticket id is already
// held by an active ticket.
var ErrDuplicateID = errors.New("ticket id already in use")

// ErrDuplicateBarcode is returned by Insert when the barcode has already
// been issued.
var ErrDuplicateBarcode = errors.New("barcode already issued")

// ErrFullyScanned is returned by MarkScanned when every admission credit
// on the ticket has already been consumed.
var ErrFullyScanned = errors.New("all seats already scanned")

// TicketStore is the abstract persistence boundary.  The booking and
// admission layers depend only on this interface; the concrete backend
// (MySQL in production, memory in tests) is wired in cmd/server.
type TicketStore interface {
	// Insert durably writes a ticket.  The id and barcode must be unused.
	Insert(ctx context.Context, t *model.Ticket) error

	// FindByBarcode returns the ticket carrying the barcode, or
	// ErrTicketNotFound.
	FindByBarcode(ctx context.Context, barcode string) (*model.Ticket, error)

	// FindByShowtime returns confirmed tickets for the movie/room pair.
	// A non-empty dateCode restricts results to that exact MM/DD:HH code;
	// an empty dateCode matches every date.
	FindByShowtime(ctx context.Context, movie, room, dateCode string) ([]*model.Ticket, error)

	// MarkScanned atomically consumes one admission credit on the ticket
	// and returns the updated count.  It returns ErrFullyScanned without
	// mutating anything when no credit remains, so concurrent scans of
	// the same barcode can never overshoot len(Seats).
	MarkScanned(ctx context.Context, id uint64) (int, error)

	// ActiveIDs returns the ids of all stored tickets in ascending order.
	// The coordinator merges these with its pending holds when scanning
	// for the lowest free id.
	ActiveIDs(ctx context.Context) ([]uint64, error)

	// BarcodeExists reports whether the barcode is present in the store.
	BarcodeExists(ctx context.Context, barcode string) (bool, error)

	// ListAll returns every stored ticket, newest id first.  Used by the
	// staff listing endpoint.
	ListAll(ctx context.Context) ([]*model.Ticket, error)

	// Delete removes a ticket, freeing its id for reuse.  The barcode
	// stays burned at the coordinator level.
	Delete(ctx context.Context, id uint64) error
}
