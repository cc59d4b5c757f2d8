package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
	"github.com/iliyamo/reeliz-ticketing/internal/store"
)

// ErrInvalidKey is returned for malformed showtime keys (empty movie or
// room, unparseable date).
var ErrInvalidKey = errors.New("invalid showtime key")

// Availability is the read-only projection over the ticket store that
// answers "which seats are occupied for a given screening".  Only
// confirmed tickets contribute; prepared holds are invisible.
type Availability struct {
	store store.TicketStore
}

// NewAvailability returns an Availability bound to the store.
func NewAvailability(ts store.TicketStore) *Availability {
	return &Availability{store: ts}
}

// OccupiedSeats returns the union of seat codes held by confirmed
// tickets for the movie/room pair.  A non-empty date restricts the query
// to that date (bare MM/DD matches any showtime hour that day, a full
// MM/DD:HH matches one screening exactly).  The result is de-duplicated
// but otherwise unordered.
func (a *Availability) OccupiedSeats(ctx context.Context, movie, room, date string) ([]string, error) {
	if movie == "" || room == "" {
		return nil, ErrInvalidKey
	}
	var dayOnly bool
	var dc model.DateCode
	if date != "" {
		var err error
		dc, err = model.ParseDateCode(date)
		if err != nil {
			return nil, ErrInvalidKey
		}
		dayOnly = !strings.Contains(date, ":")
	}

	// Exact codes can be filtered by the store; day-only filters need the
	// hour stripped here.
	filter := ""
	if date != "" && !dayOnly {
		filter = dc.String()
	}
	tickets, err := a.store.FindByShowtime(ctx, movie, room, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, t := range tickets {
		if dayOnly {
			tdc, err := model.ParseDateCode(t.Date)
			if err != nil || tdc.DateOnly() != dc.DateOnly() {
				continue
			}
		}
		for _, s := range t.Seats {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out, nil
}
