package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
	"github.com/iliyamo/reeliz-ticketing/internal/store"
)

func TestOccupiedSeatsRejectsBadKeys(t *testing.T) {
	av := NewAvailability(store.NewMemoryStore())
	ctx := context.Background()

	_, err := av.OccupiedSeats(ctx, "", "1", "12/25:18")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = av.OccupiedSeats(ctx, "Inception", "", "12/25:18")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = av.OccupiedSeats(ctx, "Inception", "1", "not-a-date")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestOccupiedSeatsDayFilterSpansShowtimes(t *testing.T) {
	ms := store.NewMemoryStore()
	seedTicket(t, ms, 1, "RLZ000001", "A1")
	require.NoError(t, ms.Insert(context.Background(), &model.Ticket{
		ID: 2, Barcode: "RLZ000002", Movie: "Inception", Room: "1",
		Date: "12/25:21", Seats: []string{"B1"}, Status: model.StatusConfirmed,
	}))
	require.NoError(t, ms.Insert(context.Background(), &model.Ticket{
		ID: 3, Barcode: "RLZ000003", Movie: "Inception", Room: "1",
		Date: "12/26:18", Seats: []string{"C1"}, Status: model.StatusConfirmed,
	}))

	av := NewAvailability(ms)

	// Bare MM/DD unions every screening of that day.
	occ, err := av.OccupiedSeats(context.Background(), "Inception", "1", "12/25")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "B1"}, occ)

	// Full MM/DD:HH pins one screening.
	occ, err = av.OccupiedSeats(context.Background(), "Inception", "1", "12/25:21")
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, occ)

	// No date at all unions everything for the movie/room pair.
	occ, err = av.OccupiedSeats(context.Background(), "Inception", "1", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "B1", "C1"}, occ)
}

func TestOccupiedSeatsExcludesVoidTickets(t *testing.T) {
	ms := store.NewMemoryStore()
	require.NoError(t, ms.Insert(context.Background(), &model.Ticket{
		ID: 1, Barcode: "RLZ000001", Movie: "Inception", Room: "1",
		Date: "12/25:18", Seats: []string{"A1"}, Status: model.StatusVoid,
		VoidReason: "refunded",
	}))

	av := NewAvailability(ms)
	occ, err := av.OccupiedSeats(context.Background(), "Inception", "1", "12/25:18")
	require.NoError(t, err)
	assert.Empty(t, occ)
}

func TestOccupiedSeatsDeduplicates(t *testing.T) {
	ms := store.NewMemoryStore()
	seedTicket(t, ms, 1, "RLZ000001", "A1, A2")
	require.NoError(t, ms.Insert(context.Background(), &model.Ticket{
		ID: 2, Barcode: "RLZ000002", Movie: "Inception", Room: "2",
		Date: "12/25:18", Seats: []string{"A1"}, Status: model.StatusConfirmed,
	}))

	av := NewAvailability(ms)
	occ, err := av.OccupiedSeats(context.Background(), "Inception", "1", "12/25:18")
	require.NoError(t, err)
	// Room 2's ticket does not leak into room 1's map.
	assert.ElementsMatch(t, []string{"A1", "A2"}, occ)
}
