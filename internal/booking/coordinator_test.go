package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
	"github.com/iliyamo/reeliz-ticketing/internal/store"
)

func seedTicket(t *testing.T, ts store.TicketStore, id uint64, barcode, seats string) {
	t.Helper()
	err := ts.Insert(context.Background(), &model.Ticket{
		ID:      id,
		Barcode: barcode,
		Movie:   "Inception",
		Room:    "1",
		Date:    "12/25:18",
		Seats:   model.SplitSeats(seats),
		Amount:  30,
		Status:  model.StatusConfirmed,
	})
	require.NoError(t, err)
}

func TestPrepareAllocatesLowestFreeID(t *testing.T) {
	ms := store.NewMemoryStore()
	seedTicket(t, ms, 1, "RLZ000001", "A1")
	seedTicket(t, ms, 2, "RLZ000002", "A2")
	seedTicket(t, ms, 4, "RLZ000004", "A4")

	co := NewCoordinator(ms, time.Minute)
	h, err := co.Prepare(context.Background(), PrepareRequest{
		SelectedDate: "12/25:18",
		CinemaRoom:   "1",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), h.TicketID)
	assert.Equal(t, "RLZ000003", h.Barcode)
	assert.Equal(t, "12/25:18", h.DBDate)
}

func TestPrepareSkipsPendingHolds(t *testing.T) {
	ms := store.NewMemoryStore()
	co := NewCoordinator(ms, time.Minute)

	h1, err := co.Prepare(context.Background(), PrepareRequest{SelectedDate: "12/25:18", CinemaRoom: "1"})
	require.NoError(t, err)
	h2, err := co.Prepare(context.Background(), PrepareRequest{SelectedDate: "12/25:18", CinemaRoom: "1"})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), h1.TicketID)
	assert.Equal(t, uint64(2), h2.TicketID)
	assert.NotEqual(t, h1.Barcode, h2.Barcode)
}

func TestPrepareMintsFreshBarcodeForReusedID(t *testing.T) {
	ms := store.NewMemoryStore()
	co := NewCoordinator(ms, time.Minute)
	ctx := context.Background()

	h, err := co.Prepare(ctx, PrepareRequest{SelectedDate: "12/25:18", CinemaRoom: "1"})
	require.NoError(t, err)
	_, err = co.Confirm(ctx, ConfirmRequest{
		TransactionID: h.TicketID, Barcode: h.Barcode, DBDate: h.DBDate,
		CinemaRoom: "1", MovieTitle: "Inception", HolderName: "Ada",
		SelectedSeats: "A1", TotalAmount: 15,
	})
	require.NoError(t, err)

	// Delete frees the id; the barcode must stay burned.
	require.NoError(t, ms.Delete(ctx, h.TicketID))
	co.Release(h.TicketID)

	h2, err := co.Prepare(ctx, PrepareRequest{SelectedDate: "12/25:18", CinemaRoom: "1"})
	require.NoError(t, err)
	assert.Equal(t, h.TicketID, h2.TicketID)
	assert.NotEqual(t, h.Barcode, h2.Barcode)
	assert.Equal(t, "RLZ000002", h2.Barcode)
}

func TestPrepareStampHourFallbacks(t *testing.T) {
	ms := store.NewMemoryStore()
	co := NewCoordinator(ms, time.Minute)
	co.now = func() time.Time {
		return time.Date(2024, 12, 25, 14, 30, 0, 0, time.UTC)
	}

	h, err := co.Prepare(context.Background(), PrepareRequest{SelectedDate: "12/25", Showtime: "18", CinemaRoom: "1"})
	require.NoError(t, err)
	assert.Equal(t, "12/25:18", h.DBDate)

	h, err = co.Prepare(context.Background(), PrepareRequest{SelectedDate: "12/25", CinemaRoom: "1"})
	require.NoError(t, err)
	assert.Equal(t, "12/25:14", h.DBDate)
}

func TestPrepareRejectsMalformedRequests(t *testing.T) {
	co := NewCoordinator(store.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	_, err := co.Prepare(ctx, PrepareRequest{SelectedDate: "12/25:18"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = co.Prepare(ctx, PrepareRequest{CinemaRoom: "1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = co.Prepare(ctx, PrepareRequest{SelectedDate: "13/40:99", CinemaRoom: "1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestConfirmDetectsSeatConflict(t *testing.T) {
	ms := store.NewMemoryStore()
	seedTicket(t, ms, 1, "RLZ000001", "A1, A2")

	co := NewCoordinator(ms, time.Minute)
	_, err := co.Confirm(context.Background(), ConfirmRequest{
		TransactionID: 2, Barcode: "RLZ000002", DBDate: "12/25:18",
		CinemaRoom: "1", MovieTitle: "Inception", HolderName: "Bob",
		SelectedSeats: "A2, A3", TotalAmount: 30,
	})
	assert.ErrorIs(t, err, ErrSeatConflict)

	// The conflicting confirm must leave nothing behind.
	_, err = ms.FindByBarcode(context.Background(), "RLZ000002")
	assert.ErrorIs(t, err, store.ErrTicketNotFound)
}

func TestConfirmIgnoresOtherShowtimes(t *testing.T) {
	ms := store.NewMemoryStore()
	seedTicket(t, ms, 1, "RLZ000001", "A1")

	co := NewCoordinator(ms, time.Minute)
	// Same seat, same room, different hour: no conflict.
	tk, err := co.Confirm(context.Background(), ConfirmRequest{
		TransactionID: 2, Barcode: "RLZ000002", DBDate: "12/25:21",
		CinemaRoom: "1", MovieTitle: "Inception", HolderName: "Bob",
		SelectedSeats: "A1", TotalAmount: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, tk.Status)
}

func TestConcurrentConfirmsSameSeatOneWins(t *testing.T) {
	ms := store.NewMemoryStore()
	co := NewCoordinator(ms, time.Minute)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = co.Confirm(context.Background(), ConfirmRequest{
				TransactionID: uint64(i + 1),
				Barcode:       "RLZ00000" + string(rune('1'+i)),
				DBDate:        "12/25:18",
				CinemaRoom:    "1",
				MovieTitle:    "Inception",
				HolderName:    "racer",
				SelectedSeats: "B5",
				TotalAmount:   15,
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrSeatConflict)
		}
	}
	assert.Equal(t, 1, won, "exactly one confirm may win the seat")
}

func TestPrepareConfirmRoundTrip(t *testing.T) {
	ms := store.NewMemoryStore()
	co := NewCoordinator(ms, time.Minute)
	av := NewAvailability(ms)
	ctx := context.Background()

	h, err := co.Prepare(ctx, PrepareRequest{SelectedDate: "12/25", Showtime: "18", CinemaRoom: "1"})
	require.NoError(t, err)

	// Prepared holds are invisible to occupancy.
	occ, err := av.OccupiedSeats(ctx, "Inception", "1", "12/25:18")
	require.NoError(t, err)
	assert.Empty(t, occ)

	tk, err := co.Confirm(ctx, ConfirmRequest{
		TransactionID: h.TicketID, Barcode: h.Barcode, DBDate: h.DBDate,
		CinemaRoom: "1", MovieTitle: "Inception", HolderName: "Ada",
		SelectedSeats: "A1, A2", TotalAmount: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, tk.Seats)

	occ, err = av.OccupiedSeats(ctx, "Inception", "1", "12/25:18")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A1", "A2"}, occ)

	// A second booking for an already-sold seat fails at commit.
	h2, err := co.Prepare(ctx, PrepareRequest{SelectedDate: "12/25", Showtime: "18", CinemaRoom: "1"})
	require.NoError(t, err)
	_, err = co.Confirm(ctx, ConfirmRequest{
		TransactionID: h2.TicketID, Barcode: h2.Barcode, DBDate: h2.DBDate,
		CinemaRoom: "1", MovieTitle: "Inception", HolderName: "Bob",
		SelectedSeats: "A1", TotalAmount: 15,
	})
	assert.ErrorIs(t, err, ErrSeatConflict)
}

func TestExpireHoldsReleasesIDs(t *testing.T) {
	ms := store.NewMemoryStore()
	co := NewCoordinator(ms, time.Minute)

	base := time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC)
	co.now = func() time.Time { return base }

	h, err := co.Prepare(context.Background(), PrepareRequest{SelectedDate: "12/25:18", CinemaRoom: "1"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), h.TicketID)

	// Within the TTL the id stays reserved.
	assert.Equal(t, 0, co.ExpireHolds())

	co.now = func() time.Time { return base.Add(2 * time.Minute) }
	assert.Equal(t, 1, co.ExpireHolds())

	h2, err := co.Prepare(context.Background(), PrepareRequest{SelectedDate: "12/25:18", CinemaRoom: "1"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), h2.TicketID)
	// Barcodes never come back, even from expired holds.
	assert.NotEqual(t, h.Barcode, h2.Barcode)
}

func TestBarcodeStaysBurnedAcrossRestart(t *testing.T) {
	ms := store.NewMemoryStore()
	ctx := context.Background()

	co := NewCoordinator(ms, time.Minute)
	h, err := co.Prepare(ctx, PrepareRequest{SelectedDate: "12/25:18", CinemaRoom: "1"})
	require.NoError(t, err)
	_, err = co.Confirm(ctx, ConfirmRequest{
		TransactionID: h.TicketID, Barcode: h.Barcode, DBDate: h.DBDate,
		CinemaRoom: "1", MovieTitle: "Inception", HolderName: "Ada",
		SelectedSeats: "A1", TotalAmount: 15,
	})
	require.NoError(t, err)
	require.NoError(t, ms.Delete(ctx, h.TicketID))

	// A fresh coordinator over the same store has no in-process burn
	// memory; the store's issued ledger alone must keep the deleted
	// ticket's barcode off the mint path.
	co2 := NewCoordinator(ms, time.Minute)
	h2, err := co2.Prepare(ctx, PrepareRequest{SelectedDate: "12/25:18", CinemaRoom: "1"})
	require.NoError(t, err)
	assert.Equal(t, h.TicketID, h2.TicketID)
	assert.NotEqual(t, h.Barcode, h2.Barcode)
}

func TestConfirmLockTableEvictsIdleKeys(t *testing.T) {
	ms := store.NewMemoryStore()
	co := NewCoordinator(ms, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := co.Confirm(ctx, ConfirmRequest{
			TransactionID: uint64(i + 1),
			Barcode:       fmt.Sprintf("RLZ%06d", i+1),
			DBDate:        fmt.Sprintf("12/%02d:18", 20+i),
			CinemaRoom:    "1",
			MovieTitle:    "Inception",
			HolderName:    "Ada",
			SelectedSeats: "A1",
			TotalAmount:   15,
		})
		require.NoError(t, err)
	}

	// Each confirm releases its showtime lock on the way out; the table
	// only holds entries for in-flight confirms.
	co.keyMu.Lock()
	n := len(co.keys)
	co.keyMu.Unlock()
	assert.Equal(t, 0, n)
}

func TestConfirmRejectsMalformedRequests(t *testing.T) {
	co := NewCoordinator(store.NewMemoryStore(), time.Minute)
	ctx := context.Background()

	cases := []ConfirmRequest{
		{Barcode: "RLZ000001", DBDate: "12/25:18", CinemaRoom: "1", SelectedSeats: "A1"},   // missing id
		{TransactionID: 1, DBDate: "12/25:18", CinemaRoom: "1", SelectedSeats: "A1"},       // missing barcode
		{TransactionID: 1, Barcode: "RLZ000001", DBDate: "12/25:18", CinemaRoom: "1"},      // no seats
		{TransactionID: 1, Barcode: "RLZ000001", DBDate: "garbage", CinemaRoom: "1", SelectedSeats: "A1"},
	}
	for _, req := range cases {
		_, err := co.Confirm(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}
