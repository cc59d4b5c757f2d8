// Package booking implements the two-phase reservation protocol.  A
// prepare call allocates a transaction id and barcode without touching
// seat occupancy or durable storage; a confirm call re-validates the
// seat selection against confirmed tickets and writes the record
// atomically.  Seat selection and payment are separated by unbounded
// human time, so the protocol is optimistic: conflicts are detected at
// commit, never prevented in advance.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
	"github.com/iliyamo/reeliz-ticketing/internal/store"
)

// barcodePrefix and maxTicketID bound the id/barcode space.  Barcodes
// render as RLZ + zero-padded six digits, e.g. RLZ000005.
const (
	barcodePrefix = "RLZ"
	maxTicketID   = 999999
)

// ErrAllocationExhausted is returned by Prepare when no free ticket id
// remains.  This is fatal and surfaced to the caller.
var ErrAllocationExhausted = errors.New("ticket id space exhausted")

// ErrSeatConflict is returned by Confirm when at least one requested
// seat is already held by a different confirmed ticket for the same
// showtime.  The caller must restart from seat selection.
var ErrSeatConflict = errors.New("seat already taken")

// ErrInvalidRequest is returned when a prepare or confirm request is
// structurally malformed (empty room, no seats, bad date code).
var ErrInvalidRequest = errors.New("invalid booking request")

// Hold is a prepared-but-not-confirmed allocation.  It exists only in
// coordinator memory; an abandoned hold leaves no durable trace and its
// id is released once the hold expires.
type Hold struct {
	TicketID  uint64
	Barcode   string
	DBDate    string // MM/DD:HH stamp returned to the client
	ExpiresAt time.Time
}

// PrepareRequest carries the fields of the prepare wire call.  Showtime
// is optional; when absent the stamp hour falls back to the current
// clock hour, matching the legacy booking stamp.
type PrepareRequest struct {
	SelectedDate string // "MM/DD" or full "MM/DD:HH"
	Showtime     string // "HH" 24-hour start hour, optional
	CinemaRoom   string
	TotalAmount  uint32
}

// ConfirmRequest carries the fields of the confirm wire call.
type ConfirmRequest struct {
	TransactionID uint64
	Barcode       string
	DBDate        string
	CinemaRoom    string
	MovieTitle    string
	HolderName    string
	SelectedSeats string // "A1, A2"
	TotalAmount   uint32
}

// Coordinator owns the id/barcode allocator, the pending-hold table and
// the per-showtime confirm locks.  All allocation state is guarded by a
// single mutex so concurrent prepares can never share an id or barcode.
type Coordinator struct {
	store   store.TicketStore
	holdTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	pending map[uint64]*Hold    // id → live hold
	burned  map[string]struct{} // barcodes issued by this process, never reused

	keyMu sync.Mutex
	keys  map[string]*showtimeLock // showtime key → confirm lock, evicted when idle
}

// showtimeLock serializes confirms for one showtime key.  refs counts
// goroutines holding or waiting on the mutex; the table entry is dropped
// once the last one releases, so the map is bounded by in-flight
// confirms rather than every showtime ever seen.
type showtimeLock struct {
	mu   sync.Mutex
	refs int
}

// NewCoordinator wires a coordinator to the ticket store.  holdTTL
// bounds how long an unconfirmed prepare keeps its id reserved; zero
// selects the 30 minute default.
func NewCoordinator(ts store.TicketStore, holdTTL time.Duration) *Coordinator {
	if holdTTL <= 0 {
		holdTTL = 30 * time.Minute
	}
	return &Coordinator{
		store:   ts,
		holdTTL: holdTTL,
		now:     time.Now,
		pending: make(map[uint64]*Hold),
		burned:  make(map[string]struct{}),
		keys:    make(map[string]*showtimeLock),
	}
}

// Prepare allocates the lowest free ticket id and mints a fresh unique
// barcode.  No seat-occupancy check and no durable write happen here;
// the caller may silently abandon the returned hold.
func (co *Coordinator) Prepare(ctx context.Context, req PrepareRequest) (*Hold, error) {
	if req.CinemaRoom == "" || req.SelectedDate == "" {
		return nil, ErrInvalidRequest
	}
	dbDate, err := co.stampFor(req)
	if err != nil {
		return nil, err
	}

	co.mu.Lock()
	defer co.mu.Unlock()
	co.expireHoldsLocked()

	ids, err := co.store.ActiveIDs(ctx)
	if err != nil {
		return nil, err
	}
	id, err := co.lowestFreeIDLocked(ids)
	if err != nil {
		return nil, err
	}
	code, err := co.mintBarcodeLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	h := &Hold{
		TicketID:  id,
		Barcode:   code,
		DBDate:    dbDate,
		ExpiresAt: co.now().Add(co.holdTTL),
	}
	co.pending[id] = h
	co.burned[code] = struct{}{}
	return h, nil
}

// Confirm re-validates the seat selection at commit time and persists
// the confirmed ticket.  All confirms touching the same showtime key
// serialize through one mutex so two concurrent confirms can never both
// read a stale occupied set and succeed for the same seat.
func (co *Coordinator) Confirm(ctx context.Context, req ConfirmRequest) (*model.Ticket, error) {
	seats := model.SplitSeats(req.SelectedSeats)
	if req.TransactionID == 0 || req.Barcode == "" || req.CinemaRoom == "" || len(seats) == 0 {
		return nil, ErrInvalidRequest
	}
	if _, err := model.ParseDateCode(req.DBDate); err != nil {
		return nil, ErrInvalidRequest
	}

	key := showtimeKey(req.MovieTitle, req.CinemaRoom, req.DBDate)
	lock := co.acquireKey(key)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		co.releaseKey(key)
	}()

	occupied, err := co.store.FindByShowtime(ctx, req.MovieTitle, req.CinemaRoom, req.DBDate)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{})
	for _, t := range occupied {
		if t.ID == req.TransactionID {
			continue
		}
		for _, s := range t.Seats {
			taken[s] = struct{}{}
		}
	}
	for _, s := range seats {
		if _, ok := taken[s]; ok {
			return nil, ErrSeatConflict
		}
	}

	ticket := &model.Ticket{
		ID:         req.TransactionID,
		Barcode:    req.Barcode,
		HolderName: req.HolderName,
		Movie:      req.MovieTitle,
		Room:       req.CinemaRoom,
		Date:       req.DBDate,
		Seats:      seats,
		Amount:     req.TotalAmount,
		Status:     model.StatusConfirmed,
		CreatedAt:  co.now().UTC(),
	}
	if err := co.store.Insert(ctx, ticket); err != nil {
		return nil, err
	}

	co.mu.Lock()
	delete(co.pending, req.TransactionID)
	co.mu.Unlock()
	return ticket, nil
}

// Release drops the pending hold for an abandoned prepare, freeing the
// id immediately instead of waiting for the TTL.  The barcode stays
// burned.  Unknown ids are ignored.
func (co *Coordinator) Release(id uint64) {
	co.mu.Lock()
	delete(co.pending, id)
	co.mu.Unlock()
}

// ExpireHolds drops every pending hold past its TTL and returns how many
// were released.  cmd/server runs this on a ticker.
func (co *Coordinator) ExpireHolds() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.expireHoldsLocked()
}

func (co *Coordinator) expireHoldsLocked() int {
	now := co.now()
	n := 0
	for id, h := range co.pending {
		if now.After(h.ExpiresAt) {
			delete(co.pending, id)
			n++
		}
	}
	return n
}

// lowestFreeIDLocked scans active ids in increasing order and returns
// the first gap, starting at 1.  Pending holds count as active.
func (co *Coordinator) lowestFreeIDLocked(active []uint64) (uint64, error) {
	used := make(map[uint64]struct{}, len(active)+len(co.pending))
	for _, id := range active {
		used[id] = struct{}{}
	}
	for id := range co.pending {
		used[id] = struct{}{}
	}
	for id := uint64(1); id <= maxTicketID; id++ {
		if _, ok := used[id]; !ok {
			return id, nil
		}
	}
	return 0, ErrAllocationExhausted
}

// mintBarcodeLocked builds the RLZ-prefixed candidate from the ticket id
// and probes upward over the numeric suffix until the code collides with
// neither the store nor any barcode this process has issued.  Reused ids
// therefore still receive globally unique barcodes.
func (co *Coordinator) mintBarcodeLocked(ctx context.Context, id uint64) (string, error) {
	for n := id; ; n++ {
		code := fmt.Sprintf("%s%06d", barcodePrefix, n)
		if _, ok := co.burned[code]; ok {
			continue
		}
		exists, err := co.store.BarcodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

// stampFor renders the MM/DD:HH stamp for a prepare request.  A full
// date code passes through untouched; a bare MM/DD gets the requested
// showtime hour, or the current clock hour when none was sent.
func (co *Coordinator) stampFor(req PrepareRequest) (string, error) {
	dc, err := model.ParseDateCode(req.SelectedDate)
	if err != nil {
		return "", ErrInvalidRequest
	}
	if !strings.Contains(req.SelectedDate, ":") {
		if req.Showtime != "" {
			sc, err := model.ParseDateCode(req.SelectedDate + ":" + req.Showtime)
			if err != nil {
				return "", ErrInvalidRequest
			}
			dc.Hour = sc.Hour
		} else {
			dc.Hour = co.now().Hour()
		}
	}
	return dc.String(), nil
}

// acquireKey returns the confirm lock for the key, creating it on first
// use and counting the caller as a holder.
func (co *Coordinator) acquireKey(key string) *showtimeLock {
	co.keyMu.Lock()
	defer co.keyMu.Unlock()
	l, ok := co.keys[key]
	if !ok {
		l = &showtimeLock{}
		co.keys[key] = l
	}
	l.refs++
	return l
}

// releaseKey drops the caller's reference and evicts the entry once no
// goroutine holds or waits on it.  An evicted lock is only ever replaced
// after its last holder is gone, so a key never has two live mutexes.
func (co *Coordinator) releaseKey(key string) {
	co.keyMu.Lock()
	defer co.keyMu.Unlock()
	l, ok := co.keys[key]
	if !ok {
		return
	}
	l.refs--
	if l.refs <= 0 {
		delete(co.keys, key)
	}
}

func showtimeKey(movie, room, dateCode string) string {
	return movie + "|" + room + "|" + dateCode
}
