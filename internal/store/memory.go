package store

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
)

// MemoryStore is an in-process TicketStore.  It is the explicit
// process-wide state object for deployments without a database and the
// backend used by the unit tests.  A single RWMutex guards the maps;
// per-id linearizability follows because every mutation holds the write
// lock for the whole read-modify-write.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[uint64]*model.Ticket
	byCode   map[string]uint64
	issued   map[string]struct{} // every barcode ever inserted, survives Delete
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[uint64]*model.Ticket),
		byCode: make(map[string]uint64),
		issued: make(map[string]struct{}),
	}
}

// Insert stores a copy of the ticket.
func (s *MemoryStore) Insert(ctx context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[t.ID]; ok {
		return ErrDuplicateID
	}
	if _, ok := s.issued[t.Barcode]; ok {
		return ErrDuplicateBarcode
	}
	cp := *t
	cp.Seats = append([]string(nil), t.Seats...)
	s.byID[t.ID] = &cp
	s.byCode[t.Barcode] = t.ID
	s.issued[t.Barcode] = struct{}{}
	return nil
}

// FindByBarcode returns a copy of the matching ticket.
func (s *MemoryStore) FindByBarcode(ctx context.Context, barcode string) (*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[barcode]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return copyTicket(s.byID[id]), nil
}

// FindByShowtime filters confirmed tickets by movie, room and optional
// date code.
func (s *MemoryStore) FindByShowtime(ctx context.Context, movie, room, dateCode string) ([]*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Ticket
	for _, t := range s.byID {
		if t.Status != model.StatusConfirmed {
			continue
		}
		if t.Movie != movie || t.Room != room {
			continue
		}
		if dateCode != "" && t.Date != dateCode {
			continue
		}
		out = append(out, copyTicket(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MarkScanned consumes one admission credit.
func (s *MemoryStore) MarkScanned(ctx context.Context, id uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return 0, ErrTicketNotFound
	}
	if t.ScanConsumed >= len(t.Seats) {
		return t.ScanConsumed, ErrFullyScanned
	}
	t.ScanConsumed++
	return t.ScanConsumed, nil
}

// ActiveIDs returns all ticket ids in ascending order.
func (s *MemoryStore) ActiveIDs(ctx context.Context) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// BarcodeExists reports whether the barcode was ever inserted.
func (s *MemoryStore) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.issued[barcode]
	return ok, nil
}

// ListAll returns every ticket, newest id first.
func (s *MemoryStore) ListAll(ctx context.Context) ([]*model.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Ticket, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, copyTicket(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Delete removes the ticket.  The barcode remains in the issued set so
// it is never minted again.
func (s *MemoryStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return ErrTicketNotFound
	}
	delete(s.byCode, t.Barcode)
	delete(s.byID, id)
	return nil
}

func copyTicket(t *model.Ticket) *model.Ticket {
	cp := *t
	cp.Seats = append([]string(nil), t.Seats...)
	return &cp
}
