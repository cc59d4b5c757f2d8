package admission

import (
	"sync"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
)

// Mailbox is the single-slot channel between the hardware scan producer
// and the polling gate display.  Publish overwrites any unconsumed
// result; PollOnce atomically returns and clears the slot.  Capping the
// mailbox at one pending result bounds memory and avoids a stale
// backlog: if two scans land between two polls the older one is
// dropped, and physical foot traffic rate-limits that in practice.
type Mailbox struct {
	mu   sync.Mutex
	slot *model.ScanResult
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox { return &Mailbox{} }

// Publish places a result in the slot, replacing whatever was there.
func (m *Mailbox) Publish(r model.ScanResult) {
	m.mu.Lock()
	m.slot = &r
	m.mu.Unlock()
}

// PollOnce returns the pending result and clears the slot.  The second
// return is false when no scan is pending.  It never blocks.
func (m *Mailbox) PollOnce() (model.ScanResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot == nil {
		return model.ScanResult{}, false
	}
	r := *m.slot
	m.slot = nil
	return r, true
}
