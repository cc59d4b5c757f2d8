package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/reeliz-ticketing/internal/model"
)

func TestMailboxEmptyPoll(t *testing.T) {
	m := NewMailbox()
	_, ok := m.PollOnce()
	assert.False(t, ok)
}

func TestMailboxPollClearsSlot(t *testing.T) {
	m := NewMailbox()
	m.Publish(model.ScanResult{Status: "success", ScannedAt: time.Now()})

	res, ok := m.PollOnce()
	require.True(t, ok)
	assert.Equal(t, "success", res.Status)

	// The slot is consumed; the next poll sees nothing.
	_, ok = m.PollOnce()
	assert.False(t, ok)
}

func TestMailboxPublishOverwrites(t *testing.T) {
	m := NewMailbox()
	m.Publish(model.ScanResult{Status: "error", ErrorType: model.ScanErrNotFound})
	m.Publish(model.ScanResult{Status: "success"})

	res, ok := m.PollOnce()
	require.True(t, ok)
	// Only the newest result survives; the display never sees stale scans.
	assert.Equal(t, "success", res.Status)
	_, ok = m.PollOnce()
	assert.False(t, ok)
}
