package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateCode(t *testing.T) {
	dc, err := ParseDateCode("11/10:14")
	require.NoError(t, err)
	assert.Equal(t, DateCode{Month: 11, Day: 10, Hour: 14}, dc)
	assert.Equal(t, "11/10:14", dc.String())
	assert.Equal(t, "11/10", dc.DateOnly())

	// The hour part is optional and defaults to 0.
	dc, err = ParseDateCode("01/05")
	require.NoError(t, err)
	assert.Equal(t, DateCode{Month: 1, Day: 5, Hour: 0}, dc)

	// Single-digit input renders zero-padded.
	dc, err = ParseDateCode("1/5:9")
	require.NoError(t, err)
	assert.Equal(t, "01/05:09", dc.String())
}

func TestParseDateCodeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "12", "12/", "/25", "13/01:10", "12/32:10", "12/25:24", "12/25:-1", "ab/cd:ef"} {
		_, err := ParseDateCode(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestDateCodeCompareDay(t *testing.T) {
	now := time.Date(2024, 12, 25, 18, 0, 0, 0, time.UTC)

	same, _ := ParseDateCode("12/25:10")
	assert.Equal(t, 0, same.CompareDay(now))

	past, _ := ParseDateCode("12/24:23")
	assert.Equal(t, -1, past.CompareDay(now))

	future, _ := ParseDateCode("12/26:00")
	assert.Equal(t, 1, future.CompareDay(now))

	prevMonth, _ := ParseDateCode("11/30:10")
	assert.Equal(t, -1, prevMonth.CompareDay(now))
}

func TestDateCodeShowStart(t *testing.T) {
	ref := time.Date(2024, 12, 25, 19, 45, 0, 0, time.UTC)
	dc, _ := ParseDateCode("12/25:18")
	assert.Equal(t, time.Date(2024, 12, 25, 18, 0, 0, 0, time.UTC), dc.ShowStart(ref))
}

func TestNewDateCodeMirrorsClock(t *testing.T) {
	dc := NewDateCode(time.Date(2024, 3, 7, 9, 15, 0, 0, time.UTC))
	assert.Equal(t, "03/07:09", dc.String())
}
