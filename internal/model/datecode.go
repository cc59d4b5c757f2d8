package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateCode is the wire encoding of a booking date and showtime start hour.
// The format is MM/DD:HH with a 24-hour hour and no year component, e.g.
// "11/10:14" for November 10th at 2 PM.  Tickets store this string in
// their date column and the admission validator parses it back when
// deciding wrong_date/future_date/expired outcomes.
type DateCode struct {
	Month int // 1..12
	Day   int // 1..31
	Hour  int // 0..23, showtime start hour
}

// ParseDateCode parses the MM/DD:HH encoding.  The hour part is optional;
// when absent the hour defaults to 0.  An error is returned for values
// outside the calendar ranges or non-numeric input.
func ParseDateCode(s string) (DateCode, error) {
	var dc DateCode
	datePart := s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		datePart = s[:i]
		h, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err != nil || h < 0 || h > 23 {
			return dc, fmt.Errorf("invalid hour in date code %q", s)
		}
		dc.Hour = h
	}
	md := strings.Split(datePart, "/")
	if len(md) != 2 {
		return dc, fmt.Errorf("invalid date code %q", s)
	}
	m, err1 := strconv.Atoi(strings.TrimSpace(md[0]))
	d, err2 := strconv.Atoi(strings.TrimSpace(md[1]))
	if err1 != nil || err2 != nil || m < 1 || m > 12 || d < 1 || d > 31 {
		return dc, fmt.Errorf("invalid date code %q", s)
	}
	dc.Month = m
	dc.Day = d
	return dc, nil
}

// NewDateCode builds a DateCode from a time.Time, mirroring the original
// strftime("%m/%d:%H") booking stamp.
func NewDateCode(t time.Time) DateCode {
	return DateCode{Month: int(t.Month()), Day: t.Day(), Hour: t.Hour()}
}

// String renders the MM/DD:HH wire form.
func (dc DateCode) String() string {
	return fmt.Sprintf("%02d/%02d:%02d", dc.Month, dc.Day, dc.Hour)
}

// DateOnly renders just the MM/DD part, used for same-day comparisons.
func (dc DateCode) DateOnly() string {
	return fmt.Sprintf("%02d/%02d", dc.Month, dc.Day)
}

// ShowStart anchors the code to a concrete instant within the year and
// location of the reference time.  Date codes carry no year, so the
// reference supplies it; admission only ever compares codes against the
// current clock, which makes this safe.
func (dc DateCode) ShowStart(ref time.Time) time.Time {
	return time.Date(ref.Year(), time.Month(dc.Month), dc.Day, dc.Hour, 0, 0, 0, ref.Location())
}

// CompareDay orders the calendar day of the code against the day of t.
// It returns -1 when the code's day is earlier, +1 when later and 0 when
// both fall on the same month and day.
func (dc DateCode) CompareDay(t time.Time) int {
	tm, td := int(t.Month()), t.Day()
	switch {
	case dc.Month != tm:
		if dc.Month < tm {
			return -1
		}
		return 1
	case dc.Day != td:
		if dc.Day < td {
			return -1
		}
		return 1
	default:
		return 0
	}
}
