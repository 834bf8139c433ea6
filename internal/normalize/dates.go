package normalize

import (
	"strings"
	"time"

	"github.com/gyeh/hcpnorm/internal/table"
)

// Date formats found in CRM and engagement extracts. Month-first only:
// "03/04/2024" is March 4th. Single-digit month and day layouts also
// accept zero-padded input, and a fractional second after the seconds
// field is accepted by every layout that has one.
var dateFormats = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2 15:04:05Z07:00",
	"2006-1-2 15:04:05-0700",
	"2006-1-2 15:04:05 -0700",
	"2006-1-2 15:04:05 MST",
	"2006-1-2T15:04:05Z07:00",
	"2006-1-2T15:04:05-0700",
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1-2-2006",
	"2006/1/2",
	"2006/1/2 15:04:05",
	"20060102",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"Mon Jan _2 15:04:05 2006",
}

// ParseDate attempts to parse a date string in multiple common formats.
// Returns nil if the input is empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, fmt := range dateFormats {
		if t, err := time.Parse(fmt, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseDay is ParseDate truncated to the calendar day.
func ParseDay(s string) *time.Time {
	t := ParseDate(s)
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// DateValue coerces a raw cell to a date cell. Time cells are truncated to
// the day, text goes through ParseDay, and everything unparseable
// becomes null.
func DateValue(v table.Value) table.Value {
	switch v.Kind() {
	case table.KindTime:
		t, _ := v.TimeValue()
		return table.Time(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	case table.KindString:
		return table.TimePtr(ParseDay(v.Str()))
	case table.KindInt:
		// yyyymmdd integers survive numeric inference on CSV read
		return table.TimePtr(ParseDay(v.String()))
	}
	return table.Null()
}
