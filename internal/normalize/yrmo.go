package normalize

import (
	"time"

	"github.com/gyeh/hcpnorm/internal/table"
)

// YRMOColumn is the derived year-month key column.
const YRMOColumn = "YRMO"

const yrmoLayout = "2006-01"

// YRMO returns the "YYYY-MM" key of a date cell, or null when the cell
// is not a parseable date.
func YRMO(v table.Value) table.Value {
	d := DateValue(v)
	t, ok := d.TimeValue()
	if !ok {
		return table.Null()
	}
	return table.String(t.Format(yrmoLayout))
}

// AddYRMO derives YRMO from dateCol. The key is always computed from the
// row's own date, never read from the source.
func AddYRMO(t *table.Table, dateCol string) (*table.Table, error) {
	if err := t.Require(dateCol); err != nil {
		return nil, err
	}
	return t.With(YRMOColumn, func(r table.Row) table.Value {
		return YRMO(r.Get(dateCol))
	}), nil
}

// RetentionStart returns the first YRMO of an N-month window ending at
// maxYRMO. ok is false when maxYRMO is not a "YYYY-MM" key.
func RetentionStart(maxYRMO string, months int) (string, bool) {
	end, err := time.Parse(yrmoLayout, maxYRMO)
	if err != nil {
		return "", false
	}
	return end.AddDate(0, -(months - 1), 0).Format(yrmoLayout), true
}

// FilterRetention keeps rows whose YRMO falls in the trailing window of
// months ending at the greatest YRMO present. Zero-padded keys order the
// same lexically and temporally, so the window is a string range.
//
// The filter fails open: an empty table, a table without YRMO, or one
// whose greatest YRMO is null or unparseable comes back unchanged.
// Otherwise rows with a null YRMO fall outside the window.
func FilterRetention(t *table.Table, months int) *table.Table {
	if t.Empty() || !t.Has(YRMOColumn) {
		return t
	}
	maxYRMO, found := "", false
	for _, r := range t.Rows() {
		v := r.Get(YRMOColumn)
		if v.IsNull() {
			continue
		}
		if s := v.String(); !found || s > maxYRMO {
			maxYRMO, found = s, true
		}
	}
	if !found {
		return t
	}
	start, ok := RetentionStart(maxYRMO, months)
	if !ok {
		return t
	}
	return t.Filter(func(r table.Row) bool {
		v := r.Get(YRMOColumn)
		if v.IsNull() {
			return false
		}
		s := v.String()
		return s >= start && s <= maxYRMO
	})
}
