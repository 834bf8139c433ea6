package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/table"
)

func TestParseDate_Formats(t *testing.T) {
	cases := map[string]string{
		"2024-03-15":          "2024-03-15",
		"2024-03-15 10:30:00": "2024-03-15",
		"2024-03-15T10:30:00": "2024-03-15",
		"03/04/2024":          "2024-03-04",
		"3/4/2024 2:05 PM":    "2024-03-04",
		"Mar 4, 2024":         "2024-03-04",
		"20240304":            "2024-03-04",

		"2024-3-1":                    "2024-03-01",
		"2024-3-1 9:05:00":            "2024-03-01",
		"2024-03-01 10:00:00+09:00":   "2024-03-01",
		"2024-03-01 23:30:00-0500":    "2024-03-01",
		"2024-03-01 10:00:00.123456":  "2024-03-01",
		"2024-03-01T23:30:00.5-05:00": "2024-03-01",
		"2024-03-01T10:00:00Z":        "2024-03-01",
		"Mar 1 2024":                  "2024-03-01",
		"March 1 2024":                "2024-03-01",
		"2024/3/1":                    "2024-03-01",
		"1-Mar-2024":                  "2024-03-01",
		"Fri Mar  1 10:00:00 2024":    "2024-03-01",
	}
	for in, want := range cases {
		got := ParseDay(in)
		if got == nil {
			t.Errorf("ParseDay(%q) = nil, want %s", in, want)
			continue
		}
		if got.Format("2006-01-02") != want {
			t.Errorf("ParseDay(%q) = %s, want %s", in, got.Format("2006-01-02"), want)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "2024-13-45", "31/12/2024"} {
		if got := ParseDate(in); got != nil {
			t.Errorf("ParseDate(%q) = %v, want nil", in, got)
		}
	}
}

func TestDateValue_Kinds(t *testing.T) {
	ts := table.Time(time.Date(2024, 5, 6, 13, 14, 15, 0, time.UTC))
	if got := DateValue(ts).String(); got != "2024-05-06" {
		t.Errorf("time cell: got %s", got)
	}
	if got := DateValue(table.Int(20240506)).String(); got != "2024-05-06" {
		t.Errorf("int cell: got %s", got)
	}
	if !DateValue(table.Float(1.5)).IsNull() {
		t.Error("float cell should coerce to null")
	}
	if !DateValue(table.String("garbage")).IsNull() {
		t.Error("garbage should coerce to null")
	}
}

func yrmoTable(t *testing.T, keys ...string) *table.Table {
	t.Helper()
	tb := table.New("ID", YRMOColumn)
	for i, k := range keys {
		v := table.String(k)
		if k == "" {
			v = table.Null()
		}
		if err := tb.Append(table.Int(int64(i)), v); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return tb
}

func yrmos(tb *table.Table) []string {
	var out []string
	for _, r := range tb.Rows() {
		out = append(out, r.Get(YRMOColumn).String())
	}
	return out
}

func TestAddYRMO_DerivedFromDate(t *testing.T) {
	tb := table.New("ACTIVITY_DATE")
	_ = tb.Append(table.String("2024-03-15"))
	_ = tb.Append(table.String("bogus"))

	out, err := AddYRMO(tb, "ACTIVITY_DATE")
	if err != nil {
		t.Fatalf("AddYRMO: %v", err)
	}
	if got := out.Get(0, YRMOColumn).Str(); got != "2024-03" {
		t.Errorf("YRMO = %q, want 2024-03", got)
	}
	if !out.Get(1, YRMOColumn).IsNull() {
		t.Error("unparseable date should yield null YRMO")
	}
	if _, err := AddYRMO(tb, "MISSING"); err == nil {
		t.Error("expected error for missing date column")
	}
}

func TestRetentionStart(t *testing.T) {
	cases := []struct {
		max    string
		months int
		want   string
	}{
		{"2024-07", 7, "2024-01"},
		{"2024-03", 7, "2023-09"},
		{"2024-03", 1, "2024-03"},
		{"2024-01", 13, "2023-01"},
	}
	for _, c := range cases {
		got, ok := RetentionStart(c.max, c.months)
		if !ok || got != c.want {
			t.Errorf("RetentionStart(%s, %d) = %s,%v want %s", c.max, c.months, got, ok, c.want)
		}
	}
	if _, ok := RetentionStart("NaT", 7); ok {
		t.Error("expected !ok for unparseable max")
	}
}

func TestFilterRetention_Window(t *testing.T) {
	tb := yrmoTable(t, "2023-06", "2023-12", "2024-01", "2024-06", "2024-07", "")

	out := FilterRetention(tb, 7)
	got := yrmos(out)
	want := []string{"2024-01", "2024-06", "2024-07"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestFilterRetention_MaxPreserved(t *testing.T) {
	tb := yrmoTable(t, "2022-02", "2024-02", "2023-11", "2024-02", "2023-08")
	for months := 1; months <= 24; months++ {
		out := FilterRetention(tb, months)
		if out.Empty() {
			t.Fatalf("months=%d: empty output", months)
		}
		start, _ := RetentionStart("2024-02", months)
		top := ""
		for _, s := range yrmos(out) {
			if s < start {
				t.Errorf("months=%d: %s before window start %s", months, s, start)
			}
			if s > top {
				top = s
			}
		}
		if top != "2024-02" {
			t.Errorf("months=%d: max = %s, want 2024-02", months, top)
		}
	}
}

func TestFilterRetention_SingleMonth(t *testing.T) {
	out := FilterRetention(yrmoTable(t, "2024-01", "2024-02", "2024-02"), 1)
	if out.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Len())
	}
	for _, s := range yrmos(out) {
		if s != "2024-02" {
			t.Errorf("unexpected YRMO %s", s)
		}
	}
}

func TestFilterRetention_FailOpen(t *testing.T) {
	empty := table.New("ID", YRMOColumn)
	if got := FilterRetention(empty, 7); got != empty {
		t.Error("empty table should pass through")
	}

	noCol := table.New("ID")
	_ = noCol.Append(table.Int(1))
	if got := FilterRetention(noCol, 7); got != noCol {
		t.Error("table without YRMO should pass through")
	}

	allNull := yrmoTable(t, "", "", "")
	if got := FilterRetention(allNull, 7); got.Len() != 3 {
		t.Errorf("all-null YRMO should pass through, got %d rows", got.Len())
	}

	bad := yrmoTable(t, "2024-01", "zzzz")
	if got := FilterRetention(bad, 7); got.Len() != 2 {
		t.Errorf("unparseable max should pass through, got %d rows", got.Len())
	}
}

func canonicalRow(t *testing.T, cells ...table.Value) table.Row {
	t.Helper()
	tb := table.New("HCP_ID", "ACTIVITY_DATE", "YRMO", "ID", "CHANNEL", "ACTION")
	if err := tb.Append(cells...); err != nil {
		t.Fatalf("append: %v", err)
	}
	return tb.Row(0)
}

func TestToActivityRecord(t *testing.T) {
	batch := uuid.New()
	r := canonicalRow(t, table.String("H1"), table.String("2024-03-15"), table.String("2024-03"),
		table.Int(42), table.String("LMMR"), table.String("Viewed"))

	rec, err := ToActivityRecord(r, batch, 7)
	if err != nil {
		t.Fatalf("ToActivityRecord: %v", err)
	}
	if rec.LoadBatchID != batch || rec.SourceRowNumber != 7 {
		t.Errorf("batch/row = %v/%d", rec.LoadBatchID, rec.SourceRowNumber)
	}
	if rec.ActivityDate == nil || rec.ActivityDate.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("activity date = %v", rec.ActivityDate)
	}
	if rec.ActivityID == nil || *rec.ActivityID != "42" {
		t.Errorf("activity id = %v", rec.ActivityID)
	}
	if len(rec.SourceRowHash) != 32 {
		t.Errorf("row hash length = %d", len(rec.SourceRowHash))
	}
	if len(rec.CopyValues()) != len(model.ActivityColumns()) {
		t.Error("CopyValues and ActivityColumns disagree")
	}
}

func TestToActivityRecord_NullDate(t *testing.T) {
	r := canonicalRow(t, table.String("H1"), table.Null(), table.Null(),
		table.String("S1"), table.String("LMMR"), table.String("Viewed"))
	rec, err := ToActivityRecord(r, uuid.New(), 1)
	if err != nil {
		t.Fatalf("ToActivityRecord: %v", err)
	}
	if rec.ActivityDate != nil || rec.YRMO != nil {
		t.Error("null date should load as NULL date and YRMO")
	}
}

func TestToActivityRecord_Rejects(t *testing.T) {
	mismatch := canonicalRow(t, table.String("H1"), table.String("2024-03-15"), table.String("2024-02"),
		table.String("S1"), table.String("LMMR"), table.String("Viewed"))
	if _, err := ToActivityRecord(mismatch, uuid.New(), 1); !errors.Is(err, ErrYRMOMismatch) {
		t.Errorf("expected ErrYRMOMismatch, got %v", err)
	}

	bad := canonicalRow(t, table.String("H1"), table.String("someday"), table.Null(),
		table.String("S1"), table.String("LMMR"), table.String("Viewed"))
	if _, err := ToActivityRecord(bad, uuid.New(), 1); !errors.Is(err, ErrBadActivityDate) {
		t.Errorf("expected ErrBadActivityDate, got %v", err)
	}
}

func TestRowHashFromValues(t *testing.T) {
	a := RowHashFromValues(1, "a", "bc")
	b := RowHashFromValues(1, "ab", "c")
	c := RowHashFromValues(2, "a", "bc")
	if string(a) == string(b) || string(a) == string(c) {
		t.Error("expected distinct hashes")
	}
	if string(a) != string(RowHashFromValues(1, " a ", "bc")) {
		t.Error("values should be trimmed")
	}
}
