// Package plan inspects a table file without writing anything.
package plan

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/normalize"
	"github.com/gyeh/hcpnorm/internal/table"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

// ColumnStats describes one column of an inspected table.
type ColumnStats struct {
	Name  string
	Kind  string // cell kind, "mixed" when kinds differ, "null" when empty
	Nulls int
}

// Report is the result of inspecting a table file.
type Report struct {
	Path      string
	SHA256    string
	Size      int64
	Rows      int
	Columns   []ColumnStats
	Canonical bool
	MinYRMO   string
	MaxYRMO   string
	Channels  map[string]int
}

// Inspect hashes the local file at path, reads it through store and
// collects per-column statistics.
func Inspect(ctx context.Context, store *tableio.Store, path string) (*Report, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	sha, err := normalize.FileHash(path)
	if err != nil {
		return nil, err
	}
	t, err := store.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Path:      path,
		SHA256:    sha,
		Size:      stat.Size(),
		Rows:      t.Len(),
		Canonical: t.Require(model.CanonicalColumns...) == nil,
	}
	for _, col := range t.Columns() {
		vals, _ := t.Column(col)
		r.Columns = append(r.Columns, columnStats(col, vals))
	}
	if t.Has(model.ColYRMO) {
		r.MinYRMO, r.MaxYRMO = yrmoRange(t)
	}
	if t.Has(model.ColChannel) {
		r.Channels = make(map[string]int)
		for _, row := range t.Rows() {
			if v := row.Get(model.ColChannel); !v.IsNull() {
				r.Channels[v.String()]++
			}
		}
	}
	return r, nil
}

func columnStats(name string, vals []table.Value) ColumnStats {
	cs := ColumnStats{Name: name, Kind: table.KindNull.String()}
	seen := table.KindNull
	for _, v := range vals {
		if v.IsNull() {
			cs.Nulls++
			continue
		}
		switch {
		case seen == table.KindNull:
			seen = v.Kind()
			cs.Kind = seen.String()
		case seen != v.Kind():
			cs.Kind = "mixed"
		}
	}
	return cs
}

func yrmoRange(t *table.Table) (lo, hi string) {
	for _, row := range t.Rows() {
		v := row.Get(model.ColYRMO)
		if v.IsNull() {
			continue
		}
		s := v.String()
		if lo == "" || s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

// Print writes a human-readable report to w.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== hcpnorm plan ===")
	fmt.Fprintf(w, "File:       %s\n", r.Path)
	fmt.Fprintf(w, "SHA-256:    %s\n", r.SHA256)
	fmt.Fprintf(w, "Size:       %d bytes\n", r.Size)
	fmt.Fprintf(w, "Total rows: %d\n", r.Rows)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Columns:")
	for _, c := range r.Columns {
		fmt.Fprintf(w, "  %-24s %-7s %d nulls\n", c.Name, c.Kind, c.Nulls)
	}
	if r.MaxYRMO != "" {
		fmt.Fprintf(w, "\nYRMO range: %s .. %s\n", r.MinYRMO, r.MaxYRMO)
	}
	if len(r.Channels) > 0 {
		names := make([]string, 0, len(r.Channels))
		for ch := range r.Channels {
			names = append(names, ch)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "\nRows by channel:")
		for _, ch := range names {
			fmt.Fprintf(w, "  %-24s %d\n", ch, r.Channels[ch])
		}
	}
	if r.Canonical {
		fmt.Fprintln(w, "\nCanonical schema: OK")
	} else {
		fmt.Fprintln(w, "\nCanonical schema: missing columns")
	}
}
