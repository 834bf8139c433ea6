// Package table is a small in-memory, column-named table of typed cells.
// Every operation returns a new Table; inputs are never mutated.
package table

import (
	"fmt"
	"slices"
	"sort"
)

// Table is an ordered set of named columns and rows of typed cells.
type Table struct {
	cols []string
	idx  map[string]int
	rows [][]Value
}

// Row is a read-only view of one row of a Table.
type Row struct {
	t *Table
	i int
}

// New returns an empty table with the given columns.
func New(cols ...string) *Table {
	t := &Table{cols: slices.Clone(cols), idx: make(map[string]int, len(cols))}
	for i, c := range t.cols {
		t.idx[c] = i
	}
	return t
}

// FromRows builds a table from columns and rows. Every row must have
// exactly len(cols) cells.
func FromRows(cols []string, rows [][]Value) (*Table, error) {
	t := New(cols...)
	for i, r := range rows {
		if err := t.Append(r...); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return t, nil
}

// Append adds one row. The row is copied.
func (t *Table) Append(vals ...Value) error {
	if len(vals) != len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(vals), len(t.cols))
	}
	t.rows = append(t.rows, slices.Clone(vals))
	return nil
}

// Columns returns the column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.cols) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.idx[col]
	return ok
}

// Row returns a view of row i.
func (t *Table) Row(i int) Row { return Row{t: t, i: i} }

// Rows returns views of every row in order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = Row{t: t, i: i}
	}
	return out
}

// Get returns the cell at (row, col); missing columns read as null.
func (t *Table) Get(i int, col string) Value {
	j, ok := t.idx[col]
	if !ok {
		return Null()
	}
	return t.rows[i][j]
}

// Column returns every cell of one column.
func (t *Table) Column(col string) ([]Value, error) {
	j, ok := t.idx[col]
	if !ok {
		return nil, fmt.Errorf("column %q not found", col)
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Get returns the named cell of the row; missing columns read as null.
func (r Row) Get(col string) Value { return r.t.Get(r.i, col) }

// Index returns the row's position in its table.
func (r Row) Index() int { return r.i }

// Values returns a copy of the row's cells in column order.
func (r Row) Values() []Value { return slices.Clone(r.t.rows[r.i]) }

// Require returns an error naming the first missing column.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("column %q not found (have %v)", c, t.cols)
		}
	}
	return nil
}

// Filter keeps the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.cols...)
	for i, r := range t.rows {
		if keep(Row{t: t, i: i}) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Select projects the table onto cols, in that order.
func (t *Table) Select(cols ...string) (*Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	out := New(cols...)
	out.rows = make([][]Value, len(t.rows))
	for i, r := range t.rows {
		nr := make([]Value, len(cols))
		for j, c := range cols {
			nr[j] = r[t.idx[c]]
		}
		out.rows[i] = nr
	}
	return out, nil
}

// Rename renames columns by old->new mapping. Unknown old names are ignored.
func (t *Table) Rename(m map[string]string) *Table {
	cols := slices.Clone(t.cols)
	for i, c := range cols {
		if n, ok := m[c]; ok {
			cols[i] = n
		}
	}
	out := New(cols...)
	out.rows = slices.Clone(t.rows)
	return out
}

// With returns a copy of the table where col holds f(row). An existing
// column is replaced in place; a new one is appended at the end.
func (t *Table) With(col string, f func(Row) Value) *Table {
	cols := t.cols
	j, exists := t.idx[col]
	if !exists {
		cols = append(slices.Clone(t.cols), col)
		j = len(cols) - 1
	}
	out := New(cols...)
	out.rows = make([][]Value, len(t.rows))
	for i, r := range t.rows {
		nr := make([]Value, len(cols))
		copy(nr, r)
		nr[j] = f(Row{t: t, i: i})
		out.rows[i] = nr
	}
	return out
}

// Map returns a copy where every cell of col is replaced by f(cell).
func (t *Table) Map(col string, f func(Value) Value) *Table {
	return t.With(col, func(r Row) Value { return f(r.Get(col)) })
}

// Replace remaps String cells of col through m; other cells pass through.
func (t *Table) Replace(col string, m map[string]string) *Table {
	return t.Map(col, func(v Value) Value {
		if v.Kind() == KindString {
			if n, ok := m[v.Str()]; ok {
				return String(n)
			}
		}
		return v
	})
}

// SortBy stably sorts ascending by cols. Nulls sort last in each key.
func (t *Table) SortBy(cols ...string) (*Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	out := New(t.cols...)
	out.rows = slices.Clone(t.rows)
	keys := make([]int, len(cols))
	for i, c := range cols {
		keys[i] = t.idx[c]
	}
	sort.SliceStable(out.rows, func(a, b int) bool {
		for _, k := range keys {
			if c := compareNullsLast(out.rows[a][k], out.rows[b][k]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return out, nil
}

func compareNullsLast(a, b Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return 1
	case b.IsNull():
		return -1
	}
	return Compare(a, b)
}

// Distinct drops rows that repeat an earlier row across every column.
func (t *Table) Distinct() *Table {
	out := New(t.cols...)
	seen := make(map[string]struct{}, len(t.rows))
	for _, r := range t.rows {
		k := rowKey(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.rows = append(out.rows, r)
	}
	return out
}

// Set is a membership set of cells under typed equality.
type Set map[key]struct{}

// Add inserts v; nulls are ignored.
func (s Set) Add(v Value) {
	if !v.IsNull() {
		s[v.key()] = struct{}{}
	}
}

// Contains reports membership; null is never a member.
func (s Set) Contains(v Value) bool {
	if v.IsNull() {
		return false
	}
	_, ok := s[v.key()]
	return ok
}

// Concat stacks tables in order. The result's columns are the union of
// all input columns in first-seen order; cells missing from a source are
// null.
func Concat(tables ...*Table) *Table {
	var cols []string
	seen := make(map[string]struct{})
	for _, t := range tables {
		for _, c := range t.cols {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				cols = append(cols, c)
			}
		}
	}
	out := New(cols...)
	for _, t := range tables {
		for _, r := range t.rows {
			nr := make([]Value, len(cols))
			for j, c := range cols {
				if k, ok := t.idx[c]; ok {
					nr[j] = r[k]
				}
			}
			out.rows = append(out.rows, nr)
		}
	}
	return out
}

func rowKey(r []Value) string {
	b := make([]byte, 0, 64)
	for _, v := range r {
		b = append(b, byte(v.kind))
		b = append(b, v.String()...)
		b = append(b, 0)
	}
	return string(b)
}
