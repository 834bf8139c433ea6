package table

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Group is one distinct key tuple and the rows that share it.
type Group struct {
	Key  []Value
	Rows []Row
}

// Count returns the number of rows in the group whose col equals v and
// whose countCol is non-null. An empty countCol counts every match.
func (g Group) Count(col string, v Value, countCol string) int {
	n := 0
	for _, r := range g.Rows {
		if countCol != "" && r.Get(countCol).IsNull() {
			continue
		}
		if r.Get(col).Equal(v) {
			n++
		}
	}
	return n
}

// GroupBy partitions rows by the given key columns. Rows with a null in
// any key column belong to no group. Groups are returned sorted
// ascending by key.
func (t *Table) GroupBy(cols ...string) ([]Group, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	byKey := make(map[string]*Group)
	var order []*Group
	for i := range t.rows {
		r := Row{t: t, i: i}
		k := make([]Value, len(cols))
		null := false
		for j, c := range cols {
			k[j] = r.Get(c)
			if k[j].IsNull() {
				null = true
				break
			}
		}
		if null {
			continue
		}
		id := groupID(k)
		g, ok := byKey[id]
		if !ok {
			g = &Group{Key: k}
			byKey[id] = g
			order = append(order, g)
		}
		g.Rows = append(g.Rows, r)
	}
	sort.SliceStable(order, func(a, b int) bool {
		for j := range cols {
			if c := Compare(order[a].Key[j], order[b].Key[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	out := make([]Group, len(order))
	for i, g := range order {
		out[i] = Group{Key: slices.Clone(g.Key), Rows: g.Rows}
	}
	return out, nil
}

func groupID(k []Value) string {
	var b strings.Builder
	for _, v := range k {
		kk := v.key()
		b.WriteByte(byte(kk.kind))
		b.WriteString(kk.s)
		b.WriteByte(0)
		b.WriteString(strconv.FormatFloat(kk.f, 'g', -1, 64))
		b.WriteByte(0)
		b.WriteString(strconv.FormatInt(kk.t, 10))
		b.WriteByte(0)
	}
	return b.String()
}
