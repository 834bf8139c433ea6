package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is a single typed, nullable table cell. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	t    time.Time
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Float returns a float cell. NaN is stored as null.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindFloat, f: f}
}

func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}
	return v
}

// TimePtr returns a Time cell, or null when t is nil.
func TimePtr(t *time.Time) Value {
	if t == nil {
		return Value{}
	}
	return Time(*t)
}

// ValueOf converts a decoded config or driver value into a cell.
func ValueOf(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case string:
		return String(v)
	case int:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint64:
		return Int(int64(v))
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case bool:
		return Bool(v)
	case time.Time:
		return Time(v)
	default:
		return Null()
	}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the raw string of a String cell and "" for every other kind.
func (v Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// TimeValue returns the time of a Time cell.
func (v Value) TimeValue() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

// Number returns the numeric value of Int and Float cells.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Truthy reports whether the value would enable an optional filter:
// null, "", 0 and false are all falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.s != ""
	case KindInt, KindBool:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindTime:
		return true
	}
	return false
}

// String renders the cell the way it is written to delimited text.
// Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1e16 {
			return strconv.FormatFloat(v.f, 'f', 1, 64)
		}
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		if v.i != 0 {
			return "True"
		}
		return "False"
	case KindTime:
		if v.t.Hour() == 0 && v.t.Minute() == 0 && v.t.Second() == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Equal is typed equality: ints and floats compare numerically, other
// kinds must match exactly. Null never equals anything, including null.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || o.kind == KindNull {
		return false
	}
	if a, ok := v.Number(); ok {
		if b, ok := o.Number(); ok {
			return a == b
		}
		return false
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.i == o.i
	case KindTime:
		return v.t.Equal(o.t)
	}
	return false
}

// Compare orders two non-null cells. Numbers compare numerically, times
// chronologically, everything else by rendered string.
func Compare(a, b Value) int {
	if x, ok := a.Number(); ok {
		if y, ok := b.Number(); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if a.kind == KindTime && b.kind == KindTime {
		return a.t.Compare(b.t)
	}
	return strings.Compare(a.String(), b.String())
}

// key is a comparable identity used for grouping and set membership.
type key struct {
	kind Kind
	s    string
	f    float64
	t    int64
}

func (v Value) key() key {
	switch v.kind {
	case KindInt:
		return key{kind: KindFloat, f: float64(v.i)}
	case KindFloat:
		return key{kind: KindFloat, f: v.f}
	case KindTime:
		return key{kind: KindTime, t: v.t.UnixNano()}
	case KindBool:
		return key{kind: KindBool, f: float64(v.i)}
	}
	return key{kind: v.kind, s: v.s}
}
