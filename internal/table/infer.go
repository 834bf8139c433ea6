package table

import (
	"strconv"
	"strings"
)

// naValues are the raw text cells read as null.
var naValues = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NULL": true,
	"null": true,
	"NaN":  true,
	"nan":  true,
	"None": true,
	"<NA>": true,
}

// IsNA reports whether a raw text cell reads as null.
func IsNA(s string) bool {
	return naValues[strings.TrimSpace(s)]
}

// Infer builds a typed table from header names and raw text records.
// Each column gets one kind: int if every non-null cell parses as an
// integer, else float, else bool (True/False), else string.
func Infer(header []string, records [][]string) (*Table, error) {
	t := New(header...)
	kinds := make([]Kind, len(header))
	for j := range header {
		kinds[j] = inferKind(records, j)
	}
	t.rows = make([][]Value, 0, len(records))
	for _, rec := range records {
		row := make([]Value, len(header))
		for j := range header {
			if j >= len(rec) {
				continue
			}
			row[j] = parseCell(rec[j], kinds[j])
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func inferKind(records [][]string, j int) Kind {
	isInt, isFloat, isBool, seen := true, true, true, false
	for _, rec := range records {
		if j >= len(rec) || IsNA(rec[j]) {
			continue
		}
		seen = true
		s := strings.TrimSpace(rec[j])
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool && s != "True" && s != "False" {
			isBool = false
		}
		if !isInt && !isFloat && !isBool {
			return KindString
		}
	}
	switch {
	case !seen:
		return KindString
	case isInt:
		return KindInt
	case isFloat:
		return KindFloat
	case isBool:
		return KindBool
	}
	return KindString
}

func parseCell(raw string, k Kind) Value {
	if IsNA(raw) {
		return Null()
	}
	s := strings.TrimSpace(raw)
	switch k {
	case KindInt:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
	case KindBool:
		return Bool(s == "True")
	}
	return String(raw)
}
