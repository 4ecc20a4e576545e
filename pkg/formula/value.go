package formula

import (
	"fmt"

	"github.com/Ramsey-B/fern/pkg/models"
)

type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	}
	return "unknown"
}

// Value is a typed scalar produced or consumed by an expression.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind { return v.kind }

// Num returns the numeric value. Booleans count as 1 and 0.
func (v Value) Num() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Truthy follows the usual rules: false, 0 and "" are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindString:
		return v.str != ""
	}
	return false
}

// String renders the value for a merged row.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return models.FormatNumber(v.num)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindString:
		return v.str
	}
	return ""
}

// GoString makes test failures readable.
func (v Value) GoString() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.String())
}
