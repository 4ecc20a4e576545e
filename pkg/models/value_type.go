package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Ramsey-B/fern/pkg/dateformat"
)

// FieldType is the semantic type inferred for a target field.
type FieldType string

const (
	FieldTypeNumber FieldType = "number"
	FieldTypeString FieldType = "string"
	FieldTypeDate   FieldType = "date"
)

func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeNumber, FieldTypeString, FieldTypeDate:
		return true
	}
	return false
}

// ParseNumber parses a trimmed decimal value. Infinities and NaN are not numbers here.
func ParseNumber(value string) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}

	num, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
		return 0, false
	}

	return num, true
}

// FormatNumber renders a float in its shortest round-trip decimal form. Infinities render as
// Infinity and -Infinity.
func FormatNumber(num float64) string {
	switch {
	case math.IsNaN(num):
		return "NaN"
	case math.IsInf(num, 1):
		return "Infinity"
	case math.IsInf(num, -1):
		return "-Infinity"
	}
	if num == 0 {
		// avoid "-0"
		return "0"
	}
	return strconv.FormatFloat(num, 'f', -1, 64)
}

// ValidateValue checks a single raw value against the field type. dateFormat only applies to
// date fields; a date field without a format accepts any value.
func ValidateValue(fieldType FieldType, value string, dateFormat string) error {
	switch fieldType {
	case FieldTypeNumber:
		if _, ok := ParseNumber(value); !ok {
			return fmt.Errorf("expected a number but got %q", value)
		}
	case FieldTypeDate:
		if dateFormat == "" {
			return nil
		}
		if _, err := dateformat.Parse(dateFormat, value); err != nil {
			return fmt.Errorf("expected a date in format %q but got %q", dateFormat, value)
		}
	case FieldTypeString:
		return nil
	default:
		return fmt.Errorf("unknown field type %q", fieldType)
	}

	return nil
}
