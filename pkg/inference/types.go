// Package inference classifies target columns from sampled data.
package inference

import (
	"slices"

	"github.com/Ramsey-B/fern/pkg/models"
)

// InferTypes takes the first non-empty value of each field as its sample. Numbers win over
// dates; a non-numeric sample is a date only when the field is in dateFields.
func InferTypes(rows []models.Row, fields []string, dateFields []string) map[string]models.FieldType {
	types := make(map[string]models.FieldType, len(fields))

	for _, field := range fields {
		sample, found := firstValue(rows, field)
		switch {
		case !found:
			types[field] = models.FieldTypeString
		case isNumber(sample):
			types[field] = models.FieldTypeNumber
		case slices.Contains(dateFields, field):
			types[field] = models.FieldTypeDate
		default:
			types[field] = models.FieldTypeString
		}
	}

	return types
}

// Infer runs date detection and type inference together.
func Infer(rows []models.Row, fields []string, sampleSize int) (map[string]models.FieldType, []string) {
	dateFields := DetectDateFields(rows, fields, sampleSize)
	return InferTypes(rows, fields, dateFields), dateFields
}

func firstValue(rows []models.Row, field string) (string, bool) {
	for _, row := range rows {
		if value, ok := row.Value(field); ok {
			return value, true
		}
	}
	return "", false
}

func isNumber(value string) bool {
	_, ok := models.ParseNumber(value)
	return ok
}
