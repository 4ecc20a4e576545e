package inference

import (
	"testing"

	"github.com/Ramsey-B/fern/pkg/dateformat"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
)

func rowsOf(field string, values ...string) []models.Row {
	rows := make([]models.Row, len(values))
	for i, value := range values {
		rows[i] = models.Row{field: value}
	}
	return rows
}

func TestDetectDateFields(t *testing.T) {
	t.Run("four of five is a date field", func(t *testing.T) {
		rows := rowsOf("joined", "2024-01-05", "05-01-2024", "1/5/2024", "31/12/2024", "unknown")
		assert.Equal(t, []string{"joined"}, DetectDateFields(rows, []string{"joined"}, 5))
	})

	t.Run("three of five is not", func(t *testing.T) {
		rows := rowsOf("joined", "2024-01-05", "05-01-2024", "1/5/2024", "n/a", "unknown")
		assert.Empty(t, DetectDateFields(rows, []string{"joined"}, 5))
	})

	t.Run("only leading rows are sampled", func(t *testing.T) {
		rows := rowsOf("joined", "2024-01-05", "2024-01-06", "x", "y", "z", "w")
		assert.Equal(t, []string{"joined"}, DetectDateFields(rows, []string{"joined"}, 2))
	})

	t.Run("fewer rows than sample size", func(t *testing.T) {
		rows := rowsOf("joined", "2024-01-05", "2024-01-06")
		assert.Equal(t, []string{"joined"}, DetectDateFields(rows, []string{"joined"}, 5))
	})

	t.Run("no rows never flags", func(t *testing.T) {
		assert.Empty(t, DetectDateFields(nil, []string{"joined"}, 5))
	})

	t.Run("values are trimmed", func(t *testing.T) {
		rows := rowsOf("joined", " 2024-01-05 ")
		assert.Equal(t, []string{"joined"}, DetectDateFields(rows, []string{"joined"}, 0))
	})

	t.Run("missing values count against the ratio", func(t *testing.T) {
		rows := []models.Row{{"joined": "2024-01-05"}, {}, {}}
		assert.Empty(t, DetectDateFields(rows, []string{"joined"}, 5))
	})

	t.Run("unpadded values are dates", func(t *testing.T) {
		testCases := []struct {
			name   string
			values []string
			format string
		}{
			{name: "iso", values: []string{"2024-1-5", "2024-2-9", "2024-3-1", "2024-10-7", "2024-12-25"}, format: dateformat.ISODate},
			{name: "month first", values: []string{"1/5/2024", "2/9/2024", "3/1/2024", "10/7/2024", "12/25/2024"}, format: dateformat.MonthDayYearSlash},
			{name: "day first", values: []string{"5-1-2024", "9-2-2024", "1-3-2024", "7-10-2024", "25-12-2024"}, format: dateformat.DayMonthYearDash},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				rows := rowsOf("joined", testCase.values...)
				dateFields := DetectDateFields(rows, []string{"joined"}, 5)
				assert.Equal(t, []string{"joined"}, dateFields)
				assert.Equal(t, testCase.format, DetectDateFormats(rows, dateFields, 5)["joined"])
				assert.Equal(t, models.FieldTypeDate, InferTypes(rows, []string{"joined"}, dateFields)["joined"])
			})
		}
	})

	t.Run("field order is kept", func(t *testing.T) {
		rows := []models.Row{{"b": "2024-01-05", "a": "2024-01-05", "c": "hello"}}
		assert.Equal(t, []string{"b", "a"}, DetectDateFields(rows, []string{"b", "c", "a"}, 5))
	})
}

func TestDetectDateFormats(t *testing.T) {
	rows := []models.Row{
		{"joined": "", "born": "12/31/1990"},
		{"joined": "2024-01-05", "born": "01/02/1991"},
	}
	formats := DetectDateFormats(rows, []string{"joined", "born"}, 5)
	assert.Equal(t, dateformat.ISODate, formats["joined"])
	assert.Equal(t, dateformat.MonthDayYearSlash, formats["born"])
}

func TestInferTypes(t *testing.T) {
	rows := []models.Row{
		{"id": "", "name": "Ann", "joined": "2024-01-05", "code": "20240105", "notes": ""},
		{"id": "7", "name": "Lee", "joined": "2024-01-06", "code": "x", "notes": ""},
	}
	fields := []string{"id", "name", "joined", "code", "notes", "absent"}

	types := InferTypes(rows, fields, []string{"joined", "code"})

	assert.Equal(t, map[string]models.FieldType{
		"id":     models.FieldTypeNumber,
		"name":   models.FieldTypeString,
		"joined": models.FieldTypeDate,
		"code":   models.FieldTypeNumber,
		"notes":  models.FieldTypeString,
		"absent": models.FieldTypeString,
	}, types)
}

func TestInferTypesDateRequiresDetection(t *testing.T) {
	rows := rowsOf("joined", "2024-01-05")
	types := InferTypes(rows, []string{"joined"}, nil)
	assert.Equal(t, models.FieldTypeString, types["joined"])
}

func TestInfer(t *testing.T) {
	rows := []models.Row{
		{"amount": "10", "when": "05-01-2024"},
		{"amount": "12", "when": "06-01-2024"},
	}
	types, dateFields := Infer(rows, []string{"amount", "when"}, 5)
	assert.Equal(t, []string{"when"}, dateFields)
	assert.Equal(t, models.FieldTypeNumber, types["amount"])
	assert.Equal(t, models.FieldTypeDate, types["when"])
}
