package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{input: "42", expected: 42, ok: true},
		{input: " 3.5 ", expected: 3.5, ok: true},
		{input: "-1e3", expected: -1000, ok: true},
		{input: "", ok: false},
		{input: "abc", ok: false},
		{input: "12abc", ok: false},
		{input: "Inf", ok: false},
		{input: "NaN", ok: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.input, func(t *testing.T) {
			num, ok := ParseNumber(testCase.input)
			assert.Equal(t, testCase.ok, ok)
			assert.Equal(t, testCase.expected, num)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "5", FormatNumber(5))
	assert.Equal(t, "-1", FormatNumber(-1))
	assert.Equal(t, "0.6666666666666666", FormatNumber(2.0/3.0))
	assert.Equal(t, "0", FormatNumber(-0.0))
	assert.Equal(t, "1.5", FormatNumber(1.5))
	assert.Equal(t, "Infinity", FormatNumber(math.Inf(1)))
	assert.Equal(t, "-Infinity", FormatNumber(math.Inf(-1)))
	assert.Equal(t, "NaN", FormatNumber(math.NaN()))
}

func TestValidateValue(t *testing.T) {
	t.Run("number", func(t *testing.T) {
		assert.NoError(t, ValidateValue(FieldTypeNumber, "12.5", ""))
		assert.Error(t, ValidateValue(FieldTypeNumber, "twelve", ""))
	})

	t.Run("date with format", func(t *testing.T) {
		assert.NoError(t, ValidateValue(FieldTypeDate, "2024-01-05", "yyyy-MM-dd"))
		assert.Error(t, ValidateValue(FieldTypeDate, "05/01/2024", "yyyy-MM-dd"))
	})

	t.Run("date without format", func(t *testing.T) {
		assert.NoError(t, ValidateValue(FieldTypeDate, "whenever", ""))
	})

	t.Run("string", func(t *testing.T) {
		assert.NoError(t, ValidateValue(FieldTypeString, "anything", "yyyy-MM-dd"))
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, ValidateValue(FieldType("bool"), "true", ""))
	})
}

func TestRowValue(t *testing.T) {
	row := Row{"name": "Ann", "empty": ""}

	value, ok := row.Value("name")
	assert.True(t, ok)
	assert.Equal(t, "Ann", value)

	_, ok = row.Value("empty")
	assert.False(t, ok)

	_, ok = row.Value("absent")
	assert.False(t, ok)
}

func TestMergedRowOrdered(t *testing.T) {
	row := MergedRow{"b": "2", "a": "1"}
	assert.Equal(t, []string{"1", "2", ""}, row.Ordered([]string{"a", "b", "c"}))
}
