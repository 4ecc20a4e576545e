package models

// Row maps a field name to its raw value. An absent key is an undefined value; JSON null decodes
// to the empty string, which every consumer treats the same as absent.
type Row map[string]string

// Value returns the raw value and whether it is present and non-empty.
func (r Row) Value(field string) (string, bool) {
	value, ok := r[field]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// MergedRow is a fully validated target-shaped row.
type MergedRow map[string]string

// Ordered returns the row values in the given field order.
func (r MergedRow) Ordered(fields []string) []string {
	values := make([]string, len(fields))
	for i, field := range fields {
		values[i] = r[field]
	}
	return values
}

// Dataset is a header list with its rows.
type Dataset struct {
	Fields []string `json:"fields" yaml:"fields" validate:"required"`
	Rows   []Row    `json:"rows" yaml:"rows" validate:"omitempty"`
}

// Recommendation is the best source match for a target field.
type Recommendation struct {
	BestMatch string  `json:"bestMatch"`
	Score     float64 `json:"score"`
}
