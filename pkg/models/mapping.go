package models

import (
	"fmt"
	"slices"
)

// Formula is the combination rule applied when several source fields feed one target field.
type Formula string

const (
	FormulaNone        Formula = ""
	FormulaConcatenate Formula = "concatenate"
	FormulaAdd         Formula = "+"
	FormulaSubtract    Formula = "-"
	FormulaDivide      Formula = "/"
	FormulaMultiply    Formula = "*"
	FormulaCustom      Formula = "custom"
)

func (f Formula) IsArithmetic() bool {
	switch f {
	case FormulaAdd, FormulaSubtract, FormulaDivide, FormulaMultiply:
		return true
	}
	return false
}

func (f Formula) IsValid() bool {
	switch f {
	case FormulaNone, FormulaConcatenate, FormulaCustom:
		return true
	}
	return f.IsArithmetic()
}

// FieldMapping describes how one target field is produced from the source row.
type FieldMapping struct {
	Mapped        []string `json:"mapped" yaml:"mapped" validate:"required,min=1,dive,required"`
	Formula       Formula  `json:"formula" yaml:"formula" validate:"omitempty,oneof=concatenate + - / * custom"`
	CustomFormula string   `json:"custom_formula,omitempty" yaml:"custom_formula,omitempty" validate:"required_if=Formula custom"`
	DateFormat    string   `json:"date_format,omitempty" yaml:"date_format,omitempty" validate:"omitempty"`
}

// UsesFormula reports whether the formula participates in the transform.
func (m FieldMapping) UsesFormula() bool {
	return len(m.Mapped) > 1
}

// FieldMappings is the mapping table keyed by target field.
type FieldMappings map[string]FieldMapping

// SetSources replaces the source fields for a target field. A single source clears the formula;
// several sources keep the previous formula or fall back to concatenate. The date format is kept.
func (m FieldMappings) SetSources(target string, sources []string) {
	previous := m[target]

	formula := FormulaNone
	if len(sources) > 1 {
		formula = previous.Formula
		if formula == FormulaNone {
			formula = FormulaConcatenate
		}
	}

	m[target] = FieldMapping{
		Mapped:        slices.Clone(sources),
		Formula:       formula,
		CustomFormula: previous.CustomFormula,
		DateFormat:    previous.DateFormat,
	}
}

// AddSource appends a source field if it is not already mapped.
func (m FieldMappings) AddSource(target, source string) {
	current := m[target].Mapped
	if slices.Contains(current, source) {
		return
	}
	m.SetSources(target, append(slices.Clone(current), source))
}

// RemoveSource drops a source field from a target mapping.
func (m FieldMappings) RemoveSource(target, source string) {
	current := m[target].Mapped
	idx := slices.Index(current, source)
	if idx < 0 {
		return
	}
	m.SetSources(target, slices.Delete(slices.Clone(current), idx, idx+1))
}

func (m FieldMappings) SetFormula(target string, formula Formula) error {
	if !formula.IsValid() {
		return fmt.Errorf("unknown formula %q", formula)
	}
	entry := m[target]
	entry.Formula = formula
	m[target] = entry
	return nil
}

func (m FieldMappings) SetCustomFormula(target, expression string) {
	entry := m[target]
	entry.Formula = FormulaCustom
	entry.CustomFormula = expression
	m[target] = entry
}

func (m FieldMappings) SetDateFormat(target, format string) {
	entry := m[target]
	entry.DateFormat = format
	m[target] = entry
}

// Missing returns the target fields with no mapping entry or an empty source list, in order.
func (m FieldMappings) Missing(targetFields []string) []string {
	missing := []string{}
	for _, field := range targetFields {
		entry, ok := m[field]
		if !ok || len(entry.Mapped) == 0 {
			missing = append(missing, field)
		}
	}
	return missing
}

// Extra returns, sorted, the mapping keys that are not target fields.
func (m FieldMappings) Extra(targetFields []string) []string {
	extra := []string{}
	for key := range m {
		if !slices.Contains(targetFields, key) {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	return extra
}
