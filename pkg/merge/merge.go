// Package merge validates source rows against the target schema and builds merged rows.
package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectolinq"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ramsey-B/fern/pkg/dateformat"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/formula"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Request is everything one merge needs. Target rows only contribute their count; each target
// row index is paired with the source row at the same index.
type Request struct {
	TargetFields     []string                    `json:"target_fields" validate:"required,min=1,dive,required"`
	TargetRows       []models.Row                `json:"target_rows"`
	SourceRows       []models.Row                `json:"source_rows"`
	Mappings         models.FieldMappings        `json:"mappings" validate:"required,dive"`
	Types            map[string]models.FieldType `json:"types"`
	OutputDateFormat string                      `json:"output_date_format" validate:"omitempty,outputdateformat"`
	// Limit stops after this many rows when positive. Used for previews.
	Limit int `json:"-"`
}

// Engine merges rows. It is safe for concurrent use.
type Engine struct {
	evaluator *formula.Evaluator
}

func NewEngine(evaluator *formula.Evaluator) *Engine {
	if evaluator == nil {
		evaluator = formula.NewEvaluator()
	}
	return &Engine{evaluator: evaluator}
}

// Merge processes rows in order and stops at the first invalid one. It returns either every
// merged row or a *errors.MergeError, never both.
func (e *Engine) Merge(ctx context.Context, req Request) (rows []models.MergedRow, err error) {
	_, span := tracing.StartSpan(ctx, "merge.Engine.Merge",
		attribute.Int("merge.target_rows", len(req.TargetRows)),
		attribute.Int("merge.source_rows", len(req.SourceRows)),
		attribute.Int("merge.fields", len(req.TargetFields)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if missing := req.Mappings.Missing(req.TargetFields); len(missing) > 0 {
		return nil, apperrors.NewMergeErrorf(apperrors.KindMissingMapping,
			"mapping missing for target fields: %s", strings.Join(missing, ", ")).AddField(missing[0])
	}
	if extra := req.Mappings.Extra(req.TargetFields); len(extra) > 0 {
		return nil, apperrors.NewMergeErrorf(apperrors.KindMissingMapping,
			"mapping has entries for fields that are not targets: %s", strings.Join(extra, ", ")).AddField(extra[0])
	}

	outputFormat := req.OutputDateFormat
	if outputFormat == "" {
		outputFormat = dateformat.Default
	}
	if _, layoutErr := dateformat.Layout(outputFormat); layoutErr != nil {
		return nil, apperrors.NewMergeErrorf(apperrors.KindDateParseError, "invalid output date format: %w", layoutErr)
	}

	count := len(req.TargetRows)
	if req.Limit > 0 && req.Limit < count {
		count = req.Limit
	}

	merged := make([]models.MergedRow, 0, count)
	for i := range count {
		if i >= len(req.SourceRows) {
			return nil, apperrors.NewMergeErrorf(apperrors.KindMissingSourceRow,
				"missing row %d in source data", i+1).AddRow(i)
		}

		row, rowErr := e.mergeRow(req, outputFormat, req.SourceRows[i], i)
		if rowErr != nil {
			return nil, rowErr
		}
		merged = append(merged, row)
	}

	span.SetAttributes(attribute.Int("merge.merged_rows", len(merged)))
	return merged, nil
}

func (e *Engine) mergeRow(req Request, outputFormat string, source models.Row, rowIndex int) (models.MergedRow, error) {
	merged := make(models.MergedRow, len(req.TargetFields))

	for _, field := range req.TargetFields {
		mapping := req.Mappings[field]
		fieldType := fieldTypeOf(req.Types, field)

		values, err := gather(mapping, source)
		if err != nil {
			return nil, err.AddField(field).AddRow(rowIndex)
		}

		for _, value := range values {
			if validateErr := models.ValidateValue(fieldType, value, mapping.DateFormat); validateErr != nil {
				return nil, apperrors.NewMergeErrorf(apperrors.KindTypeMismatch, "%w", validateErr).
					AddField(field).AddRow(rowIndex)
			}
		}

		value, transformErr := e.transform(fieldType, mapping, values, source, outputFormat)
		if transformErr != nil {
			return nil, transformErr.AddField(field).AddRow(rowIndex)
		}
		merged[field] = value
	}

	return merged, nil
}

func gather(mapping models.FieldMapping, source models.Row) ([]string, *apperrors.MergeError) {
	if len(mapping.Mapped) == 0 {
		return nil, apperrors.NewMergeError(apperrors.KindMissingMapping, "no source fields are mapped")
	}

	values := make([]string, len(mapping.Mapped))
	for i, sourceField := range mapping.Mapped {
		value, ok := source.Value(sourceField)
		if !ok {
			return nil, apperrors.NewMergeErrorf(apperrors.KindInvalidFieldValue,
				"source field %q has no value", sourceField)
		}
		values[i] = value
	}

	return values, nil
}

func (e *Engine) transform(fieldType models.FieldType, mapping models.FieldMapping, values []string, source models.Row, outputFormat string) (string, *apperrors.MergeError) {
	if fieldType == models.FieldTypeDate {
		first := ectolinq.First(values)
		if mapping.DateFormat == "" {
			return first, nil
		}
		reformatted, err := dateformat.Reformat(first, mapping.DateFormat, outputFormat)
		if err != nil {
			return "", apperrors.NewMergeErrorf(apperrors.KindDateParseError, "%w", err)
		}
		return reformatted, nil
	}

	if !mapping.UsesFormula() {
		return ectolinq.First(values), nil
	}

	switch {
	case mapping.Formula == models.FormulaConcatenate && fieldType == models.FieldTypeString:
		return strings.Join(values, " "), nil

	case mapping.Formula.IsArithmetic() && fieldType == models.FieldTypeNumber:
		result, err := fold(mapping.Formula, values)
		if err != nil {
			return "", err
		}
		return models.FormatNumber(result), nil

	case mapping.Formula == models.FormulaCustom:
		if strings.TrimSpace(mapping.CustomFormula) == "" {
			return "", apperrors.NewMergeError(apperrors.KindCustomFormulaError, "custom formula is empty")
		}
		result, err := e.evaluator.EvaluateRow(mapping.CustomFormula, source)
		if err != nil {
			return "", apperrors.NewMergeErrorf(apperrors.KindCustomFormulaError, "%w", err)
		}
		return result, nil
	}

	return "", apperrors.NewMergeErrorf(apperrors.KindIncompatibleFormula,
		"formula %q cannot combine %d values of type %s", mapping.Formula, len(values), fieldType)
}

// fold applies op left to right in mapping order. Addition starts from zero; the others start
// from the first value, so 10 - 2 - 5 is 3. Division follows IEEE rules: x/0 is an infinity and
// 0/0 is NaN.
func fold(op models.Formula, values []string) (float64, *apperrors.MergeError) {
	numbers := ectolinq.Map(values, func(value string) float64 {
		num, _ := models.ParseNumber(value)
		return num
	})

	if op == models.FormulaAdd {
		var sum float64
		for _, num := range numbers {
			sum += num
		}
		return sum, nil
	}

	result := numbers[0]
	for _, num := range numbers[1:] {
		switch op {
		case models.FormulaSubtract:
			result -= num
		case models.FormulaMultiply:
			result *= num
		case models.FormulaDivide:
			result /= num
		default:
			return 0, apperrors.NewMergeError(apperrors.KindIncompatibleFormula, fmt.Sprintf("unknown operator %q", op))
		}
	}

	return result, nil
}

func fieldTypeOf(types map[string]models.FieldType, field string) models.FieldType {
	if fieldType, ok := types[field]; ok && fieldType.IsValid() {
		return fieldType
	}
	return models.FieldTypeString
}
