package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
)

type Kind string

const (
	KindMissingMapping             Kind = "MissingMapping"
	KindMissingSourceRow           Kind = "MissingSourceRow"
	KindInvalidFieldValue          Kind = "InvalidFieldValue"
	KindTypeMismatch               Kind = "TypeMismatch"
	KindIncompatibleFormula        Kind = "IncompatibleFormula"
	KindCustomFormulaError         Kind = "CustomFormulaError"
	KindDateParseError             Kind = "DateParseError"
	KindRecommendationServiceError Kind = "RecommendationServiceError"
)

// MergeError is the single structured failure returned by the reconciliation core.
type MergeError struct {
	Kind     Kind
	Field    string
	rowIndex *int
	Message  string
	cause    error
}

func NewMergeError(kind Kind, msg string) *MergeError {
	return &MergeError{
		Kind:    kind,
		Message: msg,
	}
}

// NewMergeErrorf creates a new MergeError with a formatted message. A %w verb keeps the
// wrapped error reachable through Unwrap.
func NewMergeErrorf(kind Kind, format string, args ...any) *MergeError {
	var cause error
	for _, arg := range args {
		if err, ok := arg.(error); ok && strings.Contains(format, "%w") {
			cause = err
			break
		}
	}

	return &MergeError{
		Kind:    kind,
		Message: fmt.Errorf(format, args...).Error(),
		cause:   cause,
	}
}

func WrapMergeError(kind Kind, e error) *MergeError {
	if e == nil {
		return nil
	}

	if mergeError, ok := e.(*MergeError); ok {
		return mergeError
	}

	return &MergeError{
		Kind:    kind,
		Message: e.Error(),
		cause:   e,
	}
}

func (e *MergeError) Error() string {
	path := []string{}
	if e.Field != "" {
		path = append(path, fmt.Sprintf("field '%s'", e.Field))
	}
	if e.rowIndex != nil {
		path = append(path, fmt.Sprintf("row %d", *e.rowIndex))
	}

	if len(path) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	return fmt.Sprintf("%s: %s: %s", e.Kind, strings.Join(path, " -> "), e.Message)
}

func (e *MergeError) Unwrap() error {
	return e.cause
}

func (e *MergeError) AddField(field string) *MergeError {
	e.Field = field
	return e
}

func (e *MergeError) AddRow(rowIndex int) *MergeError {
	e.rowIndex = &rowIndex
	return e
}

// RowIndex returns the zero-based row the error occurred on, if any.
func (e *MergeError) RowIndex() (int, bool) {
	if e.rowIndex == nil {
		return 0, false
	}
	return *e.rowIndex, true
}

func (e *MergeError) ToHTTPError() *httperror.HTTPError {
	status := http.StatusUnprocessableEntity
	if e.Kind == KindRecommendationServiceError {
		status = http.StatusInternalServerError
	}

	httpErr := httperror.NewHTTPError(status, e.Error()).AddMetaValue("kind", string(e.Kind)).AddMetaValue("field", e.Field)
	if row, ok := e.RowIndex(); ok {
		httpErr = httpErr.AddMetaValue("row_index", strconv.Itoa(row))
	}

	return httpErr
}

// AsMergeError finds the first MergeError in err's chain.
func AsMergeError(err error) (*MergeError, bool) {
	var mergeErr *MergeError
	if stderrors.As(err, &mergeErr) {
		return mergeErr, true
	}
	return nil, false
}

// IsKind reports whether err is a MergeError of the given kind.
func IsKind(err error, kind Kind) bool {
	mergeErr, ok := AsMergeError(err)
	return ok && mergeErr.Kind == kind
}
