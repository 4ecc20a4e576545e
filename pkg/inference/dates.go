package inference

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/dateformat"
	"github.com/Ramsey-B/fern/pkg/models"
)

const (
	DefaultSampleSize = 5
	// DateThreshold is the share of sampled values that must look like dates.
	DateThreshold = 0.8
)

// DetectDateFields returns, in field order, the fields whose leading sampled values look like
// dates. sampleSize <= 0 falls back to DefaultSampleSize.
func DetectDateFields(rows []models.Row, fields []string, sampleSize int) []string {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	inspected := min(sampleSize, len(rows))
	dateFields := []string{}
	if inspected == 0 {
		return dateFields
	}

	for _, field := range fields {
		validCount := 0
		for i := 0; i < inspected; i++ {
			value, ok := rows[i][field]
			if ok && dateformat.IsLikelyDate(strings.TrimSpace(value)) {
				validCount++
			}
		}

		if float64(validCount)/float64(inspected) >= DateThreshold {
			dateFields = append(dateFields, field)
		}
	}

	return dateFields
}

// DetectDateFormats returns the first candidate format for each detected date field, taken from
// the first sampled value that parses. Useful as a default input format for the mapping table.
func DetectDateFormats(rows []models.Row, dateFields []string, sampleSize int) map[string]string {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	formats := make(map[string]string, len(dateFields))
	inspected := min(sampleSize, len(rows))
	for _, field := range dateFields {
		for i := 0; i < inspected; i++ {
			if pattern, ok := dateformat.Sniff(strings.TrimSpace(rows[i][field])); ok {
				formats[field] = pattern
				break
			}
		}
	}

	return formats
}
