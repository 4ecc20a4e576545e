package formula

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
)

// TypedContext binds every column of a row as an identifier. Values are trimmed, numeric text
// becomes a number and text wrapped in matching quotes loses the quotes.
func TypedContext(row models.Row) map[string]Value {
	scope := make(map[string]Value, len(row))
	for field, raw := range row {
		scope[field] = TypeValue(raw)
	}
	return scope
}

// TypeValue types one raw cell.
func TypeValue(raw string) Value {
	value := strings.TrimSpace(raw)

	if num, ok := models.ParseNumber(value); ok {
		return Number(num)
	}

	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return String(value[1 : len(value)-1])
		}
	}

	return String(value)
}
