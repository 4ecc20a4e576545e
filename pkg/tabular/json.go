package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jmespath/go-jmespath"

	"github.com/Ramsey-B/fern/pkg/models"
)

// ReadJSON reads an array of flat objects. When recordsPath is set it is evaluated as a JMESPath
// expression against the whole document and must yield that array. Fields are the keys of the
// first record, sorted, followed by keys first seen in later records.
func ReadJSON(r io.Reader, recordsPath string) (models.Dataset, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var document any
	if err := decoder.Decode(&document); err != nil {
		return models.Dataset{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if recordsPath != "" {
		selected, err := jmespath.Search(recordsPath, document)
		if err != nil {
			return models.Dataset{}, fmt.Errorf("invalid records path %q: %w", recordsPath, err)
		}
		document = selected
	}

	records, ok := document.([]any)
	if !ok {
		return models.Dataset{}, fmt.Errorf("expected an array of records, got %T", document)
	}

	fields := []string{}
	seen := map[string]struct{}{}
	rows := make([]models.Row, 0, len(records))

	for i, record := range records {
		object, ok := record.(map[string]any)
		if !ok {
			return models.Dataset{}, fmt.Errorf("record %d is not an object", i)
		}

		keys := make([]string, 0, len(object))
		for key := range object {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		row := make(models.Row, len(object))
		for _, key := range keys {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				fields = append(fields, key)
			}
			value, err := stringify(object[key])
			if err != nil {
				return models.Dataset{}, fmt.Errorf("record %d field %q: %w", i, key, err)
			}
			row[key] = value
		}
		rows = append(rows, row)
	}

	if len(fields) == 0 {
		return models.Dataset{}, ErrNoHeader
	}

	return models.Dataset{Fields: fields, Rows: rows}, nil
}

// stringify renders scalars the way they would appear in a CSV cell. Null becomes empty.
func stringify(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// WriteJSON writes rows as an array of objects with keys in field order.
func WriteJSON(w io.Writer, fields []string, rows []models.MergedRow) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  {")
		for j, field := range fields {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(field)
			if err != nil {
				return err
			}
			value, err := json.Marshal(row[field])
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
	}
	if len(rows) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")

	_, err := w.Write(buf.Bytes())
	return err
}
