// Package tabular reads datasets from CSV or JSON and writes merged rows back out.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Ramsey-B/fern/pkg/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var ErrNoHeader = errors.New("dataset has no header row")

// Options controls how a dataset file is read.
type Options struct {
	// Format overrides detection from the file extension.
	Format Format
	// RecordsPath is a JMESPath expression selecting the record array in a JSON document.
	RecordsPath string
}

// DetectFormat picks a format from the file extension, defaulting to CSV.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}

func ReadFile(path string, opts Options) (models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Dataset{}, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	format := opts.Format
	if format == "" {
		format = DetectFormat(path)
	}

	var dataset models.Dataset
	switch format {
	case FormatJSON:
		dataset, err = ReadJSON(f, opts.RecordsPath)
	case FormatCSV:
		dataset, err = ReadCSV(f)
	default:
		return models.Dataset{}, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return models.Dataset{}, errors.Wrapf(err, "failed to read %s", path)
	}
	return dataset, nil
}

// ReadCSV treats the first record as the header. Short rows leave their trailing fields absent.
func ReadCSV(r io.Reader) (models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return models.Dataset{}, ErrNoHeader
	}
	if err != nil {
		return models.Dataset{}, err
	}

	fields := make([]string, len(header))
	for i, name := range header {
		fields[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	rows := []models.Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.Dataset{}, err
		}

		row := make(models.Row, len(fields))
		for i, value := range record {
			if i >= len(fields) {
				break
			}
			row[fields[i]] = value
		}
		rows = append(rows, row)
	}

	return models.Dataset{Fields: fields, Rows: rows}, nil
}

// WriteCSV writes a header and one record per row, in field order.
func WriteCSV(w io.Writer, fields []string, rows []models.MergedRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(fields); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Ordered(fields)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func WriteFile(path string, fields []string, rows []models.MergedRow) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}

	switch DetectFormat(path) {
	case FormatJSON:
		err = WriteJSON(f, fields, rows)
	default:
		err = WriteCSV(f, fields, rows)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
