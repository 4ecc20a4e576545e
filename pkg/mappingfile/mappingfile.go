// Package mappingfile loads and saves mapping tables as YAML for offline merges.
package mappingfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Ramsey-B/fern/pkg/dateformat"
	"github.com/Ramsey-B/fern/pkg/formula"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/utils"
)

// File is the on-disk form of a finalized mapping table.
type File struct {
	OutputDateFormat string                      `yaml:"output_date_format,omitempty" validate:"omitempty,outputdateformat"`
	Types            map[string]models.FieldType `yaml:"types,omitempty" validate:"omitempty,dive,oneof=number string date"`
	Mappings         models.FieldMappings        `yaml:"mappings" validate:"required,dive"`
}

func Parse(r io.Reader) (*File, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("mapping file is empty")
		}
		return nil, fmt.Errorf("invalid mapping file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Validate checks the struct tags, every date format, and that custom formulas compile.
func (f *File) Validate() error {
	if _, err := utils.Validate(*f); err != nil {
		return fmt.Errorf("invalid mapping file: %w", err)
	}

	targets := make([]string, 0, len(f.Mappings))
	for target := range f.Mappings {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		mapping := f.Mappings[target]
		if mapping.DateFormat != "" {
			if _, err := dateformat.Layout(mapping.DateFormat); err != nil {
				return fmt.Errorf("mapping %q: %w", target, err)
			}
		}
		if mapping.Formula == models.FormulaCustom {
			if _, err := formula.Compile(mapping.CustomFormula); err != nil {
				return fmt.Errorf("mapping %q: %w", target, err)
			}
		}
	}

	return nil
}

func Encode(w io.Writer, file *File) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(file); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func Save(path string, file *File) error {
	var buf bytes.Buffer
	if err := Encode(&buf, file); err != nil {
		return fmt.Errorf("failed to encode mapping file: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
