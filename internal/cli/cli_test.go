package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/mappingfile"
	"github.com/Ramsey-B/fern/pkg/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--quiet", "--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestInferCommand(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.csv", "name,total,joined\nAnn,5,01-02-2024\n")

	out, err := run(t, "infer", "--target", target)
	require.NoError(t, err)

	var analysis struct {
		Types       map[string]string `json:"types"`
		DateFormats map[string]string `json:"date_formats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &analysis))
	assert.Equal(t, map[string]string{"name": "string", "total": "number", "joined": "date"}, analysis.Types)
	assert.Equal(t, "dd-MM-yyyy", analysis.DateFormats["joined"])
}

func TestInferCommandJSONRecordsPath(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.json", `{"results":{"items":[{"amount":"12.5"}]}}`)

	out, err := run(t, "--records-path", "results.items", "infer", "--target", target)
	require.NoError(t, err)
	assert.Contains(t, out, `"amount": "number"`)
}

func TestRecommendAndMergeCommands(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.csv", "first_name,signup_date\nAnn,01-02-2024\nBo,03-04-2024\n")
	source := writeFile(t, dir, "source.csv", "zip,FirstName,SignupDate\n111,Ann,2024-02-01\n222,Bo,2024-04-03\n")
	mappingPath := filepath.Join(dir, "mapping.yaml")

	out, err := run(t, "recommend", "--target", target, "--source", source, "--out", mappingPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"bestMatch": "FirstName"`)

	file, err := mappingfile.Load(mappingPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"SignupDate"}, file.Mappings["signup_date"].Mapped)
	assert.Equal(t, "yyyy-MM-dd", file.Mappings["signup_date"].DateFormat)

	out, err = run(t, "merge", "--target", target, "--source", source, "--mapping", mappingPath)
	require.NoError(t, err)
	assert.Equal(t, "first_name,signup_date\nAnn,01-02-2024\nBo,03-04-2024\n", out)

	outPath := filepath.Join(dir, "merged.json")
	_, err = run(t, "merge", "--target", target, "--source", source, "--mapping", mappingPath,
		"--output-date-format", "MM/dd/yyyy", "--out", outPath)
	require.NoError(t, err)

	merged, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(merged), `"signup_date":"02/01/2024"`)
}

func TestMergeCommandFailure(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target.csv", "total\n5\n7\n")
	source := writeFile(t, dir, "source.csv", "a,b\n2,3\n")
	mappingPath := writeFile(t, dir, "mapping.yaml", "mappings:\n  total:\n    mapped: [a, b]\n    formula: \"+\"\n")

	_, err := run(t, "merge", "--target", target, "--source", source, "--mapping", mappingPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MissingSourceRow")

	t.Setenv("PREVIEW_ROW_LIMIT", "1")
	out, err := run(t, "merge", "--target", target, "--source", source, "--mapping", mappingPath, "--preview")
	require.NoError(t, err)
	assert.Equal(t, "total\n5\n", out)
}

func TestMissingFlags(t *testing.T) {
	_, err := run(t, "merge", "--target", "t.csv")
	assert.Error(t, err)
}

func TestMappingCommands(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mapping.yaml", "mappings:\n  name:\n    mapped: [first]\n  joined:\n    mapped: [signup]\n")

	_, err := run(t, "mapping", "add", path, "name", "last")
	require.NoError(t, err)
	file, err := mappingfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "last"}, file.Mappings["name"].Mapped)
	assert.Equal(t, models.FormulaConcatenate, file.Mappings["name"].Formula)

	_, err = run(t, "mapping", "formula", path, "name", "custom", "--expression", "last + ', ' + first")
	require.NoError(t, err)
	file, err = mappingfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, models.FormulaCustom, file.Mappings["name"].Formula)
	assert.Equal(t, "last + ', ' + first", file.Mappings["name"].CustomFormula)

	_, err = run(t, "mapping", "date-format", path, "joined", "yyyy-MM-dd")
	require.NoError(t, err)

	_, err = run(t, "mapping", "remove", path, "name", "first")
	require.NoError(t, err)
	file, err = mappingfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"last"}, file.Mappings["name"].Mapped)
	assert.Equal(t, "yyyy-MM-dd", file.Mappings["joined"].DateFormat)

	_, err = run(t, "mapping", "remove", path, "joined", "signup")
	require.NoError(t, err)
	file, err = mappingfile.Load(path)
	require.NoError(t, err)
	assert.NotContains(t, file.Mappings, "joined")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown target", []string{"mapping", "formula", path, "zip", "+"}},
		{"unknown formula", []string{"mapping", "formula", path, "name", "%"}},
		{"custom without expression", []string{"mapping", "formula", path, "name", "custom"}},
		{"bad custom expression", []string{"mapping", "formula", path, "name", "custom", "-e", "last +"}},
		{"bad date format", []string{"mapping", "date-format", path, "name", "QQ"}},
		{"missing file", []string{"mapping", "add", filepath.Join(dir, "absent.yaml"), "name", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}

	file, err = mappingfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"last"}, file.Mappings["name"].Mapped)
}
