package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teamYAML = `teamMembers:
  - Alice
  - Bob
  - Carol
dateRange:
  start: "2024-01-01"
  end: "2024-01-07"
leaves:
  - member: Carol
    type: custom
    date: "2024-01-03"
    slot: Both
`

func writeTeam(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "team.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_Table(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", writeTeam(t, teamYAML)}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Morning Primary")
	assert.Contains(t, out, "2024-01-07")
	assert.Contains(t, out, "Member")
}

func TestRun_CSVToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "roster.csv")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", writeTeam(t, teamYAML), "-format", "csv", "-out", out}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "Date,"))
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", writeTeam(t, teamYAML), "-format", "json"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var out struct {
		Assignments []json.RawMessage `json:"assignments"`
		Loads       []json.RawMessage `json:"loads"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Len(t, out.Assignments, 12)
	assert.Len(t, out.Loads, 3)
}

func TestRun_MarkdownAndHTML(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", writeTeam(t, teamYAML), "-format", "markdown"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	assert.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], "| Date |"))

	stdout.Reset()
	code = run([]string{"-config", writeTeam(t, teamYAML), "-format", "html"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "<table>")
	assert.Contains(t, stdout.String(), "值班表 2024-01-01 ~ 2024-01-07")
}

func TestRun_Save(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cli.db")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", writeTeam(t, teamYAML), "-format", "csv", "-save", "-name", "CLI", "-db", dsn}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stderr.String(), "已保存值班表")
	_, err := os.Stat(dsn)
	assert.NoError(t, err)
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitUsage, run(nil, &stdout, &stderr))

	invalid := writeTeam(t, "teamMembers: [Alice]\ndateRange: {start: \"2024-01-05\", end: \"2024-01-01\"}\n")
	stderr.Reset()
	assert.Equal(t, exitConfigError, run([]string{"-config", invalid}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "end_date")

	stderr.Reset()
	assert.Equal(t, exitFailure, run([]string{"-config", writeTeam(t, teamYAML), "-format", "xml"}, &stdout, &stderr))
}
