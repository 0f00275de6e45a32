package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paiban/oncall/pkg/model"
)

func TestMarkdownTable(t *testing.T) {
	rows := []model.RosterRow{
		{Date: "2024-01-05", MorningPrimary: "Alice", MorningSecondary: "Bob", EveningPrimary: "Carol"},
		{Date: "2024-01-06", IsWeekend: true, WeekendPrimary: "Bob", WeekendSecondary: "Dave"},
	}

	md, err := MarkdownTable(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(md), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| Date | Morning Primary | Morning Secondary | Evening Primary | Evening Secondary | Weekend Primary | Weekend Secondary |", lines[0])
	assert.Equal(t, "| 2024-01-05 | Alice | Bob | Carol | — |  |  |", lines[2])
	assert.Equal(t, "| 2024-01-06 |  |  |  |  | Bob | Dave |", lines[3])
}

func TestMarkdownTable_EscapesNames(t *testing.T) {
	md, err := MarkdownTable([]model.RosterRow{
		{Date: "2024-01-05", MorningPrimary: "A|B", MorningSecondary: "*Eve*"},
	})
	require.NoError(t, err)
	assert.Contains(t, md, `A\|B`)
	assert.Contains(t, md, `\*Eve\*`)
}

func TestWriteHTML(t *testing.T) {
	rows := []model.RosterRow{
		{Date: "2024-01-05", MorningPrimary: "Alice", MorningSecondary: "<b>Eve", EveningPrimary: "A|B"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "Team <SRE>", rows))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Team &lt;SRE&gt;</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<th>Date</th>")
	assert.Contains(t, out, "<td>Alice</td>")
	assert.Contains(t, out, "<td>&lt;b&gt;Eve</td>")
	assert.Contains(t, out, "<td>A|B</td>")
	assert.Contains(t, out, "<td>—</td>")
	assert.NotContains(t, out, "<b>Eve")
}

func TestWriteHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHTML(&buf, "empty", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRosterData))
	assert.Zero(t, buf.Len())
}
