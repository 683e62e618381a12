package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telaah/internal/models"
)

func TestBuildAssignsSequentialRowIDs(t *testing.T) {
	rows := []models.Row{
		{"Kata/Frasa Salah": "a"},
		{"Kata/Frasa Salah": "b"},
		{"Kata/Frasa Salah": "c"},
	}
	table := Build(rows, models.FeatureProofreading.Columns(), nil, nil, nil)
	require.Len(t, table.Rows, 3)
	for i, row := range table.Rows {
		assert.Equal(t, i+1, row.ID)
	}
}

func TestBuildPresetsControlsFromActions(t *testing.T) {
	rows := []models.Row{
		{"Kata/Frasa Salah": "a"},
		{"Kata/Frasa Salah": "b"},
	}
	pic := 7
	actions := models.ActionMap{
		2: {Replace: true, PICUserID: &pic},
	}
	table := Build(rows, models.FeatureProofreading.Columns(), nil, actions, nil)

	require.NotNil(t, table.Rows[0].Controls)
	assert.False(t, table.Rows[0].Controls.Replace)
	assert.Nil(t, table.Rows[0].Controls.PICUserID)

	require.NotNil(t, table.Rows[1].Controls)
	assert.True(t, table.Rows[1].Controls.Replace)
	require.NotNil(t, table.Rows[1].Controls.PICUserID)
	assert.Equal(t, 7, *table.Rows[1].Controls.PICUserID)
	assert.Equal(t, DefaultFinalizeLabel, table.Rows[1].Controls.FinalizeLabel)
	assert.True(t, table.Rows[1].Controls.FinalizeEnabled)
}

func TestBuildReadOnlyFeatureHasNoControls(t *testing.T) {
	rows := []models.Row{{"diff": "x"}}
	table := Build(rows, models.FeatureCompare.Columns(), nil, nil, nil)
	require.Len(t, table.Rows, 1)
	assert.Nil(t, table.Rows[0].Controls)
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	rows := []models.Row{{"Kata/Frasa Salah": "a", "Pada Kalimat": "a b"}}
	actions := models.ActionMap{1: {Replace: true}}

	first := Build(rows, models.FeatureProofreading.Columns(), nil, actions, nil)
	second := Build(rows, models.FeatureProofreading.Columns(), nil, actions, nil)

	assert.Equal(t, first, second)
	assert.Equal(t, models.Row{"Kata/Frasa Salah": "a", "Pada Kalimat": "a b"}, rows[0])
	assert.Equal(t, models.ActionMap{1: {Replace: true}}, actions)
}

func TestHighlightSegments(t *testing.T) {
	segments := highlightSegments("Saya pergi ke pasar kemaren", "kemaren")
	require.Len(t, segments, 2)
	assert.Equal(t, Segment{Text: "Saya pergi ke pasar "}, segments[0])
	assert.Equal(t, Segment{Text: "kemaren", Marked: true}, segments[1])
}

func TestHighlightSegmentsCaseInsensitive(t *testing.T) {
	segments := highlightSegments("Kemaren dan kemaren lagi", "KEMAREN")
	var markedTexts []string
	for _, seg := range segments {
		if seg.Marked {
			markedTexts = append(markedTexts, seg.Text)
		}
	}
	assert.Equal(t, []string{"Kemaren", "kemaren"}, markedTexts)
}

func TestHighlightSegmentsLengthChangingLowercase(t *testing.T) {
	// "Ⱥ" lowercases to "ⱥ", which is one byte longer in UTF-8. Matching
	// must not carry byte offsets from the lowered text into the original.
	segments := highlightSegments("ȺȺȺȺ kemaren", "kemaren")
	require.Len(t, segments, 2)
	assert.Equal(t, Segment{Text: "ȺȺȺȺ "}, segments[0])
	assert.Equal(t, Segment{Text: "kemaren", Marked: true}, segments[1])

	segments = highlightSegments("Ⱥ kemaren Ⱥ", "KEMAREN")
	require.Len(t, segments, 3)
	assert.Equal(t, Segment{Text: "kemaren", Marked: true}, segments[1])
	assert.Equal(t, Segment{Text: " Ⱥ"}, segments[2])
}

func TestHighlightSegmentsEmptyTerm(t *testing.T) {
	segments := highlightSegments("Saya pergi ke pasar kemaren", "")
	assert.Equal(t, []Segment{{Text: "Saya pergi ke pasar kemaren"}}, segments)
}

func TestBuildDiffCell(t *testing.T) {
	rows := []models.Row{{
		"Kata/Frasa Salah": "kemaren",
		"Kalimat Revisi": []any{
			map[string]any{"text": "Saya pergi ", "changed": false},
			map[string]any{"text": "kemarin", "changed": true},
		},
	}}
	table := Build(rows, []string{models.ColumnErrorTerm, models.ColumnRevised}, nil, nil, nil)

	diff := table.Rows[0].Cells[1]
	assert.Equal(t, CellDiff, diff.Kind)
	assert.Equal(t, []Segment{
		{Text: "Saya pergi "},
		{Text: "kemarin", Marked: true},
	}, diff.Segments)
}

func TestBuildDiffCellFallsBackToPlainText(t *testing.T) {
	rows := []models.Row{{"Kalimat Revisi": "sudah benar"}}
	table := Build(rows, []string{models.ColumnRevised}, nil, nil, nil)
	cell := table.Rows[0].Cells[0]
	assert.Equal(t, CellText, cell.Kind)
	assert.Equal(t, "sudah benar", cell.Text)
}

func TestPrintCommentsCapsDepth(t *testing.T) {
	// A thread nested far past the display cap should indent no further
	// than MaxCommentDepth levels.
	leaf := models.Comment{ID: 99, Username: "deep", Text: "bottom", Timestamp: "2026-08-31T10:00:00.123456"}
	thread := leaf
	for i := 0; i < MaxCommentDepth+5; i++ {
		thread = models.Comment{
			ID:        i,
			Username:  "u",
			Text:      "reply",
			Timestamp: "2026-08-31T10:00:00.123456",
			Replies:   []models.Comment{thread},
		}
	}

	var buf bytes.Buffer
	PrintComments(&buf, []models.Comment{thread})

	out := buf.String()
	assert.Contains(t, out, "bottom")
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmed)
		assert.LessOrEqual(t, indent, 2*MaxCommentDepth+2)
	}
}

func TestTaskDaysSkipsUnparseableTimes(t *testing.T) {
	tasks := []models.TaskLog{
		{Filename: "a.pdf", StartTime: "05 Mar 2026, 09:00"},
		{Filename: "b.pdf", StartTime: "not a time"},
		{Filename: "c.pdf", StartTime: "12 Apr 2026, 10:00"},
	}
	days := TaskDays(tasks, 2026, time.March)
	assert.Equal(t, map[int]bool{5: true}, days)
}
