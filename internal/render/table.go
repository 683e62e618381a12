// Package render turns result rows, comment threads, and action state into
// display structures. Building is pure: identical inputs yield identical
// output and no input is ever mutated. Printing is a separate step.
package render

import (
	"slices"
	"unicode"

	"telaah/internal/models"
)

// Table is the display structure for one result set.
type Table struct {
	Columns  []string
	Headers  []string
	Rows     []DisplayRow
	Comments []models.Comment
}

// DisplayRow is one rendered finding. ID is the 1-based position of the row
// in the source sequence; it is recomputed on every build and is only
// meaningful within this table instance.
type DisplayRow struct {
	ID       int
	Cells    []Cell
	Controls *RowControls
}

// RowControls is the live, user-editable control state of one row: the
// replace checkbox, the assignee selection, and the finalize trigger.
type RowControls struct {
	Replace         bool
	PICUserID       *int
	FinalizeLabel   string
	FinalizeEnabled bool
}

// Action samples the controls into a RowAction.
func (c *RowControls) Action() models.RowAction {
	return models.RowAction{Replace: c.Replace, PICUserID: c.PICUserID}
}

// CellKind distinguishes presentation rules per column.
type CellKind int

const (
	CellText CellKind = iota
	CellDiff
	CellHighlight
	CellCheckbox
	CellSelect
	CellButton
)

// Cell is one rendered table cell. Diff and highlight cells carry segments;
// control cells read their state from the row's Controls.
type Cell struct {
	Kind     CellKind
	Text     string
	Segments []Segment
}

// Segment is a fragment of cell text. Marked segments get the visual marker
// (changed diff span, or a highlighted error-term occurrence).
type Segment struct {
	Text   string
	Marked bool
}

// DefaultFinalizeLabel is the idle label of the per-row save trigger. The
// trigger starts enabled so a user can confirm default state without first
// touching a control.
const DefaultFinalizeLabel = "Save"

// Build assembles the display structure for rows under the given column
// set. actions preset the control state; users resolve assignee ids to
// names at print time. rows, comments, and actions are never modified.
func Build(rows []models.Row, columns []string, comments []models.Comment, actions models.ActionMap, users []models.User) *Table {
	t := &Table{
		Columns:  columns,
		Headers:  make([]string, len(columns)),
		Rows:     make([]DisplayRow, 0, len(rows)),
		Comments: comments,
	}
	for i, col := range columns {
		t.Headers[i] = models.ColumnLabel(col)
	}

	editable := false
	for _, col := range columns {
		if col == models.ColumnReplace {
			editable = true
		}
	}

	for i, row := range rows {
		rowID := i + 1
		dr := DisplayRow{ID: rowID}

		if editable {
			controls := &RowControls{
				FinalizeLabel:   DefaultFinalizeLabel,
				FinalizeEnabled: true,
			}
			if saved, ok := actions[rowID]; ok {
				controls.Replace = saved.Replace
				controls.PICUserID = saved.PICUserID
			}
			dr.Controls = controls
		}

		dr.Cells = make([]Cell, 0, len(columns))
		for _, col := range columns {
			dr.Cells = append(dr.Cells, buildCell(row, col))
		}
		t.Rows = append(t.Rows, dr)
	}
	return t
}

func buildCell(row models.Row, column string) Cell {
	switch column {
	case models.ColumnRevised, models.ColumnSuggested:
		if spans := row.DiffSpans(column); spans != nil {
			segments := make([]Segment, 0, len(spans))
			for _, span := range spans {
				segments = append(segments, Segment{Text: span.Text, Marked: span.Changed})
			}
			return Cell{Kind: CellDiff, Segments: segments}
		}
		return Cell{Kind: CellText, Text: row.String(column)}
	case models.ColumnContext:
		return Cell{
			Kind:     CellHighlight,
			Segments: highlightSegments(row.String(column), row.String(models.ColumnErrorTerm)),
		}
	case models.ColumnReplace:
		return Cell{Kind: CellCheckbox}
	case models.ColumnAssignee:
		return Cell{Kind: CellSelect}
	case models.ColumnFinalize:
		return Cell{Kind: CellButton}
	case models.ColumnReason:
		return Cell{Kind: CellText, Text: row.String(column)}
	default:
		return Cell{Kind: CellText, Text: row.String(column)}
	}
}

// highlightSegments splits text into segments, marking every
// case-insensitive occurrence of term. An empty term yields the whole text
// unmarked. Matching works rune-wise on lowered copies; lowercasing can
// change a rune's encoded length, so byte offsets into a lowered string do
// not transfer back to the original.
func highlightSegments(text, term string) []Segment {
	if term == "" || text == "" {
		return []Segment{{Text: text}}
	}

	runes := []rune(text)
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}
	want := []rune(term)
	for i, r := range want {
		want[i] = unicode.ToLower(r)
	}

	var segments []Segment
	start := 0
	for i := 0; i+len(want) <= len(runes); {
		if !slices.Equal(lowered[i:i+len(want)], want) {
			i++
			continue
		}
		if i > start {
			segments = append(segments, Segment{Text: string(runes[start:i])})
		}
		segments = append(segments, Segment{Text: string(runes[i : i+len(want)]), Marked: true})
		i += len(want)
		start = i
	}
	if start < len(runes) {
		segments = append(segments, Segment{Text: string(runes[start:])})
	}
	return segments
}
