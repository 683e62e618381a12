package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"telaah/internal/models"
	"telaah/internal/output"
)

var (
	marked    = color.New(color.FgHiRed).SprintFunc()
	highlight = color.New(color.FgHiYellow, color.Bold).SprintFunc()
)

// Print writes the table through the shared UI styling. users resolve
// assignee ids to display names; an id with no matching user prints as the
// raw id so stale assignments stay visible.
func (t *Table) Print(u *output.UI, users []models.User) {
	headers := append([]string{"#"}, t.Headers...)
	tw := u.Table(headers)
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		cells = append(cells, fmt.Sprintf("%d", row.ID))
		for _, cell := range row.Cells {
			cells = append(cells, formatCell(cell, row.Controls, users))
		}
		tw.Append(cells)
	}
	tw.Render()
}

func formatCell(cell Cell, controls *RowControls, users []models.User) string {
	switch cell.Kind {
	case CellDiff:
		var b strings.Builder
		for _, seg := range cell.Segments {
			if seg.Marked {
				b.WriteString(marked(seg.Text))
			} else {
				b.WriteString(seg.Text)
			}
		}
		return b.String()
	case CellHighlight:
		var b strings.Builder
		for _, seg := range cell.Segments {
			if seg.Marked {
				b.WriteString(highlight(seg.Text))
			} else {
				b.WriteString(seg.Text)
			}
		}
		return b.String()
	case CellCheckbox:
		if controls != nil && controls.Replace {
			return "[x]"
		}
		return "[ ]"
	case CellSelect:
		if controls == nil || controls.PICUserID == nil {
			return "-"
		}
		return userName(users, *controls.PICUserID)
	case CellButton:
		if controls == nil {
			return ""
		}
		label := controls.FinalizeLabel
		if !controls.FinalizeEnabled {
			label = "(" + label + ")"
		}
		return label
	default:
		return cell.Text
	}
}

func userName(users []models.User, id int) string {
	for _, u := range users {
		if u.ID == id {
			return u.Username
		}
	}
	return fmt.Sprintf("#%d", id)
}

// MaxCommentDepth bounds thread nesting on display. Server data is expected
// to stay shallow; anything deeper renders flattened at this level.
const MaxCommentDepth = 8

// PrintComments writes a comment thread with indentation per reply level.
func PrintComments(w io.Writer, comments []models.Comment) {
	printComments(w, comments, 0)
}

// commentTime prettifies the server's bare isoformat timestamp
// ("2026-08-31T10:00:00.123456"). Anything else prints as-is.
func commentTime(ts string) string {
	if t, err := time.Parse("2006-01-02T15:04:05", strings.SplitN(ts, ".", 2)[0]); err == nil {
		return t.Format("02 Jan 2006 15:04")
	}
	return ts
}

func printComments(w io.Writer, comments []models.Comment, depth int) {
	if depth > MaxCommentDepth {
		depth = MaxCommentDepth
	}
	indent := strings.Repeat("  ", depth)
	for _, c := range comments {
		target := "general"
		if c.RowID != nil {
			target = fmt.Sprintf("row %d", *c.RowID)
		}
		fmt.Fprintf(w, "%s%s (%s, %s):\n", indent, output.Cyan(c.Username), target, commentTime(c.Timestamp))
		for _, line := range strings.Split(c.Text, "\n") {
			fmt.Fprintf(w, "%s  %s\n", indent, line)
		}
		if len(c.Replies) > 0 {
			printComments(w, c.Replies, depth+1)
		}
	}
}
