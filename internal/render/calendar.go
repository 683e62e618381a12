package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"telaah/internal/models"
	"telaah/internal/output"
)

// taskTimeLayout matches the display format the server uses for task
// timestamps, e.g. "02 Mar 2026, 14:05".
const taskTimeLayout = "02 Jan 2006, 15:04"

// TaskDays collects the days of the given month that have at least one task
// starting on them. Timestamps that do not parse are skipped.
func TaskDays(tasks []models.TaskLog, year int, month time.Month) map[int]bool {
	days := make(map[int]bool)
	for _, task := range tasks {
		start, err := time.Parse(taskTimeLayout, task.StartTime)
		if err != nil {
			continue
		}
		if start.Year() == year && start.Month() == month {
			days[start.Day()] = true
		}
	}
	return days
}

// PrintCalendar writes a month grid, marking days with tasks. today is
// highlighted when it falls in the displayed month.
func PrintCalendar(w io.Writer, tasks []models.TaskLog, year int, month time.Month, today time.Time) {
	days := TaskDays(tasks, year, month)

	fmt.Fprintf(w, "%s %d\n", month.String(), year)
	fmt.Fprintln(w, "Su Mo Tu We Th Fr Sa")

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1).Day()

	var line strings.Builder
	line.WriteString(strings.Repeat("   ", int(first.Weekday())))
	for day := 1; day <= last; day++ {
		cell := fmt.Sprintf("%2d", day)
		switch {
		case today.Year() == year && today.Month() == month && today.Day() == day:
			cell = output.Cyan(cell)
		case days[day]:
			cell = output.Yellow(cell)
		}
		line.WriteString(cell)
		line.WriteString(" ")
		if (int(first.Weekday())+day)%7 == 0 {
			fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	if line.Len() > 0 {
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

// PrintReminders lists in-progress and overdue tasks below the calendar.
// Status comes from the server as-is; nothing is recomputed locally.
func PrintReminders(w io.Writer, tasks []models.TaskLog) {
	var active, overdue []models.TaskLog
	for _, task := range tasks {
		switch task.Status {
		case models.TaskStatusOnProgress:
			active = append(active, task)
		case models.TaskStatusOverdue:
			overdue = append(overdue, task)
		}
	}
	if len(active) == 0 && len(overdue) == 0 {
		fmt.Fprintln(w, "No active tasks.")
		return
	}
	for _, task := range overdue {
		fmt.Fprintf(w, "%s %s (%s) due %s\n", output.Red("!"), task.Filename, task.FeatureType, task.Deadline)
	}
	for _, task := range active {
		fmt.Fprintf(w, "%s %s (%s) due %s\n", output.Yellow("*"), task.Filename, task.FeatureType, task.Deadline)
	}
}
