package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"telaah/internal/models"
	"telaah/internal/output"
	"telaah/internal/render"
)

var (
	taskName     string
	taskFeature  string
	taskStart    string
	taskDeadline string
	taskEnd      string

	calendarMonth string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Track analysis runs and manual work items",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskListRun()
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a manual task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAddRun(args[0])
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task's name, feature, or times",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskEditRun(args[0])
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskDeleteRun(args[0])
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show tasks on a month calendar with reminders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return calendarRun()
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskFeature, "feature", string(models.FeatureProofreading), "Analysis kind the task belongs to")
	taskAddCmd.Flags().StringVar(&taskStart, "start", "", "Start time (free-form, parsed server-side)")
	taskAddCmd.Flags().StringVar(&taskDeadline, "deadline", "", "Deadline (free-form, parsed server-side)")
	taskAddCmd.Flags().StringVar(&taskEnd, "end", "", "End time, for already-finished work")

	taskEditCmd.Flags().StringVar(&taskName, "name", "", "New task name")
	taskEditCmd.Flags().StringVar(&taskFeature, "feature", "", "New analysis kind")
	taskEditCmd.Flags().StringVar(&taskStart, "start", "", "New start time")
	taskEditCmd.Flags().StringVar(&taskDeadline, "deadline", "", "New deadline")
	taskEditCmd.Flags().StringVar(&taskEnd, "end", "", "New end time")

	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show as YYYY-MM (default: current)")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskEditCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(calendarCmd)
}

func taskListRun() error {
	tasks, err := getClient().GetAnalysisLogs(context.Background())
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		ui.Info("No tasks tracked yet.")
		return nil
	}

	table := ui.Table([]string{"ID", "NAME", "FEATURE", "START", "DEADLINE", "END", "STATUS"})
	for _, task := range tasks {
		end := "-"
		if task.EndTime != nil {
			end = *task.EndTime
		}
		table.Append([]string{
			strconv.Itoa(task.ID),
			task.Filename,
			string(task.FeatureType),
			task.StartTime,
			task.Deadline,
			end,
			output.StatusColor(string(task.Status)),
		})
	}
	table.Render()
	return nil
}

func taskFields(name string) (models.TaskFields, error) {
	fields := models.TaskFields{
		Filename:  name,
		StartTime: taskStart,
		Deadline:  taskDeadline,
		EndTime:   taskEnd,
	}
	if taskFeature != "" {
		feature, ok := models.ParseFeature(taskFeature)
		if !ok {
			return models.TaskFields{}, fmt.Errorf("unknown feature %q (want one of %v)", taskFeature, models.AllFeatures)
		}
		fields.FeatureType = feature
	}
	return fields, nil
}

func taskAddRun(name string) error {
	fields, err := taskFields(name)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would add task %s", name)
		return nil
	}
	msg, err := getClient().AddManualTask(context.Background(), fields)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Task %s added", name)
	}
	ui.Success("%s", msg)
	return nil
}

// editedTaskFields merges the edit flags over a task's current values. The
// edit endpoint treats the payload as the task's full new state: a blank
// name overwrites the stored one and an omitted deadline or end time is
// cleared, so every field goes out filled in.
func editedTaskFields(current models.TaskLog) (models.TaskFields, error) {
	fields := models.TaskFields{
		Filename:    current.Filename,
		FeatureType: current.FeatureType,
		StartTime:   current.StartTime,
		Deadline:    current.Deadline,
	}
	if current.EndTime != nil {
		fields.EndTime = *current.EndTime
	}
	if taskName != "" {
		fields.Filename = taskName
	}
	if taskFeature != "" {
		feature, ok := models.ParseFeature(taskFeature)
		if !ok {
			return models.TaskFields{}, fmt.Errorf("unknown feature %q (want one of %v)", taskFeature, models.AllFeatures)
		}
		fields.FeatureType = feature
	}
	if taskStart != "" {
		fields.StartTime = taskStart
	}
	if taskDeadline != "" {
		fields.Deadline = taskDeadline
	}
	if taskEnd != "" {
		fields.EndTime = taskEnd
	}
	return fields, nil
}

func taskEditRun(idArg string) error {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return fmt.Errorf("task id must be a number, got %q", idArg)
	}

	ctx := context.Background()
	tasks, err := getClient().GetAnalysisLogs(ctx)
	if err != nil {
		return err
	}
	var current *models.TaskLog
	for i := range tasks {
		if tasks[i].ID == id {
			current = &tasks[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("no task with id %d", id)
	}

	fields, err := editedTaskFields(*current)
	if err != nil {
		return err
	}
	if dryRun {
		ui.DryRunMsg("Would edit task %d", id)
		return nil
	}
	msg, err := getClient().EditTask(ctx, id, fields)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Task %d updated", id)
	}
	ui.Success("%s", msg)
	return nil
}

func taskDeleteRun(idArg string) error {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return fmt.Errorf("task id must be a number, got %q", idArg)
	}
	if dryRun {
		ui.DryRunMsg("Would delete task %d", id)
		return nil
	}
	msg, err := getClient().DeleteTask(context.Background(), id)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Task %d deleted", id)
	}
	ui.Success("%s", msg)
	return nil
}

func calendarRun() error {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if calendarMonth != "" {
		parsed, err := time.Parse("2006-01", calendarMonth)
		if err != nil {
			return fmt.Errorf("--month must be YYYY-MM, got %q", calendarMonth)
		}
		year, month = parsed.Year(), parsed.Month()
	}

	tasks, err := getClient().GetAnalysisLogs(context.Background())
	if err != nil {
		return err
	}

	render.PrintCalendar(ui.Out, tasks, year, month, now)
	fmt.Fprintln(ui.Out)
	render.PrintReminders(ui.Out, tasks)
	return nil
}
