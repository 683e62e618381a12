package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"telaah/internal/review"
)

var rowCheckOff bool

var rowCmd = &cobra.Command{
	Use:   "row",
	Short: "Edit and finalize per-row actions of the open table",
}

var rowCheckCmd = &cobra.Command{
	Use:   "check <row-id>",
	Short: "Mark a row's finding for replacement (--off to unmark)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rowCheckRun(args[0])
	},
}

var rowPicCmd = &cobra.Command{
	Use:   "pic <row-id> <user-id>",
	Short: "Assign the responsible user for a row ('-' to clear)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rowPicRun(args[0], args[1])
	},
}

var rowFinalizeCmd = &cobra.Command{
	Use:   "finalize <row-id>|all",
	Short: "Persist a row's current action state to the saved file",
	Long: `Persist the current action state of one row, or of every row with
'all'. Rows are finalized independently; a failing row does not stop the
rest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "all" {
			return rowFinalizeAllRun()
		}
		return rowFinalizeRun(args[0])
	},
}

func init() {
	rowCheckCmd.Flags().BoolVar(&rowCheckOff, "off", false, "Unmark instead of mark")
	rowCmd.AddCommand(rowCheckCmd)
	rowCmd.AddCommand(rowPicCmd)
	rowCmd.AddCommand(rowFinalizeCmd)
	rootCmd.AddCommand(rowCmd)
}

func parseRowID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("row id must be a number, got %q", arg)
	}
	return id, nil
}

func rowCheckRun(arg string) error {
	rowID, err := parseRowID(arg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadView(ctx)
	if err != nil {
		return err
	}
	if err := v.SetReplace(rowID, !rowCheckOff); err != nil {
		return err
	}
	if err := storeView(ctx, v); err != nil {
		return err
	}
	if rowCheckOff {
		ui.Success("Row %d unmarked", rowID)
	} else {
		ui.Success("Row %d marked for replacement", rowID)
	}
	return nil
}

func rowPicRun(rowArg, userArg string) error {
	rowID, err := parseRowID(rowArg)
	if err != nil {
		return err
	}
	var userID *int
	if userArg != "-" {
		id, err := strconv.Atoi(userArg)
		if err != nil {
			return fmt.Errorf("user id must be a number or '-', got %q", userArg)
		}
		userID = &id
	}

	ctx := context.Background()
	v, err := loadView(ctx)
	if err != nil {
		return err
	}
	if err := v.SetPIC(rowID, userID); err != nil {
		return err
	}
	if err := storeView(ctx, v); err != nil {
		return err
	}
	if userID == nil {
		ui.Success("Row %d assignee cleared", rowID)
	} else {
		ui.Success("Row %d assigned to user %d", rowID, *userID)
	}
	return nil
}

func rowFinalizeRun(arg string) error {
	rowID, err := parseRowID(arg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadView(ctx)
	if err != nil {
		return err
	}

	ui.Info("Saving row %d...", rowID)
	msg, err := review.Finalize(ctx, getClient(), v, rowID)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Saved!"
	}
	ui.Success("%s", msg)
	return nil
}

func rowFinalizeAllRun() error {
	ctx := context.Background()
	v, err := loadView(ctx)
	if err != nil {
		return err
	}
	if v.Saved == nil {
		return review.ErrNotSaved
	}

	c := getClient()
	failures := 0
	for rowID := 1; rowID <= len(v.Rows); rowID++ {
		if _, err := review.Finalize(ctx, c, v, rowID); err != nil {
			ui.Warning("row %d: %v", rowID, err)
			failures++
			continue
		}
		ui.VerboseLog("row %d saved", rowID)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d rows failed", failures, len(v.Rows))
	}
	ui.Success("All %d rows saved", len(v.Rows))
	return nil
}
