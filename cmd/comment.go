package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"telaah/internal/render"
	"telaah/internal/review"
)

var (
	commentRowID   int
	commentReplyTo int
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Discuss the open saved result file",
}

var commentListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the comment thread of the open file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return commentListRun()
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a comment on a table row, optionally replying to another comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commentAddRun(args[0])
	},
}

func init() {
	commentAddCmd.Flags().IntVar(&commentRowID, "row", 0, "Table row the comment is anchored to (required)")
	commentAddCmd.Flags().IntVar(&commentReplyTo, "reply", 0, "Reply to the comment with this id")
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	rootCmd.AddCommand(commentCmd)
}

// savedRef returns the file reference of the open view, failing when the
// view is staged. Comments only exist on saved files.
func savedRef(ctx context.Context) (*review.FileRef, error) {
	v, err := loadView(ctx)
	if err != nil {
		return nil, err
	}
	if v.Saved == nil {
		return nil, fmt.Errorf("comments need a saved file; save the results to a folder first")
	}
	return v.Saved, nil
}

func commentListRun() error {
	ctx := context.Background()
	ref, err := savedRef(ctx)
	if err != nil {
		return err
	}
	comments, err := getClient().GetComments(ctx, ref.Folder, ref.Filename)
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		ui.Info("No comments on %s yet.", ref.Filename)
		return nil
	}
	render.PrintComments(ui.Out, comments)
	return nil
}

func commentAddRun(text string) error {
	// Comments are row-anchored; the server rejects a missing row id.
	if commentRowID < 1 {
		return fmt.Errorf("comments attach to a table row; pass one with --row")
	}

	ctx := context.Background()
	ref, err := savedRef(ctx)
	if err != nil {
		return err
	}

	var parentID *int
	if commentReplyTo != 0 {
		parentID = &commentReplyTo
	}

	if dryRun {
		ui.DryRunMsg("Would comment on %s", ref.Filename)
		return nil
	}
	msg, err := getClient().AddComment(ctx, ref.Folder, ref.Filename, commentRowID, text, parentID)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Comment added"
	}
	ui.Success("%s", msg)
	return nil
}
