package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"telaah/internal/review"
)

var saveOwnerID int

var saveCmd = &cobra.Command{
	Use:   "save <folder>",
	Short: "Save the open staged results into a folder",
	Long: `Save the open result table as a new file in a folder, together with
the current action state of every row. The destination folder's owner id is
resolved from the folder list, or pass it directly with --owner.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveRun(args[0])
	},
}

func init() {
	saveCmd.Flags().IntVar(&saveOwnerID, "owner", 0, "Folder owner's user id (default: resolved from the folder list)")
	rootCmd.AddCommand(saveCmd)
}

func saveRun(folder string) error {
	ctx := context.Background()
	v, err := loadView(ctx)
	if err != nil {
		return err
	}

	req, err := review.SaveRequest(v, folder, saveOwnerID)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would save %d rows of %s results to folder %s", len(req.ResultsData), req.FeatureType, folder)
		return nil
	}

	// Preconditions are checked above, before any request goes out; only
	// then is the owner id worth a lookup.
	req.OwnerID, err = resolveOwner(ctx, folder, saveOwnerID)
	if err != nil {
		return err
	}

	msg, err := getClient().SaveResults(ctx, req)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Results saved"
	}
	ui.Success("%s", msg)
	ui.Info("Open the saved file with 'telaah open file %s <filename>' to finalize rows.", folder)
	return nil
}
