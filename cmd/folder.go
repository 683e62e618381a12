package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"telaah/internal/review"
)

var (
	folderShareUsers   []int
	folderHistoryOwner int
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage workspace folders and their saved results",
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List own and shared folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return folderListRun()
	},
}

var folderCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return folderCreateRun(args[0])
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an owned folder and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return folderDeleteRun(args[0])
	},
}

var folderShareCmd = &cobra.Command{
	Use:   "share <name>",
	Short: "Share an owned folder with other users",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return folderShareRun(args[0])
	},
}

var folderRemoveCmd = &cobra.Command{
	Use:   "remove <name> <filename>",
	Short: "Delete one saved result file from a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return folderRemoveRun(args[0], args[1])
	},
}

var folderHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "List the saved result files in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return folderHistoryRun(args[0])
	},
}

func init() {
	folderShareCmd.Flags().IntSliceVar(&folderShareUsers, "user", nil, "User id to share with (repeatable)")
	folderHistoryCmd.Flags().IntVar(&folderHistoryOwner, "owner", 0, "Folder owner's user id (default: resolved from the folder list)")
	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderCreateCmd)
	folderCmd.AddCommand(folderDeleteCmd)
	folderCmd.AddCommand(folderShareCmd)
	folderRemoveCmd.Flags().IntVar(&folderHistoryOwner, "owner", 0, "Folder owner's user id (default: resolved from the folder list)")
	folderCmd.AddCommand(folderRemoveCmd)
	folderCmd.AddCommand(folderHistoryCmd)
	rootCmd.AddCommand(folderCmd)
}

// resolveOwner fills in a folder's owner user id when the --owner flag was
// left unset. The server resolves storage roots from the owner id and
// rejects a zero one, so a real id is needed even for the user's own
// folders.
func resolveOwner(ctx context.Context, folder string, flagValue int) (int, error) {
	if flagValue != 0 {
		return flagValue, nil
	}
	return getClient().ResolveOwner(ctx, folder)
}

func folderListRun() error {
	folders, err := getClient().ListFolders(context.Background())
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		ui.Info("No folders yet. Create one with 'telaah folder create <name>'.")
		return nil
	}

	table := ui.Table([]string{"NAME", "OWNER"})
	for _, f := range folders {
		owner := "(you)"
		if !f.IsOwner {
			owner = fmt.Sprintf("%s (#%d)", f.OwnerName, f.OwnerID)
		}
		table.Append([]string{f.Name, owner})
	}
	table.Render()
	return nil
}

func folderCreateRun(name string) error {
	if dryRun {
		ui.DryRunMsg("Would create folder %s", name)
		return nil
	}
	msg, err := getClient().CreateFolder(context.Background(), name)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Folder %s created", name)
	}
	ui.Success("%s", msg)
	return nil
}

func folderDeleteRun(name string) error {
	if dryRun {
		ui.DryRunMsg("Would delete folder %s and all its files", name)
		return nil
	}
	msg, err := getClient().DeleteFolder(context.Background(), name)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("Folder %s deleted", name)
	}
	ui.Success("%s", msg)
	return nil
}

func folderShareRun(name string) error {
	if len(folderShareUsers) == 0 {
		return fmt.Errorf("no recipients (use --user at least once)")
	}
	if dryRun {
		ui.DryRunMsg("Would share folder %s with %d users", name, len(folderShareUsers))
		return nil
	}
	result, err := getClient().ShareFolder(context.Background(), name, folderShareUsers)
	if err != nil {
		return err
	}
	summary := review.ShareSummary(result)
	if len(result.Errors) > 0 {
		ui.Warning("%s", summary)
	} else {
		ui.Success("%s", summary)
	}
	return nil
}

func folderRemoveRun(name, filename string) error {
	if dryRun {
		ui.DryRunMsg("Would delete %s from folder %s", filename, name)
		return nil
	}
	ctx := context.Background()
	ownerID, err := resolveOwner(ctx, name, folderHistoryOwner)
	if err != nil {
		return err
	}
	msg, err := getClient().DeleteResult(ctx, name, filename, ownerID)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = fmt.Sprintf("%s deleted from %s", filename, name)
	}
	ui.Success("%s", msg)
	return nil
}

func folderHistoryRun(name string) error {
	ctx := context.Background()
	ownerID, err := resolveOwner(ctx, name, folderHistoryOwner)
	if err != nil {
		return err
	}
	entries, err := getClient().FolderHistory(ctx, ownerID, name)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ui.Info("Folder %s has no saved results.", name)
		return nil
	}

	table := ui.Table([]string{"FILE", "ORIGINAL", "FEATURE", "SAVED AT"})
	for _, e := range entries {
		table.Append([]string{e.Filename, e.OriginalName, string(e.FeatureType), e.Timestamp})
	}
	table.Render()
	return nil
}
