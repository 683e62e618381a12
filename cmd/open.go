package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"telaah/internal/models"
	"telaah/internal/render"
	"telaah/internal/review"
)

var openOwnerID int

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open staged or saved results for review",
}

var openStagedCmd = &cobra.Command{
	Use:   "staged <feature>",
	Short: "Open the staged results of the last analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openStagedRun(args[0])
	},
}

var openFileCmd = &cobra.Command{
	Use:   "file <folder> <filename>",
	Short: "Open a result file saved in a folder",
	Long: `Open a result file saved in a folder. Saved files live under the
folder owner's root; the owner id is resolved from the folder list, or pass
it directly with --owner.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openFileRun(args[0], args[1])
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the currently open result table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRun()
	},
}

func init() {
	openFileCmd.Flags().IntVar(&openOwnerID, "owner", 0, "Folder owner's user id (default: resolved from the folder list)")
	openCmd.AddCommand(openStagedCmd)
	openCmd.AddCommand(openFileCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(showCmd)
}

// loadView reads the open view from the session store.
func loadView(ctx context.Context) (*review.View, error) {
	s, err := getSession()
	if err != nil {
		return nil, err
	}
	data, ok, err := s.LoadView(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no result table is open (use 'telaah open')")
	}
	var v review.View
	if err := json.Unmarshal(data, &v); err != nil {
		_ = s.ClearView(ctx)
		return nil, fmt.Errorf("no result table is open (use 'telaah open')")
	}
	return &v, nil
}

// storeView persists the open view, replacing any prior one.
func storeView(ctx context.Context, v *review.View) error {
	s, err := getSession()
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.SaveView(ctx, data)
}

func openStagedRun(featureArg string) error {
	feature, ok := models.ParseFeature(featureArg)
	if !ok {
		return fmt.Errorf("unknown feature %q (want one of %v)", featureArg, models.AllFeatures)
	}

	s, err := getSession()
	if err != nil {
		return err
	}
	ctx := context.Background()

	rows, filename, ok, err := s.Restore(ctx, feature)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("nothing staged for %s (run 'telaah analyze %s <file>' first)", feature, feature)
	}

	// The staged action map applies once. After this open it is gone;
	// the view's live controls are the only state from here on.
	actions, _, err := s.ConsumeActions(ctx)
	if err != nil {
		return err
	}

	v := review.NewStagedView(feature, filename, rows, actions)
	if err := storeView(ctx, v); err != nil {
		return err
	}
	return printView(ctx, v)
}

func openFileRun(folder, filename string) error {
	c := getClient()
	ctx := context.Background()

	ownerID, err := resolveOwner(ctx, folder, openOwnerID)
	if err != nil {
		return err
	}
	file, err := c.GetResultFile(ctx, folder, filename, ownerID)
	if err != nil {
		return err
	}

	// The folder listing knows each file's analysis kind; fall back to
	// inferring it from the filename or row shape when unavailable.
	feature := models.Feature("")
	if entries, err := c.FolderHistory(ctx, ownerID, folder); err == nil {
		for _, entry := range entries {
			if entry.Filename == filename {
				feature = entry.FeatureType
			}
		}
	}
	if !feature.Valid() {
		feature = featureOfFilename(filename, file.Data)
	}
	ref := review.FileRef{Folder: folder, Filename: filename, OwnerID: ownerID}
	v := review.NewPersistedView(feature, ref, file)
	if err := storeView(ctx, v); err != nil {
		return err
	}
	return printView(ctx, v)
}

// featureOfFilename infers the analysis kind of a saved file from the
// feature prefix its filename was saved under, falling back to the row
// shape for files with unprefixed names.
func featureOfFilename(filename string, rows []models.Row) models.Feature {
	for _, feature := range models.AllFeatures {
		if len(filename) > len(feature) && filename[:len(feature)] == string(feature) {
			return feature
		}
	}
	for _, feature := range models.AllFeatures {
		for _, col := range feature.Columns() {
			if col == models.ColumnReplace || col == models.ColumnAssignee || col == models.ColumnFinalize {
				continue
			}
			if len(rows) > 0 {
				if _, ok := rows[0][col]; ok {
					return feature
				}
			}
		}
	}
	return models.FeatureProofreading
}

func showRun() error {
	ctx := context.Background()
	v, err := loadView(ctx)
	if err != nil {
		return err
	}
	return printView(ctx, v)
}

// printView renders the open view, with comments and user names when the
// view is backed by a saved file.
func printView(ctx context.Context, v *review.View) error {
	c := getClient()

	var comments []models.Comment
	var users []models.User
	if v.Saved != nil {
		if got, err := c.GetComments(ctx, v.Saved.Folder, v.Saved.Filename); err == nil {
			comments = got
		} else {
			ui.VerboseLog("comments unavailable: %v", err)
		}
	}
	if v.Feature.Editable() {
		if got, err := c.GetAllUsers(ctx); err == nil {
			users = got
		} else {
			ui.VerboseLog("user list unavailable: %v", err)
		}
	}

	switch v.Source {
	case review.SourcePersisted:
		ui.Info("%s / %s (%s, saved)", v.Saved.Folder, v.Saved.Filename, v.Feature)
	default:
		ui.Info("%s (%s, staged - not saved yet)", v.Filename, v.Feature)
	}

	render.Build(v.Rows, v.Feature.Columns(), comments, v.SampleActions(), users).Print(ui, users)

	if len(comments) > 0 {
		ui.Info("Comments:")
		render.PrintComments(ui.Out, comments)
	}
	return nil
}
