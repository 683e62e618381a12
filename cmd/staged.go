package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"telaah/internal/models"
)

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Inspect the session staging buffer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stagedStatusRun()
	},
}

var stagedClearCmd = &cobra.Command{
	Use:   "clear <feature>",
	Short: "Drop the staged results of one analysis kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return stagedClearRun(args[0])
	},
}

func init() {
	stagedCmd.AddCommand(stagedClearCmd)
	rootCmd.AddCommand(stagedCmd)
}

func stagedStatusRun() error {
	s, err := getSession()
	if err != nil {
		return err
	}
	ctx := context.Background()

	table := ui.Table([]string{"FEATURE", "STAGED", "ROWS", "LAST FILE"})
	for _, feature := range models.AllFeatures {
		rows, filename, ok, err := s.Restore(ctx, feature)
		if err != nil {
			return err
		}
		staged, count := "-", "-"
		if ok {
			staged = filename
			count = fmt.Sprintf("%d", len(rows))
		}
		lastName := "-"
		if name, ok, err := s.LastFilename(ctx, feature); err == nil && ok {
			lastName = name
		}
		table.Append([]string{string(feature), staged, count, lastName})
	}
	table.Render()
	return nil
}

func stagedClearRun(featureArg string) error {
	feature, ok := models.ParseFeature(featureArg)
	if !ok {
		return fmt.Errorf("unknown feature %q (want one of %v)", featureArg, models.AllFeatures)
	}
	s, err := getSession()
	if err != nil {
		return err
	}
	if err := s.ClearStaged(context.Background(), feature); err != nil {
		return err
	}
	ui.Success("Staged %s results cleared", feature)
	return nil
}
