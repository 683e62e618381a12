package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"telaah/internal/api"
	"telaah/internal/models"
	"telaah/internal/render"
	"telaah/internal/review"
)

var analyzeSecondFile string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <feature> <file>",
	Short: "Upload a document for analysis and stage the results",
	Long: `Upload a document for analysis. Results are staged in the session
database so they survive until the next analysis of the same kind, and the
staged action map is replaced.

Features: proofreading, restructure, coherence, compare.
The compare feature needs a second file via --file2.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyzeRun(args[0], args[1])
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSecondFile, "file2", "", "Second document (revised version) for the compare feature")
	rootCmd.AddCommand(analyzeCmd)
}

func analyzeRun(featureArg, path string) error {
	feature, ok := models.ParseFeature(featureArg)
	if !ok {
		return fmt.Errorf("unknown feature %q (want one of %v)", featureArg, models.AllFeatures)
	}
	if feature == models.FeatureCompare && analyzeSecondFile == "" {
		return fmt.Errorf("the compare feature needs --file2")
	}

	c := getClient()
	ctx := context.Background()
	filename := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Best-effort task log around the analysis. A logging failure never
	// blocks the analysis itself.
	logID, logErr := c.LogAnalysisStart(ctx, filename, feature)
	if logErr != nil {
		ui.VerboseLog("task log unavailable: %v", logErr)
	}

	ui.Info("Analyzing %s (%s)...", filename, feature)

	var rows []models.Row
	if feature == models.FeatureCompare {
		f2, err := os.Open(analyzeSecondFile)
		if err != nil {
			return err
		}
		defer f2.Close()
		rows, err = c.AnalyzeAdvanced(ctx, feature, filename, f, filepath.Base(analyzeSecondFile), f2)
		if err != nil {
			return analyzeFailed(ctx, c, logID, logErr, err)
		}
	} else {
		rows, err = c.Analyze(ctx, feature, filename, f)
		if err != nil {
			return analyzeFailed(ctx, c, logID, logErr, err)
		}
	}

	if logErr == nil {
		if err := c.LogAnalysisEnd(ctx, logID, models.TaskStatusDone); err != nil {
			ui.VerboseLog("task log close failed: %v", err)
		}
	}

	s, err := getSession()
	if err != nil {
		return err
	}
	view := review.NewStagedView(feature, filename, rows, nil)
	if err := s.Stash(ctx, feature, filename, rows, view.SampleActions()); err != nil {
		return fmt.Errorf("stage results: %w", err)
	}

	ui.Success("%d findings for %s", len(rows), filename)
	render.Build(rows, feature.Columns(), nil, view.SampleActions(), nil).Print(ui, nil)
	ui.Info("Run 'telaah open staged %s' to review, 'telaah save <folder>' to persist.", feature)
	return nil
}

func analyzeFailed(ctx context.Context, c *api.Client, logID int, logErr, err error) error {
	if logErr == nil {
		if endErr := c.LogAnalysisEnd(ctx, logID, models.TaskStatusError); endErr != nil {
			ui.VerboseLog("task log close failed: %v", endErr)
		}
	}
	if api.IsQuotaError(err) {
		return fmt.Errorf("%s", api.QuotaExplanation)
	}
	return err
}
