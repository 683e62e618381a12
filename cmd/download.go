package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"telaah/internal/api"
	"telaah/internal/models"
)

var (
	downloadVariant    string
	downloadSecondFile string
	downloadDestDir    string
)

var downloadCmd = &cobra.Command{
	Use:   "download <feature> <file>",
	Short: "Download a derived document for an analyzed file",
	Long: `Upload a document and download the server's derived artifact for it:
the revised version, a highlighted copy, or an archive, depending on the
feature and --variant. The compare feature needs --file2.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return downloadRun(args[0], args[1])
	},
}

func init() {
	downloadCmd.Flags().StringVar(&downloadVariant, "variant", "", "Artifact variant (feature-specific, e.g. revised, highlight)")
	downloadCmd.Flags().StringVar(&downloadSecondFile, "file2", "", "Second document for the compare feature")
	downloadCmd.Flags().StringVar(&downloadDestDir, "dest", "", "Directory to save into (default: download_dir)")
	rootCmd.AddCommand(downloadCmd)
}

func downloadRun(featureArg, path string) error {
	feature, ok := models.ParseFeature(featureArg)
	if !ok {
		return fmt.Errorf("unknown feature %q (want one of %v)", featureArg, models.AllFeatures)
	}
	if feature == models.FeatureCompare && downloadSecondFile == "" {
		return fmt.Errorf("the compare feature needs --file2")
	}

	destDir := downloadDestDir
	if destDir == "" {
		destDir = viper.GetString("download_dir")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	c := getClient()
	ctx := context.Background()
	filename := filepath.Base(path)

	var dest string
	if feature == models.FeatureCompare {
		f2, err := os.Open(downloadSecondFile)
		if err != nil {
			return err
		}
		defer f2.Close()
		dest, err = c.DownloadTwo(ctx, feature, filename, f, filepath.Base(downloadSecondFile), f2, destDir)
		if err != nil {
			return downloadFailed(err)
		}
	} else {
		dest, err = c.Download(ctx, feature, downloadVariant, filename, f, destDir)
		if err != nil {
			return downloadFailed(err)
		}
	}

	ui.Success("Saved %s", dest)
	return nil
}

func downloadFailed(err error) error {
	if api.IsQuotaError(err) {
		return fmt.Errorf("%s", api.QuotaExplanation)
	}
	return err
}
