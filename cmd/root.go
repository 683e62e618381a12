package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"telaah/internal/api"
	"telaah/internal/output"
	"telaah/internal/staging"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui      *output.UI
	session staging.Store
	client  *api.Client

	verbose bool
	dryRun  bool

	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   "telaah",
	Short: "Telaah - review document analysis results from the terminal",
	Long: `telaah is a terminal client for the document-review server.
It uploads documents for analysis, keeps fresh results staged per
session, and manages folders, row actions, comments, tasks, and the
internal mailbox.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return rootRun(cmd)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/telaah/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "Review server base URL (overrides config)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "telaah")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TELAAH")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "telaah")

	viper.SetDefault("server.url", "http://localhost:5000")
	viper.SetDefault("server.token", "")
	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "session.db"))
	viper.SetDefault("download_dir", ".")
	viper.SetDefault("mail.poll_interval", "60s")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()

	if server, _ := rootCmd.PersistentFlags().GetString("server"); server != "" {
		viper.Set("server.url", server)
	}
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// The session store opens lazily, only when a command needs it, so
	// config and version commands run without touching the db.
}

// rootRun handles `telaah` with no subcommand: a small workspace overview.
func rootRun(cmd *cobra.Command) error {
	c := getClient()
	ctx := context.Background()

	folders, err := c.ListFolders(ctx)
	if err != nil {
		return cmd.Help()
	}

	ui.Info("Server: %s", c.BaseURL)
	ui.Info("Folders: %d", len(folders))

	if unread, err := c.GetUnreadCount(ctx); err == nil {
		ui.Info("Unread messages: %s", output.UnreadColor(unread))
	}
	return nil
}

// getClient returns the shared API client.
func getClient() *api.Client {
	if client != nil {
		return client
	}
	client = api.New(viper.GetString("server.url"))
	client.Token = viper.GetString("server.token")
	return client
}

// getSession returns the shared session store, initializing it on first call.
func getSession() (staging.Store, error) {
	if session != nil {
		return session, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := staging.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}

	session = s
	return session, nil
}
