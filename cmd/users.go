package cmd

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List review users (assignees, share targets, mail recipients)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return usersRun()
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func usersRun() error {
	users, err := getClient().GetAllUsers(context.Background())
	if err != nil {
		return err
	}
	if len(users) == 0 {
		ui.Info("No other users.")
		return nil
	}

	table := ui.Table([]string{"ID", "USERNAME", "LABEL"})
	for _, u := range users {
		table.Append([]string{strconv.Itoa(u.ID), u.Username, u.Label})
	}
	table.Render()
	return nil
}
