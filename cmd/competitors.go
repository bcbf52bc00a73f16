package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spysage/monitor-cli/internal/model"
)

var (
	addWebsite   string
	addChangelog string
	addTags      string
	addUserID    string
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "Manage tracked competitors",
}

var competitorsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start tracking a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var tags []string
		if addTags != "" {
			tags = strings.Split(addTags, ",")
		}
		c, err := env.store.CreateCompetitor(cmd.Context(), model.Competitor{
			Name:         args[0],
			Website:      addWebsite,
			ChangelogURL: addChangelog,
			Tags:         tags,
			UserID:       addUserID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

var competitorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked competitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		competitors, err := env.store.ListCompetitors(cmd.Context())
		if err != nil {
			return err
		}
		if len(competitors) == 0 {
			fmt.Println("No competitors tracked.")
			return nil
		}
		for _, c := range competitors {
			fmt.Printf("%s  %-20s  %s  buzz=%d\n", c.ID, c.Name, c.PreferredURL(), c.Buzz)
		}
		return nil
	},
}

var competitorsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Stop tracking a competitor and drop its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.DeleteCompetitor(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

func init() {
	competitorsAddCmd.Flags().StringVar(&addWebsite, "website", "", "competitor website URL")
	competitorsAddCmd.Flags().StringVar(&addChangelog, "changelog", "", "changelog URL to monitor (preferred over website)")
	competitorsAddCmd.Flags().StringVar(&addTags, "tags", "", "comma separated tags")
	competitorsAddCmd.Flags().StringVar(&addUserID, "user", "default", "owning user ID")

	competitorsCmd.AddCommand(competitorsAddCmd, competitorsListCmd, competitorsRemoveCmd)
	rootCmd.AddCommand(competitorsCmd)
}
