package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spysage/monitor-cli/internal/model"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one monitoring pass over all competitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := env.runner.RunAll(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Checked %d competitors: %d changed, %d unchanged, %d skipped, %d failed\n",
			len(summary.Items),
			summary.Count(model.ItemChanged),
			summary.Count(model.ItemUnchanged),
			summary.Count(model.ItemSkipped),
			summary.Count(model.ItemFailed))

		for _, item := range summary.Items {
			if item.Status == model.ItemFailed {
				fmt.Printf("  %s: %s\n", item.Name, item.Error)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
