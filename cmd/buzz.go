package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var buzzCmd = &cobra.Command{
	Use:   "buzz",
	Short: "Refresh social mention counts for all competitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.runner.UpdateAllBuzz(ctx); err != nil {
			return err
		}
		fmt.Println("Buzz update completed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buzzCmd)
}
