package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Email the weekly digest of detected changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.digest == nil {
			return eris.New("email is not configured, set SPYSAGE_EMAIL_SMTP_HOST and SPYSAGE_EMAIL_DIGEST_TO")
		}
		if err := env.digest.SendWeekly(ctx); err != nil {
			return err
		}
		fmt.Println("Weekly digest sent.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(digestCmd)
}
