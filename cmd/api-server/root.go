package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd runs the server when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "yamdb - review API for titles, reviews and comments",
	Long: `yamdb serves the /api/v1 REST API. Configuration comes from the environment
(and a .env file in the working directory if present).

Use "yamdb createsuperuser" to create the first admin account.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createSuperuserCmd)
}
