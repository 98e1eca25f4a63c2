package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Inspect stored contact form submissions",
	Long: `contacts reads the record store configured for the portfolio backend.

It uses the same environment (and .env file) as the API server, so
MONGODB_URI must point at the store the server writes to.

Examples:
  contacts list
  contacts list --limit 10
  contacts list --json`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(listCmd)
}
