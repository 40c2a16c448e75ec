package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the chatbridge version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version of the chatbridge binary.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "chatbridge %s\n", Version)
	},
}
