package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	chatlog "github.com/davetashner/chatbridge/internal/log"
)

// Global flag values.
var (
	verbose bool
	quiet   bool
	noColor bool
)

// rootCmd is the base command for chatbridge.
var rootCmd = &cobra.Command{
	Use:   "chatbridge",
	Short: "Relay a line of text to a chat-completion endpoint",
	Long: `Chatbridge wraps free-text input in a fixed concise-assistant prompt,
posts it to the OpenAI chat-completions endpoint with your bearer credential,
and returns the endpoint's JSON response unmodified.

API-level failures (bad key, rate limits) come back as JSON error documents,
not as transport errors; chatbridge reports them but never retries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		chatlog.Setup(verbose, quiet)
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}
