package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davetashner/chatbridge/internal/config"
	"github.com/davetashner/chatbridge/internal/reply"
)

// Ask command flags.
var (
	askFlags  hostFlags
	askRaw    bool
	askOutput string
)

// askCmd sends one input and prints the reply.
var askCmd = &cobra.Command{
	Use:   "ask [text...]",
	Short: "Send one message and print the reply",
	Long: `Send one message to the chat-completion endpoint and print the reply.

The text is taken from the arguments (joined with spaces) or, when no
arguments are given, from stdin. It is sent verbatim inside the fixed prompt
template.

By default only choices[0].message.content is printed. Use --raw (or
--output json) to print the endpoint's JSON document unmodified.

Exit codes: 0 reply received, 1 invalid arguments or no API key,
2 the endpoint returned an error document, 3 the request failed.

Examples:
  chatbridge ask "What's 2+2?"
  echo "Summarize TCP in one line" | chatbridge ask --raw`,
	RunE: runAsk,
}

func init() {
	askFlags.register(askCmd.Flags())
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "print the raw JSON response")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "", "output mode: text or json")
}

// resetAskFlags resets ask command flags for testing.
func resetAskFlags() {
	askFlags.reset(askCmd.Flags())
	askRaw = false
	askOutput = ""
	for _, name := range []string{"raw", "output"} {
		if f := askCmd.Flags().Lookup(name); f != nil {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	input, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return exitError(ExitInvalidArgs, "chatbridge: %v", err)
	}

	output := askOutput
	if askRaw {
		output = config.OutputJSON
	}
	if output != "" && output != config.OutputText && output != config.OutputJSON {
		return exitError(ExitInvalidArgs, "chatbridge: invalid --output %q (must be text or json)", output)
	}

	opts, err := loadOptions(config.Options{
		APIKeyEnv: askFlags.APIKeyEnv,
		Output:    output,
		Timeout:   askFlags.Timeout,
		Endpoint:  askFlags.Endpoint,
	})
	if err != nil {
		return err
	}

	key, err := resolveAPIKey(askFlags.APIKey, opts)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	slog.Debug("sending", "input_len", len(input))
	doc, err := newBridge(opts).Invoke(ctx, input, key)
	if err != nil {
		return bridgeFailure(err)
	}

	w := cmd.OutOrStdout()
	apiErr, isAPIErr := reply.ParseAPIError(doc)

	if opts.Output == config.OutputJSON {
		_, _ = fmt.Fprintln(w, string(doc))
		if isAPIErr {
			return silentExit(ExitAPIError)
		}
		return nil
	}

	if isAPIErr {
		return exitError(ExitAPIError, "%s", color.New(color.FgRed).Sprintf("chatbridge: %v", apiErr))
	}
	_, _ = fmt.Fprintln(w, reply.TextOrDefault(doc))
	return nil
}
