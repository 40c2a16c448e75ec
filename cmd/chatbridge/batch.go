package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davetashner/chatbridge/internal/batch"
	"github.com/davetashner/chatbridge/internal/config"
	"github.com/davetashner/chatbridge/internal/redact"
)

// Batch command flags.
var (
	batchFlags       hostFlags
	batchConcurrency int
)

// batchCmd sends every line of a file as an independent request.
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Send each line of a file as a separate message",
	Long: `Send each non-blank line of a file as its own message. Use "-" to read
from stdin.

Requests run concurrently (--concurrency, default 4) and are fully
independent: one failure does not stop the others. Results are printed as
JSON lines in input order:

  {"index":0,"id":"…","input":"…","response":{…}}
  {"index":1,"id":"…","input":"…","error":"…"}

The exit code is 3 if any request failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchFlags.register(batchCmd.Flags())
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "maximum requests in flight (default 4)")
}

// resetBatchFlags resets batch command flags for testing.
func resetBatchFlags() {
	batchFlags.reset(batchCmd.Flags())
	batchConcurrency = 0
	if f := batchCmd.Flags().Lookup("concurrency"); f != nil {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
}

// batchLine is one line of batch output.
type batchLine struct {
	Index    int             `json:"index"`
	ID       string          `json:"id"`
	Input    string          `json:"input"`
	Response json.RawMessage `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputs, err := readBatchInputs(cmd.InOrStdin(), args[0])
	if err != nil {
		return exitError(ExitInvalidArgs, "chatbridge: %v", err)
	}

	if batchConcurrency < 0 || batchConcurrency > config.MaxConcurrency {
		return exitError(ExitInvalidArgs, "chatbridge: --concurrency must be between 0 and %d", config.MaxConcurrency)
	}

	opts, err := loadOptions(config.Options{
		APIKeyEnv:   batchFlags.APIKeyEnv,
		Concurrency: batchConcurrency,
		Timeout:     batchFlags.Timeout,
		Endpoint:    batchFlags.Endpoint,
	})
	if err != nil {
		return err
	}

	key, err := resolveAPIKey(batchFlags.APIKey, opts)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	results := batch.Run(ctx, newBridge(opts), key, inputs, opts.Concurrency)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	for _, r := range results {
		line := batchLine{Index: r.Index, ID: r.ID, Input: r.Input, Response: r.Response}
		if r.Err != nil {
			line.Error = redact.String(r.Err.Error())
		}
		if err := enc.Encode(line); err != nil {
			return exitError(ExitBridgeFailure, "chatbridge: writing output: %v", err)
		}
	}

	if n := batch.Failed(results); n > 0 {
		return exitError(ExitBridgeFailure, "chatbridge: %d of %d requests failed", n, len(results))
	}
	return nil
}

// readBatchInputs returns the non-blank lines of path, or of stdin for "-".
func readBatchInputs(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // user-provided input file
		if err != nil {
			return nil, err
		}
		defer f.Close() //nolint:errcheck // read-only file
		r = f
	}

	var inputs []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return inputs, nil
}
