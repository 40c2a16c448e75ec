package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/davetashner/chatbridge/internal/bridge"
	"github.com/davetashner/chatbridge/internal/config"
	"github.com/davetashner/chatbridge/internal/redact"
)

// hostFlags holds the flags shared by commands that talk to the endpoint.
type hostFlags struct {
	APIKey    string
	APIKeyEnv string
	Endpoint  string
	Timeout   time.Duration
}

// register binds the shared flags onto fs.
func (f *hostFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.APIKey, "api-key", "", "bearer credential (default: read from the api_key_env variable)")
	fs.StringVar(&f.APIKeyEnv, "api-key-env", "", "environment variable holding the credential (default OPENAI_API_KEY)")
	fs.StringVar(&f.Endpoint, "endpoint", "", "override the chat-completion URL")
	fs.DurationVar(&f.Timeout, "timeout", 0, "abandon the request after this long (0 = no limit)")
}

// reset restores zero values and the pflag defaults on fs.
func (f *hostFlags) reset(fs *pflag.FlagSet) {
	*f = hostFlags{}
	for _, name := range []string{"api-key", "api-key-env", "endpoint", "timeout"} {
		if fl := fs.Lookup(name); fl != nil {
			_ = fl.Value.Set(fl.DefValue)
			fl.Changed = false
		}
	}
}

// loadOptions merges global config, repo config, and CLI overrides.
func loadOptions(cli config.Options) (config.Options, error) {
	globalCfg, err := config.LoadGlobal()
	if err != nil {
		return config.Options{}, exitError(ExitInvalidArgs, "chatbridge: loading global config: %v", err)
	}
	repoCfg, err := config.Load(".")
	if err != nil {
		return config.Options{}, exitError(ExitInvalidArgs, "chatbridge: loading config: %v", err)
	}

	merged := config.MergeFiles(globalCfg, repoCfg)
	if err := config.Validate(merged); err != nil {
		return config.Options{}, exitError(ExitInvalidArgs, "chatbridge: %v", err)
	}

	opts := config.Merge(merged, cli)
	slog.Debug("resolved options",
		"api_key_env", opts.APIKeyEnv,
		"output", opts.Output,
		"concurrency", opts.Concurrency,
		"timeout", opts.Timeout,
		"endpoint", opts.Endpoint,
	)
	return opts, nil
}

// resolveAPIKey picks the flag value or the configured environment variable
// and registers it for redaction.
func resolveAPIKey(flagKey string, opts config.Options) (string, error) {
	key := flagKey
	if key == "" {
		key = os.Getenv(opts.APIKeyEnv)
	}
	if key == "" {
		return "", exitError(ExitInvalidArgs, "chatbridge: no API key: set %s or pass --api-key", opts.APIKeyEnv)
	}
	redact.Register(key)
	return key, nil
}

// newBridge builds a Bridge honoring an endpoint override.
func newBridge(opts config.Options) *bridge.Bridge {
	var bopts []bridge.Option
	if opts.Endpoint != "" {
		bopts = append(bopts, bridge.WithEndpoint(opts.Endpoint))
	}
	return bridge.New(bopts...)
}

// withTimeout applies d as a deadline when positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// bridgeFailure converts a bridge error into an exit error naming its kind.
func bridgeFailure(err error) error {
	var be *bridge.Error
	if errors.As(err, &be) {
		return exitError(ExitBridgeFailure, "chatbridge: %s error: %v", be.Kind, be.Err)
	}
	return exitError(ExitBridgeFailure, "chatbridge: %v", err)
}

// readInput returns args joined by spaces, or all of r when there are no
// args. One trailing newline from r is dropped.
func readInput(r io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
