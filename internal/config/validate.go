package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// MaxConcurrency bounds the concurrency setting.
const MaxConcurrency = 64

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.APIKeyEnv != "" && !envNamePattern.MatchString(cfg.APIKeyEnv) {
		errs = append(errs, fmt.Sprintf("api_key_env: %q is not a valid environment variable name", cfg.APIKeyEnv))
	}

	switch cfg.Output {
	case "", OutputText, OutputJSON:
		// valid
	default:
		errs = append(errs, fmt.Sprintf("output: invalid value %q (must be text or json)", cfg.Output))
	}

	if cfg.Concurrency < 0 || cfg.Concurrency > MaxConcurrency {
		errs = append(errs, fmt.Sprintf("concurrency: must be between 0 and %d, got %d", MaxConcurrency, cfg.Concurrency))
	}

	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("timeout: %v", err))
		case d < 0:
			errs = append(errs, fmt.Sprintf("timeout: must be non-negative, got %s", cfg.Timeout))
		}
	}

	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("endpoint: %q is not an absolute http(s) URL", cfg.Endpoint))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
