package config

import "time"

// Options is the effective configuration for one command run.
type Options struct {
	APIKeyEnv   string
	Output      string
	Concurrency int
	Timeout     time.Duration
	Endpoint    string
}

// MergeFiles merges global and repo configs. Repo values take precedence.
// Only non-zero repo values override global values.
func MergeFiles(global, repo *Config) *Config {
	merged := *global

	if repo.APIKeyEnv != "" {
		merged.APIKeyEnv = repo.APIKeyEnv
	}
	if repo.Output != "" {
		merged.Output = repo.Output
	}
	if repo.Concurrency != 0 {
		merged.Concurrency = repo.Concurrency
	}
	if repo.Timeout != "" {
		merged.Timeout = repo.Timeout
	}
	if repo.Endpoint != "" {
		merged.Endpoint = repo.Endpoint
	}

	return &merged
}

// Merge combines file-based config with CLI-provided options.
// CLI values take precedence; zero-value CLI fields fall through to file
// config, then to built-in defaults. Invalid file durations are ignored here;
// Validate reports them.
func Merge(fileCfg *Config, cli Options) Options {
	result := cli

	if result.APIKeyEnv == "" {
		result.APIKeyEnv = fileCfg.APIKeyEnv
	}
	if result.APIKeyEnv == "" {
		result.APIKeyEnv = DefaultAPIKeyEnv
	}

	if result.Output == "" {
		result.Output = fileCfg.Output
	}
	if result.Output == "" {
		result.Output = OutputText
	}

	if result.Concurrency == 0 && fileCfg.Concurrency > 0 {
		result.Concurrency = fileCfg.Concurrency
	}

	if result.Timeout == 0 && fileCfg.Timeout != "" {
		if d, err := time.ParseDuration(fileCfg.Timeout); err == nil {
			result.Timeout = d
		}
	}

	if result.Endpoint == "" {
		result.Endpoint = fileCfg.Endpoint
	}

	return result
}
