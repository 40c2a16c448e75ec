// Package config handles .chatbridge.yaml and .chatbridge.toml configuration
// files for the chatbridge command.
package config

// Config represents the contents of a chatbridge config file. All fields are
// optional; zero values fall through to the next layer.
type Config struct {
	// APIKeyEnv names the environment variable holding the credential.
	APIKeyEnv string `yaml:"api_key_env,omitempty" toml:"api_key_env,omitempty"`

	// Output selects how ask prints a reply: "text" or "json".
	Output string `yaml:"output,omitempty" toml:"output,omitempty"`

	// Concurrency caps parallel invocations in batch mode.
	Concurrency int `yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`

	// Timeout is a Go duration applied by the command as a context deadline.
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`

	// Endpoint overrides the chat-completion URL.
	Endpoint string `yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
}

const (
	// FileName is the YAML config file name looked up in the working directory.
	FileName = ".chatbridge.yaml"

	// TOMLFileName is the TOML alternative, used when FileName is absent.
	TOMLFileName = ".chatbridge.toml"

	// DefaultAPIKeyEnv is read when no api_key_env is configured.
	DefaultAPIKeyEnv = "OPENAI_API_KEY"

	// OutputText prints the reply text.
	OutputText = "text"

	// OutputJSON prints the raw JSON document.
	OutputJSON = "json"
)
