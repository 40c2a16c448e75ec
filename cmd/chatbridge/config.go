package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davetashner/chatbridge/internal/config"
)

// Config command flags.
var configGlobal bool

// configCmd is the parent command for config subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and modify chatbridge configuration",
	Long: `View and modify chatbridge configuration.

Chatbridge reads .chatbridge.yaml (or .chatbridge.toml) in the current
directory. A global config at ~/.config/chatbridge/config.yaml provides
defaults. Local settings override global settings, and flags override both.

Keys: api_key_env, output, concurrency, timeout, endpoint.
The credential itself is never stored in config; api_key_env names the
environment variable it is read from.`,
}

// configGetCmd retrieves a configuration value.
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value.

Examples:
  chatbridge config get output
  chatbridge config get --global api_key_env`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Values are auto-detected as bool, int, float, or string.
By default, writes to .chatbridge.yaml in the current directory.
Use --global to write to ~/.config/chatbridge/config.yaml.

Note: This does a YAML round-trip and will not preserve comments.

Examples:
  chatbridge config set output json
  chatbridge config set concurrency 8
  chatbridge config set --global api_key_env TEAM_OPENAI_KEY`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// configListCmd lists all configuration values with their source.
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Long: `List all configuration values with their source annotation
(global or local). Local values override global values.`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

// configShowCmd prints the merged file configuration as YAML.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as YAML",
	Long: `Print the configuration that commands will use, after local values
are layered over global ones. Flags are not reflected.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	configGetCmd.Flags().BoolVar(&configGlobal, "global", false, "use global config (~/.config/chatbridge/config.yaml)")
	configSetCmd.Flags().BoolVar(&configGlobal, "global", false, "write to global config (~/.config/chatbridge/config.yaml)")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configShowCmd)
}

// resetConfigFlags resets config command flags for testing.
func resetConfigFlags() {
	configGlobal = false
	if f := configGetCmd.Flags().Lookup("global"); f != nil {
		_ = f.Value.Set("false")
	}
	if f := configSetCmd.Flags().Lookup("global"); f != nil {
		_ = f.Value.Set("false")
	}
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	keyPath := args[0]
	if err := config.ValidateKeyPath(keyPath); err != nil {
		return err
	}

	var cfg *config.Config
	if configGlobal {
		var err error
		cfg, err = config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
	} else {
		repoCfg, err := config.Load(".")
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		globalCfg, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		cfg = config.MergeFiles(globalCfg, repoCfg)
	}

	val, err := config.GetValue(cfg, keyPath)
	if err != nil {
		return err
	}

	return printValue(cmd, val)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	keyPath := args[0]
	rawValue := args[1]

	if err := config.ValidateKeyPath(keyPath); err != nil {
		return err
	}

	targetPath := filepath.Join(".", config.FileName)
	if configGlobal {
		targetPath = config.GlobalConfigPath()
	}

	data, err := config.LoadRaw(targetPath)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}

	if err := config.SetValue(data, keyPath, rawValue); err != nil {
		return fmt.Errorf("setting value: %w", err)
	}

	// Round-trip validate: unmarshal to Config and validate.
	roundTrip, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var validCfg config.Config
	if err := yaml.Unmarshal(roundTrip, &validCfg); err != nil {
		return fmt.Errorf("invalid config after set: %w", err)
	}
	if err := config.Validate(&validCfg); err != nil {
		return err
	}

	if err := config.WriteFile(targetPath, data); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", keyPath, rawValue)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	globalCfg, err := config.LoadGlobal()
	if err != nil {
		return fmt.Errorf("loading global config: %w", err)
	}
	repoCfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	globalMap, err := configToFlatMap(globalCfg)
	if err != nil {
		return err
	}
	repoMap, err := configToFlatMap(repoCfg)
	if err != nil {
		return err
	}

	type entry struct {
		value  any
		source string
	}

	seen := make(map[string]entry)
	for k, v := range globalMap {
		seen[k] = entry{value: v, source: "global"}
	}
	for k, v := range repoMap {
		seen[k] = entry{value: v, source: "local"}
	}

	if len(seen) == 0 {
		_, _ = fmt.Fprintln(w, "No configuration set.")
		_, _ = fmt.Fprintln(w, "Run 'chatbridge config set <key> <value>' to set values.")
		return nil
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	globalColor := color.New(color.FgCyan)
	localColor := color.New(color.FgGreen)

	for _, k := range keys {
		e := seen[k]
		_, _ = fmt.Fprintf(w, "%s = %v %s\n", k, e.value, formatSource(e.source, globalColor, localColor))
	}

	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	globalCfg, err := config.LoadGlobal()
	if err != nil {
		return fmt.Errorf("loading global config: %w", err)
	}
	repoCfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return config.Write(cmd.OutOrStdout(), config.MergeFiles(globalCfg, repoCfg))
}

// printValue outputs a value: scalars as plain text, maps/slices as YAML.
func printValue(cmd *cobra.Command, val any) error {
	switch v := val.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
	default:
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}

// configToFlatMap converts a Config to a flat dot-notation map, omitting zero values.
func configToFlatMap(cfg *config.Config) (map[string]any, error) {
	m, err := config.ToMap(cfg)
	if err != nil {
		return nil, err
	}
	return config.FlattenMap(m, ""), nil
}

// formatSource returns a colorized source annotation.
func formatSource(source string, globalColor, localColor *color.Color) string {
	switch source {
	case "global":
		return globalColor.Sprintf("(global)")
	case "local":
		return localColor.Sprintf("(local)")
	default:
		return fmt.Sprintf("(%s)", source)
	}
}
