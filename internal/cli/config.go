package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factlens/internal/model"
)

const (
	configDirName = ".factlens"

	// Publisher domains are map keys in the config, so the key path
	// delimiter cannot be a dot
	keyDelimiter = "::"

	redacted = "********"
)

// settings holds flags, environment and config file values
var settings = newSettings()

func newSettings() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
}

// envBindings maps config keys to extra environment variables checked after
// the FACTLENS_ prefixed name
var envBindings = map[string][]string{
	"llm::provider":        nil,
	"llm::model":           nil,
	"llm::api_key":         nil,
	"llm::base_url":        nil,
	"news::provider":       nil,
	"news::api_key":        {"NEWS_API_KEY"},
	"fact_check::api_key":  {"GOOGLE_FACT_CHECK_API_KEY"},
	"classifier::api_key":  {"HF_API_KEY"},
	"store::driver":        nil,
	"store::dsn":           {"DATABASE_URL"},
	"store::database":      nil,
	"server::addr":         nil,
	"reports::enabled":     nil,
	"reports::schedule":    nil,
	"log::level":           nil,
	"log::development":     nil,
	"cache::enabled":       nil,
	"http::timeout":        nil,
	"http::http_proxy":     {"HTTP_PROXY"},
	"http::https_proxy":    {"HTTPS_PROXY"},
	"concurrency::workers": nil,
}

// providerKeyEnv is the conventional API key variable of each model provider
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"claude":    "ANTHROPIC_API_KEY",
}

// bindEnv makes FACTLENS_STORE_DRIVER override store.driver and so on
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("FACTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	for key, extra := range envBindings {
		names := append([]string{"FACTLENS_" + strings.ToUpper(strings.ReplaceAll(key, keyDelimiter, "_"))}, extra...)
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// decodeConfig layers v over the built-in defaults. Lists and maps that are
// set replace the default ones instead of merging into them.
func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	replace := func(c *mapstructure.DecoderConfig) { c.ZeroFields = true }
	if err := v.Unmarshal(cfg, replace); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	provider := strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[provider]; ok {
			cfg.LLM.APIKey = os.Getenv(name)
		}
	}
	if provider == "ollama" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	return cfg, nil
}

// loadConfig returns the effective configuration
func loadConfig() (*model.Config, error) {
	return decodeConfig(settings)
}

// redact hides secrets before a config is displayed
func redact(cfg model.Config) model.Config {
	for _, key := range []*string{
		&cfg.LLM.APIKey,
		&cfg.News.APIKey,
		&cfg.FactCheck.APIKey,
		&cfg.Classifier.APIKey,
		&cfg.Store.DSN,
	} {
		if *key != "" {
			*key = redacted
		}
	}
	return cfg
}

// writeDefaultConfig writes the commented default config file
func writeDefaultConfig(w io.Writer) (err error) {
	printf := func(format string, a ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, a...)
	}

	printf("# factlens configuration file\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (FACTLENS_*)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")

	yamlData, mErr := yaml.Marshal(model.DefaultConfig())
	if mErr != nil {
		return fmt.Errorf("marshal config: %w", mErr)
	}
	printf("%s", yamlData)

	printf("\n# API keys (recommended to use environment variables instead):\n")
	printf("#   export OPENAI_API_KEY=sk-...\n")
	printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
	printf("#   export NEWS_API_KEY=...\n")
	printf("#   export GOOGLE_FACT_CHECK_API_KEY=...\n")
	printf("#   export HF_API_KEY=hf_...\n")
	printf("#   export DATABASE_URL=postgres://...\n")

	return err
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage factlens configuration",
	Long: `Manage factlens configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (FACTLENS_*)
3. Config file (~/.factlens/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after defaults, config file, env vars and flags are applied. Secrets are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := settings.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(redact(*cfg))
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, banner)
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, banner)
		fmt.Fprintln(out)
		fmt.Fprintln(out, string(yamlData))
		fmt.Fprintln(out, banner)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration hierarchy (highest to lowest priority):")
		fmt.Fprintln(out, "  1. CLI flags")
		fmt.Fprintln(out, "  2. Environment variables (FACTLENS_*, OPENAI_API_KEY, NEWS_API_KEY, ...)")
		fmt.Fprintln(out, "  3. Config file (~/.factlens/config.yaml)")
		fmt.Fprintln(out, "  4. Defaults")
		fmt.Fprintln(out)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.factlens/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}

		configDir := filepath.Join(home, configDirName)
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'factlens config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("create config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		if err := writeDefaultConfig(f); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  factlens config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n\n", configPath)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
