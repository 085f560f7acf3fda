// Package config loads khabar's settings from ~/.khabar/config.yaml,
// KHABAR_* environment variables and a local .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Models    ModelsConfig    `mapstructure:"models"`
	Feeds     FeedsConfig     `mapstructure:"feeds"`
	Normalize NormalizeConfig `mapstructure:"normalize"`
	UI        UIConfig        `mapstructure:"ui"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ModelsConfig selects and configures model providers.
type ModelsConfig struct {
	Preferred string        `mapstructure:"preferred"`
	Gemini    ModelSettings `mapstructure:"gemini"`
	OpenAI    ModelSettings `mapstructure:"openai"`
	Claude    ModelSettings `mapstructure:"claude"`
	Ollama    ModelSettings `mapstructure:"ollama"`
}

// ModelSettings configures one provider.
type ModelSettings struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
	Priority int    `mapstructure:"priority"` // lower is tried first
}

// FeedsConfig controls fetching and joining.
type FeedsConfig struct {
	JoinPolicy   string        `mapstructure:"join_policy"`
	Timeout      time.Duration `mapstructure:"timeout"` // zero means none
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int           `mapstructure:"max_body_bytes"`
	SourcesFile  string        `mapstructure:"sources_file"`

	// RefreshInterval re-fetches both categories in the TUI. Zero disables it.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// NormalizeConfig picks the markup extractor: "regex" or "dom".
type NormalizeConfig struct {
	HTMLMode string `mapstructure:"html_mode"`
}

// UIConfig holds TUI preferences.
type UIConfig struct {
	Theme     string `mapstructure:"theme"`
	ItemLimit int    `mapstructure:"item_limit"`
}

// ChatConfig tunes article chat.
type ChatConfig struct {
	MaxTokens         int           `mapstructure:"max_tokens"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// LoggingConfig controls the file log.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// Dir returns ~/.khabar.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".khabar"
	}
	return filepath.Join(home, ".khabar")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("models.preferred", "gemini")
	v.SetDefault("models.gemini.enabled", true)
	v.SetDefault("models.gemini.api_key", "")
	v.SetDefault("models.gemini.model", "gemini-2.5-flash")
	v.SetDefault("models.gemini.endpoint", "")
	v.SetDefault("models.gemini.priority", 1)
	v.SetDefault("models.openai.enabled", false)
	v.SetDefault("models.openai.api_key", "")
	v.SetDefault("models.openai.model", "gpt-4o-mini")
	v.SetDefault("models.openai.endpoint", "")
	v.SetDefault("models.openai.priority", 2)
	v.SetDefault("models.claude.enabled", false)
	v.SetDefault("models.claude.api_key", "")
	v.SetDefault("models.claude.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("models.claude.endpoint", "")
	v.SetDefault("models.claude.priority", 3)
	v.SetDefault("models.ollama.enabled", false)
	v.SetDefault("models.ollama.api_key", "")
	v.SetDefault("models.ollama.model", "")
	v.SetDefault("models.ollama.endpoint", "http://localhost:11434")
	v.SetDefault("models.ollama.priority", 4)

	v.SetDefault("feeds.join_policy", "all-or-nothing")
	v.SetDefault("feeds.timeout", time.Duration(0))
	v.SetDefault("feeds.user_agent", "")
	v.SetDefault("feeds.max_body_bytes", 4<<20)
	v.SetDefault("feeds.sources_file", "")
	v.SetDefault("feeds.refresh_interval", time.Duration(0))

	v.SetDefault("normalize.html_mode", "regex")

	v.SetDefault("ui.theme", "dark")
	v.SetDefault("ui.item_limit", 200)

	v.SetDefault("chat.max_tokens", 1024)
	v.SetDefault("chat.requests_per_minute", 30)
	v.SetDefault("chat.timeout", time.Duration(0))

	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.dir", "")
}

// Load reads path (or the default path when empty). A missing file is not
// an error. A .env in the working directory is loaded first; variables
// already set in the environment win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("KHABAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AutoPopulateFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// AutoPopulateFromEnv fills empty API keys from the vendors' usual
// variables. A key found for a provider also enables it.
func (c *Config) AutoPopulateFromEnv() {
	fill := func(m *ModelSettings, vars ...string) {
		if m.APIKey != "" {
			return
		}
		for _, name := range vars {
			if key := os.Getenv(name); key != "" {
				m.APIKey = key
				m.Enabled = true
				return
			}
		}
	}
	fill(&c.Models.Gemini, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	fill(&c.Models.OpenAI, "OPENAI_API_KEY")
	fill(&c.Models.Claude, "ANTHROPIC_API_KEY", "CLAUDE_API_KEY")
}

// Validate rejects values the rest of the program cannot use.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Feeds.JoinPolicy) {
	case "", "all-or-nothing", "partial":
	default:
		return fmt.Errorf("feeds.join_policy %q (want all-or-nothing or partial)", c.Feeds.JoinPolicy)
	}
	switch strings.ToLower(c.Normalize.HTMLMode) {
	case "", "regex", "dom":
	default:
		return fmt.Errorf("normalize.html_mode %q (want regex or dom)", c.Normalize.HTMLMode)
	}
	if c.Feeds.Timeout < 0 || c.Chat.Timeout < 0 || c.Feeds.RefreshInterval < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.Chat.RequestsPerMinute < 0 {
		return errors.New("chat.requests_per_minute must not be negative")
	}
	return nil
}

// EnabledModels lists providers that are enabled and usable.
func (c *Config) EnabledModels() []string {
	var names []string
	for _, p := range []struct {
		name     string
		settings ModelSettings
		needsKey bool
	}{
		{"gemini", c.Models.Gemini, true},
		{"openai", c.Models.OpenAI, true},
		{"claude", c.Models.Claude, true},
		{"ollama", c.Models.Ollama, false},
	} {
		if p.settings.Enabled && (!p.needsKey || p.settings.APIKey != "") {
			names = append(names, p.name)
		}
	}
	return names
}
