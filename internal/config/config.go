// Package config builds the process-wide configuration snapshot from flags,
// environment, an optional .env file and defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/tonesnap/internal/llm"
)

// EnvPrefix is prepended to every environment override, e.g. TONESNAP_API_KEY.
const EnvPrefix = "TONESNAP"

// Config holds all application configuration.
type Config struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	APIURL   string `mapstructure:"api_url"`
	Model    string `mapstructure:"model"`

	Device         string `mapstructure:"device"`
	CaptureCommand string `mapstructure:"capture_command"`

	SubmitDelay time.Duration `mapstructure:"submit_delay"`
	RevertDelay time.Duration `mapstructure:"revert_delay"`

	Voice string `mapstructure:"voice"`

	Timeout time.Duration `mapstructure:"timeout"`

	LogFile string `mapstructure:"log_file"`
	LogMode string `mapstructure:"log_mode"`
}

// Options controls where Load looks for values.
type Options struct {
	// Flags are bound by name: "api-key" feeds "api_key". Only flags the
	// user actually set override other sources.
	Flags *pflag.FlagSet

	// EnvFile is loaded into the environment first without overriding
	// variables that are already set. A missing file is not an error.
	EnvFile string

	// ConfigFile is an optional YAML file read below env and flags.
	ConfigFile string
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Provider:       llm.ProviderREST,
		APIURL:         llm.DefaultRESTBaseURL,
		Device:         "/dev/video0",
		CaptureCommand: "ffmpeg",
		SubmitDelay:    1200 * time.Millisecond,
		RevertDelay:    1500 * time.Millisecond,
		Timeout:        60 * time.Second,
		LogMode:        "dev",
	}
}

var keys = []string{
	"provider", "api_key", "api_url", "model",
	"device", "capture_command",
	"submit_delay", "revert_delay",
	"voice", "timeout", "log_file", "log_mode",
}

// Legacy variable names from the web build are still honoured.
var extraEnv = map[string][]string{
	"api_key": {"VITE_GEMINI_API_KEY", "GEMINI_API_KEY"},
	"api_url": {"VITE_GEMINI_API_URL"},
}

// Load builds a Config. Precedence, highest first: flags, environment
// (including values from the .env file), config file, defaults.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	def := Default()
	v.SetDefault("provider", def.Provider)
	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("device", def.Device)
	v.SetDefault("capture_command", def.CaptureCommand)
	v.SetDefault("submit_delay", def.SubmitDelay)
	v.SetDefault("revert_delay", def.RevertDelay)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("log_mode", def.LogMode)

	// Explicit binding makes every key visible to Unmarshal, which
	// AutomaticEnv alone does not do for keys without a default.
	for _, key := range keys {
		names := append([]string{key, EnvPrefix + "_" + strings.ToUpper(key)}, extraEnv[key]...)
		if err := v.BindEnv(names...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if opts.Flags != nil {
		for _, key := range keys {
			if f := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return &cfg, nil
}

// Validate fails when a request could not be sent with this configuration.
func (c *Config) Validate() error {
	if c.Provider != llm.ProviderMock && c.APIKey == "" {
		return fmt.Errorf("missing API key: set %s_API_KEY or pass --api-key", EnvPrefix)
	}
	if c.SubmitDelay <= 0 || c.RevertDelay <= 0 {
		return fmt.Errorf("submit and revert delays must be positive")
	}
	if err := c.LLM().Validate(); err != nil {
		return fmt.Errorf("llm config: %w", err)
	}
	return nil
}

// LLM maps the flat settings onto the provider configuration.
func (c *Config) LLM() llm.Config {
	out := llm.DefaultConfig()
	out.Provider = c.Provider
	if c.Timeout > 0 {
		out.Timeout = c.Timeout
	}

	switch c.Provider {
	case llm.ProviderREST:
		out.REST.APIKey = c.APIKey
		out.REST.BaseURL = c.APIURL
	case llm.ProviderGemini:
		out.Gemini.APIKey = c.APIKey
		setIf(&out.Gemini.Model, c.Model)
	case llm.ProviderOpenAI:
		out.OpenAI.APIKey = c.APIKey
		setIf(&out.OpenAI.Model, c.Model)
		if c.APIURL != llm.DefaultRESTBaseURL {
			out.OpenAI.BaseURL = c.APIURL
		}
	case llm.ProviderOpenRouter:
		out.OpenRouter.APIKey = c.APIKey
		setIf(&out.OpenRouter.Model, c.Model)
		if c.APIURL != llm.DefaultRESTBaseURL {
			out.OpenRouter.BaseURL = c.APIURL
		}
	case llm.ProviderAnthropic:
		out.Anthropic.APIKey = c.APIKey
		setIf(&out.Anthropic.Model, c.Model)
	}
	return out
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
