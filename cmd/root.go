package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tonesnap/internal/config"
	"github.com/abhisek/tonesnap/internal/llm"
	"github.com/abhisek/tonesnap/internal/logger"
	"github.com/abhisek/tonesnap/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tonesnap",
	Short: "Snap a photo, learn its Mandarin name",
	Long: "tonesnap turns a photo of an everyday object into a short pronunciation quiz:\n" +
		"the initial and final of its first syllable, then draw the tone mark.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	def := config.Default()
	f := rootCmd.PersistentFlags()
	f.String("provider", def.Provider, "LLM provider: rest, gemini, openai, openrouter, anthropic, mock")
	f.String("api-key", "", "API key (overrides "+config.EnvPrefix+"_API_KEY)")
	f.String("api-url", def.APIURL, "Base URL for the rest provider")
	f.String("model", "", "Model override for SDK providers")
	f.Duration("timeout", def.Timeout, "Per-request timeout")
	f.String("log-file", "", "Write logs to this file (the TUI logs nothing otherwise)")
	f.String("log-mode", def.LogMode, "Log format: dev or prod")
	f.String("env-file", ".env", "Load environment variables from this file if it exists")
	f.String("config", "", "Optional YAML config file")

	rootCmd.Flags().String("device", def.Device, "Camera device")
	rootCmd.Flags().String("capture-command", def.CaptureCommand, "Program used to grab camera frames")
	rootCmd.Flags().Duration("submit-delay", def.SubmitDelay, "Idle time after the last stroke before a drawing is checked")
	rootCmd.Flags().Duration("revert-delay", def.RevertDelay, "How long a wrong drawing stays on screen")
	rootCmd.Flags().String("voice", "", "Preferred speech voice ID (see tonesnap voices)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(voicesCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds and validates the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfgFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(config.Options{
		Flags:      cmd.Flags(),
		EnvFile:    envFile,
		ConfigFile: cfgFile,
	})
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the logger for a command. The TUI owns the terminal,
// so it only logs when a file is configured; headless commands fall back
// to stderr.
func newLogger(cfg *config.Config, headless bool) (*logger.Logger, error) {
	if cfg.LogFile == "" && !headless {
		return logger.Nop(), nil
	}
	return logger.New(cfg.LogMode, cfg.LogFile)
}

// backend is what every command that talks to a model needs.
type backend struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	provider llm.Provider
}

func (b *backend) Close() {
	b.log.Sync()
	if b.store != nil {
		b.store.Close()
	}
}

// openBackend loads configuration and builds the provider over a fresh
// in-memory event log.
func openBackend(ctx context.Context, cmd *cobra.Command, headless bool) (*backend, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg, headless)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM(), st.EventRepo(), log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	log.Debug("provider ready", "provider", cfg.Provider, "model", provider.ModelID())
	return &backend{cfg: cfg, log: log, store: st, provider: provider}, nil
}
