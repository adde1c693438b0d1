package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gyeh/atexplorer/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "atexplore",
	Short: "Assistive Technology funding utilisation explorer",
	Long: "Loads participant, plan and claim-line extracts, joins and filters them, and reports " +
		"budget draw-down, utilisation by region and benchmark breaches.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", "", "Postgres connection string (or set ATX_DSN)")
	pf.StringVar(&cfg.LogFormat, "log-format", "", "Log format: text or json (or set ATX_LOG_FORMAT)")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&cfg.ConfigPath, "config", "", "YAML file with rename maps, keywords and output sizes")
}

// setup fills unset flags from the environment (a .env file is honoured)
// and applies the YAML config file.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	if cfg.DSN == "" {
		cfg.DSN = os.Getenv("ATX_DSN")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = envOr("ATX_LOG_FORMAT", "text")
	}
	if cfg.Addr == "" {
		cfg.Addr = envOr("ATX_ADDR", ":8080")
	}

	if cfg.ConfigPath != "" {
		if err := cfg.LoadFromFile(cfg.ConfigPath); err != nil {
			return err
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
