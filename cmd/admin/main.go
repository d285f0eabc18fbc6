package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"astro-admin-go/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile  string
	logLevel string
	timeout  time.Duration

	cfg    config.Config
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "astro-admin",
	Short: "Admin client for the astrology and numerology content backend",
	Long: `astro-admin manages articles, reference data and users on the content
backend. Every command goes through the same client-side store the local
gateway serves, so list, create, update and delete behave identically from
the terminal and from the browser UI.

Sign in once with "astro-admin login"; the session is kept in local storage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if timeout > 0 {
			cfg.RequestTimeout = timeout
		}
		// Commands print JSON on stdout; keep logs out of it.
		logger.SetOutput(os.Stderr)
		if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.SetLevel(level)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Backend request timeout (overrides API_TIMEOUT_SECONDS)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(pagesCmd)
	for _, name := range entitySlices() {
		rootCmd.AddCommand(newEntityCmd(name))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
