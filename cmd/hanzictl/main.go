package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vytor/hanziflash/internal/config"
	"github.com/vytor/hanziflash/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "hanzictl",
	Short:         "HSK sentence flashcards: catalog import, audio indexing and a terminal player",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig loads the environment configuration and applies the persistent
// flag overrides shared by every command.
func loadConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	flags := cmd.Flags()
	if v, _ := flags.GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "sqlite database path (overrides DB_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "DEBUG, INFO, WARN or ERROR (overrides LOG_LEVEL)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}
