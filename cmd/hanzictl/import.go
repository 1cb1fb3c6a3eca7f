package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/hanziflash/internal/app"
	"github.com/vytor/hanziflash/internal/db"
	"github.com/vytor/hanziflash/internal/logger"
)

var importCmd = &cobra.Command{
	Use:   "import <catalog.json>",
	Short: "Load a JSON sentence catalog into the sqlite store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		logger.SetDefault(logger.New(logger.WithLevel(logger.ParseLevel(cfg.LogLevel))))

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()

		res, err := app.ImportCatalog(cmd.Context(), database, args[0])
		if err != nil {
			return err
		}
		total, err := database.CountSentences(cmd.Context())
		if err != nil {
			return fmt.Errorf("count sentences: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d sentences (%d already present, %d total)\n", res.Inserted, res.Skipped, total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
