package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vytor/hanziflash/internal/app"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/db"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/repository/sqlite"
	"github.com/vytor/hanziflash/internal/tui"
)

// defaultPlayLog keeps log output off the terminal the player draws on.
const defaultPlayLog = "hanzictl.log"

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play one batch as flashcards in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := loadConfig(cmd)
		level, _ := cmd.Flags().GetString("level")
		batch, _ := cmd.Flags().GetInt("batch")
		catalogPath, _ := cmd.Flags().GetString("catalog")

		if cfg.LogFile == "" {
			cfg.LogFile = defaultPlayLog
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log, closer, err := app.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()
		logger.SetDefault(log)

		var source catalog.Source
		if catalogPath != "" {
			records, err := catalog.LoadFile(catalogPath)
			if err != nil {
				return err
			}
			source = catalog.New(records)
		} else {
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()
			source = sqlite.NewSentenceRepository(database.DB)
		}

		resolver, err := app.NewResolver(cfg)
		if err != nil {
			return err
		}
		stack := app.NewStack(cfg, source, resolver, app.NewPlayer(cfg))
		stack.Start(ctx)
		defer stack.Close()

		sess, err := stack.Sessions.Open(ctx, level, batch)
		if err != nil {
			return fmt.Errorf("open %s batch %d: %w", catalog.GroupForLevel(level), batch, err)
		}
		return tui.Run(ctx, sess)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().String("level", "HSK1", "level to play, 1 or HSK1")
	playCmd.Flags().Int("batch", 1, "batch number within the level")
	playCmd.Flags().String("catalog", "", "JSON catalog file (default: the sqlite store)")
}
