// Package app wires configuration into the runtime pieces shared by the
// server and the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/config"
	"github.com/vytor/hanziflash/internal/db"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/playback"
	"github.com/vytor/hanziflash/internal/session"
	"github.com/vytor/hanziflash/internal/worker"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds the process logger. With LOG_FILE set, output is
// appended to that file without colors.
func NewLogger(cfg config.Config) (*logger.Logger, io.Closer, error) {
	level := logger.WithLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogFile == "" {
		return logger.New(level, logger.WithColors(true)), nopCloser{}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger.New(level, logger.WithOutput(f), logger.WithColors(false)), f, nil
}

// NewResolver picks the clip backend: the bundle index when AUDIO_INDEX is
// set, the directory convention under AUDIO_ROOT otherwise.
func NewResolver(cfg config.Config) (audio.Resolver, error) {
	log := logger.Default().WithPrefix("app")
	if cfg.AudioIndex == "" {
		log.Info("resolving clips under %s (batch size %d)", cfg.AudioRoot, cfg.BatchSize)
		return audio.NewFSResolver(os.DirFS(cfg.AudioRoot), cfg.BatchSize), nil
	}

	idx, err := audio.LoadBundleIndex(cfg.AudioIndex)
	if err != nil {
		return nil, err
	}
	root := cfg.AudioRoot
	if idx.Root != "" {
		root = idx.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(filepath.Dir(cfg.AudioIndex), root)
		}
	}
	log.Info("resolving clips from bundle index %s: %d clips under %s", cfg.AudioIndex, len(idx.Clips), root)
	return audio.NewBundleResolver(os.DirFS(root), idx), nil
}

func NewPlayer(cfg config.Config) playback.Player {
	if cfg.Player == config.PlayerSilent {
		return playback.NewSilent(time.Duration(cfg.SilentClipMS) * time.Millisecond)
	}
	return playback.NewFFPlay(cfg.PlayerPath)
}

// ImportCatalog loads a JSON catalog file into the database. Existing rows
// are kept.
func ImportCatalog(ctx context.Context, database *db.DB, path string) (db.SyncResult, error) {
	records, err := catalog.LoadFile(path)
	if err != nil {
		return db.SyncResult{}, err
	}
	res, err := database.SyncSentences(ctx, records)
	if err != nil {
		return db.SyncResult{}, fmt.Errorf("sync catalog: %w", err)
	}
	logger.Default().WithPrefix("app").Info("imported %s: %d new, %d already present", path, res.Inserted, res.Skipped)
	return res, nil
}

// Stack is the playback runtime: one clip cache and prefetch pool shared by
// every session.
type Stack struct {
	Cache    *audio.ClipCache
	Builder  *audio.Builder
	Prefetch *worker.Pool
	Sessions *session.Manager
}

func NewStack(cfg config.Config, source catalog.Source, resolver audio.Resolver, player playback.Player) *Stack {
	cache := audio.NewClipCache(resolver)
	builder := audio.NewBuilder(cache, source)
	pool := worker.NewPool(cfg.PrefetchWorkers, cfg.PrefetchQueue)
	return &Stack{
		Cache:    cache,
		Builder:  builder,
		Prefetch: pool,
		Sessions: session.NewManager(session.Deps{
			Builder:       builder,
			Player:        player,
			Prefetch:      pool,
			PrefetchAhead: cfg.PrefetchAhead,
			Defaults:      cfg.Defaults,
			Volume:        cfg.Volume,
		}),
	}
}

func (s *Stack) Start(ctx context.Context) {
	s.Prefetch.Start(ctx)
}

// Close stops every session, then drains the prefetch pool.
func (s *Stack) Close() {
	s.Sessions.CloseAll()
	s.Prefetch.Stop()
}
