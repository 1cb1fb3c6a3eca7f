package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/models"
)

// SyncResult reports what an import changed.
type SyncResult struct {
	Inserted int
	Skipped  int
}

// SyncSentences imports catalog records in one transaction. Records already
// present (same group and Chinese clip) are left untouched, so re-running an
// import is safe.
func (db *DB) SyncSentences(ctx context.Context, records []models.Sentence) (SyncResult, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("syncing %d sentence records", len(records))

	var res SyncResult
	if len(records) == 0 {
		return res, nil
	}

	err := tx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO sentences (
    seq, group_key, batch, text_chinese, text_english, pinyin, audio_chinese, audio_english
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range records {
			r, err := stmt.ExecContext(ctx, s.Seq, s.Group, s.Batch, s.TextChinese, s.TextEnglish, s.Pinyin, s.AudioChinese, s.AudioEnglish)
			if err != nil {
				return fmt.Errorf("insert %s/%s: %w", s.Group, s.AudioChinese, err)
			}
			if n, _ := r.RowsAffected(); n > 0 {
				res.Inserted++
			} else {
				res.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		log.Error("sentence sync failed: %v", err)
		return SyncResult{}, err
	}

	log.Info("sentence sync complete: inserted=%d skipped=%d", res.Inserted, res.Skipped)
	return res, nil
}

// CountSentences returns the number of stored sentences.
func (db *DB) CountSentences(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sentences`).Scan(&n)
	return n, err
}
