package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/models"
	"github.com/vytor/hanziflash/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type sentenceRepository struct {
	db *sql.DB
}

// NewSentenceRepository creates a SentenceRepository backed by sqlite.
func NewSentenceRepository(db *sql.DB) repository.SentenceRepository {
	return &sentenceRepository{db: db}
}

func (r *sentenceRepository) Levels(ctx context.Context) ([]models.LevelSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("sentence_repo")

	query, args, err := sqlBuilder.
		Select("group_key", "COUNT(DISTINCT batch)", "COUNT(*)").
		From("sentences").
		GroupBy("group_key").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list levels: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.LevelSummary
	for rows.Next() {
		var l models.LevelSummary
		if err := rows.Scan(&l.Group, &l.Batches, &l.Sentences); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortLevels(out)
	log.Debug("listed %d levels", len(out))
	return out, nil
}

func (r *sentenceRepository) Batches(ctx context.Context, group string) ([]models.BatchSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("sentence_repo")
	log.Debug("listing batches: group=%s", group)

	query, args, err := sqlBuilder.
		Select("batch", "COUNT(*)").
		From("sentences").
		Where(squirrel.Eq{"group_key": group}).
		GroupBy("batch").
		OrderBy("batch").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list batches: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.BatchSummary
	for rows.Next() {
		b := models.BatchSummary{Group: group}
		if err := rows.Scan(&b.Batch, &b.Sentences); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("level %s: %w", group, catalog.ErrNotFound)
	}
	return out, nil
}

func (r *sentenceRepository) BatchSentences(ctx context.Context, group string, batch int) ([]models.Sentence, error) {
	log := logger.FromContext(ctx).WithPrefix("sentence_repo")
	log.Debug("loading batch: group=%s batch=%d", group, batch)

	query, args, err := sqlBuilder.
		Select("id", "seq", "group_key", "batch", "text_chinese", "text_english", "pinyin", "audio_chinese", "audio_english").
		From("sentences").
		Where(squirrel.Eq{"group_key": group, "batch": batch}).
		OrderBy("seq", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to load batch: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.Sentence
	for rows.Next() {
		var s models.Sentence
		if err := rows.Scan(&s.ID, &s.Seq, &s.Group, &s.Batch, &s.TextChinese, &s.TextEnglish, &s.Pinyin, &s.AudioChinese, &s.AudioEnglish); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", models.BatchKey{Group: group, Batch: batch}, catalog.ErrNotFound)
	}
	log.Debug("loaded %d sentences", len(out))
	return out, nil
}

func (r *sentenceRepository) Count(ctx context.Context) (int, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("sentences").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
