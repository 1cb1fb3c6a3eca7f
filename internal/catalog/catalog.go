// Package catalog holds the static sentence collection, partitioned by level
// (group) and batch.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/models"
)

const groupPrefix = "HSK"

// ErrNotFound is returned for an unknown level or batch.
var ErrNotFound = errors.New("catalog: not found")

// Source is anything that can serve the catalog partitions: the in-memory
// Catalog or the sqlite repository.
type Source interface {
	Levels(ctx context.Context) ([]models.LevelSummary, error)
	Batches(ctx context.Context, group string) ([]models.BatchSummary, error)
	BatchSentences(ctx context.Context, group string, batch int) ([]models.Sentence, error)
}

// Catalog is an immutable, in-memory partition of sentence records.
type Catalog struct {
	parts  map[models.BatchKey][]models.Sentence
	groups map[string][]int
	total  int
}

var _ Source = (*Catalog)(nil)

// LoadFile reads and validates a JSON catalog from disk.
func LoadFile(path string) ([]models.Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a JSON array of sentence records. Seq is assigned from file
// order, starting at 1.
func Load(r io.Reader) ([]models.Sentence, error) {
	var records []models.Sentence
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i := range records {
		records[i].Seq = i + 1
	}
	if err := Validate(records); err != nil {
		return nil, err
	}
	logger.Default().WithPrefix("catalog").Debug("decoded %d sentence records", len(records))
	return records, nil
}

// Validate checks that every record carries the fields playback relies on.
// Pinyin may be empty.
func Validate(records []models.Sentence) error {
	var errs []error
	for i, s := range records {
		var missing []string
		if strings.TrimSpace(s.Group) == "" {
			missing = append(missing, "group")
		}
		if s.TextChinese == "" {
			missing = append(missing, "textChinese")
		}
		if s.TextEnglish == "" {
			missing = append(missing, "textEnglish")
		}
		if s.AudioChinese == "" {
			missing = append(missing, "audioChinese")
		}
		if s.AudioEnglish == "" {
			missing = append(missing, "audioEnglish")
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Errorf("record %d: missing %s", i+1, strings.Join(missing, ", ")))
		}
		if s.Batch < 1 {
			errs = append(errs, fmt.Errorf("record %d: batch must be >= 1, got %d", i+1, s.Batch))
		}
	}
	return errors.Join(errs...)
}

// New partitions records by (group, batch), keeping file order inside each batch.
func New(records []models.Sentence) *Catalog {
	sorted := make([]models.Sentence, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	parts := lo.GroupBy(sorted, func(s models.Sentence) models.BatchKey { return s.Key() })
	groups := make(map[string][]int)
	for key := range parts {
		groups[key.Group] = append(groups[key.Group], key.Batch)
	}
	for g := range groups {
		sort.Ints(groups[g])
	}
	return &Catalog{parts: parts, groups: groups, total: len(records)}
}

// Len returns the number of records in the catalog.
func (c *Catalog) Len() int { return c.total }

func (c *Catalog) Levels(ctx context.Context) ([]models.LevelSummary, error) {
	out := make([]models.LevelSummary, 0, len(c.groups))
	for group, batches := range c.groups {
		n := 0
		for _, b := range batches {
			n += len(c.parts[models.BatchKey{Group: group, Batch: b}])
		}
		out = append(out, models.LevelSummary{Group: group, Batches: len(batches), Sentences: n})
	}
	sort.Slice(out, func(i, j int) bool { return LessGroup(out[i].Group, out[j].Group) })
	return out, nil
}

func (c *Catalog) Batches(ctx context.Context, group string) ([]models.BatchSummary, error) {
	batches, ok := c.groups[group]
	if !ok {
		return nil, fmt.Errorf("level %s: %w", group, ErrNotFound)
	}
	return lo.Map(batches, func(b int, _ int) models.BatchSummary {
		return models.BatchSummary{
			Group:     group,
			Batch:     b,
			Sentences: len(c.parts[models.BatchKey{Group: group, Batch: b}]),
		}
	}), nil
}

// BatchSentences returns a copy of one batch's records.
func (c *Catalog) BatchSentences(ctx context.Context, group string, batch int) ([]models.Sentence, error) {
	key := models.BatchKey{Group: group, Batch: batch}
	part, ok := c.parts[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	out := make([]models.Sentence, len(part))
	copy(out, part)
	return out, nil
}

// GroupForLevel accepts "1" or "HSK1" and returns "HSK1".
func GroupForLevel(level string) string {
	level = strings.TrimSpace(level)
	if strings.HasPrefix(strings.ToUpper(level), groupPrefix) {
		return groupPrefix + level[len(groupPrefix):]
	}
	return groupPrefix + level
}

// LevelOfGroup strips the HSK prefix: "HSK1" -> "1".
func LevelOfGroup(group string) string {
	group = strings.TrimSpace(group)
	if strings.HasPrefix(strings.ToUpper(group), groupPrefix) {
		return group[len(groupPrefix):]
	}
	return group
}

// LessGroup orders groups by their numeric level so HSK2 sorts before HSK10.
// Non-numeric groups sort after numeric ones, alphabetically.
func LessGroup(a, b string) bool {
	na, errA := strconv.Atoi(LevelOfGroup(a))
	nb, errB := strconv.Atoi(LevelOfGroup(b))
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
