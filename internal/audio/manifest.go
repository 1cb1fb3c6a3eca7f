package audio

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/models"
)

// Accessor resolves one clip when called. Building a manifest only creates
// accessors; nothing is read until one is invoked.
type Accessor func(ctx context.Context) (*Clip, error)

// Manifest maps the clip keys of one batch to their accessors.
type Manifest struct {
	Group     string
	Batch     int
	Sentences []models.Sentence
	entries   map[ClipKey]Accessor
}

func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns the manifest keys in sorted order.
func (m *Manifest) Keys() []ClipKey {
	if m == nil {
		return nil
	}
	keys := lo.Keys(m.entries)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (m *Manifest) Accessor(key ClipKey) (Accessor, bool) {
	if m == nil {
		return nil, false
	}
	a, ok := m.entries[key]
	return a, ok
}

// Resolve invokes the accessor for key. A key outside the manifest is
// reported as missing.
func (m *Manifest) Resolve(ctx context.Context, key ClipKey) (*Clip, error) {
	a, ok := m.Accessor(key)
	if !ok {
		return nil, missing(key, fmt.Errorf("not in manifest"))
	}
	return a(ctx)
}

// Builder creates batch manifests backed by a shared ClipCache.
type Builder struct {
	cache  *ClipCache
	source catalog.Source
	log    *logger.Logger
}

func NewBuilder(cache *ClipCache, source catalog.Source) *Builder {
	return &Builder{
		cache:  cache,
		source: source,
		log:    logger.Default().WithPrefix("manifest"),
	}
}

// Cache exposes the shared clip cache.
func (b *Builder) Cache() *ClipCache { return b.cache }

// CreateBatchAudioManifest loads the batch's sentences and builds its
// manifest. level may be "1" or "HSK1".
func (b *Builder) CreateBatchAudioManifest(ctx context.Context, level string, batch int) (*Manifest, []*ManifestBuildError, error) {
	group := catalog.GroupForLevel(level)
	sentences, err := b.source.BatchSentences(ctx, group, batch)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s batch %d: %w", group, batch, err)
	}
	m, diags := b.Build(level, batch, sentences)
	return m, diags, nil
}

// Build maps every clip referenced by sentences to a lazy accessor.
// Filenames that do not follow the key convention for this level are left
// out and returned as diagnostics.
func (b *Builder) Build(level string, batch int, sentences []models.Sentence) (*Manifest, []*ManifestBuildError) {
	group := catalog.GroupForLevel(level)
	wantLevel, levelErr := strconv.Atoi(catalog.LevelOfGroup(group))

	m := &Manifest{
		Group:     group,
		Batch:     batch,
		Sentences: sentences,
		entries:   make(map[ClipKey]Accessor, len(sentences)*2),
	}
	var diags []*ManifestBuildError

	for i, s := range sentences {
		for _, f := range []struct {
			field string
			name  string
			lang  Lang
		}{
			{"audioChinese", s.AudioChinese, LangChinese},
			{"audioEnglish", s.AudioEnglish, LangEnglish},
		} {
			key, parts, err := KeyFromFilename(f.name)
			var reason string
			switch {
			case err != nil:
				reason = err.Error()
			case levelErr == nil && parts.Level != wantLevel:
				reason = fmt.Sprintf("level %d does not match %s", parts.Level, group)
			case parts.Lang != f.lang:
				reason = fmt.Sprintf("language tag %q does not match %s", parts.Lang, f.field)
			}
			if reason != "" {
				d := &ManifestBuildError{Index: i, Field: f.field, Filename: f.name, Reason: reason}
				b.log.Warn("skipping clip: %v", d)
				diags = append(diags, d)
				continue
			}
			m.entries[key] = b.accessor(key)
		}
	}

	b.log.Debug("built manifest %s batch %d: %d keys, %d diagnostics", group, batch, m.Len(), len(diags))
	return m, diags
}

func (b *Builder) accessor(key ClipKey) Accessor {
	return func(ctx context.Context) (*Clip, error) {
		return b.cache.Resolve(ctx, key)
	}
}

// SentenceKeys derives the Chinese and English keys of a sentence. An empty
// key means the filename does not follow the convention.
func SentenceKeys(s models.Sentence) (chi, eng ClipKey) {
	chi, _, _ = KeyFromFilename(s.AudioChinese)
	eng, _, _ = KeyFromFilename(s.AudioEnglish)
	return chi, eng
}
