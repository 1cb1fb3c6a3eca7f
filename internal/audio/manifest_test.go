package audio_test

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/models"
)

func batchSentences(level, from, to, batch int) []models.Sentence {
	var out []models.Sentence
	for seq := from; seq <= to; seq++ {
		out = append(out, models.Sentence{
			Seq:          seq,
			Group:        fmt.Sprintf("HSK%d", level),
			Batch:        batch,
			TextChinese:  "句子",
			TextEnglish:  "sentence",
			AudioChinese: fmt.Sprintf("L%d-%04dchi.mp3", level, seq),
			AudioEnglish: fmt.Sprintf("L%d-%04deng.mp3", level, seq),
		})
	}
	return out
}

func TestBuild_KeysAreExactlyTheBatch(t *testing.T) {
	r := &countingResolver{inner: audio.NewFSResolver(fstest.MapFS{}, 100)}
	b := audio.NewBuilder(audio.NewClipCache(r), nil)

	m, diags := b.Build("1", 2, batchSentences(1, 101, 150, 2))
	assert.Empty(t, diags)
	require.Equal(t, 100, m.Len())

	keys := m.Keys()
	for seq := 101; seq <= 150; seq++ {
		assert.Contains(t, keys, audio.ClipKey(fmt.Sprintf("L1-%04dchi", seq)))
		assert.Contains(t, keys, audio.ClipKey(fmt.Sprintf("L1-%04deng", seq)))
	}
	for _, k := range keys {
		p, err := audio.ClipPath(k, 100)
		require.NoError(t, err)
		assert.NotContains(t, p, "batch01", "key %s belongs to another batch", k)
	}

	assert.Equal(t, int64(0), r.calls.Load(), "building must not load clips")
	assert.Equal(t, "HSK1", m.Group)
	assert.Equal(t, 2, m.Batch)
}

func TestBuild_OmitsKeysThatBreakTheConvention(t *testing.T) {
	b := audio.NewBuilder(audio.NewClipCache(audio.NewFSResolver(fstest.MapFS{}, 100)), nil)
	sentences := []models.Sentence{
		{AudioChinese: "L1-0001chi.mp3", AudioEnglish: "L1-0001eng.mp3"},
		{AudioChinese: "hello.mp3", AudioEnglish: "L1-0002eng.mp3"},
		{AudioChinese: "L2-0003chi.mp3", AudioEnglish: "L1-0003chi.mp3"},
	}

	m, diags := b.Build("HSK1", 1, sentences)
	assert.Equal(t, []audio.ClipKey{"L1-0001chi", "L1-0001eng", "L1-0002eng"}, m.Keys())
	require.Len(t, diags, 3)

	assert.Equal(t, 1, diags[0].Index)
	assert.Equal(t, "audioChinese", diags[0].Field)
	assert.Contains(t, diags[1].Reason, "level 2")
	assert.Equal(t, "audioEnglish", diags[2].Field)
	assert.Contains(t, diags[2].Reason, "language tag")
}

func TestManifest_AccessorConsultsCache(t *testing.T) {
	r := &countingResolver{inner: audio.NewFSResolver(audioTree(), 100)}
	b := audio.NewBuilder(audio.NewClipCache(r), nil)
	m, _ := b.Build("1", 1, batchSentences(1, 1, 1, 1))
	ctx := context.Background()

	a, ok := m.Accessor("L1-0001chi")
	require.True(t, ok)
	first, err := a(ctx)
	require.NoError(t, err)
	second, err := m.Resolve(ctx, "L1-0001chi")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), r.calls.Load())

	_, err = m.Resolve(ctx, "L9-0001chi")
	assert.ErrorIs(t, err, audio.ErrClipMissing)
}

func TestCreateBatchAudioManifest(t *testing.T) {
	records := append(batchSentences(1, 1, 3, 1), batchSentences(1, 101, 102, 2)...)
	src := catalog.New(records)
	b := audio.NewBuilder(audio.NewClipCache(audio.NewFSResolver(audioTree(), 100)), src)

	m, diags, err := b.CreateBatchAudioManifest(context.Background(), "1", 2)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, []audio.ClipKey{"L1-0101chi", "L1-0101eng", "L1-0102chi", "L1-0102eng"}, m.Keys())
	require.Len(t, m.Sentences, 2)
	assert.Equal(t, 101, m.Sentences[0].Seq)

	_, _, err = b.CreateBatchAudioManifest(context.Background(), "HSK1", 9)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSentenceKeys(t *testing.T) {
	chi, eng := audio.SentenceKeys(models.Sentence{AudioChinese: "L1-0001chi.mp3", AudioEnglish: "oops"})
	assert.Equal(t, audio.ClipKey("L1-0001chi"), chi)
	assert.Empty(t, eng)
}

func TestManifest_NilIsEmpty(t *testing.T) {
	var m *audio.Manifest
	assert.Zero(t, m.Len())
	assert.Empty(t, m.Keys())
	_, ok := m.Accessor("L1-0001chi")
	assert.False(t, ok)
}
