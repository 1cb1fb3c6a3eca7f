package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/models"
)

const sampleJSON = `[
  {"group":"HSK1","batch":1,"textChinese":"你好","textEnglish":"Hello","pinyin":"nǐ hǎo","audioChinese":"L1-1chi.mp3","audioEnglish":"L1-1eng.mp3"},
  {"group":"HSK1","batch":1,"textChinese":"谢谢","textEnglish":"Thanks","pinyin":"xiè xie","audioChinese":"L1-2chi.mp3","audioEnglish":"L1-2eng.mp3"},
  {"group":"HSK1","batch":2,"textChinese":"再见","textEnglish":"Goodbye","pinyin":"zài jiàn","audioChinese":"L1-101chi.mp3","audioEnglish":"L1-101eng.mp3"},
  {"group":"HSK10","batch":1,"textChinese":"甲","textEnglish":"A","pinyin":"","audioChinese":"L10-1chi.mp3","audioEnglish":"L10-1eng.mp3"},
  {"group":"HSK2","batch":1,"textChinese":"乙","textEnglish":"B","pinyin":"yǐ","audioChinese":"L2-1chi.mp3","audioEnglish":"L2-1eng.mp3"}
]`

func loadSample(t *testing.T) *catalog.Catalog {
	t.Helper()
	records, err := catalog.Load(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	return catalog.New(records)
}

func TestLoad_AssignsSeqInFileOrder(t *testing.T) {
	records, err := catalog.Load(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	require.Len(t, records, 5)

	for i, r := range records {
		assert.Equal(t, i+1, r.Seq)
	}
	assert.Equal(t, "nǐ hǎo", records[0].Pinyin)
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	_, err := catalog.Load(strings.NewReader(`{"group":`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  models.Sentence
		wantErr string
	}{
		{
			name:   "complete record",
			record: models.Sentence{Group: "HSK1", Batch: 1, TextChinese: "你", TextEnglish: "you", AudioChinese: "L1-1chi.mp3", AudioEnglish: "L1-1eng.mp3"},
		},
		{
			name:    "missing audio",
			record:  models.Sentence{Group: "HSK1", Batch: 1, TextChinese: "你", TextEnglish: "you"},
			wantErr: "missing audioChinese, audioEnglish",
		},
		{
			name:    "zero batch",
			record:  models.Sentence{Group: "HSK1", TextChinese: "你", TextEnglish: "you", AudioChinese: "a", AudioEnglish: "b"},
			wantErr: "batch must be >= 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catalog.Validate([]models.Sentence{tt.record})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "record 1")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLevels_SortedNumerically(t *testing.T) {
	c := loadSample(t)

	levels, err := c.Levels(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 3)

	assert.Equal(t, []string{"HSK1", "HSK2", "HSK10"}, []string{levels[0].Group, levels[1].Group, levels[2].Group})
	assert.Equal(t, models.LevelSummary{Group: "HSK1", Batches: 2, Sentences: 3}, levels[0])
	assert.Equal(t, 5, c.Len())
}

func TestBatches(t *testing.T) {
	c := loadSample(t)

	batches, err := c.Batches(context.Background(), "HSK1")
	require.NoError(t, err)
	assert.Equal(t, []models.BatchSummary{
		{Group: "HSK1", Batch: 1, Sentences: 2},
		{Group: "HSK1", Batch: 2, Sentences: 1},
	}, batches)

	_, err = c.Batches(context.Background(), "HSK9")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestBatchSentences_ReturnsCopyInOrder(t *testing.T) {
	c := loadSample(t)
	ctx := context.Background()

	got, err := c.BatchSentences(ctx, "HSK1", 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "你好", got[0].TextChinese)
	assert.Equal(t, "谢谢", got[1].TextChinese)

	got[0].TextChinese = "mutated"
	again, err := c.BatchSentences(ctx, "HSK1", 1)
	require.NoError(t, err)
	assert.Equal(t, "你好", again[0].TextChinese)

	_, err = c.BatchSentences(ctx, "HSK1", 7)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestGroupHelpers(t *testing.T) {
	assert.Equal(t, "HSK1", catalog.GroupForLevel("1"))
	assert.Equal(t, "HSK3", catalog.GroupForLevel("HSK3"))
	assert.Equal(t, "4", catalog.LevelOfGroup("HSK4"))
	assert.Equal(t, "custom", catalog.LevelOfGroup("custom"))

	assert.True(t, catalog.LessGroup("HSK2", "HSK10"))
	assert.False(t, catalog.LessGroup("HSK10", "HSK2"))
	assert.True(t, catalog.LessGroup("HSK6", "bonus"))
}
