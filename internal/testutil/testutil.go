package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/hanziflash/internal/db"
	"github.com/vytor/hanziflash/internal/models"
)

// NewTestDB opens an in-memory database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	d, err := db.Open(":memory:")
	require.NoError(t, err)
	return d
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SampleSentences is a small two-level catalog: HSK1 with batches 1 and 2,
// HSK2 with a single batch.
func SampleSentences() []models.Sentence {
	return []models.Sentence{
		{Seq: 1, Group: "HSK1", Batch: 1, TextChinese: "你好", TextEnglish: "Hello", Pinyin: "nǐ hǎo", AudioChinese: "L1-1chi.mp3", AudioEnglish: "L1-1eng.mp3"},
		{Seq: 2, Group: "HSK1", Batch: 1, TextChinese: "谢谢", TextEnglish: "Thanks", Pinyin: "xiè xie", AudioChinese: "L1-2chi.mp3", AudioEnglish: "L1-2eng.mp3"},
		{Seq: 3, Group: "HSK1", Batch: 2, TextChinese: "再见", TextEnglish: "Goodbye", Pinyin: "zài jiàn", AudioChinese: "L1-101chi.mp3", AudioEnglish: "L1-101eng.mp3"},
		{Seq: 4, Group: "HSK2", Batch: 1, TextChinese: "我们走吧", TextEnglish: "Let's go", Pinyin: "wǒmen zǒu ba", AudioChinese: "L2-1chi.mp3", AudioEnglish: "L2-1eng.mp3"},
	}
}
