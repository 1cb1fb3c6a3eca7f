package models

import "fmt"

// Sentence is one flashcard: a Chinese sentence with its translation and the
// two audio clips that read it aloud.
type Sentence struct {
	ID           int64  `json:"id,omitempty"`
	Seq          int    `json:"seq,omitempty"`
	Group        string `json:"group"`
	Batch        int    `json:"batch"`
	TextChinese  string `json:"textChinese"`
	TextEnglish  string `json:"textEnglish"`
	Pinyin       string `json:"pinyin"`
	AudioChinese string `json:"audioChinese"`
	AudioEnglish string `json:"audioEnglish"`
}

// BatchKey identifies one (group, batch) partition of the catalog.
type BatchKey struct {
	Group string `json:"group"`
	Batch int    `json:"batch"`
}

func (k BatchKey) String() string {
	return fmt.Sprintf("%s/batch%02d", k.Group, k.Batch)
}

// Key returns the partition this sentence belongs to.
func (s Sentence) Key() BatchKey {
	return BatchKey{Group: s.Group, Batch: s.Batch}
}

// LevelSummary describes one proficiency level in the directory listing.
type LevelSummary struct {
	Group     string `json:"group"`
	Batches   int    `json:"batches"`
	Sentences int    `json:"sentences"`
}

// BatchSummary describes one batch of a level.
type BatchSummary struct {
	Group     string `json:"group"`
	Batch     int    `json:"batch"`
	Sentences int    `json:"sentences"`
}
