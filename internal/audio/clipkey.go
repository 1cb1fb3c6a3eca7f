// Package audio derives clip keys, resolves clip bytes through a pluggable
// Resolver, memoizes them in a ClipCache, and builds batch-scoped manifests.
package audio

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Lang is the language tag carried at the end of a clip key.
type Lang string

const (
	LangChinese Lang = "chi"
	LangEnglish Lang = "eng"
)

func (l Lang) String() string {
	switch l {
	case LangChinese:
		return "Chinese"
	case LangEnglish:
		return "English"
	default:
		return string(l)
	}
}

// ClipKey identifies one clip, e.g. "L1-0001chi".
type ClipKey string

// KeyParts is a parsed ClipKey.
type KeyParts struct {
	Level int
	Seq   int
	Lang  Lang
}

var keyPattern = regexp.MustCompile(`^L(\d+)-(\d+)(chi|eng)$`)

// DefaultBatchSize is the number of sentences per on-disk batch directory.
const DefaultBatchSize = 100

// ParseKey validates s against the L<level>-<seq><lang> convention.
func ParseKey(s string) (KeyParts, error) {
	m := keyPattern.FindStringSubmatch(s)
	if m == nil {
		return KeyParts{}, fmt.Errorf("%q does not match L<level>-<seq><chi|eng>", s)
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return KeyParts{}, fmt.Errorf("level in %q: %w", s, err)
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return KeyParts{}, fmt.Errorf("sequence in %q: %w", s, err)
	}
	return KeyParts{Level: level, Seq: seq, Lang: Lang(m[3])}, nil
}

// KeyFromFilename strips the extension from a clip filename and validates
// what is left.
func KeyFromFilename(name string) (ClipKey, KeyParts, error) {
	base := path.Base(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, path.Ext(base))
	parts, err := ParseKey(base)
	if err != nil {
		return "", KeyParts{}, err
	}
	return ClipKey(base), parts, nil
}

// Parts parses the key.
func (k ClipKey) Parts() (KeyParts, error) {
	return ParseKey(string(k))
}

// BatchOf returns the 1-based batch directory a sequence number lives in.
func BatchOf(seq, batchSize int) int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if seq < 1 {
		return 1
	}
	return (seq + batchSize - 1) / batchSize
}

// ClipPath is the slash-separated location of a clip inside an audio tree:
// HSK<level>/batch<NN>/<key>.mp3.
func ClipPath(key ClipKey, batchSize int) (string, error) {
	parts, err := key.Parts()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("HSK%d/batch%02d/%s.mp3", parts.Level, BatchOf(parts.Seq, batchSize), key), nil
}
