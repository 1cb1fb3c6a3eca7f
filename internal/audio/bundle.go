package audio

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// BundleVersion is the current bundle index format.
const BundleVersion = 1

// BundleIndex is a prebuilt key -> path table for an audio tree, so hosts
// can resolve clips without relying on the directory convention.
type BundleIndex struct {
	Version int               `yaml:"version"`
	Root    string            `yaml:"root,omitempty"`
	Clips   map[string]string `yaml:"clips"`
}

// ScanResult carries the index plus the files that were not indexed.
type ScanResult struct {
	Index    *BundleIndex
	Rejected []string
}

// ScanBundle walks HSK*/batch*/*.mp3 in fsys and indexes every file whose
// base name is a valid clip key.
func ScanBundle(fsys fs.FS) (ScanResult, error) {
	idx := &BundleIndex{Version: BundleVersion, Clips: make(map[string]string)}
	res := ScanResult{Index: idx}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := path.Match("HSK*/batch*/*.mp3", p); !ok {
			return nil
		}
		key, parts, err := KeyFromFilename(p)
		if err != nil {
			res.Rejected = append(res.Rejected, p)
			return nil
		}
		if dir := strings.SplitN(p, "/", 2)[0]; dir != fmt.Sprintf("HSK%d", parts.Level) {
			res.Rejected = append(res.Rejected, p)
			return nil
		}
		if prev, dup := idx.Clips[string(key)]; dup {
			res.Rejected = append(res.Rejected, fmt.Sprintf("%s (duplicate of %s)", p, prev))
			return nil
		}
		idx.Clips[string(key)] = p
		return nil
	})
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan audio tree: %w", err)
	}
	return res, nil
}

// Write encodes the index as YAML.
func (b *BundleIndex) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode bundle index: %w", err)
	}
	return enc.Close()
}

// ReadBundleIndex decodes a YAML bundle index.
func ReadBundleIndex(r io.Reader) (*BundleIndex, error) {
	var b BundleIndex
	if err := yaml.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle index: %w", err)
	}
	if b.Version != BundleVersion {
		return nil, fmt.Errorf("unsupported bundle index version %d", b.Version)
	}
	if b.Clips == nil {
		b.Clips = make(map[string]string)
	}
	return &b, nil
}

// LoadBundleIndex reads a bundle index file from disk.
func LoadBundleIndex(name string) (*BundleIndex, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open bundle index: %w", err)
	}
	defer f.Close()
	return ReadBundleIndex(f)
}
