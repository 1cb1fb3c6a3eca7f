package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/hanziflash/internal/audio"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestManifestCommand(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "HSK1", "batch01", "L1-1chi.mp3"), "a")
	touch(t, filepath.Join(root, "HSK1", "batch01", "L1-1eng.mp3"), "b")
	touch(t, filepath.Join(root, "HSK1", "batch01", "notes.mp3"), "c")
	out := filepath.Join(t.TempDir(), "index.yaml")

	_, stderr, err := execute(t, "manifest", "--root", root, "--out", out, "--strict=false")
	require.NoError(t, err)
	assert.Contains(t, stderr, "indexed 2 clips, skipped 1 files")

	idx, err := audio.LoadBundleIndex(out)
	require.NoError(t, err)
	assert.Len(t, idx.Clips, 2)
	assert.True(t, filepath.IsAbs(idx.Root))

	_, _, err = execute(t, "manifest", "--root", root, "--out", out, "--strict")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")
	touch(t, catalogPath, `[
		{"group":"HSK1","batch":1,"textChinese":"你好","textEnglish":"Hello","pinyin":"nǐ hǎo","audioChinese":"L1-1chi.mp3","audioEnglish":"L1-1eng.mp3"},
		{"group":"HSK1","batch":1,"textChinese":"谢谢","textEnglish":"Thanks","pinyin":"xiè xie","audioChinese":"L1-2chi.mp3","audioEnglish":"L1-2eng.mp3"}
	]`)
	dbPath := filepath.Join(dir, "hanzi.db")

	stdout, _, err := execute(t, "import", "--db", dbPath, "--log-level", "ERROR", catalogPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "imported 2 sentences (0 already present, 2 total)")

	stdout, _, err = execute(t, "import", "--db", dbPath, "--log-level", "ERROR", catalogPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "imported 0 sentences (2 already present, 2 total)")
}

func TestImportCommand_RequiresFile(t *testing.T) {
	_, _, err := execute(t, "import")
	assert.Error(t, err)
}
