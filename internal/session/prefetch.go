package session

import (
	"context"
	"errors"

	"github.com/vytor/hanziflash/internal/audio"
)

// PrefetchJob warms the clip cache for one key of the open batch.
type PrefetchJob struct {
	Manifest *audio.Manifest
	Key      audio.ClipKey
}

func (j PrefetchJob) Name() string { return "prefetch " + string(j.Key) }

func (j PrefetchJob) Run(ctx context.Context) error {
	_, err := j.Manifest.Resolve(ctx, j.Key)
	if errors.Is(err, audio.ErrClipMissing) {
		return nil
	}
	return err
}

// prefetchLocked queues the clips of the cards after the current one.
func (s *Session) prefetchLocked() {
	if s.deps.Prefetch == nil || s.deps.PrefetchAhead <= 0 || s.manifest == nil {
		return
	}
	st := s.state
	n := len(st.Order)
	cache := s.deps.Builder.Cache()

	for k := 1; k <= s.deps.PrefetchAhead && k < n; k++ {
		pos := st.Index + k
		if pos >= n {
			if !st.LoopMode {
				break
			}
			pos %= n
		}
		chi, eng := audio.SentenceKeys(s.manifest.Sentences[st.Order[pos]])
		var keys []audio.ClipKey
		if st.RepeatChinese > 0 {
			keys = append(keys, chi)
		}
		if st.RepeatEnglish > 0 {
			keys = append(keys, eng)
		}
		for _, key := range keys {
			if key == "" || cache.Contains(key) {
				continue
			}
			if err := s.deps.Prefetch.Submit(PrefetchJob{Manifest: s.manifest, Key: key}); err != nil {
				s.log.Debug("prefetch of %s dropped: %v", key, err)
			}
		}
	}
}
