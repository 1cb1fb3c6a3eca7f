package playback_test

import (
	"context"
	"errors"
	"sync"

	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/playback"
)

// recordingPlayer records every clip that played to completion.
type recordingPlayer struct {
	mu      sync.Mutex
	played  []audio.ClipKey
	loads   int
	opts    []playback.Options
	failKey audio.ClipKey

	// block, when set, makes Play wait until it is closed.
	block   chan struct{}
	started chan audio.ClipKey
}

func (p *recordingPlayer) Load(ctx context.Context, clip *audio.Clip, opts playback.Options) (playback.Sound, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads++
	p.opts = append(p.opts, opts)
	return &recordingSound{p: p, key: clip.Key, unloaded: make(chan struct{})}, nil
}

func (p *recordingPlayer) Played() []audio.ClipKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]audio.ClipKey(nil), p.played...)
}

func (p *recordingPlayer) Loads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loads
}

type recordingSound struct {
	p        *recordingPlayer
	key      audio.ClipKey
	once     sync.Once
	unloaded chan struct{}
}

func (s *recordingSound) Play(ctx context.Context) error {
	if s.p.started != nil {
		s.p.started <- s.key
	}
	if s.p.block != nil {
		select {
		case <-s.p.block:
		case <-ctx.Done():
			return ctx.Err()
		case <-s.unloaded:
			return playback.ErrUnloaded
		}
	}
	if s.key == s.p.failKey {
		return errors.New("decoder error")
	}
	s.p.mu.Lock()
	s.p.played = append(s.p.played, s.key)
	s.p.mu.Unlock()
	return nil
}

func (s *recordingSound) Unload() error {
	s.once.Do(func() { close(s.unloaded) })
	return nil
}
