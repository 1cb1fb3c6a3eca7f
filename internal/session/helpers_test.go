package session_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/playback"
)

type countingPlayer struct {
	inner playback.Player
	loads atomic.Int64

	mu   sync.Mutex
	last audio.ClipKey
}

func (p *countingPlayer) Load(ctx context.Context, clip *audio.Clip, opts playback.Options) (playback.Sound, error) {
	p.loads.Add(1)
	p.mu.Lock()
	p.last = clip.Key
	p.mu.Unlock()
	return p.inner.Load(ctx, clip, opts)
}

func (p *countingPlayer) lastKey() audio.ClipKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
