package playback

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/hanziflash/internal/audio"
)

// Silent pretends to play each clip for a fixed duration, scaled by rate.
// It backs headless hosts and tests.
type Silent struct {
	duration time.Duration
}

func NewSilent(d time.Duration) *Silent {
	return &Silent{duration: d}
}

func (p *Silent) Load(ctx context.Context, clip *audio.Clip, opts Options) (Sound, error) {
	d := p.duration
	if opts.Rate > 0 {
		d = time.Duration(float64(d) / opts.Rate)
	}
	return &silentSound{d: d, done: make(chan struct{})}, nil
}

type silentSound struct {
	d    time.Duration
	done chan struct{}
	once sync.Once
}

func (s *silentSound) Play(ctx context.Context) error {
	select {
	case <-s.done:
		return ErrUnloaded
	default:
	}
	if s.d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrUnloaded
	case <-t.C:
		return nil
	}
}

func (s *silentSound) Unload() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
