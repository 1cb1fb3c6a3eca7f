// Package playback plays the Chinese/English interleave for one card through
// a pluggable Player and decides whether the card index advances.
package playback

import (
	"context"
	"errors"

	"github.com/vytor/hanziflash/internal/audio"
)

// ErrUnloaded is returned by Sound.Play when the sound was unloaded before
// or during playback.
var ErrUnloaded = errors.New("playback: sound unloaded")

// Options control how a clip is rendered.
type Options struct {
	Rate   float64 // 1.0 is normal speed
	Volume float64 // 0..1
}

// Player turns a resolved clip into a playable Sound.
type Player interface {
	Load(ctx context.Context, clip *audio.Clip, opts Options) (Sound, error)
}

// Sound is one loaded clip. Play blocks until the clip finishes, fails, ctx
// ends or the sound is unloaded. Unload is idempotent.
type Sound interface {
	Play(ctx context.Context) error
	Unload() error
}
