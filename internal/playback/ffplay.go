package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/logger"
)

// FFPlay plays clips by piping them into an ffplay process.
type FFPlay struct {
	path string
	log  *logger.Logger
}

func NewFFPlay(path string) *FFPlay {
	if path == "" {
		path = "ffplay"
	}
	return &FFPlay{path: path, log: logger.Default().WithPrefix("ffplay")}
}

func (p *FFPlay) Load(ctx context.Context, clip *audio.Clip, opts Options) (Sound, error) {
	if clip == nil || len(clip.Data) == 0 {
		return nil, errors.New("ffplay: empty clip")
	}
	return &ffplaySound{
		path: p.path,
		args: FFPlayArgs(opts),
		data: clip.Data,
		log:  p.log.WithField("clip", clip.Key),
	}, nil
}

type ffplaySound struct {
	path string
	args []string
	data []byte
	log  *logger.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	unloaded bool
}

func (s *ffplaySound) Play(ctx context.Context) error {
	s.mu.Lock()
	if s.unloaded {
		s.mu.Unlock()
		return ErrUnloaded
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	cmd := exec.CommandContext(runCtx, s.path, s.args...)
	cmd.Stdin = bytes.NewReader(s.data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.log.Debug("starting %s %s", s.path, strings.Join(s.args, " "))
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runCtx.Err() != nil {
		return ErrUnloaded
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("ffplay: %w: %s", err, msg)
	}
	return fmt.Errorf("ffplay: %w", err)
}

func (s *ffplaySound) Unload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloaded = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// FFPlayArgs builds the ffplay command line for clip bytes on stdin.
func FFPlayArgs(opts Options) []string {
	vol := opts.Volume
	if vol < 0 {
		vol = 0
	}
	if vol > 1 {
		vol = 1
	}
	args := []string{"-nodisp", "-autoexit", "-loglevel", "error", "-volume", strconv.Itoa(int(math.Round(vol * 100)))}
	if f := AtempoFilter(opts.Rate); f != "" {
		args = append(args, "-af", f)
	}
	return append(args, "pipe:0")
}

// AtempoChain splits rate into factors ffmpeg's atempo filter accepts
// (0.5 to 2.0 each) whose product is rate.
func AtempoChain(rate float64) []float64 {
	if rate <= 0 || rate == 1 {
		return nil
	}
	var chain []float64
	for rate < 0.5 {
		chain = append(chain, 0.5)
		rate /= 0.5
	}
	for rate > 2 {
		chain = append(chain, 2)
		rate /= 2
	}
	return append(chain, rate)
}

// AtempoFilter renders AtempoChain as an -af argument, or "" for normal speed.
func AtempoFilter(rate float64) string {
	chain := AtempoChain(rate)
	if len(chain) == 0 {
		return ""
	}
	parts := make([]string, len(chain))
	for i, f := range chain {
		parts[i] = "atempo=" + strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
