package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/config"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/models"
	"github.com/vytor/hanziflash/internal/playback"
	"github.com/vytor/hanziflash/internal/worker"
)

var (
	ErrClosed          = errors.New("session: closed")
	ErrIndexOutOfRange = errors.New("session: index out of range")
	ErrNoBatch         = errors.New("session: no batch open")
)

// Deps are the collaborators a session plays through.
type Deps struct {
	Builder *audio.Builder
	Player  playback.Player

	// Prefetch is optional. When set, the clips of the next PrefetchAhead
	// cards are resolved in the background.
	Prefetch      *worker.Pool
	PrefetchAhead int

	Defaults config.SessionDefaults
	Volume   float64

	// Rand is used under the session lock and must not be shared between
	// sessions. Nil uses the global source.
	Rand *rand.Rand
}

// Snapshot is a copy of a session's state for hosts.
type Snapshot struct {
	ID string `json:"id"`
	State
	Total       int              `json:"total"`
	Sentence    *models.Sentence `json:"sentence,omitempty"`
	Playback    string           `json:"playback"`
	LastOutcome string           `json:"lastOutcome,omitempty"`
	LastError   string           `json:"lastError,omitempty"`
	Diagnostics []string         `json:"diagnostics,omitempty"`
}

// Settings is a partial update; nil fields are left alone.
type Settings struct {
	LoopMode      *bool    `json:"loopMode,omitempty"`
	ShuffleMode   *bool    `json:"shuffleMode,omitempty"`
	ManualMode    *bool    `json:"manualMode,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
	RepeatEnglish *int     `json:"repeatEnglish,omitempty"`
	RepeatChinese *int     `json:"repeatChinese,omitempty"`
	MuteEnglish   *bool    `json:"muteEnglish,omitempty"`
	MuteChinese   *bool    `json:"muteChinese,omitempty"`
	ShowPinyin    *bool    `json:"showPinyin,omitempty"`
	ShowEnglish   *bool    `json:"showEnglish,omitempty"`
}

type Session struct {
	id   string
	deps Deps
	seq  *playback.Sequencer
	slot *playback.Slot
	log  *logger.Logger
	base context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	state    State
	manifest *audio.Manifest
	diags    []*audio.ManifestBuildError
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	last     *playback.Result
	closed   bool
	onChange func(Snapshot)
}

// New creates an idle session with no batch open.
func New(id string, deps Deps) *Session {
	base, stop := context.WithCancel(context.Background())
	d := deps.Defaults
	return &Session{
		id:   id,
		deps: deps,
		seq:  playback.NewSequencer(deps.Player),
		slot: playback.NewSlot(),
		log:  logger.Default().WithPrefix("session").WithField("session", id),
		base: base,
		stop: stop,
		state: State{
			LoopMode:      d.Loop,
			ShuffleMode:   d.Shuffle,
			ManualMode:    d.Manual,
			Speed:         ClampSpeed(d.Speed),
			Volume:        ClampVolume(deps.Volume),
			RepeatEnglish: ClampRepeat(d.RepeatEnglish),
			RepeatChinese: ClampRepeat(d.RepeatChinese),
			ShowPinyin:    true,
			ShowEnglish:   true,
		},
	}
}

func (s *Session) ID() string { return s.id }

// OnChange registers fn to be called after every state change. fn runs on
// the goroutine that made the change and must not block.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SwitchBatch opens a batch: the previous manifest is dropped, the index
// resets to 0 and the order is re-derived.
func (s *Session) SwitchBatch(ctx context.Context, group string, batch int) error {
	m, diags, err := s.deps.Builder.CreateBatchAudioManifest(ctx, group, batch)
	if err != nil {
		return err
	}
	if len(m.Sentences) == 0 {
		return fmt.Errorf("%s: %w", models.BatchKey{Group: m.Group, Batch: batch}, catalog.ErrNotFound)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.stopLocked()
	s.manifest, s.diags, s.last = m, diags, nil
	s.state.Group, s.state.Batch = m.Group, batch
	s.state.Index = 0
	s.state.Order = NewOrder(len(m.Sentences), s.state.ShuffleMode, s.deps.Rand)
	s.startLocked()
	s.log.Info("opened %s batch %d: %d sentences, %d clips", m.Group, batch, len(m.Sentences), m.Len())
	s.notifyUnlock()
	return nil
}

func (s *Session) SetPlaying(on bool) error {
	return s.update(func(st *State) error {
		st.IsPlaying = on
		return nil
	})
}

func (s *Session) TogglePlaying() error {
	return s.update(func(st *State) error {
		st.IsPlaying = !st.IsPlaying
		return nil
	})
}

// Next and Prev move one card with wrap-around.
func (s *Session) Next() error { return s.step(1) }
func (s *Session) Prev() error { return s.step(-1) }

func (s *Session) step(delta int) error {
	return s.update(func(st *State) error {
		n := len(st.Order)
		if n == 0 {
			return ErrNoBatch
		}
		st.Index = ((st.Index+delta)%n + n) % n
		return nil
	})
}

func (s *Session) SetIndex(i int) error {
	return s.update(func(st *State) error {
		if i < 0 || i >= len(st.Order) {
			return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(st.Order))
		}
		st.Index = i
		return nil
	})
}

func (s *Session) SetLoop(on bool) error   { return s.Apply(Settings{LoopMode: &on}) }
func (s *Session) SetManual(on bool) error { return s.Apply(Settings{ManualMode: &on}) }
func (s *Session) SetShuffle(on bool) error {
	return s.Apply(Settings{ShuffleMode: &on})
}
func (s *Session) SetSpeed(v float64) error  { return s.Apply(Settings{Speed: &v}) }
func (s *Session) SetVolume(v float64) error { return s.Apply(Settings{Volume: &v}) }
func (s *Session) SetRepeatEnglish(n int) error {
	return s.Apply(Settings{RepeatEnglish: &n})
}
func (s *Session) SetRepeatChinese(n int) error {
	return s.Apply(Settings{RepeatChinese: &n})
}

func (s *Session) IncreaseSpeed() error {
	return s.update(func(st *State) error {
		st.Speed = ClampSpeed(st.Speed + SpeedStep)
		return nil
	})
}

func (s *Session) DecreaseSpeed() error {
	return s.update(func(st *State) error {
		st.Speed = ClampSpeed(st.Speed - SpeedStep)
		return nil
	})
}

func (s *Session) SetMute(lang audio.Lang, muted bool) error {
	switch lang {
	case audio.LangChinese:
		return s.Apply(Settings{MuteChinese: &muted})
	case audio.LangEnglish:
		return s.Apply(Settings{MuteEnglish: &muted})
	default:
		return fmt.Errorf("unknown language %q", lang)
	}
}

// Apply updates several settings at once, restarting playback at most once.
func (s *Session) Apply(p Settings) error {
	return s.update(func(st *State) error {
		if p.LoopMode != nil {
			st.LoopMode = *p.LoopMode
		}
		if p.ManualMode != nil {
			st.ManualMode = *p.ManualMode
		}
		if p.ShuffleMode != nil && *p.ShuffleMode != st.ShuffleMode {
			st.ShuffleMode = *p.ShuffleMode
			st.Order = NewOrder(len(st.Order), st.ShuffleMode, s.deps.Rand)
		}
		if p.Speed != nil {
			st.Speed = ClampSpeed(*p.Speed)
		}
		if p.Volume != nil {
			st.Volume = ClampVolume(*p.Volume)
		}
		if p.RepeatEnglish != nil {
			st.RepeatEnglish = ClampRepeat(*p.RepeatEnglish)
		}
		if p.RepeatChinese != nil {
			st.RepeatChinese = ClampRepeat(*p.RepeatChinese)
		}
		if p.MuteEnglish != nil {
			st.MuteEnglish = *p.MuteEnglish
		}
		if p.MuteChinese != nil {
			st.MuteChinese = *p.MuteChinese
		}
		if p.ShowPinyin != nil {
			st.ShowPinyin = *p.ShowPinyin
		}
		if p.ShowEnglish != nil {
			st.ShowEnglish = *p.ShowEnglish
		}
		return nil
	})
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close tears down playback and waits for the running sequence to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopLocked()
	done := s.done
	s.mu.Unlock()

	s.stop()
	if done != nil {
		<-done
	}
	s.log.Debug("session closed")
}

func (s *Session) update(fn func(*State) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	before := s.state.clone()
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	if needsRestart(before, s.state) {
		s.stopLocked()
		s.startLocked()
	}
	s.notifyUnlock()
	return nil
}

// Loop and manual mode are read when a sequence starts, so changing them
// does not interrupt the current card.
func needsRestart(a, b State) bool {
	return a.IsPlaying != b.IsPlaying ||
		a.Index != b.Index ||
		a.current() != b.current() ||
		a.Speed != b.Speed ||
		a.Volume != b.Volume ||
		a.RepeatEnglish != b.RepeatEnglish ||
		a.RepeatChinese != b.RepeatChinese ||
		a.MuteEnglish != b.MuteEnglish ||
		a.MuteChinese != b.MuteChinese
}

// notifyUnlock snapshots, releases the lock and fires the change hook.
func (s *Session) notifyUnlock() {
	snap, fn := s.snapshotLocked(), s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (s *Session) stopLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	playback.UnloadSound(s.slot)
}

func (s *Session) startLocked() {
	if s.closed || !s.state.IsPlaying || s.manifest == nil || len(s.state.Order) == 0 {
		return
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(logger.NewContext(s.base, s.log))
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	st := s.state
	req := playback.Request{
		Index:         st.Index,
		Order:         append([]int(nil), st.Order...),
		Sentences:     s.manifest.Sentences,
		Manifest:      s.manifest,
		RepeatEnglish: st.RepeatEnglish,
		RepeatChinese: st.RepeatChinese,
		MuteEnglish:   st.MuteEnglish,
		MuteChinese:   st.MuteChinese,
		Speed:         st.Speed,
		Volume:        st.Volume,
		LoopMode:      st.LoopMode,
		ManualMode:    st.ManualMode,
		Slot:          s.slot,
		SetIndex:      func(i int) { s.advance(gen, i) },
	}
	go s.run(ctx, gen, req, done)
	s.prefetchLocked()
}

func (s *Session) run(ctx context.Context, gen uint64, req playback.Request, done chan struct{}) {
	defer close(done)
	res := s.seq.Play(ctx, req)

	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.last = &res
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if res.Outcome == playback.Advanced {
		s.startLocked()
	}
	s.notifyUnlock()
}

// advance is the sequencer's index handle; a sequence that has been
// superseded cannot move the index.
func (s *Session) advance(gen uint64, i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gen != gen || i < 0 || i >= len(s.state.Order) {
		return
	}
	s.state.Index = i
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{ID: s.id, State: s.state.clone(), Playback: s.slot.State().String()}
	if s.manifest != nil {
		snap.Total = len(s.manifest.Sentences)
		if i := s.state.current(); i >= 0 && i < len(s.manifest.Sentences) {
			sentence := s.manifest.Sentences[i]
			snap.Sentence = &sentence
		}
	}
	if s.last != nil {
		snap.LastOutcome = s.last.Outcome.String()
		if s.last.Err != nil {
			snap.LastError = s.last.Err.Error()
		}
	}
	for _, d := range s.diags {
		snap.Diagnostics = append(snap.Diagnostics, d.Error())
	}
	return snap
}
