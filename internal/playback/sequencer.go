package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/logger"
	"github.com/vytor/hanziflash/internal/models"
)

type State int

const (
	Idle State = iota
	PlayingPreChinese
	PlayingEnglish
	PlayingPostChinese
	Advancing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PlayingPreChinese:
		return "playing_pre_chinese"
	case PlayingEnglish:
		return "playing_english"
	case PlayingPostChinese:
		return "playing_post_chinese"
	case Advancing:
		return "advancing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Outcome int

const (
	// Advanced: every leg ran and the index moved on.
	Advanced Outcome = iota
	// Held: every leg ran and the index stayed (manual mode or last card).
	Held
	// Aborted: a required clip was unavailable; nothing played.
	Aborted
	// Cancelled: the sequence was torn down before it finished.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "advanced"
	case Held:
		return "held"
	case Aborted:
		return "aborted"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var ErrIndexOutOfRange = errors.New("playback: index out of range")

// PlaybackAbortError explains why a card was not played.
type PlaybackAbortError struct {
	Key  audio.ClipKey
	Lang audio.Lang
	Err  error
}

func (e *PlaybackAbortError) Error() string {
	if e.Key == "" && e.Lang == "" {
		return fmt.Sprintf("playback aborted: %v", e.Err)
	}
	return fmt.Sprintf("playback aborted: %s clip %q unavailable: %v", e.Lang, e.Key, e.Err)
}

func (e *PlaybackAbortError) Unwrap() error { return e.Err }

// Request is everything one card's sequence needs.
type Request struct {
	Index     int
	Order     []int
	Sentences []models.Sentence
	Manifest  *audio.Manifest

	RepeatEnglish int
	RepeatChinese int
	MuteEnglish   bool
	MuteChinese   bool
	Speed         float64
	Volume        float64

	LoopMode   bool
	ManualMode bool

	// SetIndex receives the advanced index. It is only called when the
	// sequence completes uncancelled.
	SetIndex func(int)
	Slot     *Slot
	// OnState, if set, observes each state transition.
	OnState func(State)
}

// Leg is one repetition that was played.
type Leg struct {
	State State
	Lang  audio.Lang
	Key   audio.ClipKey
}

type Result struct {
	Outcome Outcome
	Index   int // index after the sequence
	Played  []Leg
	Err     error
}

type Sequencer struct {
	player Player
}

func NewSequencer(player Player) *Sequencer {
	return &Sequencer{player: player}
}

// Legs returns the pre-Chinese, English and post-Chinese repetition counts.
func Legs(repeatChinese, repeatEnglish int) (pre, eng, post int) {
	repeatChinese = max(repeatChinese, 0)
	pre = (repeatChinese + 1) / 2
	return pre, max(repeatEnglish, 0), repeatChinese - pre
}

// Play runs one card's sequence. It returns when the sequence reaches Idle
// again: after advancing, holding, aborting or being cancelled.
func (s *Sequencer) Play(ctx context.Context, req Request) Result {
	slot := req.Slot
	if slot == nil {
		slot = NewSlot()
	}
	slot.seq.Lock()
	defer slot.seq.Unlock()

	UnloadSound(slot)
	gen := slot.Generation()

	r := &run{seq: s, req: req, slot: slot, gen: gen, log: logger.FromContext(ctx).WithPrefix("sequencer")}
	res := r.execute(ctx)
	r.enter(Idle)
	return res
}

type run struct {
	seq  *Sequencer
	req  Request
	slot *Slot
	gen  uint64
	log  *logger.Logger
}

func (r *run) enter(st State) {
	r.slot.setState(st)
	if r.req.OnState != nil {
		r.req.OnState(st)
	}
}

func (r *run) cancelled(ctx context.Context) bool {
	return ctx.Err() != nil || r.slot.Generation() != r.gen
}

func (r *run) execute(ctx context.Context) Result {
	req := r.req
	res := Result{Index: req.Index}

	if req.Index < 0 || req.Index >= len(req.Order) || req.Order[req.Index] < 0 || req.Order[req.Index] >= len(req.Sentences) {
		res.Outcome = Aborted
		res.Err = &PlaybackAbortError{Err: fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, req.Index, len(req.Order))}
		r.log.Warn("%v", res.Err)
		return res
	}
	sentence := req.Sentences[req.Order[req.Index]]
	chiKey, engKey := audio.SentenceKeys(sentence)
	pre, eng, post := Legs(req.RepeatChinese, req.RepeatEnglish)

	// A language with repeats is required even when muted; mute only skips
	// its legs.
	var chiClip, engClip *audio.Clip
	if pre+post > 0 {
		clip, err := r.resolve(ctx, chiKey, sentence.AudioChinese)
		if err != nil {
			return r.abort(ctx, res, chiKey, audio.LangChinese, err)
		}
		chiClip = clip
	}
	if eng > 0 {
		clip, err := r.resolve(ctx, engKey, sentence.AudioEnglish)
		if err != nil {
			return r.abort(ctx, res, engKey, audio.LangEnglish, err)
		}
		engClip = clip
	}

	steps := []struct {
		state State
		lang  audio.Lang
		clip  *audio.Clip
		times int
		muted bool
	}{
		{PlayingPreChinese, audio.LangChinese, chiClip, pre, req.MuteChinese},
		{PlayingEnglish, audio.LangEnglish, engClip, eng, req.MuteEnglish},
		{PlayingPostChinese, audio.LangChinese, chiClip, post, req.MuteChinese},
	}
	for _, step := range steps {
		if step.times == 0 {
			continue
		}
		if step.muted {
			r.log.Debug("%s muted, skipping %d repetition(s)", step.lang, step.times)
			continue
		}
		r.enter(step.state)
		for i := 0; i < step.times; i++ {
			if r.cancelled(ctx) {
				res.Outcome = Cancelled
				return res
			}
			if !r.playOnce(ctx, step.clip) {
				if r.cancelled(ctx) {
					res.Outcome = Cancelled
					return res
				}
				continue
			}
			res.Played = append(res.Played, Leg{State: step.state, Lang: step.lang, Key: step.clip.Key})
		}
	}

	if r.cancelled(ctx) {
		res.Outcome = Cancelled
		return res
	}

	r.enter(Advancing)
	n := len(req.Order)
	if req.LoopMode || (!req.ManualMode && req.Index < n-1) {
		res.Index = (req.Index + 1) % n
		res.Outcome = Advanced
		if req.SetIndex != nil {
			req.SetIndex(res.Index)
		}
		return res
	}
	res.Outcome = Held
	return res
}

func (r *run) resolve(ctx context.Context, key audio.ClipKey, filename string) (*audio.Clip, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: %q does not name a clip", audio.ErrClipMissing, filename)
	}
	return r.req.Manifest.Resolve(ctx, key)
}

func (r *run) abort(ctx context.Context, res Result, key audio.ClipKey, lang audio.Lang, err error) Result {
	if r.cancelled(ctx) {
		res.Outcome = Cancelled
		return res
	}
	res.Outcome = Aborted
	res.Err = &PlaybackAbortError{Key: key, Lang: lang, Err: err}
	r.log.Warn("%v", res.Err)
	return res
}

// playOnce plays clip to completion. Failures that are not cancellation are
// logged and the sequence moves on.
func (r *run) playOnce(ctx context.Context, clip *audio.Clip) bool {
	sound, err := r.seq.player.Load(ctx, clip, Options{Rate: r.req.Speed, Volume: r.req.Volume})
	if err != nil {
		if !r.cancelled(ctx) {
			r.log.Warn("load %s failed: %v", clip.Key, err)
		}
		return false
	}
	if !r.slot.hold(sound, r.gen) {
		unload(sound)
		return false
	}
	err = sound.Play(ctx)
	r.slot.release(sound)
	if err != nil {
		if !r.cancelled(ctx) && !errors.Is(err, ErrUnloaded) {
			r.log.Warn("play %s failed: %v", clip.Key, err)
		}
		return false
	}
	return true
}
