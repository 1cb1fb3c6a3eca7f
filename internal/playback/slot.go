package playback

import (
	"sync"

	"github.com/vytor/hanziflash/internal/logger"
)

// Slot holds the one active sound of a session. Sequences on the same slot
// run one at a time.
type Slot struct {
	seq sync.Mutex

	mu    sync.Mutex
	sound Sound
	gen   uint64
	state State
}

func NewSlot() *Slot {
	return &Slot{}
}

// Generation changes every time the slot is torn down. A sequence that sees
// a different generation than the one it started with has been cancelled.
func (s *Slot) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// State is the state of the sequence currently using the slot.
func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Slot) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// hold installs sound if the slot is still at gen.
func (s *Slot) hold(sound Sound, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.sound = sound
	return true
}

// release clears sound from the slot if it is still the active one and
// unloads it.
func (s *Slot) release(sound Sound) {
	s.mu.Lock()
	if s.sound == sound {
		s.sound = nil
	}
	s.mu.Unlock()
	unload(sound)
}

// UnloadSound stops and releases whatever the slot holds. It never fails,
// is safe on an empty or nil slot, and invalidates in-flight sequences.
func UnloadSound(slot *Slot) {
	if slot == nil {
		return
	}
	slot.mu.Lock()
	sound := slot.sound
	slot.sound = nil
	slot.gen++
	slot.mu.Unlock()

	unload(sound)
}

func unload(sound Sound) {
	if sound == nil {
		return
	}
	if err := sound.Unload(); err != nil {
		logger.Default().WithPrefix("playback").Warn("teardown failed: %v", err)
	}
}
