// Package session owns the state of one flashcard session and drives the
// playback sequencer as that state changes.
package session

import (
	"math"
	"math/rand/v2"
)

const (
	MinSpeed  = 0.1
	MaxSpeed  = 3.0
	SpeedStep = 0.1
	MaxRepeat = 3
)

// State is the user-controlled state of a session.
type State struct {
	Group string `json:"group"`
	Batch int    `json:"batch"`

	Index int   `json:"index"`
	Order []int `json:"order"`

	LoopMode    bool `json:"loopMode"`
	ShuffleMode bool `json:"shuffleMode"`
	ManualMode  bool `json:"manualMode"`

	Speed         float64 `json:"speed"`
	Volume        float64 `json:"volume"`
	RepeatEnglish int     `json:"repeatEnglish"`
	RepeatChinese int     `json:"repeatChinese"`
	MuteEnglish   bool    `json:"muteEnglish"`
	MuteChinese   bool    `json:"muteChinese"`

	ShowPinyin  bool `json:"showPinyin"`
	ShowEnglish bool `json:"showEnglish"`

	IsPlaying bool `json:"isPlaying"`
}

func (s State) clone() State {
	s.Order = append([]int(nil), s.Order...)
	return s
}

// current returns the sentence index shown at Index, or -1.
func (s State) current() int {
	if s.Index < 0 || s.Index >= len(s.Order) {
		return -1
	}
	return s.Order[s.Index]
}

// ClampSpeed rounds to one decimal and keeps the result in [MinSpeed, MaxSpeed].
func ClampSpeed(v float64) float64 {
	v = math.Round(v*10) / 10
	return math.Min(MaxSpeed, math.Max(MinSpeed, v))
}

func ClampRepeat(n int) int {
	return min(MaxRepeat, max(0, n))
}

func ClampVolume(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// NewOrder returns the identity permutation of 0..n-1, or a uniform random
// one (Fisher-Yates) when shuffle is set. A nil rng uses the global source.
func NewOrder(n int, shuffle bool, rng *rand.Rand) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if !shuffle {
		return order
	}
	for i := n - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		order[i], order[j] = order[j], order[i]
	}
	return order
}
