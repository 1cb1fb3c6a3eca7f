package session_test

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/hanziflash/internal/session"
)

func TestClampSpeed(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{in: 1, want: 1},
		{in: 1.04, want: 1},
		{in: 1.06, want: 1.1},
		{in: 0, want: 0.1},
		{in: -2, want: 0.1},
		{in: 3.2, want: 3},
		{in: 0.1 + 0.2, want: 0.3},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, session.ClampSpeed(tt.in), 1e-9, "ClampSpeed(%v)", tt.in)
	}
}

func TestClampRepeat(t *testing.T) {
	assert.Equal(t, 0, session.ClampRepeat(-1))
	assert.Equal(t, 2, session.ClampRepeat(2))
	assert.Equal(t, 3, session.ClampRepeat(9))
}

func TestNewOrder(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3}, session.NewOrder(4, false, nil))
	assert.Empty(t, session.NewOrder(0, true, nil))

	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{1, 2, 5, 100} {
		order := session.NewOrder(n, true, rng)
		sorted := append([]int(nil), order...)
		sort.Ints(sorted)
		assert.Equal(t, session.NewOrder(n, false, nil), sorted, "shuffled order of %d must be a permutation", n)
	}
}

func TestNewOrder_ReachesEveryPosition(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		seen[session.NewOrder(4, true, rng)[0]] = true
	}
	assert.Len(t, seen, 4)
}
