package session_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/config"
	"github.com/vytor/hanziflash/internal/models"
	"github.com/vytor/hanziflash/internal/playback"
	"github.com/vytor/hanziflash/internal/session"
	"github.com/vytor/hanziflash/internal/worker"
)

const (
	waitFor = 2 * time.Second
	tick    = 2 * time.Millisecond
)

func batch(n int) ([]models.Sentence, fstest.MapFS) {
	tree := fstest.MapFS{}
	var out []models.Sentence
	for seq := 1; seq <= n; seq++ {
		s := models.Sentence{
			Seq:          seq,
			Group:        "HSK1",
			Batch:        1,
			TextChinese:  fmt.Sprintf("句子%d", seq),
			TextEnglish:  fmt.Sprintf("sentence %d", seq),
			AudioChinese: fmt.Sprintf("L1-%04dchi.mp3", seq),
			AudioEnglish: fmt.Sprintf("L1-%04deng.mp3", seq),
		}
		tree["HSK1/batch01/"+s.AudioChinese] = &fstest.MapFile{Data: []byte("c")}
		tree["HSK1/batch01/"+s.AudioEnglish] = &fstest.MapFile{Data: []byte("e")}
		out = append(out, s)
	}
	return out, tree
}

func newDeps(records []models.Sentence, tree fstest.MapFS, player playback.Player) session.Deps {
	builder := audio.NewBuilder(audio.NewClipCache(audio.NewFSResolver(tree, 100)), catalog.New(records))
	return session.Deps{
		Builder: builder,
		Player:  player,
		Defaults: config.SessionDefaults{
			Speed:         1,
			RepeatEnglish: 1,
			RepeatChinese: 2,
		},
		Volume: 1,
	}
}

func openSession(t *testing.T, deps session.Deps) *session.Session {
	t.Helper()
	s := session.New("test", deps)
	t.Cleanup(s.Close)
	require.NoError(t, s.SwitchBatch(context.Background(), "HSK1", 1))
	return s
}

func TestNew_AppliesDefaults(t *testing.T) {
	records, tree := batch(1)
	deps := newDeps(records, tree, playback.NewSilent(0))
	deps.Defaults = config.SessionDefaults{Loop: true, Shuffle: true, Speed: 1, RepeatEnglish: 1, RepeatChinese: 2}

	snap := session.New("abc", deps).Snapshot()

	assert.Equal(t, "abc", snap.ID)
	assert.True(t, snap.LoopMode)
	assert.True(t, snap.ShuffleMode)
	assert.False(t, snap.ManualMode)
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, 1, snap.RepeatEnglish)
	assert.Equal(t, 2, snap.RepeatChinese)
	assert.InDelta(t, 1.0, snap.Speed, 1e-9)
	assert.Nil(t, snap.Sentence)
}

func TestSwitchBatch(t *testing.T) {
	records, tree := batch(3)
	s := openSession(t, newDeps(records, tree, playback.NewSilent(0)))

	snap := s.Snapshot()
	assert.Equal(t, "HSK1", snap.Group)
	assert.Equal(t, 1, snap.Batch)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, []int{0, 1, 2}, snap.Order)
	require.NotNil(t, snap.Sentence)
	assert.Equal(t, "句子1", snap.Sentence.TextChinese)

	err := s.SwitchBatch(context.Background(), "HSK1", 9)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestNavigationWrapsAround(t *testing.T) {
	records, tree := batch(3)
	s := openSession(t, newDeps(records, tree, playback.NewSilent(0)))

	require.NoError(t, s.Prev())
	assert.Equal(t, 2, s.Snapshot().Index)
	require.NoError(t, s.Next())
	assert.Equal(t, 0, s.Snapshot().Index)

	require.NoError(t, s.SetIndex(1))
	assert.Equal(t, 1, s.Snapshot().Index)
	assert.ErrorIs(t, s.SetIndex(3), session.ErrIndexOutOfRange)
}

func TestSettingsAreClamped(t *testing.T) {
	records, tree := batch(1)
	s := openSession(t, newDeps(records, tree, playback.NewSilent(0)))

	require.NoError(t, s.SetSpeed(9))
	assert.InDelta(t, 3.0, s.Snapshot().Speed, 1e-9)
	require.NoError(t, s.IncreaseSpeed())
	assert.InDelta(t, 3.0, s.Snapshot().Speed, 1e-9)
	require.NoError(t, s.SetSpeed(0.2))
	require.NoError(t, s.DecreaseSpeed())
	require.NoError(t, s.DecreaseSpeed())
	assert.InDelta(t, 0.1, s.Snapshot().Speed, 1e-9)

	require.NoError(t, s.SetRepeatEnglish(7))
	require.NoError(t, s.SetRepeatChinese(-3))
	snap := s.Snapshot()
	assert.Equal(t, 3, snap.RepeatEnglish)
	assert.Equal(t, 0, snap.RepeatChinese)

	require.NoError(t, s.SetVolume(1.4))
	assert.InDelta(t, 1.0, s.Snapshot().Volume, 1e-9)

	require.NoError(t, s.SetMute(audio.LangEnglish, true))
	assert.True(t, s.Snapshot().MuteEnglish)
	assert.Error(t, s.SetMute("fra", true))
}

func TestSetShuffle_ReDerivesOrderAndKeepsIndex(t *testing.T) {
	records, tree := batch(20)
	s := openSession(t, newDeps(records, tree, playback.NewSilent(0)))
	require.NoError(t, s.SetIndex(4))

	require.NoError(t, s.SetShuffle(true))
	snap := s.Snapshot()
	assert.True(t, snap.ShuffleMode)
	assert.Len(t, snap.Order, 20)
	assert.ElementsMatch(t, session.NewOrder(20, false, nil), snap.Order)
	assert.Equal(t, 4, snap.Index)

	require.NoError(t, s.SetShuffle(false))
	assert.Equal(t, session.NewOrder(20, false, nil), s.Snapshot().Order)
}

func TestPlay_AutoAdvancesToLastCardAndHolds(t *testing.T) {
	records, tree := batch(3)
	s := openSession(t, newDeps(records, tree, playback.NewSilent(time.Millisecond)))

	require.NoError(t, s.SetPlaying(true))

	assert.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.Index == 2 && snap.LastOutcome == playback.Held.String()
	}, waitFor, tick)
	assert.True(t, s.Snapshot().IsPlaying)
}

func TestPlay_ManualModeHolds(t *testing.T) {
	records, tree := batch(3)
	deps := newDeps(records, tree, playback.NewSilent(time.Millisecond))
	deps.Defaults.Manual = true
	s := openSession(t, deps)

	require.NoError(t, s.SetPlaying(true))

	assert.Eventually(t, func() bool { return s.Snapshot().LastOutcome == playback.Held.String() }, waitFor, tick)
	assert.Equal(t, 0, s.Snapshot().Index)
}

func TestPlay_AbortLeavesCardAndPlayingFlag(t *testing.T) {
	records, tree := batch(2)
	delete(tree, "HSK1/batch01/L1-0001eng.mp3")
	s := openSession(t, newDeps(records, tree, playback.NewSilent(time.Millisecond)))

	require.NoError(t, s.SetPlaying(true))

	assert.Eventually(t, func() bool { return s.Snapshot().LastOutcome == playback.Aborted.String() }, waitFor, tick)
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.True(t, snap.IsPlaying)
	assert.Contains(t, snap.LastError, "L1-0001eng")
}

func TestPause_TearsDownInFlightClip(t *testing.T) {
	records, tree := batch(2)
	s := openSession(t, newDeps(records, tree, playback.NewSilent(time.Hour)))

	require.NoError(t, s.SetPlaying(true))
	assert.Eventually(t, func() bool { return s.Snapshot().Playback == playback.PlayingPreChinese.String() }, waitFor, tick)

	require.NoError(t, s.SetPlaying(false))
	assert.Eventually(t, func() bool { return s.Snapshot().Playback == playback.Idle.String() }, waitFor, tick)
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Empty(t, snap.LastOutcome, "a cancelled sequence records nothing")
}

func TestNextWhilePlaying_RestartsOnNewCard(t *testing.T) {
	records, tree := batch(3)
	player := &countingPlayer{inner: playback.NewSilent(time.Hour)}
	s := openSession(t, newDeps(records, tree, player))

	require.NoError(t, s.SetPlaying(true))
	assert.Eventually(t, func() bool { return player.loads.Load() == 1 }, waitFor, tick)

	require.NoError(t, s.Next())
	assert.Eventually(t, func() bool { return player.loads.Load() == 2 }, waitFor, tick)
	assert.Equal(t, 1, s.Snapshot().Index)
	assert.Equal(t, audio.ClipKey("L1-0002chi"), player.lastKey())
}

func TestLoopToggle_DoesNotInterruptCard(t *testing.T) {
	records, tree := batch(3)
	player := &countingPlayer{inner: playback.NewSilent(time.Hour)}
	s := openSession(t, newDeps(records, tree, player))

	require.NoError(t, s.SetPlaying(true))
	assert.Eventually(t, func() bool { return player.loads.Load() == 1 }, waitFor, tick)

	require.NoError(t, s.SetLoop(true))
	require.NoError(t, s.SetManual(true))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), player.loads.Load())
}

func TestPrefetchWarmsNextCard(t *testing.T) {
	records, tree := batch(3)
	pool := worker.NewPool(1, 8)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	deps := newDeps(records, tree, playback.NewSilent(time.Hour))
	deps.Prefetch = pool
	deps.PrefetchAhead = 1
	s := openSession(t, deps)

	require.NoError(t, s.SetPlaying(true))

	cache := deps.Builder.Cache()
	assert.Eventually(t, func() bool {
		return cache.Contains("L1-0002chi") && cache.Contains("L1-0002eng")
	}, waitFor, tick)
	assert.False(t, cache.Contains("L1-0003chi"))
}

func TestPrefetchIncludesMutedLanguage(t *testing.T) {
	records, tree := batch(3)
	pool := worker.NewPool(1, 8)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	deps := newDeps(records, tree, playback.NewSilent(time.Hour))
	deps.Prefetch = pool
	deps.PrefetchAhead = 1
	s := openSession(t, deps)

	require.NoError(t, s.SetMute(audio.LangEnglish, true))
	require.NoError(t, s.SetPlaying(true))

	cache := deps.Builder.Cache()
	assert.Eventually(t, func() bool {
		return cache.Contains("L1-0002chi") && cache.Contains("L1-0002eng")
	}, waitFor, tick)
}

func TestOnChangeAndClose(t *testing.T) {
	records, tree := batch(2)
	s := openSession(t, newDeps(records, tree, playback.NewSilent(time.Hour)))

	var calls atomic.Int64
	s.OnChange(func(session.Snapshot) { calls.Add(1) })
	require.NoError(t, s.Next())
	assert.Equal(t, int64(1), calls.Load())

	require.NoError(t, s.SetPlaying(true))
	s.Close()
	s.Close()
	assert.ErrorIs(t, s.Next(), session.ErrClosed)
	assert.Equal(t, playback.Idle.String(), s.Snapshot().Playback)
}
