package services_test

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/hanziflash/internal/audio"
	"github.com/vytor/hanziflash/internal/catalog"
	"github.com/vytor/hanziflash/internal/config"
	apperrors "github.com/vytor/hanziflash/internal/errors"
	"github.com/vytor/hanziflash/internal/playback"
	"github.com/vytor/hanziflash/internal/services"
	"github.com/vytor/hanziflash/internal/session"
	"github.com/vytor/hanziflash/internal/testutil"
)

func sampleTree() fstest.MapFS {
	tree := fstest.MapFS{}
	for _, s := range testutil.SampleSentences() {
		key, _, _ := audio.KeyFromFilename(s.AudioChinese)
		p, _ := audio.ClipPath(key, 100)
		tree[p] = &fstest.MapFile{Data: []byte(s.AudioChinese)}
		key, _, _ = audio.KeyFromFilename(s.AudioEnglish)
		p, _ = audio.ClipPath(key, 100)
		tree[p] = &fstest.MapFile{Data: []byte(s.AudioEnglish)}
	}
	return tree
}

func newSessionService(t *testing.T) services.SessionService {
	t.Helper()
	cache := audio.NewClipCache(audio.NewFSResolver(sampleTree(), 100))
	manager := session.NewManager(session.Deps{
		Builder:  audio.NewBuilder(cache, catalog.New(testutil.SampleSentences())),
		Player:   playback.NewSilent(time.Hour),
		Defaults: config.SessionDefaults{Speed: 1, RepeatEnglish: 1, RepeatChinese: 2},
		Volume:   1,
	})
	t.Cleanup(manager.CloseAll)
	return services.NewSessionService(manager)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Status
}

func TestSessionService_OpenAndControl(t *testing.T) {
	svc := newSessionService(t)
	ctx := context.Background()

	snap, err := svc.Open(ctx, "1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Total)

	snap, err = svc.Control(ctx, snap.ID, services.ControlNext)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Index)

	snap, err = svc.Control(ctx, snap.ID, services.ControlPlay)
	require.NoError(t, err)
	assert.True(t, snap.IsPlaying)

	snap, err = svc.Control(ctx, snap.ID, services.ControlPause)
	require.NoError(t, err)
	assert.False(t, snap.IsPlaying)

	speed := 9.0
	snap, err = svc.ApplySettings(ctx, snap.ID, session.Settings{Speed: &speed})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, snap.Speed, 1e-9)

	snap, err = svc.SwitchBatch(ctx, snap.ID, "HSK1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Total)
	assert.Equal(t, 0, snap.Index)

	require.NoError(t, svc.Close(ctx, snap.ID))
	_, err = svc.Get(ctx, snap.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestSessionService_List(t *testing.T) {
	svc := newSessionService(t)
	ctx := context.Background()

	assert.Empty(t, svc.List(ctx))

	a, err := svc.Open(ctx, "HSK1", 1)
	require.NoError(t, err)
	b, err := svc.Open(ctx, "HSK1", 2)
	require.NoError(t, err)

	ids := []string{a.ID, b.ID}
	sort.Strings(ids)
	listed := svc.List(ctx)
	require.Len(t, listed, 2)
	assert.Equal(t, ids, []string{listed[0].ID, listed[1].ID})

	require.NoError(t, svc.Close(ctx, a.ID))
	listed = svc.List(ctx)
	require.Len(t, listed, 1)
	assert.Equal(t, b.ID, listed[0].ID)
	assert.Equal(t, 1, listed[0].Total)
}

func TestSessionService_Errors(t *testing.T) {
	svc := newSessionService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, "HSK1", 0)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.Open(ctx, "HSK7", 1)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	_, err = svc.Control(ctx, "missing", services.ControlPlay)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	snap, err := svc.Open(ctx, "HSK1", 1)
	require.NoError(t, err)

	_, err = svc.SetIndex(ctx, snap.ID, 5)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.Control(ctx, snap.ID, services.Control("rewind"))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	assert.Equal(t, http.StatusNotFound, statusOf(t, svc.Close(ctx, fmt.Sprintf("%s-x", snap.ID))))
}
