package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLoggedIn(t *testing.T) {
	app := &App{}
	assert.False(t, app.isLoggedIn())

	app.operatorID = "op-1"
	assert.True(t, app.isLoggedIn())
}

func TestSetMode_ReportsChange(t *testing.T) {
	app := &App{log: logging.Discard()}

	assert.True(t, app.setMode(ModeOnline))
	assert.Equal(t, ModeOnline, app.Mode())

	assert.False(t, app.setMode(ModeOnline))

	assert.True(t, app.setMode(ModeOffline))
	assert.Equal(t, ModeOffline, app.Mode())
	assert.False(t, app.isOnline())
}

func TestCheckOnline_TogglesModeAndDrainsQueue(t *testing.T) {
	env := newTestEnv(t, sampleRoster(t))
	ctx := context.Background()
	env.login(t)
	captureOutput(t)

	env.auth.setPingErr(errors.New("down"))
	env.app.checkOnline(ctx)
	require.Equal(t, ModeOffline, env.app.Mode())

	require.NoError(t, env.app.Download(ctx, "E1"))
	require.NoError(t, env.app.Scan(ctx, sigAnn))
	assert.Zero(t, env.remote.count(), "offline marks stay local")

	env.auth.setPingErr(nil)
	env.app.checkOnline(ctx)
	require.Equal(t, ModeOnline, env.app.Mode())
	env.rec.Wait()
	assert.Equal(t, 1, env.remote.count(), "coming online drains the queue")
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		env.app.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return env.app.Mode() == ModeOnline }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
