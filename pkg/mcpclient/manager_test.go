package mcpclient

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// fakeSession is a scriptable ports.ToolSession.
type fakeSession struct {
	callFn   func(name string, args map[string]any) (*mcp.CallToolResult, error)
	closed   bool
	closeErr error
}

func (s *fakeSession) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	if s.callFn == nil {
		return &mcp.CallToolResult{}, nil
	}
	return s.callFn(name, args)
}

func (s *fakeSession) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	return []mcp.Tool{{Name: "echo"}}, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return s.closeErr
}

// fakeLauncher counts spawns, making session-start side effects observable.
type fakeLauncher struct {
	launches int
	factory  func() (ports.ToolSession, error)
}

func (l *fakeLauncher) Launch(ctx context.Context, path string) (ports.ToolSession, error) {
	l.launches++
	if l.factory == nil {
		return &fakeSession{}, nil
	}
	return l.factory()
}

// scriptPath creates an existing file to stand in for a tool server script.
func scriptPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.py")
	require.NoError(t, os.WriteFile(path, []byte("# tool server"), 0o644))
	return path
}

func TestSessionManager_EnsureIsIdempotent(t *testing.T) {
	launcher := &fakeLauncher{}
	mgr := NewSessionManager("essay", scriptPath(t), WithLauncher(launcher))

	first, err := mgr.Ensure(context.Background())
	require.NoError(t, err)

	second, err := mgr.Ensure(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second, "second Ensure must return the same session")
	assert.Equal(t, 1, launcher.launches, "a live session must never be replaced")
	assert.True(t, mgr.Live())
}

func TestSessionManager_ResetIsAlwaysSafe(t *testing.T) {
	launcher := &fakeLauncher{}
	mgr := NewSessionManager("essay", scriptPath(t), WithLauncher(launcher))

	// Reset with no session is a no-op.
	assert.NotPanics(t, func() { mgr.Reset() })
	assert.False(t, mgr.Live())

	// Reset with a live session tears it down even when Close fails.
	sess := &fakeSession{closeErr: errors.New("broken pipe")}
	launcher.factory = func() (ports.ToolSession, error) { return sess, nil }
	_, err := mgr.Ensure(context.Background())
	require.NoError(t, err)

	assert.NotPanics(t, func() { mgr.Reset() })
	assert.True(t, sess.closed)
	assert.False(t, mgr.Live())

	// The next Ensure starts a brand-new subprocess.
	_, err = mgr.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, launcher.launches)
}

func TestSessionManager_StartValidatesBeforeSpawn(t *testing.T) {
	t.Run("Unconfigured Path", func(t *testing.T) {
		launcher := &fakeLauncher{}
		mgr := NewSessionManager("essay", "", WithLauncher(launcher))

		_, err := mgr.Start(context.Background())
		assert.ErrorIs(t, err, domain.ErrServerPathNotConfigured)
		assert.Zero(t, launcher.launches, "no subprocess may be spawned")
		assert.False(t, mgr.Live())
	})

	t.Run("Missing Script", func(t *testing.T) {
		launcher := &fakeLauncher{}
		mgr := NewSessionManager("essay", "/nonexistent/server.py", WithLauncher(launcher))

		_, err := mgr.Start(context.Background())
		assert.ErrorIs(t, err, domain.ErrServerScriptNotFound)
		assert.Zero(t, launcher.launches)
		assert.False(t, mgr.Live())
	})

	t.Run("Launch Failure Leaves Manager Absent", func(t *testing.T) {
		launcher := &fakeLauncher{factory: func() (ports.ToolSession, error) {
			return nil, &domain.SessionError{Op: "spawn", Err: errors.New("uv not on PATH")}
		}}
		mgr := NewSessionManager("essay", scriptPath(t), WithLauncher(launcher))

		_, err := mgr.Start(context.Background())
		require.Error(t, err)
		assert.False(t, mgr.Live())
	})
}
