// Package mcpclient implements the persistent tool-server RPC core: a
// session manager owning one subprocess-backed MCP stdio channel, and a
// resilient client that retries a failed call exactly once through a fresh
// session.
package mcpclient

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gradedesk/gradedesk/internal/logging"
	"github.com/gradedesk/gradedesk/internal/observability"
	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// SessionManager owns the lifecycle of exactly one tool-server subprocess and
// its duplex channel. It is either ABSENT (no session) or LIVE (initialized
// session); there is no partially-started state visible to callers.
//
// A manager is owned by a single Client and is not safe for concurrent use;
// callers serialize calls per client.
type SessionManager struct {
	service  string
	path     string
	launcher ports.Launcher
	metrics  *observability.Metrics
	logger   *slog.Logger
	session  ports.ToolSession
}

// Option configures a SessionManager or Client.
type Option func(*settings)

type settings struct {
	launcher ports.Launcher
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// WithLauncher substitutes the subprocess launcher. Used by tests and by
// deployments that run tool servers with a different runner.
func WithLauncher(l ports.Launcher) Option {
	return func(s *settings) { s.launcher = l }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func applyOptions(opts []Option) settings {
	s := settings{
		launcher: StdioLauncher{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewSessionManager creates a manager for the tool server at path. The path
// is validated lazily, on the first Start.
func NewSessionManager(service, path string, opts ...Option) *SessionManager {
	s := applyOptions(opts)
	return &SessionManager{
		service:  service,
		path:     path,
		launcher: s.launcher,
		metrics:  s.metrics,
		logger:   s.logger,
	}
}

// Start validates the configured path, spawns the subprocess with the
// script's directory as working directory, performs the initialize handshake,
// and stores the resulting session. On any failure the manager stays ABSENT
// and no half-started subprocess is kept.
func (m *SessionManager) Start(ctx context.Context) (ports.ToolSession, error) {
	if strings.TrimSpace(m.path) == "" {
		return nil, domain.ErrServerPathNotConfigured
	}

	path := expandHome(m.path)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrServerScriptNotFound, path)
	}

	sess, err := m.launcher.Launch(ctx, path)
	if err != nil {
		return nil, err
	}

	m.session = sess
	m.metrics.RecordSessionStart(m.service)
	m.logger.Debug("tool server session started", "service", m.service, "path", path)
	return sess, nil
}

// Ensure returns the current session, starting one if none is live. It never
// starts a second subprocess while one is live.
func (m *SessionManager) Ensure(ctx context.Context) (ports.ToolSession, error) {
	if m.session != nil {
		return m.session, nil
	}
	return m.Start(ctx)
}

// Reset unconditionally tears down the current session, leaving the manager
// ABSENT. Close errors are logged and swallowed; teardown never fails.
// Calling Reset with no live session is a no-op.
func (m *SessionManager) Reset() {
	if m.session == nil {
		return
	}
	if err := m.session.Close(); err != nil {
		m.logger.Debug("session close failed during reset", "service", m.service, "err", err)
	}
	m.session = nil
	m.metrics.RecordSessionReset(m.service)
}

// Live reports whether an initialized session is currently held.
func (m *SessionManager) Live() bool {
	return m.session != nil
}

// expandHome resolves a leading "~" against the user's home directory,
// mirroring how operators write server paths in the config file.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
