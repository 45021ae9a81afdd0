package domain

import (
	"errors"
	"fmt"
)

// ErrServerPathNotConfigured is returned when a tool server has no script path
// configured. It is a permanent condition; retrying cannot fix it.
var ErrServerPathNotConfigured = errors.New("tool server path not configured")

// ErrServerScriptNotFound is returned when the configured script path does not
// exist on disk.
var ErrServerScriptNotFound = errors.New("tool server script not found")

// SessionError wraps a transient fault while spawning, initializing, or
// talking to a tool-server session. The session is torn down and one
// reconnect attempt is made before the fault escalates to a CallError.
type SessionError struct {
	Op  string // "spawn", "initialize", "call", "list_tools"
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// CallError is the single error kind surfaced to workflow and UI code after
// the retry budget is exhausted. Service identifies which tool server the
// failing client was bound to.
type CallError struct {
	Service string
	Tool    string
	Err     error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("Tool call failed: %s - %v", e.Tool, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// AsCallError unwraps err to a *CallError if one is in the chain.
func AsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
