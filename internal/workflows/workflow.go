// Package workflows models the guided multi-step teacher flows: each
// workflow declares an ordered list of steps and dispatches named actions
// against the domain clients while tracking progress in a serializable
// session state.
package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/gradedesk/gradedesk/pkg/domain"
)

var (
	// ErrWorkflowNotFound is returned when a workflow name is unknown.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrSessionNotFound is returned by stores when a session id is unknown.
	ErrSessionNotFound = errors.New("workflow session not found")

	// ErrUnknownAction is returned when a workflow does not handle an action.
	ErrUnknownAction = errors.New("unknown workflow action")
)

// Status of a single workflow step.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusSkipped    Status = "skipped"
)

// Step is one stage of a workflow.
type Step struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
}

// State is the persisted session of one workflow run. It is stored as JSON;
// Data holds workflow-specific values keyed by the step handlers.
type State struct {
	ID          string         `json:"id"`
	Workflow    string         `json:"workflow"`
	JobID       string         `json:"job_id,omitempty"`
	CurrentStep int            `json:"current_step"`
	Steps       []Step         `json:"steps"`
	Data        map[string]any `json:"data"`
	Errors      []string       `json:"errors,omitempty"`
}

// NewState initializes a session for a workflow with all steps pending.
func NewState(id string, wf Workflow) *State {
	steps := wf.Steps()
	for i := range steps {
		steps[i].Status = StatusPending
	}
	return &State{
		ID:       id,
		Workflow: wf.Name(),
		Steps:    steps,
		Data:     map[string]any{},
	}
}

// Current returns the active step, or nil when the index is out of range.
func (s *State) Current() *Step {
	if s.CurrentStep < 0 || s.CurrentStep >= len(s.Steps) {
		return nil
	}
	return &s.Steps[s.CurrentStep]
}

// Advance moves to the next step. Returns false when already at the last
// step.
func (s *State) Advance() bool {
	if s.CurrentStep >= len(s.Steps)-1 {
		return false
	}
	s.CurrentStep++
	return true
}

// Back moves to the previous step. Returns false when at the first step.
func (s *State) Back() bool {
	if s.CurrentStep <= 0 {
		return false
	}
	s.CurrentStep--
	return true
}

// MarkComplete sets the current step's status to completed.
func (s *State) MarkComplete() {
	if step := s.Current(); step != nil {
		step.Status = StatusCompleted
		step.Error = ""
	}
}

// MarkInProgress sets the current step's status to in_progress.
func (s *State) MarkInProgress() {
	if step := s.Current(); step != nil {
		step.Status = StatusInProgress
	}
}

// MarkError records a failure on the current step and appends it to the
// session error log.
func (s *State) MarkError(msg string) {
	if step := s.Current(); step != nil {
		step.Status = StatusError
		step.Error = msg
	}
	s.Errors = append(s.Errors, fmt.Sprintf("step %d: %s", s.CurrentStep+1, msg))
}

// MarkSkipped sets the current step's status to skipped. Only meaningful for
// optional steps.
func (s *State) MarkSkipped() {
	if step := s.Current(); step != nil {
		step.Status = StatusSkipped
	}
}

// Workflow is a named multi-step flow. Handle executes one action against
// the current state, mutating it in place; the caller persists the state
// afterwards.
type Workflow interface {
	Name() string
	Description() string
	Steps() []Step
	Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error)
}

func unknownAction(workflow, action string) error {
	return fmt.Errorf("%w: %s/%s", ErrUnknownAction, workflow, action)
}

// runStep executes a step's main call and records the outcome: in_progress
// while running, completed + advance on success, error on failure.
func runStep(state *State, call func() (domain.Result, error)) (domain.Result, error) {
	state.MarkInProgress()
	res, err := call()
	if err != nil {
		state.MarkError(err.Error())
		return nil, err
	}
	state.MarkComplete()
	state.Advance()
	return res, nil
}

// Store persists workflow session state keyed by session id.
type Store interface {
	Save(ctx context.Context, sessionID string, state *State) error
	Load(ctx context.Context, sessionID string) (*State, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}
