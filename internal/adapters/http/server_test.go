package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/gradedesk/gradedesk/internal/adapters/http"
	"github.com/gradedesk/gradedesk/internal/adapters/memory"
	"github.com/gradedesk/gradedesk/internal/logging"
	"github.com/gradedesk/gradedesk/internal/workflows"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// stubWorkflow lets tests script Handle behaviour.
type stubWorkflow struct {
	name     string
	handle   func(state *workflows.State, action string, params map[string]any) (domain.Result, error)
	handled  []string
	lastArgs map[string]any
}

func (s *stubWorkflow) Name() string        { return s.name }
func (s *stubWorkflow) Description() string { return "stub workflow" }

func (s *stubWorkflow) Steps() []workflows.Step {
	return []workflows.Step{
		{Name: "first", Label: "First", Required: true},
		{Name: "second", Label: "Second", Required: true},
	}
}

func (s *stubWorkflow) Handle(_ context.Context, state *workflows.State, action string, params map[string]any) (domain.Result, error) {
	s.handled = append(s.handled, action)
	s.lastArgs = params
	if s.handle != nil {
		return s.handle(state, action, params)
	}
	return domain.NoOutputResult(), nil
}

func newTestServer(t *testing.T, wf workflows.Workflow) (*httptest.Server, workflows.Store) {
	t.Helper()
	reg := workflows.NewRegistry()
	reg.Register(wf)
	store := memory.NewStore()
	srv := httptest.NewServer(adapter.NewHandler(reg, store, logging.NewNop(), nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func createSession(t *testing.T, srv *httptest.Server, workflow string) workflows.State {
	t.Helper()
	res, err := http.Post(srv.URL+"/sessions", "application/json",
		bytes.NewBufferString(`{"workflow": "`+workflow+`"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var state workflows.State
	require.NoError(t, json.NewDecoder(res.Body).Decode(&state))
	return state
}

func TestListWorkflows(t *testing.T) {
	srv, _ := newTestServer(t, &stubWorkflow{name: "stub"})

	res, err := http.Get(srv.URL + "/workflows")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Workflows []workflows.Info `json:"workflows"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Workflows, 1)
	assert.Equal(t, "stub", body.Workflows[0].Name)
	assert.Len(t, body.Workflows[0].Steps, 2)
}

func TestSessionLifecycle(t *testing.T) {
	srv, store := newTestServer(t, &stubWorkflow{name: "stub"})

	state := createSession(t, srv, "stub")
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, "stub", state.Workflow)
	assert.Equal(t, 0, state.CurrentStep)

	// The session is persisted.
	saved, err := store.Load(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, saved.ID)

	// Advance and back round-trip through the store.
	res, err := http.Post(srv.URL+"/sessions/"+state.ID+"/advance", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	saved, err = store.Load(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.CurrentStep)

	res, err = http.Post(srv.URL+"/sessions/"+state.ID+"/back", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()

	saved, err = store.Load(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.CurrentStep)

	// Delete.
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+state.ID, nil)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	_, err = store.Load(context.Background(), state.ID)
	assert.ErrorIs(t, err, workflows.ErrSessionNotFound)
}

func TestCreateSessionUnknownWorkflow(t *testing.T) {
	srv, _ := newTestServer(t, &stubWorkflow{name: "stub"})

	res, err := http.Post(srv.URL+"/sessions", "application/json",
		bytes.NewBufferString(`{"workflow": "missing"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestGetSessionNotFound(t *testing.T) {
	srv, _ := newTestServer(t, &stubWorkflow{name: "stub"})

	res, err := http.Get(srv.URL + "/sessions/nope")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestActionDispatchAndPersistence(t *testing.T) {
	wf := &stubWorkflow{
		name: "stub",
		handle: func(state *workflows.State, action string, params map[string]any) (domain.Result, error) {
			state.MarkComplete()
			state.Advance()
			return domain.Result{"status": "success", "echo": params["value"]}, nil
		},
	}
	srv, store := newTestServer(t, wf)
	state := createSession(t, srv, "stub")

	res, err := http.Post(srv.URL+"/sessions/"+state.ID+"/actions/go", "application/json",
		bytes.NewBufferString(`{"value": "hello"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Result domain.Result   `json:"result"`
		State  workflows.State `json:"state"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "hello", body.Result["echo"])
	assert.Equal(t, 1, body.State.CurrentStep)
	assert.Equal(t, []string{"go"}, wf.handled)
	assert.Equal(t, map[string]any{"value": "hello"}, wf.lastArgs)

	saved, err := store.Load(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, workflows.StatusCompleted, saved.Steps[0].Status)
}

func TestActionErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "tool call failure maps to bad gateway",
			err:    &domain.CallError{Service: "essay", Tool: "grade_job", Err: errors.New("boom")},
			status: http.StatusBadGateway,
		},
		{
			name:   "unknown action maps to bad request",
			err:    workflows.ErrUnknownAction,
			status: http.StatusBadRequest,
		},
		{
			name:   "other errors map to internal error",
			err:    errors.New("unexpected"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wf := &stubWorkflow{
				name: "stub",
				handle: func(state *workflows.State, _ string, _ map[string]any) (domain.Result, error) {
					state.MarkError(tc.err.Error())
					return nil, tc.err
				},
			}
			srv, store := newTestServer(t, wf)
			state := createSession(t, srv, "stub")

			res, err := http.Post(srv.URL+"/sessions/"+state.ID+"/actions/fail", "application/json", nil)
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, tc.status, res.StatusCode)

			// The failed step status is persisted.
			saved, err := store.Load(context.Background(), state.ID)
			require.NoError(t, err)
			assert.Equal(t, workflows.StatusError, saved.Steps[0].Status)
		})
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubWorkflow{name: "stub"})

	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t, &stubWorkflow{name: "stub"})

	t.Run("regular responses carry the headers", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", res.Header.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Custom-Header", res.Header.Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/sessions", nil)
		require.NoError(t, err)

		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	})
}
