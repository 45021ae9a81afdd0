package mcpclient

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func TestClient_BoundedRetry(t *testing.T) {
	// Every call attempt fails at the channel: exactly two session starts,
	// then a CallError. Never one, never three.
	launcher := &fakeLauncher{factory: func() (ports.ToolSession, error) {
		return &fakeSession{callFn: func(string, map[string]any) (*mcp.CallToolResult, error) {
			return nil, errors.New("broken pipe")
		}}, nil
	}}
	cli := NewClient("essay", scriptPath(t), WithLauncher(launcher))

	_, err := cli.CallTool(context.Background(), "get_job_statistics", map[string]any{"job_id": "j1"})
	require.Error(t, err)

	ce, ok := domain.AsCallError(err)
	require.True(t, ok)
	assert.Equal(t, "essay", ce.Service)
	assert.Equal(t, "get_job_statistics", ce.Tool)
	assert.Equal(t, 2, launcher.launches, "retry budget is exactly one reconnect")
}

func TestClient_ReconnectRecoversFromStaleSession(t *testing.T) {
	// The first session is dead; the second answers. The caller sees only
	// the decoded result.
	launcher := &fakeLauncher{}
	launcher.factory = func() (ports.ToolSession, error) {
		if launcher.launches == 1 {
			return &fakeSession{callFn: func(string, map[string]any) (*mcp.CallToolResult, error) {
				return nil, errors.New("process exited")
			}}, nil
		}
		return &fakeSession{callFn: func(string, map[string]any) (*mcp.CallToolResult, error) {
			return textResult(`{"job_id": "j42", "status": "created"}`), nil
		}}, nil
	}
	cli := NewClient("essay", scriptPath(t), WithLauncher(launcher))

	res, err := cli.CallTool(context.Background(), "create_job_with_materials", map[string]any{"rubric": "r"})
	require.NoError(t, err)
	assert.Equal(t, "j42", res.Str("job_id"))
	assert.Equal(t, 2, launcher.launches)
	assert.True(t, cli.Manager().Live())
}

func TestClient_DecodesJSONPayload(t *testing.T) {
	launcher := &fakeLauncher{factory: func() (ports.ToolSession, error) {
		return &fakeSession{callFn: func(name string, args map[string]any) (*mcp.CallToolResult, error) {
			assert.Equal(t, "echo", name)
			assert.Equal(t, "hi", args["msg"])
			return textResult(`{"msg": "hi"}`), nil
		}}, nil
	}}
	cli := NewClient("essay", scriptPath(t), WithLauncher(launcher))

	res, err := cli.CallTool(context.Background(), "echo", map[string]any{"msg": "hi"})
	require.NoError(t, err)
	assert.Equal(t, domain.Result{"msg": "hi"}, res)
	assert.Equal(t, 1, launcher.launches, "a successful first attempt must not reconnect")
}

func TestClient_RawTextFallback(t *testing.T) {
	launcher := &fakeLauncher{factory: func() (ports.ToolSession, error) {
		return &fakeSession{callFn: func(string, map[string]any) (*mcp.CallToolResult, error) {
			return textResult("plain text result"), nil
		}}, nil
	}}
	cli := NewClient("essay", scriptPath(t), WithLauncher(launcher))

	res, err := cli.CallTool(context.Background(), "read_text_file", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text result", res.Str(domain.KeyRawText))
}

func TestClient_NoOutputMarker(t *testing.T) {
	launcher := &fakeLauncher{factory: func() (ports.ToolSession, error) {
		return &fakeSession{callFn: func(string, map[string]any) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{}, nil
		}}, nil
	}}
	cli := NewClient("essay", scriptPath(t), WithLauncher(launcher))

	res, err := cli.CallTool(context.Background(), "archive_job", nil)
	require.NoError(t, err)
	assert.Equal(t, "success", res.Str(domain.KeyStatus))
	assert.Equal(t, "Tool executed (no output)", res.Str(domain.KeyMessage))
	assert.NotEmpty(t, res)
}

func TestClient_ErrorMessageContract(t *testing.T) {
	launcher := &fakeLauncher{factory: func() (ports.ToolSession, error) {
		return &fakeSession{callFn: func(string, map[string]any) (*mcp.CallToolResult, error) {
			return nil, errors.New("boom")
		}}, nil
	}}
	cli := NewClient("regrade", scriptPath(t), WithLauncher(launcher))

	_, err := cli.CallTool(context.Background(), "grade_job", nil)
	require.Error(t, err)
	assert.Equal(t, "Tool call failed: grade_job - boom", err.Error())

	// The original cause stays reachable for diagnostics.
	ce, ok := domain.AsCallError(err)
	require.True(t, ok)
	assert.EqualError(t, ce.Unwrap(), "boom")
}

func TestClient_UnconfiguredPathNeverReachesChannel(t *testing.T) {
	// Both attempts fail at the existence check; the launcher is never
	// invoked and zero channel round-trips happen.
	launcher := &fakeLauncher{}
	cli := NewClient("essay", "", WithLauncher(launcher))

	_, err := cli.CallTool(context.Background(), "list_tools", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServerPathNotConfigured)

	_, ok := domain.AsCallError(err)
	assert.True(t, ok, "permanent configuration faults still surface as CallError")
	assert.Zero(t, launcher.launches)
}

func TestClient_ToolReportedErrorIsRetried(t *testing.T) {
	launcher := &fakeLauncher{factory: func() (ports.ToolSession, error) {
		return &fakeSession{callFn: func(string, map[string]any) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "division by zero"}},
				IsError: true,
			}, nil
		}}, nil
	}}
	cli := NewClient("bubble", scriptPath(t), WithLauncher(launcher))

	_, err := cli.CallTool(context.Background(), "grade_job", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
	assert.Equal(t, 2, launcher.launches)
}

func TestClient_ListToolsRetriesOnce(t *testing.T) {
	calls := 0
	launcher := &fakeLauncher{}
	launcher.factory = func() (ports.ToolSession, error) {
		calls++
		if calls == 1 {
			return nil, &domain.SessionError{Op: "initialize", Err: errors.New("handshake timeout")}
		}
		return &fakeSession{}, nil
	}
	cli := NewClient("essay", scriptPath(t), WithLauncher(launcher))

	tools, err := cli.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)
	assert.Equal(t, 2, launcher.launches)
}
