package mcpclient

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gradedesk/gradedesk/internal/version"
	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// StdioLauncher spawns a tool server as `<runner> run <interpreter> <script>`
// over stdio, with the script's parent directory as working directory and the
// parent environment inherited. The zero value launches with "uv run python".
type StdioLauncher struct {
	Runner      string
	Interpreter string
}

// Launch implements ports.Launcher. The returned session has completed the
// MCP initialize handshake; on handshake failure the subprocess is torn down
// before the error is returned.
func (l StdioLauncher) Launch(ctx context.Context, path string) (ports.ToolSession, error) {
	runner := l.Runner
	if runner == "" {
		runner = "uv"
	}
	interpreter := l.Interpreter
	if interpreter == "" {
		interpreter = "python"
	}
	dir := filepath.Dir(path)

	t := transport.NewStdioWithOptions(runner, nil, []string{"run", interpreter, path},
		transport.WithCommandFunc(func(ctx context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
			cmd := exec.CommandContext(ctx, command, args...)
			cmd.Dir = dir
			cmd.Env = append(os.Environ(), env...)
			return cmd, nil
		}),
	)

	cli := client.NewClient(t)
	if err := cli.Start(ctx); err != nil {
		return nil, &domain.SessionError{Op: "spawn", Err: err}
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "gradedesk",
		Version: version.Version,
	}
	initReq.Params.Capabilities = mcp.ClientCapabilities{}

	if _, err := cli.Initialize(ctx, initReq); err != nil {
		_ = cli.Close()
		return nil, &domain.SessionError{Op: "initialize", Err: err}
	}

	return &stdioSession{cli: cli}, nil
}

// stdioSession adapts the mcp-go client to ports.ToolSession.
type stdioSession struct {
	cli *client.Client
}

func (s *stdioSession) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return s.cli.CallTool(ctx, req)
}

func (s *stdioSession) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	res, err := s.cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	return res.Tools, nil
}

func (s *stdioSession) Close() error {
	return s.cli.Close()
}
