// Package ports defines the driven-side interfaces of the RPC core.
// Production implementations live in pkg/mcpclient; tests substitute fakes.
package ports

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolSession is an initialized duplex channel to one running tool-server
// subprocess. A session is only handed out after the MCP initialize handshake
// has completed; there is no partially-started session visible to callers.
type ToolSession interface {
	// CallTool sends one request and waits for the structured response.
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)

	// ListTools fetches the tool definitions the server advertises.
	ListTools(ctx context.Context) ([]mcp.Tool, error)

	// Close terminates the subprocess and closes the channel. Errors during
	// close are reported but teardown always completes.
	Close() error
}

// Launcher spawns a tool-server subprocess for the given script path and
// returns its session once the handshake has completed. The path has already
// been validated by the caller.
type Launcher interface {
	Launch(ctx context.Context, path string) (ToolSession, error)
}

// LaunchFunc adapts a function to the Launcher interface.
type LaunchFunc func(ctx context.Context, path string) (ToolSession, error)

// Launch implements Launcher.
func (f LaunchFunc) Launch(ctx context.Context, path string) (ToolSession, error) {
	return f(ctx, path)
}
