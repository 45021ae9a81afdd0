package ports

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gradedesk/gradedesk/pkg/domain"
)

// ToolCaller is the single call contract the domain clients and workflow
// layer consume. The production implementation (mcpclient.Client) ensures a
// live session and reconnects once on failure; only *domain.CallError
// surfaces to callers.
type ToolCaller interface {
	CallTool(ctx context.Context, tool string, args map[string]any) (domain.Result, error)
}

// ToolClient extends ToolCaller with discovery of the server's tool
// definitions. mcpclient.Client satisfies both.
type ToolClient interface {
	ToolCaller
	ListTools(ctx context.Context) ([]mcp.Tool, error)
}
