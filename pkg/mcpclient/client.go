package mcpclient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gradedesk/gradedesk/internal/observability"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// maxAttempts bounds the retry loop: one call, then one reconnect through a
// brand-new subprocess. A second consecutive failure escalates to the caller,
// since repeated spawn failures usually indicate a persistent
// misconfiguration that retries cannot fix.
const maxAttempts = 2

// Client is the resilient RPC client bound to one tool server. It ensures a
// live session before each call and transparently reconnects once on any
// failure. The only error kind it returns is *domain.CallError.
type Client struct {
	service string
	mgr     *SessionManager
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient builds a client for the tool server script at path. The service
// name identifies the server in errors, logs, and metrics.
func NewClient(service, path string, opts ...Option) *Client {
	s := applyOptions(opts)
	return &Client{
		service: service,
		mgr:     NewSessionManager(service, path, opts...),
		metrics: s.metrics,
		logger:  s.logger,
	}
}

// Manager exposes the session manager for lifecycle inspection.
func (c *Client) Manager() *SessionManager { return c.mgr }

// CallTool invokes a remote tool and decodes its response. On any failure
// during the first attempt the session is reset and the call is retried over
// a fresh subprocess; a failure on the second attempt is wrapped in a
// *domain.CallError carrying the original cause.
func (c *Client) CallTool(ctx context.Context, tool string, args map[string]any) (domain.Result, error) {
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := c.callOnce(ctx, tool, args)
		if err == nil {
			c.metrics.RecordToolCall(c.service, "success", time.Since(start))
			return res, nil
		}
		lastErr = err
		if attempt == 0 {
			c.logger.Warn("tool call failed, reconnecting",
				"service", c.service, "tool", tool, "err", err)
			c.mgr.Reset()
		}
	}

	c.metrics.RecordToolCall(c.service, "failure", time.Since(start))
	return nil, &domain.CallError{Service: c.service, Tool: tool, Err: lastErr}
}

func (c *Client) callOnce(ctx context.Context, tool string, args map[string]any) (domain.Result, error) {
	sess, err := c.mgr.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	res, err := sess.CallTool(ctx, tool, args)
	if err != nil {
		return nil, err
	}
	if res.IsError {
		// The server caught a tool-side exception and reported it in-band.
		return nil, fmt.Errorf("tool reported error: %s", contentText(res))
	}
	return decodeResult(res), nil
}

// ListTools fetches the tool definitions the server advertises, with the
// same one-reconnect policy as CallTool.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		sess, err := c.mgr.Ensure(ctx)
		if err == nil {
			var tools []mcp.Tool
			tools, err = sess.ListTools(ctx)
			if err == nil {
				return tools, nil
			}
		}
		lastErr = err
		if attempt == 0 {
			c.mgr.Reset()
		}
	}
	return nil, &domain.CallError{Service: c.service, Tool: "list_tools", Err: lastErr}
}
