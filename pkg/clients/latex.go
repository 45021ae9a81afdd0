package clients

import (
	"context"
	"fmt"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// Latex talks to the edmcp-latex server, compiling templated documents to
// PDF artifacts.
type Latex struct {
	rpc ports.ToolCaller
}

// NewLatex binds the client to a resilient RPC client.
func NewLatex(rpc ports.ToolCaller) *Latex {
	return &Latex{rpc: rpc}
}

// ListTemplates returns the available document templates.
func (c *Latex) ListTemplates(ctx context.Context) ([]any, error) {
	res, err := c.rpc.CallTool(ctx, "list_templates", nil)
	if err != nil {
		return nil, err
	}
	templates, _ := res["templates"].([]any)
	return templates, nil
}

// GenerateDocument compiles a document from a template. A compile failure is
// reported by the server in-band; the LaTeX log is appended to the error.
func (c *Latex) GenerateDocument(ctx context.Context, templateName, title, content, author, footnotes string) (domain.Result, error) {
	res, err := c.rpc.CallTool(ctx, "generate_document", map[string]any{
		"template_name": templateName,
		"title":         title,
		"content":       content,
		"author":        author,
		"footnotes":     footnotes,
	})
	if err != nil {
		return nil, err
	}

	if res.IsErrorStatus() {
		msg := res.Str("message")
		if msg == "" {
			msg = "unknown error"
		}
		if log := res.Str("log"); log != "" {
			return nil, fmt.Errorf("latex compile failed: %s\n\nLaTeX log:\n%s", msg, log)
		}
		return nil, fmt.Errorf("latex compile failed: %s", msg)
	}
	return res, nil
}

// GetArtifact retrieves a compiled PDF artifact by name.
func (c *Latex) GetArtifact(ctx context.Context, artifactName string) ([]byte, error) {
	res, err := c.rpc.CallTool(ctx, "get_artifact", map[string]any{"artifact_name": artifactName})
	if err != nil {
		return nil, err
	}
	if res.IsErrorStatus() {
		msg := res.Str("message")
		if msg == "" {
			msg = "artifact not found"
		}
		return nil, fmt.Errorf("latex artifact: %s", msg)
	}
	return decodeBase64Field(res, "data")
}
