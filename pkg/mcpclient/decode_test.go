package mcpclient

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"

	"github.com/gradedesk/gradedesk/pkg/domain"
)

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name string
		res  *mcp.CallToolResult
		want domain.Result
	}{
		{
			name: "JSON Object",
			res:  textResult(`{"job_id": "j1", "students_detected": 12}`),
			want: domain.Result{"job_id": "j1", "students_detected": float64(12)},
		},
		{
			name: "Fragments Concatenated In Order",
			res: &mcp.CallToolResult{Content: []mcp.Content{
				mcp.TextContent{Type: "text", Text: `{"status":`},
				mcp.TextContent{Type: "text", Text: `"ok"}`},
			}},
			// Fragments join with a newline, which is valid inside JSON.
			want: domain.Result{"status": "ok"},
		},
		{
			name: "Non-JSON Text",
			res:  textResult("plain text result"),
			want: domain.RawTextResult("plain text result"),
		},
		{
			name: "JSON Array Is Not A Mapping",
			res:  textResult(`[1, 2, 3]`),
			want: domain.RawTextResult(`[1, 2, 3]`),
		},
		{
			name: "JSON Null",
			res:  textResult(`null`),
			want: domain.RawTextResult(`null`),
		},
		{
			name: "Empty Content",
			res:  &mcp.CallToolResult{},
			want: domain.NoOutputResult(),
		},
		{
			name: "Non-Text Fragments Are Skipped",
			res: &mcp.CallToolResult{Content: []mcp.Content{
				mcp.ImageContent{Type: "image", Data: "aGk=", MIMEType: "image/png"},
				mcp.TextContent{Type: "text", Text: `{"ok": true}`},
			}},
			want: domain.Result{"ok": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeResult(tt.res))
		})
	}
}
