package mcpclient

import (
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gradedesk/gradedesk/pkg/domain"
)

// decodeResult turns a raw tool response into a domain.Result. Decoding is
// defined over the text fragments only, concatenated in order; non-text
// fragments are skipped. A response with no content at all becomes the
// no-output marker, and text that is not a JSON object is returned verbatim
// under the raw-text key — a decode failure is a degraded result, never a
// call failure.
func decodeResult(res *mcp.CallToolResult) domain.Result {
	if len(res.Content) == 0 {
		return domain.NoOutputResult()
	}

	text := contentText(res)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil || decoded == nil {
		return domain.RawTextResult(text)
	}
	return domain.Result(decoded)
}

// contentText concatenates the text fragments of a response in order.
func contentText(res *mcp.CallToolResult) string {
	parts := make([]string, 0, len(res.Content))
	for _, frag := range res.Content {
		if tc, ok := frag.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
