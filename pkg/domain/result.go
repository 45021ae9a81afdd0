package domain

// Result is the decoded payload of one tool call. Tool servers reply with
// JSON text; the decoded top-level object is returned as-is. Non-JSON text is
// wrapped under KeyRawText, and a reply with no content at all becomes the
// no-output marker (see NoOutputResult).
type Result map[string]any

// Keys used by the result decoder for degraded or empty replies.
const (
	KeyRawText = "raw_text"
	KeyStatus  = "status"
	KeyMessage = "message"
)

// NoOutputResult marks a call that executed but produced no content.
func NoOutputResult() Result {
	return Result{
		KeyStatus:  "success",
		KeyMessage: "Tool executed (no output)",
	}
}

// RawTextResult wraps tool output that was not valid JSON. A decode failure
// is a degraded result, not a call failure.
func RawTextResult(text string) Result {
	return Result{KeyRawText: text}
}

// Str returns the string value under key, or "" when absent or not a string.
func (r Result) Str(key string) string {
	s, _ := r[key].(string)
	return s
}

// IsErrorStatus reports whether the tool itself flagged the result as an
// error via a "status": "error" field.
func (r Result) IsErrorStatus() bool {
	return r.Str(KeyStatus) == "error"
}
