package clients

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// Bubble talks to the edmcp-bubble server: bubble-sheet generation, scan
// processing, and vision grading.
type Bubble struct {
	rpc ports.ToolCaller
}

// NewBubble binds the client to a resilient RPC client.
func NewBubble(rpc ports.ToolCaller) *Bubble {
	return &Bubble{rpc: rpc}
}

// CreateTest creates a new bubble test.
func (c *Bubble) CreateTest(ctx context.Context, name, description string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "create_bubble_test", map[string]any{
		"name":        name,
		"description": description,
	})
}

// ListTests lists bubble tests, newest first.
func (c *Bubble) ListTests(ctx context.Context, limit int) (domain.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	return c.rpc.CallTool(ctx, "list_bubble_tests", map[string]any{"limit": limit})
}

// GetTest returns test details, sheet info, and answer-key status.
func (c *Bubble) GetTest(ctx context.Context, testID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_bubble_test", map[string]any{"test_id": testID})
}

// DeleteTest removes a test and all associated data.
func (c *Bubble) DeleteTest(ctx context.Context, testID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "delete_bubble_test", map[string]any{"test_id": testID})
}

// SheetParams configure bubble sheet generation.
type SheetParams struct {
	NumQuestions  int
	PaperSize     string // defaults to "A4"
	IDLength      int    // defaults to 6
	IDOrientation string // defaults to "vertical"
	DrawBorder    bool
}

// GenerateSheet renders the bubble sheet PDF and its layout for a test.
func (c *Bubble) GenerateSheet(ctx context.Context, testID string, p SheetParams) (domain.Result, error) {
	if p.PaperSize == "" {
		p.PaperSize = "A4"
	}
	if p.IDLength <= 0 {
		p.IDLength = 6
	}
	if p.IDOrientation == "" {
		p.IDOrientation = "vertical"
	}
	return c.rpc.CallTool(ctx, "generate_bubble_sheet", map[string]any{
		"test_id":        testID,
		"num_questions":  p.NumQuestions,
		"paper_size":     p.PaperSize,
		"id_length":      p.IDLength,
		"id_orientation": p.IDOrientation,
		"draw_border":    p.DrawBorder,
	})
}

// DownloadSheetPDF fetches the generated bubble sheet as PDF bytes.
func (c *Bubble) DownloadSheetPDF(ctx context.Context, testID string) ([]byte, error) {
	res, err := c.rpc.CallTool(ctx, "download_bubble_sheet_pdf", map[string]any{"test_id": testID})
	if err != nil {
		return nil, err
	}
	return decodeBase64Field(res, "data")
}

// DownloadSheetLayout fetches the bubble-coordinate layout JSON.
func (c *Bubble) DownloadSheetLayout(ctx context.Context, testID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "download_bubble_sheet_layout", map[string]any{"test_id": testID})
}

// AnswerSpec is one entry of an answer key.
type AnswerSpec struct {
	Question int     `json:"question"`
	Answer   string  `json:"answer"`
	Points   float64 `json:"points"`
}

// SetAnswerKey sets or replaces the answer key for a test. The server
// protocol accepts only flat argument values, so the answer list is
// JSON-encoded before forwarding.
func (c *Bubble) SetAnswerKey(ctx context.Context, testID string, answers []AnswerSpec) (domain.Result, error) {
	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answer key: %w", err)
	}
	return c.rpc.CallTool(ctx, "set_answer_key", map[string]any{
		"test_id": testID,
		"answers": string(encoded),
	})
}

// GetAnswerKey returns the answer key and total points of a test.
func (c *Bubble) GetAnswerKey(ctx context.Context, testID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_answer_key", map[string]any{"test_id": testID})
}

// CreateGradingJob opens a grading job for scanned sheets of a test.
func (c *Bubble) CreateGradingJob(ctx context.Context, testID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "create_grading_job", map[string]any{"test_id": testID})
}

// UploadScans attaches a scanned bubble-sheet PDF to a grading job. The PDF
// is base64-encoded for transport.
func (c *Bubble) UploadScans(ctx context.Context, jobID string, pdf []byte) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "upload_scans", map[string]any{
		"job_id":     jobID,
		"pdf_base64": base64.StdEncoding.EncodeToString(pdf),
	})
}

// ListGradingJobs lists the grading jobs of a test, newest first.
func (c *Bubble) ListGradingJobs(ctx context.Context, testID string, limit int) (domain.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	return c.rpc.CallTool(ctx, "list_grading_jobs", map[string]any{
		"test_id": testID,
		"limit":   limit,
	})
}

// ProcessScans detects and aligns the uploaded scans of a grading job.
func (c *Bubble) ProcessScans(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "process_scans", map[string]any{"job_id": jobID})
}

// GradeJob grades all processed scans against the answer key.
func (c *Bubble) GradeJob(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "grade_job", map[string]any{"job_id": jobID})
}

// GetGradingJob returns the grading job with per-student results.
func (c *Bubble) GetGradingJob(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_grading_job", map[string]any{"job_id": jobID})
}

// DownloadGradebook fetches the grading results as CSV bytes.
func (c *Bubble) DownloadGradebook(ctx context.Context, jobID string) ([]byte, error) {
	res, err := c.rpc.CallTool(ctx, "download_gradebook", map[string]any{"job_id": jobID})
	if err != nil {
		return nil, err
	}
	return decodeBase64Field(res, "data")
}
