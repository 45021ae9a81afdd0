package clients

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// Essay talks to the edmcp essay-grading server: job creation, OCR intake,
// name validation, PII scrubbing, knowledge base, reports, and email
// delivery of feedback.
type Essay struct {
	rpc ports.ToolClient
}

// NewEssay binds the client to a resilient RPC client.
func NewEssay(rpc ports.ToolClient) *Essay {
	return &Essay{rpc: rpc}
}

// ListTools returns the tool definitions the server advertises.
func (c *Essay) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	return c.rpc.ListTools(ctx)
}

// CreateJobParams are the optional materials for a new grading job. Only the
// rubric is required.
type CreateJobParams struct {
	JobName            string
	QuestionText       string
	EssayFormat        string
	StudentCount       int
	KnowledgeBaseTopic string
}

// CreateJob creates a grading job with its materials and returns the job ID.
func (c *Essay) CreateJob(ctx context.Context, rubric string, p CreateJobParams) (string, error) {
	args := map[string]any{"rubric": rubric}
	if p.JobName != "" {
		args["job_name"] = p.JobName
	}
	if p.QuestionText != "" {
		args["question_text"] = p.QuestionText
	}
	if p.EssayFormat != "" {
		args["essay_format"] = p.EssayFormat
	}
	if p.StudentCount > 0 {
		args["student_count"] = p.StudentCount
	}
	if p.KnowledgeBaseTopic != "" {
		args["knowledge_base_topic"] = p.KnowledgeBaseTopic
	}

	res, err := c.rpc.CallTool(ctx, "create_job_with_materials", args)
	if err != nil {
		return "", err
	}
	return res.Str("job_id"), nil
}

// ProcessEssays OCRs every PDF in a directory. Pass jobID to add essays to
// an existing job; a zero dpi falls back to the server default of 220.
func (c *Essay) ProcessEssays(ctx context.Context, directoryPath, jobID string, dpi int) (domain.Result, error) {
	if dpi <= 0 {
		dpi = 220
	}
	args := map[string]any{"directory_path": directoryPath, "dpi": dpi}
	if jobID != "" {
		args["job_id"] = jobID
	}
	return c.rpc.CallTool(ctx, "batch_process_documents", args)
}

// GetJobStatistics returns the job manifest: essay list, detected names,
// page counts.
func (c *Essay) GetJobStatistics(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_job_statistics", map[string]any{"job_id": jobID})
}

// ValidateNames checks detected student names against the roster.
func (c *Essay) ValidateNames(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "validate_student_names", map[string]any{"job_id": jobID})
}

// CorrectName fixes a misdetected student name on one essay.
func (c *Essay) CorrectName(ctx context.Context, jobID string, essayID int, correctedName string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "correct_detected_name", map[string]any{
		"job_id":         jobID,
		"essay_id":       essayID,
		"corrected_name": correctedName,
	})
}

// GetEssayPreview returns the first maxLines lines of an essay for
// identification.
func (c *Essay) GetEssayPreview(ctx context.Context, jobID string, essayID, maxLines int) (domain.Result, error) {
	if maxLines <= 0 {
		maxLines = 50
	}
	return c.rpc.CallTool(ctx, "get_essay_preview", map[string]any{
		"job_id":    jobID,
		"essay_id":  essayID,
		"max_lines": maxLines,
	})
}

// ScrubJob removes PII from all essays in a job.
func (c *Essay) ScrubJob(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "scrub_processed_job", map[string]any{"job_id": jobID})
}

// AddToKnowledgeBase indexes documents under a topic.
func (c *Essay) AddToKnowledgeBase(ctx context.Context, filePaths []string, topic string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "add_to_knowledge_base", map[string]any{
		"file_paths": filePaths,
		"topic":      topic,
	})
}

// QueryKnowledgeBase asks the knowledge base for grading context.
func (c *Essay) QueryKnowledgeBase(ctx context.Context, query, topic string, includeRawContext bool) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "query_knowledge_base", map[string]any{
		"query":               query,
		"topic":               topic,
		"include_raw_context": includeRawContext,
	})
}

// EvaluateJob runs the server-side batch evaluation of every essay in a job
// against the rubric. Long-running.
func (c *Essay) EvaluateJob(ctx context.Context, jobID, rubric, contextMaterial string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "evaluate_job", map[string]any{
		"job_id":           jobID,
		"rubric":           rubric,
		"context_material": contextMaterial,
	})
}

// GenerateGradebook builds the CSV gradebook for a job.
func (c *Essay) GenerateGradebook(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "generate_gradebook", map[string]any{"job_id": jobID})
}

// GenerateStudentFeedback builds individual PDF feedback reports.
func (c *Essay) GenerateStudentFeedback(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "generate_student_feedback", map[string]any{"job_id": jobID})
}

// DownloadReports pulls generated reports to a local temp directory.
func (c *Essay) DownloadReports(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "download_reports_locally", map[string]any{"job_id": jobID})
}

// SendFeedbackEmails mails each student their feedback report.
func (c *Essay) SendFeedbackEmails(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "send_student_feedback_emails", map[string]any{"job_id": jobID})
}

// IdentifyEmailProblems runs the pre-flight check for email delivery.
func (c *Essay) IdentifyEmailProblems(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "identify_email_problems", map[string]any{"job_id": jobID})
}

// ConvertPDFToText extracts the text of a single PDF.
func (c *Essay) ConvertPDFToText(ctx context.Context, filePath string, useOCR bool) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "convert_pdf_to_text", map[string]any{
		"file_path": filePath,
		"use_ocr":   useOCR,
	})
}

// ReadTextFile reads a text file through the server.
func (c *Essay) ReadTextFile(ctx context.Context, filePath string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "read_text_file", map[string]any{"file_path": filePath})
}

// AddCustomScrubWords registers extra words or names to scrub for a job.
func (c *Essay) AddCustomScrubWords(ctx context.Context, jobID string, words []string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "add_custom_scrub_words", map[string]any{
		"job_id": jobID,
		"words":  words,
	})
}

// GetCustomScrubWords returns the custom scrub words of a job.
func (c *Essay) GetCustomScrubWords(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_custom_scrub_words", map[string]any{"job_id": jobID})
}
