package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// Testgen talks to the edmcp-testgen server, which drafts tests from reading
// materials: question generation, review, answer keys, and PDF export.
type Testgen struct {
	rpc ports.ToolCaller
}

// NewTestgen binds the client to a resilient RPC client.
func NewTestgen(rpc ports.ToolCaller) *Testgen {
	return &Testgen{rpc: rpc}
}

// TestSpecs describe what kind of test to generate. Focus topics are
// JSON-encoded before forwarding since the protocol accepts flat values only.
type TestSpecs struct {
	TotalQuestions  int
	Difficulty      string
	GradeLevel      string
	MCQCount        int
	FIBCount        int
	SACount         int
	FocusTopics     []string
	IncludeWordBank bool
	IncludeRubrics  bool
}

// CreateTestJob creates a test generation job.
func (c *Testgen) CreateTestJob(ctx context.Context, name, description string, specs TestSpecs) (domain.Result, error) {
	if specs.TotalQuestions <= 0 {
		specs.TotalQuestions = 20
	}
	if specs.Difficulty == "" {
		specs.Difficulty = "medium"
	}
	args := map[string]any{
		"name":              name,
		"description":       description,
		"total_questions":   specs.TotalQuestions,
		"difficulty":        specs.Difficulty,
		"mcq_count":         specs.MCQCount,
		"fib_count":         specs.FIBCount,
		"sa_count":          specs.SACount,
		"include_word_bank": specs.IncludeWordBank,
		"include_rubrics":   specs.IncludeRubrics,
	}
	if specs.GradeLevel != "" {
		args["grade_level"] = specs.GradeLevel
	}
	if len(specs.FocusTopics) > 0 {
		encoded, err := json.Marshal(specs.FocusTopics)
		if err != nil {
			return nil, fmt.Errorf("encode focus topics: %w", err)
		}
		args["focus_topics"] = string(encoded)
	}
	return c.rpc.CallTool(ctx, "create_test_job", args)
}

// UpdateTestSpecs replaces individual specification fields of a job. Only
// the keys present in updates are forwarded.
func (c *Testgen) UpdateTestSpecs(ctx context.Context, jobID string, updates map[string]any) (domain.Result, error) {
	args := map[string]any{"job_id": jobID}
	for k, v := range updates {
		if topics, ok := v.([]string); ok && k == "focus_topics" {
			encoded, err := json.Marshal(topics)
			if err != nil {
				return nil, fmt.Errorf("encode focus topics: %w", err)
			}
			args[k] = string(encoded)
			continue
		}
		args[k] = v
	}
	return c.rpc.CallTool(ctx, "update_test_specs", args)
}

// GetTestJob returns job details, materials, and questions.
func (c *Testgen) GetTestJob(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_test_job", map[string]any{"job_id": jobID})
}

// ListJobsParams filter and paginate job listings.
type ListJobsParams struct {
	Limit           int
	Offset          int
	Status          string
	Search          string
	IncludeArchived bool
}

// ListTestJobs lists test jobs.
func (c *Testgen) ListTestJobs(ctx context.Context, p ListJobsParams) (domain.Result, error) {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	args := map[string]any{
		"limit":            p.Limit,
		"offset":           p.Offset,
		"include_archived": p.IncludeArchived,
	}
	if p.Status != "" {
		args["status"] = p.Status
	}
	if p.Search != "" {
		args["search"] = p.Search
	}
	return c.rpc.CallTool(ctx, "list_test_jobs", args)
}

// ArchiveTestJob soft-deletes a job.
func (c *Testgen) ArchiveTestJob(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "archive_test_job", map[string]any{"job_id": jobID})
}

// AddMaterialsToJob attaches reading materials.
func (c *Testgen) AddMaterialsToJob(ctx context.Context, jobID string, filePaths []string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "add_materials_to_job", map[string]any{
		"job_id":     jobID,
		"file_paths": filePaths,
	})
}

// ListJobMaterials lists the materials attached to a job.
func (c *Testgen) ListJobMaterials(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "list_job_materials", map[string]any{"job_id": jobID})
}

// QueryJobMaterials searches through the job's materials.
func (c *Testgen) QueryJobMaterials(ctx context.Context, jobID, query string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "query_job_materials", map[string]any{
		"job_id": jobID,
		"query":  query,
	})
}

// GenerateTest drafts questions from the attached materials.
func (c *Testgen) GenerateTest(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "generate_test", map[string]any{"job_id": jobID})
}

// PreviewTest renders the draft test, organized by "type", "difficulty", or
// "topic".
func (c *Testgen) PreviewTest(ctx context.Context, jobID, organizeBy string) (domain.Result, error) {
	if organizeBy == "" {
		organizeBy = "type"
	}
	return c.rpc.CallTool(ctx, "preview_test", map[string]any{
		"job_id":      jobID,
		"organize_by": organizeBy,
	})
}

// GetTestQuestions returns all questions of a job.
func (c *Testgen) GetTestQuestions(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_test_questions", map[string]any{"job_id": jobID})
}

// RegenerateQuestion redrafts one question, optionally at a different
// difficulty.
func (c *Testgen) RegenerateQuestion(ctx context.Context, jobID string, questionID int, reason, difficulty string) (domain.Result, error) {
	args := map[string]any{
		"job_id":      jobID,
		"question_id": questionID,
		"reason":      reason,
	}
	if difficulty != "" {
		args["difficulty"] = difficulty
	}
	return c.rpc.CallTool(ctx, "regenerate_question", args)
}

// ApproveQuestion accepts a question into the final test.
func (c *Testgen) ApproveQuestion(ctx context.Context, jobID string, questionID int) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "approve_question", map[string]any{
		"job_id":      jobID,
		"question_id": questionID,
	})
}

// RemoveQuestion drops a question from the test.
func (c *Testgen) RemoveQuestion(ctx context.Context, jobID string, questionID int) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "remove_question", map[string]any{
		"job_id":      jobID,
		"question_id": questionID,
	})
}

// QuestionAdjustment carries the fields of adjust_question; nil pointers are
// omitted so the server keeps the current value.
type QuestionAdjustment struct {
	QuestionText  *string
	CorrectAnswer *string
	Points        *float64
}

// AdjustQuestion edits a question's text, answer, or points.
func (c *Testgen) AdjustQuestion(ctx context.Context, jobID string, questionID int, adj QuestionAdjustment) (domain.Result, error) {
	args := map[string]any{
		"job_id":      jobID,
		"question_id": questionID,
	}
	if adj.QuestionText != nil {
		args["question_text"] = *adj.QuestionText
	}
	if adj.CorrectAnswer != nil {
		args["correct_answer"] = *adj.CorrectAnswer
	}
	if adj.Points != nil {
		args["points"] = *adj.Points
	}
	return c.rpc.CallTool(ctx, "adjust_question", args)
}

// GetAnswerKey returns the answer key, optionally with short-answer rubrics.
func (c *Testgen) GetAnswerKey(ctx context.Context, jobID string, includeRubrics bool) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_answer_key", map[string]any{
		"job_id":          jobID,
		"include_rubrics": includeRubrics,
	})
}

// UpdateAnswer replaces the correct answer of a question.
func (c *Testgen) UpdateAnswer(ctx context.Context, jobID string, questionID int, newAnswer string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "update_answer", map[string]any{
		"job_id":      jobID,
		"question_id": questionID,
		"new_answer":  newAnswer,
	})
}

// UpdateRubric replaces the rubric of a short-answer question. rubricJSON is
// a JSON string with the rubric criteria.
func (c *Testgen) UpdateRubric(ctx context.Context, jobID string, questionID int, rubricJSON string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "update_rubric", map[string]any{
		"job_id":      jobID,
		"question_id": questionID,
		"rubric_json": rubricJSON,
	})
}

// ExportTestPDF renders the test as PDF bytes.
func (c *Testgen) ExportTestPDF(ctx context.Context, jobID string) ([]byte, error) {
	res, err := c.rpc.CallTool(ctx, "export_test_pdf", map[string]any{"job_id": jobID})
	if err != nil {
		return nil, err
	}
	return decodeBase64Field(res, "data")
}

// ExportAnswerKeyPDF renders the answer key as PDF bytes.
func (c *Testgen) ExportAnswerKeyPDF(ctx context.Context, jobID string, includeRubrics bool) ([]byte, error) {
	res, err := c.rpc.CallTool(ctx, "export_answer_key_pdf", map[string]any{
		"job_id":          jobID,
		"include_rubrics": includeRubrics,
	})
	if err != nil {
		return nil, err
	}
	return decodeBase64Field(res, "data")
}

// ExportToBubbleSheet converts the MCQ portion into the bubble grader's
// format.
func (c *Testgen) ExportToBubbleSheet(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "export_to_bubble_sheet", map[string]any{"job_id": jobID})
}

// ValidateTest checks the draft for completeness and quality.
func (c *Testgen) ValidateTest(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "validate_test", map[string]any{"job_id": jobID})
}

// GetTestStatistics returns question counts and difficulty distribution.
func (c *Testgen) GetTestStatistics(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_test_statistics", map[string]any{"job_id": jobID})
}
