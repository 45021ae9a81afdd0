package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// Regrade talks to the edmcp-regrade server: text-based essay grading with a
// teacher review pass on top of the AI evaluation.
type Regrade struct {
	rpc ports.ToolCaller
}

// NewRegrade binds the client to a resilient RPC client.
func NewRegrade(rpc ports.ToolCaller) *Regrade {
	return &Regrade{rpc: rpc}
}

// RegradeJobParams are the optional fields of a new regrade job.
type RegradeJobParams struct {
	EssayQuestion   string
	ClassName       string
	AssignmentTitle string
	DueDate         string
}

// CreateJob creates a new regrade job from a name and rubric.
func (c *Regrade) CreateJob(ctx context.Context, jobName, rubric string, p RegradeJobParams) (domain.Result, error) {
	args := map[string]any{"name": jobName, "rubric": rubric}
	if p.EssayQuestion != "" {
		args["question_text"] = p.EssayQuestion
	}
	if p.ClassName != "" {
		args["class_name"] = p.ClassName
	}
	if p.AssignmentTitle != "" {
		args["assignment_title"] = p.AssignmentTitle
	}
	if p.DueDate != "" {
		args["due_date"] = p.DueDate
	}
	return c.rpc.CallTool(ctx, "create_regrade_job", args)
}

// GetJob returns job details.
func (c *Regrade) GetJob(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_job", map[string]any{"job_id": jobID})
}

// ListJobs lists regrade jobs, optionally filtered by status.
func (c *Regrade) ListJobs(ctx context.Context, status string) (domain.Result, error) {
	args := map[string]any{}
	if status != "" {
		args["status"] = status
	}
	return c.rpc.CallTool(ctx, "list_jobs", args)
}

// UpdateJob updates job settings; updates holds the fields to change.
func (c *Regrade) UpdateJob(ctx context.Context, jobID string, updates map[string]any) (domain.Result, error) {
	args := map[string]any{"job_id": jobID}
	for k, v := range updates {
		args[k] = v
	}
	return c.rpc.CallTool(ctx, "update_job", args)
}

// ArchiveJob archives a completed job.
func (c *Regrade) ArchiveJob(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "archive_job", map[string]any{"job_id": jobID})
}

// AddEssay adds a single essay under a student identifier.
func (c *Regrade) AddEssay(ctx context.Context, jobID, studentIdentifier, essayText string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "add_essay", map[string]any{
		"job_id":             jobID,
		"student_identifier": studentIdentifier,
		"essay_text":         essayText,
	})
}

// AddEssaysFromDirectory bulk-loads essays from a directory.
func (c *Regrade) AddEssaysFromDirectory(ctx context.Context, jobID, directoryPath string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "add_essays_from_directory", map[string]any{
		"job_id":         jobID,
		"directory_path": directoryPath,
	})
}

// GetJobEssays returns all essays in a job with their grades.
func (c *Regrade) GetJobEssays(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_job_essays", map[string]any{"job_id": jobID})
}

// GetEssayDetail returns the grade breakdown for one essay.
func (c *Regrade) GetEssayDetail(ctx context.Context, jobID string, essayID int) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_essay_detail", map[string]any{
		"job_id":   jobID,
		"essay_id": essayID,
	})
}

// AddSourceMaterial attaches reference material to a job.
func (c *Regrade) AddSourceMaterial(ctx context.Context, jobID string, filePaths []string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "add_source_material", map[string]any{
		"job_id":     jobID,
		"file_paths": filePaths,
	})
}

// GradeJob grades all essays in a job. Long-running.
func (c *Regrade) GradeJob(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "grade_job", map[string]any{"job_id": jobID})
}

// GetJobStatistics returns the grade distribution and per-criteria averages.
func (c *Regrade) GetJobStatistics(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_job_statistics", map[string]any{"job_id": jobID})
}

// SetJobMetadata stores a key-value pair in job metadata. Non-string values
// are JSON-encoded.
func (c *Regrade) SetJobMetadata(ctx context.Context, jobID, key string, value any) (domain.Result, error) {
	str, ok := value.(string)
	if !ok {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode metadata value: %w", err)
		}
		str = string(encoded)
	}
	return c.rpc.CallTool(ctx, "set_job_metadata", map[string]any{
		"job_id": jobID,
		"key":    key,
		"value":  str,
	})
}

// GetJobMetadata retrieves job metadata; an empty key returns all entries.
func (c *Regrade) GetJobMetadata(ctx context.Context, jobID, key string) (domain.Result, error) {
	args := map[string]any{"job_id": jobID}
	if key != "" {
		args["key"] = key
	}
	return c.rpc.CallTool(ctx, "get_job_metadata", args)
}

// EssayReview carries the teacher's review of one essay; empty fields are
// left unchanged.
type EssayReview struct {
	TeacherGrade       string
	TeacherComments    string
	TeacherAnnotations string
	Status             string
}

// UpdateEssayReview saves teacher review data for an essay.
func (c *Regrade) UpdateEssayReview(ctx context.Context, jobID string, essayID int, review EssayReview) (domain.Result, error) {
	args := map[string]any{"job_id": jobID, "essay_id": essayID}
	if review.TeacherGrade != "" {
		args["teacher_grade"] = review.TeacherGrade
	}
	if review.TeacherComments != "" {
		args["teacher_comments"] = review.TeacherComments
	}
	if review.TeacherAnnotations != "" {
		args["teacher_annotations"] = review.TeacherAnnotations
	}
	if review.Status != "" {
		args["status"] = review.Status
	}
	return c.rpc.CallTool(ctx, "update_essay_review", args)
}

// FinalizeJob closes out the review pass, optionally AI-refining teacher
// comments first.
func (c *Regrade) FinalizeJob(ctx context.Context, jobID string, refineComments bool, model string) (domain.Result, error) {
	args := map[string]any{
		"job_id":          jobID,
		"refine_comments": refineComments,
	}
	if model != "" {
		args["model"] = model
	}
	return c.rpc.CallTool(ctx, "finalize_job", args)
}

// RefineEssayComments AI-polishes teacher comments; a nil essayIDs refines
// all essays.
func (c *Regrade) RefineEssayComments(ctx context.Context, jobID string, essayIDs []int, model string) (domain.Result, error) {
	args := map[string]any{"job_id": jobID}
	if len(essayIDs) > 0 {
		args["essay_ids"] = essayIDs
	}
	if model != "" {
		args["model"] = model
	}
	return c.rpc.CallTool(ctx, "refine_essay_comments", args)
}

// GenerateStudentReport renders the HTML feedback report for one essay.
func (c *Regrade) GenerateStudentReport(ctx context.Context, jobID string, essayID int) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "generate_student_report", map[string]any{
		"job_id":   jobID,
		"essay_id": essayID,
	})
}

// MergedReportParams shape the synthesized report. CriteriaOverrides is a
// JSON string of [{"name": ..., "score": ...}] entries.
type MergedReportParams struct {
	TeacherNotes      string
	CriteriaOverrides string
	Model             string
}

// GenerateMergedReport synthesizes the AI evaluation, teacher overrides, and
// notes into a single polished report.
func (c *Regrade) GenerateMergedReport(ctx context.Context, jobID string, essayID int, p MergedReportParams) (domain.Result, error) {
	args := map[string]any{"job_id": jobID, "essay_id": essayID}
	if p.TeacherNotes != "" {
		args["teacher_notes"] = p.TeacherNotes
	}
	if p.CriteriaOverrides != "" {
		args["criteria_overrides"] = p.CriteriaOverrides
	}
	if p.Model != "" {
		args["model"] = p.Model
	}
	return c.rpc.CallTool(ctx, "generate_merged_report", args)
}
