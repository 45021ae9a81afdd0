package workflows

import (
	"context"

	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// TeacherReview layers a human pass over AI-graded regrade jobs: browse
// jobs, walk the essay list, annotate and override scores, then finalize and
// generate student reports.
type TeacherReview struct {
	clients *clients.Set
}

func NewTeacherReview(set *clients.Set) *TeacherReview {
	return &TeacherReview{clients: set}
}

func (w *TeacherReview) Name() string { return "teacher_review" }

func (w *TeacherReview) Description() string {
	return "Review AI-graded essays, add annotations and score overrides, generate student reports"
}

func (w *TeacherReview) Steps() []Step {
	return []Step{
		{Name: "jobs_dashboard", Label: "Jobs Dashboard", Required: true},
		{Name: "essay_list", Label: "Essay List", Required: true},
		{Name: "review", Label: "Review Essay", Required: true},
		{Name: "finalize", Label: "Finalize & Reports", Required: true},
	}
}

func (w *TeacherReview) Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error) {
	switch action {
	case "list_jobs":
		var p struct {
			Status string `mapstructure:"status"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Regrade.ListJobs(ctx, p.Status)

	case "select_job":
		var p struct {
			JobID string `mapstructure:"job_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			res, err := w.clients.Regrade.GetJob(ctx, p.JobID)
			if err != nil {
				return nil, err
			}
			state.JobID = p.JobID
			return res, nil
		})

	case "essays":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Regrade.GetJobEssays(ctx, state.JobID)
		})

	case "essay_detail":
		var p struct {
			EssayID int `mapstructure:"essay_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Regrade.GetEssayDetail(ctx, state.JobID, p.EssayID)

	case "scrubbed_document":
		var p struct {
			DocID int `mapstructure:"doc_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Scrub.GetScrubbedDocument(ctx, p.DocID)

	case "save_review":
		var p struct {
			EssayID            int    `mapstructure:"essay_id"`
			TeacherGrade       string `mapstructure:"teacher_grade"`
			TeacherComments    string `mapstructure:"teacher_comments"`
			TeacherAnnotations string `mapstructure:"teacher_annotations"`
			Status             string `mapstructure:"status"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Regrade.UpdateEssayReview(ctx, state.JobID, p.EssayID, clients.EssayReview{
			TeacherGrade:       p.TeacherGrade,
			TeacherComments:    p.TeacherComments,
			TeacherAnnotations: p.TeacherAnnotations,
			Status:             p.Status,
		})

	case "student_report":
		var p struct {
			EssayID int `mapstructure:"essay_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Regrade.GenerateStudentReport(ctx, state.JobID, p.EssayID)

	case "merged_report":
		var p struct {
			EssayID           int    `mapstructure:"essay_id"`
			TeacherNotes      string `mapstructure:"teacher_notes"`
			CriteriaOverrides string `mapstructure:"criteria_overrides"`
			Model             string `mapstructure:"model"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Regrade.GenerateMergedReport(ctx, state.JobID, p.EssayID, clients.MergedReportParams{
			TeacherNotes:      p.TeacherNotes,
			CriteriaOverrides: p.CriteriaOverrides,
			Model:             p.Model,
		})

	case "finalize":
		var p struct {
			RefineComments bool   `mapstructure:"refine_comments"`
			Model          string `mapstructure:"model"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Regrade.FinalizeJob(ctx, state.JobID, p.RefineComments, p.Model)
		})

	case "mark_reviewed":
		// The review step repeats per essay; advancing is explicit.
		state.MarkComplete()
		state.Advance()
		return domain.NoOutputResult(), nil

	default:
		return nil, unknownAction(w.Name(), action)
	}
}
