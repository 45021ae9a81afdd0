package workflows

import (
	"context"

	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// TestBuilder drives AI test generation from reading materials: create a
// job, attach materials, configure the specs, generate and review questions,
// and export the final PDFs.
type TestBuilder struct {
	clients *clients.Set
}

func NewTestBuilder(set *clients.Set) *TestBuilder {
	return &TestBuilder{clients: set}
}

func (w *TestBuilder) Name() string { return "test_builder" }

func (w *TestBuilder) Description() string {
	return "Create AI-generated tests from reading materials"
}

func (w *TestBuilder) Steps() []Step {
	return []Step{
		{Name: "create", Label: "Create Job", Required: true},
		{Name: "materials", Label: "Add Materials", Required: true},
		{Name: "configure", Label: "Configure", Required: true},
		{Name: "generate", Label: "Generate & Review", Required: true},
		{Name: "export", Label: "Export", Required: true},
	}
}

func (w *TestBuilder) Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error) {
	switch action {
	case "create":
		var p struct {
			Name        string `mapstructure:"name"`
			Description string `mapstructure:"description"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			res, err := w.clients.Testgen.CreateTestJob(ctx, p.Name, p.Description, clients.TestSpecs{})
			if err != nil {
				return nil, err
			}
			state.JobID = res.Str("job_id")
			return res, nil
		})

	case "list_jobs":
		var p clients.ListJobsParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Testgen.ListTestJobs(ctx, p)

	case "materials":
		var p struct {
			FilePaths []string `mapstructure:"file_paths"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Testgen.AddMaterialsToJob(ctx, state.JobID, p.FilePaths)
		})

	case "query_materials":
		var p struct {
			Query string `mapstructure:"query"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Testgen.QueryJobMaterials(ctx, state.JobID, p.Query)

	case "configure":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Testgen.UpdateTestSpecs(ctx, state.JobID, params)
		})

	case "generate":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Testgen.GenerateTest(ctx, state.JobID)
		})

	case "preview":
		var p struct {
			OrganizeBy string `mapstructure:"organize_by"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Testgen.PreviewTest(ctx, state.JobID, p.OrganizeBy)

	case "questions":
		return w.clients.Testgen.GetTestQuestions(ctx, state.JobID)

	case "regenerate_question":
		var p struct {
			QuestionID int    `mapstructure:"question_id"`
			Reason     string `mapstructure:"reason"`
			Difficulty string `mapstructure:"difficulty"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Testgen.RegenerateQuestion(ctx, state.JobID, p.QuestionID, p.Reason, p.Difficulty)

	case "approve_question":
		var p struct {
			QuestionID int `mapstructure:"question_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Testgen.ApproveQuestion(ctx, state.JobID, p.QuestionID)

	case "remove_question":
		var p struct {
			QuestionID int `mapstructure:"question_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Testgen.RemoveQuestion(ctx, state.JobID, p.QuestionID)

	case "adjust_question":
		var p struct {
			QuestionID    int      `mapstructure:"question_id"`
			QuestionText  *string  `mapstructure:"question_text"`
			CorrectAnswer *string  `mapstructure:"correct_answer"`
			Points        *float64 `mapstructure:"points"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Testgen.AdjustQuestion(ctx, state.JobID, p.QuestionID, clients.QuestionAdjustment{
			QuestionText:  p.QuestionText,
			CorrectAnswer: p.CorrectAnswer,
			Points:        p.Points,
		})

	case "validate":
		return w.clients.Testgen.ValidateTest(ctx, state.JobID)

	case "statistics":
		return w.clients.Testgen.GetTestStatistics(ctx, state.JobID)

	case "export":
		var p struct {
			IncludeRubrics bool `mapstructure:"include_rubrics"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			test, err := w.clients.Testgen.ExportTestPDF(ctx, state.JobID)
			if err != nil {
				return nil, err
			}
			key, err := w.clients.Testgen.ExportAnswerKeyPDF(ctx, state.JobID, p.IncludeRubrics)
			if err != nil {
				return nil, err
			}
			return domain.Result{
				"status":           "success",
				"test_pdf_bytes":   len(test),
				"answer_key_bytes": len(key),
			}, nil
		})

	case "export_bubble_sheet":
		return w.clients.Testgen.ExportToBubbleSheet(ctx, state.JobID)

	case "archive":
		return w.clients.Testgen.ArchiveTestJob(ctx, state.JobID)

	default:
		return nil, unknownAction(w.Name(), action)
	}
}
