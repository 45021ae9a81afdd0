package workflows

import (
	"context"
	"encoding/base64"

	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// BubbleTest drives bubble-sheet testing: create a test, generate the
// printable sheet, set the answer key, then grade scanned responses.
type BubbleTest struct {
	clients *clients.Set
}

func NewBubbleTest(set *clients.Set) *BubbleTest {
	return &BubbleTest{clients: set}
}

func (w *BubbleTest) Name() string { return "bubble_test" }

func (w *BubbleTest) Description() string {
	return "Create bubble sheet tests and grade scanned responses"
}

func (w *BubbleTest) Steps() []Step {
	return []Step{
		{Name: "create", Label: "Create Test", Required: true},
		{Name: "sheet", Label: "Generate Sheet", Required: true},
		{Name: "key", Label: "Set Answer Key", Required: true},
		{Name: "grade", Label: "Grade Responses", Required: true},
	}
}

func (w *BubbleTest) Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error) {
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
			res, err := w.clients.Bubble.CreateTest(ctx, p.Name, p.Description)
			if err != nil {
				return nil, err
			}
			state.Data["test_id"] = res.Str("test_id")
			return res, nil
		})

	case "list_tests":
		var p struct {
			Limit int `mapstructure:"limit"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Bubble.ListTests(ctx, p.Limit)

	case "select_test":
		var p struct {
			TestID string `mapstructure:"test_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		res, err := w.clients.Bubble.GetTest(ctx, p.TestID)
		if err != nil {
			return nil, err
		}
		state.Data["test_id"] = p.TestID
		state.MarkComplete()
		state.Advance()
		return res, nil

	case "sheet":
		var p struct {
			NumQuestions  int    `mapstructure:"num_questions"`
			PaperSize     string `mapstructure:"paper_size"`
			IDLength      int    `mapstructure:"id_length"`
			IDOrientation string `mapstructure:"id_orientation"`
			DrawBorder    bool   `mapstructure:"draw_border"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Bubble.GenerateSheet(ctx, w.testID(state), clients.SheetParams{
				NumQuestions:  p.NumQuestions,
				PaperSize:     p.PaperSize,
				IDLength:      p.IDLength,
				IDOrientation: p.IDOrientation,
				DrawBorder:    p.DrawBorder,
			})
		})

	case "key":
		var p struct {
			Answers []clients.AnswerSpec `mapstructure:"answers"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Bubble.SetAnswerKey(ctx, w.testID(state), p.Answers)
		})

	case "get_key":
		return w.clients.Bubble.GetAnswerKey(ctx, w.testID(state))

	case "create_grading_job":
		res, err := w.clients.Bubble.CreateGradingJob(ctx, w.testID(state))
		if err != nil {
			return nil, err
		}
		state.Data["grading_job_id"] = res.Str("job_id")
		return res, nil

	case "upload_scans":
		var p struct {
			PDFBase64 string `mapstructure:"pdf_base64"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		pdf, err := base64.StdEncoding.DecodeString(p.PDFBase64)
		if err != nil {
			return nil, err
		}
		return w.clients.Bubble.UploadScans(ctx, w.gradingJobID(state), pdf)

	case "grade":
		return runStep(state, func() (domain.Result, error) {
			jobID := w.gradingJobID(state)
			if _, err := w.clients.Bubble.ProcessScans(ctx, jobID); err != nil {
				return nil, err
			}
			return w.clients.Bubble.GradeJob(ctx, jobID)
		})

	case "results":
		return w.clients.Bubble.GetGradingJob(ctx, w.gradingJobID(state))

	default:
		return nil, unknownAction(w.Name(), action)
	}
}

func (w *BubbleTest) testID(state *State) string {
	id, _ := state.Data["test_id"].(string)
	return id
}

func (w *BubbleTest) gradingJobID(state *State) string {
	id, _ := state.Data["grading_job_id"].(string)
	return id
}
