package workflows

import (
	"context"
	"fmt"

	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// EssayRegrade grades already-scrubbed essays: pick a scrub batch, set up a
// rubric, optionally attach source material, import the scrubbed texts, and
// run the AI grading.
type EssayRegrade struct {
	clients *clients.Set
}

func NewEssayRegrade(set *clients.Set) *EssayRegrade {
	return &EssayRegrade{clients: set}
}

func (w *EssayRegrade) Name() string { return "essay_regrade" }

func (w *EssayRegrade) Description() string {
	return "Import scrubbed essays, set up rubrics, and grade with AI"
}

func (w *EssayRegrade) Steps() []Step {
	return []Step{
		{Name: "select_batch", Label: "Select Scrub Batch", Required: true},
		{Name: "setup_job", Label: "Setup Job", Required: true},
		{Name: "source_material", Label: "Source Material", Required: false},
		{Name: "import_grade", Label: "Import & Grade", Required: true},
		{Name: "results", Label: "Results", Required: true},
	}
}

func (w *EssayRegrade) Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error) {
	switch action {
	case "list_batches":
		return w.clients.Scrub.ListBatches(ctx, false)

	case "select_batch":
		var p struct {
			BatchID string `mapstructure:"batch_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			res, err := w.clients.Scrub.GetBatchDocuments(ctx, p.BatchID)
			if err != nil {
				return nil, err
			}
			state.Data["batch_id"] = p.BatchID
			return res, nil
		})

	case "setup_job":
		var p struct {
			JobName         string `mapstructure:"job_name"`
			Rubric          string `mapstructure:"rubric"`
			EssayQuestion   string `mapstructure:"essay_question"`
			ClassName       string `mapstructure:"class_name"`
			AssignmentTitle string `mapstructure:"assignment_title"`
			DueDate         string `mapstructure:"due_date"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			res, err := w.clients.Regrade.CreateJob(ctx, p.JobName, p.Rubric, clients.RegradeJobParams{
				EssayQuestion:   p.EssayQuestion,
				ClassName:       p.ClassName,
				AssignmentTitle: p.AssignmentTitle,
				DueDate:         p.DueDate,
			})
			if err != nil {
				return nil, err
			}
			state.JobID = res.Str("job_id")
			// Remember the source batch so downstream flows can trace it.
			if batchID, _ := state.Data["batch_id"].(string); batchID != "" {
				if _, err := w.clients.Regrade.SetJobMetadata(ctx, state.JobID, "scrub_batch_id", batchID); err != nil {
					return nil, err
				}
			}
			return res, nil
		})

	case "source_material":
		var p struct {
			FilePaths []string `mapstructure:"file_paths"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			if len(p.FilePaths) == 0 {
				state.MarkSkipped()
				return domain.NoOutputResult(), nil
			}
			return w.clients.Regrade.AddSourceMaterial(ctx, state.JobID, p.FilePaths)
		})

	case "import_grade":
		return runStep(state, func() (domain.Result, error) {
			if err := w.importScrubbedEssays(ctx, state); err != nil {
				return nil, err
			}
			return w.clients.Regrade.GradeJob(ctx, state.JobID)
		})

	case "results":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Regrade.GetJobStatistics(ctx, state.JobID)
		})

	case "essays":
		return w.clients.Regrade.GetJobEssays(ctx, state.JobID)

	default:
		return nil, unknownAction(w.Name(), action)
	}
}

// importScrubbedEssays copies every scrubbed document of the selected batch
// into the regrade job.
func (w *EssayRegrade) importScrubbedEssays(ctx context.Context, state *State) error {
	batchID, _ := state.Data["batch_id"].(string)
	docs, err := w.clients.Scrub.GetBatchDocuments(ctx, batchID)
	if err != nil {
		return err
	}

	list, _ := docs["documents"].([]any)
	for _, raw := range list {
		doc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		docID, ok := doc["doc_id"].(float64)
		if !ok {
			continue
		}
		name, _ := doc["detected_name"].(string)
		if name == "" {
			name = fmt.Sprintf("document-%d", int(docID))
		}

		scrubbed, err := w.clients.Scrub.GetScrubbedDocument(ctx, int(docID))
		if err != nil {
			return err
		}
		text := scrubbed.Str("scrubbed_text")
		if text == "" {
			text = scrubbed.Str("text")
		}
		if _, err := w.clients.Regrade.AddEssay(ctx, state.JobID, name, text); err != nil {
			return err
		}
	}
	return nil
}
