package workflows

import (
	"context"

	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// EssayGrading drives the end-to-end grading of scanned essays: gather
// materials, OCR intake, name validation, PII scrubbing, AI evaluation, and
// report delivery.
type EssayGrading struct {
	clients *clients.Set
}

func NewEssayGrading(set *clients.Set) *EssayGrading {
	return &EssayGrading{clients: set}
}

func (w *EssayGrading) Name() string { return "essay_grading" }

func (w *EssayGrading) Description() string {
	return "Grade student essays with AI assistance"
}

func (w *EssayGrading) Steps() []Step {
	return []Step{
		{Name: "gather", Label: "Gather Materials", Required: true},
		{Name: "upload", Label: "Upload Essays", Required: true},
		{Name: "validate", Label: "Validate Names", Required: true},
		{Name: "scrub", Label: "Scrub PII", Required: true},
		{Name: "evaluate", Label: "Evaluate Essays", Required: true},
		{Name: "reports", Label: "Generate Reports", Required: true},
		{Name: "email", Label: "Send Emails", Required: false},
	}
}

func (w *EssayGrading) Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error) {
	switch action {
	case "gather":
		var p struct {
			Rubric             string `mapstructure:"rubric"`
			JobName            string `mapstructure:"job_name"`
			Question           string `mapstructure:"question"`
			EssayFormat        string `mapstructure:"essay_format"`
			StudentCount       int    `mapstructure:"student_count"`
			KnowledgeBaseTopic string `mapstructure:"knowledge_base_topic"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		state.MarkInProgress()
		jobID, err := w.clients.Essay.CreateJob(ctx, p.Rubric, clients.CreateJobParams{
			JobName:            p.JobName,
			QuestionText:       p.Question,
			EssayFormat:        p.EssayFormat,
			StudentCount:       p.StudentCount,
			KnowledgeBaseTopic: p.KnowledgeBaseTopic,
		})
		if err != nil {
			state.MarkError(err.Error())
			return nil, err
		}
		state.JobID = jobID
		state.Data["rubric"] = p.Rubric
		state.Data["question"] = p.Question
		state.Data["knowledge_base_topic"] = p.KnowledgeBaseTopic
		state.MarkComplete()
		state.Advance()
		return domain.Result{"job_id": jobID}, nil

	case "upload":
		var p struct {
			DirectoryPath string `mapstructure:"directory_path"`
			DPI           int    `mapstructure:"dpi"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Essay.ProcessEssays(ctx, p.DirectoryPath, state.JobID, p.DPI)
		})

	case "validate":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Essay.ValidateNames(ctx, state.JobID)
		})

	case "correct_name":
		var p struct {
			EssayID       int    `mapstructure:"essay_id"`
			CorrectedName string `mapstructure:"corrected_name"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Essay.CorrectName(ctx, state.JobID, p.EssayID, p.CorrectedName)

	case "preview":
		var p struct {
			EssayID  int `mapstructure:"essay_id"`
			MaxLines int `mapstructure:"max_lines"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Essay.GetEssayPreview(ctx, state.JobID, p.EssayID, p.MaxLines)

	case "add_scrub_words":
		var p struct {
			Words []string `mapstructure:"words"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Essay.AddCustomScrubWords(ctx, state.JobID, p.Words)

	case "scrub":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Essay.ScrubJob(ctx, state.JobID)
		})

	case "evaluate":
		return runStep(state, func() (domain.Result, error) {
			rubric, _ := state.Data["rubric"].(string)
			question, _ := state.Data["question"].(string)
			contextMaterial := ""
			if topic, _ := state.Data["knowledge_base_topic"].(string); topic != "" {
				kb, err := w.clients.Essay.QueryKnowledgeBase(ctx,
					"Provide relevant context for essay evaluation", topic, false)
				if err != nil {
					return nil, err
				}
				contextMaterial = kb.Str("answer")
			}

			// Per-essay Grok pass ahead of the server-side evaluation. The
			// server's evaluate_job stores the authoritative grades; the
			// direct scores are surfaced to the caller as a preview.
			var preliminary []map[string]any
			if w.clients.XAI.Configured() {
				stats, err := w.clients.Essay.GetJobStatistics(ctx, state.JobID)
				if err != nil {
					return nil, err
				}
				batch, err := w.clients.XAI.EvaluateBatch(ctx, batchEssaysFromStats(stats),
					rubric, question, contextMaterial, nil)
				if err != nil {
					return nil, err
				}
				for _, r := range batch {
					entry := map[string]any{
						"essay_id":     r.EssayID,
						"student_name": r.StudentName,
					}
					if r.Err != nil {
						entry["error"] = r.Err.Error()
					} else {
						entry["overall_score"] = r.Evaluation.OverallScore
						entry["summary"] = r.Evaluation.Summary
					}
					preliminary = append(preliminary, entry)
				}
			}

			res, err := w.clients.Essay.EvaluateJob(ctx, state.JobID, rubric, contextMaterial)
			if err != nil {
				return nil, err
			}
			if len(preliminary) > 0 {
				res["preliminary_scores"] = preliminary
			}
			return res, nil
		})

	case "reports":
		return runStep(state, func() (domain.Result, error) {
			if _, err := w.clients.Essay.GenerateGradebook(ctx, state.JobID); err != nil {
				return nil, err
			}
			return w.clients.Essay.GenerateStudentFeedback(ctx, state.JobID)
		})

	case "check_emails":
		return w.clients.Essay.IdentifyEmailProblems(ctx, state.JobID)

	case "email":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Essay.SendFeedbackEmails(ctx, state.JobID)
		})

	case "skip_email":
		state.MarkSkipped()
		return domain.NoOutputResult(), nil

	default:
		return nil, unknownAction(w.Name(), action)
	}
}

// batchEssaysFromStats extracts the essays of a job-statistics result for
// direct evaluation, preferring the scrubbed text over the raw OCR output.
func batchEssaysFromStats(stats domain.Result) []clients.BatchEssay {
	raw, _ := stats["essays"].([]any)
	essays := make([]clients.BatchEssay, 0, len(raw))
	for _, item := range raw {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := doc["essay_id"].(float64)
		name, _ := doc["detected_name"].(string)
		text, _ := doc["scrubbed_text"].(string)
		if text == "" {
			text, _ = doc["raw_text"].(string)
		}
		essays = append(essays, clients.BatchEssay{
			EssayID:     int(id),
			StudentName: name,
			Text:        text,
		})
	}
	return essays
}
