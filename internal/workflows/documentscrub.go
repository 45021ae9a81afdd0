package workflows

import (
	"context"

	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// DocumentScrub drives standalone PII removal: upload documents into a
// batch, validate detected names, register custom scrub words, scrub, and
// inspect the results.
type DocumentScrub struct {
	clients *clients.Set
}

func NewDocumentScrub(set *clients.Set) *DocumentScrub {
	return &DocumentScrub{clients: set}
}

func (w *DocumentScrub) Name() string { return "document_scrub" }

func (w *DocumentScrub) Description() string {
	return "Upload documents, validate names, scrub PII, and inspect results"
}

func (w *DocumentScrub) Steps() []Step {
	return []Step{
		{Name: "upload", Label: "Upload Documents", Required: true},
		{Name: "validate", Label: "Validate Names", Required: true},
		{Name: "custom_words", Label: "Custom Scrub Words", Required: true},
		{Name: "scrub", Label: "Scrub PII", Required: true},
		{Name: "inspect", Label: "Inspect Results", Required: true},
	}
}

func (w *DocumentScrub) Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error) {
	switch action {
	case "upload":
		var p struct {
			DirectoryPath string `mapstructure:"directory_path"`
			BatchName     string `mapstructure:"batch_name"`
			DPI           int    `mapstructure:"dpi"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			res, err := w.clients.Scrub.ProcessDocuments(ctx, p.DirectoryPath, p.BatchName, w.batchID(state), p.DPI)
			if err != nil {
				return nil, err
			}
			if id := res.Str("batch_id"); id != "" {
				state.Data["batch_id"] = id
			}
			return res, nil
		})

	case "validate":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Scrub.ValidateNames(ctx, w.batchID(state))
		})

	case "correct_name":
		var p struct {
			DocID         int    `mapstructure:"doc_id"`
			CorrectedName string `mapstructure:"corrected_name"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Scrub.CorrectName(ctx, w.batchID(state), p.DocID, p.CorrectedName)

	case "preview":
		var p struct {
			DocID    int `mapstructure:"doc_id"`
			MaxLines int `mapstructure:"max_lines"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Scrub.GetDocumentPreview(ctx, w.batchID(state), p.DocID, p.MaxLines)

	case "custom_words":
		var p struct {
			Words []string `mapstructure:"words"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			if len(p.Words) == 0 {
				return w.clients.Scrub.GetCustomScrubWords(ctx, w.batchID(state))
			}
			return w.clients.Scrub.AddCustomScrubWords(ctx, w.batchID(state), p.Words)
		})

	case "scrub":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Scrub.ScrubBatch(ctx, w.batchID(state))
		})

	case "re_scrub":
		return w.clients.Scrub.ReScrubBatch(ctx, w.batchID(state))

	case "inspect":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Scrub.GetBatchStatistics(ctx, w.batchID(state))
		})

	case "scrubbed_document":
		var p struct {
			DocID int `mapstructure:"doc_id"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Scrub.GetScrubbedDocument(ctx, p.DocID)

	default:
		return nil, unknownAction(w.Name(), action)
	}
}

func (w *DocumentScrub) batchID(state *State) string {
	id, _ := state.Data["batch_id"].(string)
	return id
}
