package workflows

import (
	"context"

	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// ReadingHandout produces a typeset reading handout from a LaTeX template:
// configure and compile, then download the PDF artifact.
type ReadingHandout struct {
	clients *clients.Set
}

func NewReadingHandout(set *clients.Set) *ReadingHandout {
	return &ReadingHandout{clients: set}
}

func (w *ReadingHandout) Name() string { return "reading_handout" }

func (w *ReadingHandout) Description() string {
	return "Create professional reading handouts using LaTeX templates"
}

func (w *ReadingHandout) Steps() []Step {
	return []Step{
		{Name: "configure", Label: "Configure Handout", Required: true},
		{Name: "download", Label: "Download", Required: true},
	}
}

func (w *ReadingHandout) Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error) {
	switch action {
	case "templates":
		templates, err := w.clients.Latex.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		return domain.Result{"templates": templates}, nil

	case "configure":
		var p struct {
			TemplateName string `mapstructure:"template_name"`
			Title        string `mapstructure:"title"`
			Content      string `mapstructure:"content"`
			Author       string `mapstructure:"author"`
			Footnotes    string `mapstructure:"footnotes"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			res, err := w.clients.Latex.GenerateDocument(ctx, p.TemplateName, p.Title, p.Content, p.Author, p.Footnotes)
			if err != nil {
				return nil, err
			}
			state.Data["artifact_name"] = res.Str("artifact_name")
			return res, nil
		})

	case "download":
		return runStep(state, func() (domain.Result, error) {
			name, _ := state.Data["artifact_name"].(string)
			pdf, err := w.clients.Latex.GetArtifact(ctx, name)
			if err != nil {
				return nil, err
			}
			return domain.Result{"status": "success", "artifact_name": name, "size": len(pdf)}, nil
		})

	default:
		return nil, unknownAction(w.Name(), action)
	}
}
