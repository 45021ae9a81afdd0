package workflows

import (
	"context"

	"github.com/gradedesk/gradedesk/pkg/clients"
	"github.com/gradedesk/gradedesk/pkg/domain"
)

// EmailReports drives the delivery of stored feedback reports: configure the
// campaign, preview recipients, send, and review results.
type EmailReports struct {
	clients *clients.Set
}

func NewEmailReports(set *clients.Set) *EmailReports {
	return &EmailReports{clients: set}
}

func (w *EmailReports) Name() string { return "email_reports" }

func (w *EmailReports) Description() string {
	return "Send generated student feedback reports to students via email"
}

func (w *EmailReports) Steps() []Step {
	return []Step{
		{Name: "configure", Label: "Configure", Required: true},
		{Name: "preview", Label: "Preview Campaign", Required: true},
		{Name: "results", Label: "Send Results", Required: true},
	}
}

type campaignParams struct {
	JobID        string   `mapstructure:"job_id"`
	ReportType   string   `mapstructure:"report_type"`
	RosterPath   string   `mapstructure:"roster_path"`
	Subject      string   `mapstructure:"subject"`
	BodyTemplate string   `mapstructure:"body_template"`
	DryRun       bool     `mapstructure:"dry_run"`
	Filter       []string `mapstructure:"filter_students"`
	Skip         []string `mapstructure:"skip_students"`
}

func (w *EmailReports) Handle(ctx context.Context, state *State, action string, params map[string]any) (domain.Result, error) {
	switch action {
	case "configure":
		var p campaignParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			res, err := w.clients.Email.ListAvailableReports(ctx, p.JobID)
			if err != nil {
				return nil, err
			}
			state.JobID = p.JobID
			state.Data["report_type"] = p.ReportType
			state.Data["roster_path"] = p.RosterPath
			return res, nil
		})

	case "preview":
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Email.PreviewEmailCampaign(ctx, state.JobID,
				w.str(state, "report_type"), w.str(state, "roster_path"))
		})

	case "send":
		var p campaignParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return runStep(state, func() (domain.Result, error) {
			return w.clients.Email.SendReports(ctx, state.JobID,
				w.str(state, "report_type"), w.str(state, "roster_path"),
				clients.CampaignParams{
					Subject:        p.Subject,
					BodyTemplate:   p.BodyTemplate,
					DryRun:         p.DryRun,
					FilterStudents: p.Filter,
					SkipStudents:   p.Skip,
				})
		})

	case "resend_failed":
		var p campaignParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return w.clients.Email.ResendFailedEmails(ctx, state.JobID,
			w.str(state, "report_type"), w.str(state, "roster_path"),
			clients.CampaignParams{
				Subject:      p.Subject,
				BodyTemplate: p.BodyTemplate,
				DryRun:       p.DryRun,
			})

	case "log":
		return w.clients.Email.GetEmailLog(ctx, state.JobID, w.str(state, "report_type"))

	case "test_smtp":
		return w.clients.Email.TestSMTPConnection(ctx)

	default:
		return nil, unknownAction(w.Name(), action)
	}
}

func (w *EmailReports) str(state *State, key string) string {
	v, _ := state.Data[key].(string)
	return v
}
