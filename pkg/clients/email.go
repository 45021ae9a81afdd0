package clients

import (
	"context"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// Email talks to the edmcp-email server, which stores generated reports and
// mails them to students via SMTP.
type Email struct {
	rpc ports.ToolCaller
}

// NewEmail binds the client to a resilient RPC client.
func NewEmail(rpc ports.ToolCaller) *Email {
	return &Email{rpc: rpc}
}

// StoreReport stores a generated report for later email delivery. reportType
// defaults to "student_html".
func (c *Email) StoreReport(ctx context.Context, jobID, studentName, content, reportType, filename string) (domain.Result, error) {
	if reportType == "" {
		reportType = "student_html"
	}
	args := map[string]any{
		"job_id":       jobID,
		"student_name": studentName,
		"content":      content,
		"report_type":  reportType,
	}
	if filename != "" {
		args["filename"] = filename
	}
	return c.rpc.CallTool(ctx, "store_report", args)
}

// ListAvailableReports lists the reports stored for a job.
func (c *Email) ListAvailableReports(ctx context.Context, jobID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "list_available_reports", map[string]any{"job_id": jobID})
}

// PreviewEmailCampaign reports who would receive emails without sending
// anything.
func (c *Email) PreviewEmailCampaign(ctx context.Context, jobID, reportType, rosterPath string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "preview_email_campaign", map[string]any{
		"job_id":      jobID,
		"report_type": reportType,
		"roster_path": rosterPath,
	})
}

// CampaignParams configure an email send. BodyTemplate defaults to
// "default_feedback"; DryRun previews delivery without sending.
type CampaignParams struct {
	Subject        string
	BodyTemplate   string
	DryRun         bool
	FilterStudents []string
	SkipStudents   []string
}

func (p CampaignParams) args(jobID, reportType, rosterPath string) map[string]any {
	if p.BodyTemplate == "" {
		p.BodyTemplate = "default_feedback"
	}
	args := map[string]any{
		"job_id":        jobID,
		"report_type":   reportType,
		"roster_path":   rosterPath,
		"body_template": p.BodyTemplate,
		"dry_run":       p.DryRun,
	}
	if p.Subject != "" {
		args["subject"] = p.Subject
	}
	if len(p.FilterStudents) > 0 {
		args["filter_students"] = p.FilterStudents
	}
	if len(p.SkipStudents) > 0 {
		args["skip_students"] = p.SkipStudents
	}
	return args
}

// SendReports mails stored reports to every student on the roster.
func (c *Email) SendReports(ctx context.Context, jobID, reportType, rosterPath string, p CampaignParams) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "send_reports", p.args(jobID, reportType, rosterPath))
}

// GetEmailLog returns the send history for a job, optionally filtered by
// report type.
func (c *Email) GetEmailLog(ctx context.Context, jobID, reportType string) (domain.Result, error) {
	args := map[string]any{"job_id": jobID}
	if reportType != "" {
		args["report_type"] = reportType
	}
	return c.rpc.CallTool(ctx, "get_email_log", args)
}

// ResendFailedEmails retries the deliveries that previously failed. Student
// filters are ignored here; the failed set is determined server-side.
func (c *Email) ResendFailedEmails(ctx context.Context, jobID, reportType, rosterPath string, p CampaignParams) (domain.Result, error) {
	p.FilterStudents = nil
	p.SkipStudents = nil
	return c.rpc.CallTool(ctx, "resend_failed_emails", p.args(jobID, reportType, rosterPath))
}

// TestSMTPConnection checks the server's SMTP configuration.
func (c *Email) TestSMTPConnection(ctx context.Context) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "test_smtp_connection", nil)
}
