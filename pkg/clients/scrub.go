package clients

import (
	"context"

	"github.com/gradedesk/gradedesk/pkg/domain"
	"github.com/gradedesk/gradedesk/pkg/ports"
)

// Scrub talks to the edmcp-scrub server: standalone PII scrubbing of
// document batches.
type Scrub struct {
	rpc ports.ToolCaller
}

// NewScrub binds the client to a resilient RPC client.
func NewScrub(rpc ports.ToolCaller) *Scrub {
	return &Scrub{rpc: rpc}
}

// CreateBatch creates a new scrub batch; an empty name lets the server pick
// one.
func (c *Scrub) CreateBatch(ctx context.Context, batchName string) (domain.Result, error) {
	args := map[string]any{}
	if batchName != "" {
		args["batch_name"] = batchName
	}
	return c.rpc.CallTool(ctx, "create_batch", args)
}

// ListBatches lists scrub batches.
func (c *Scrub) ListBatches(ctx context.Context, includeArchived bool) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "list_batches", map[string]any{"include_archived": includeArchived})
}

// ArchiveBatch soft-deletes a batch.
func (c *Scrub) ArchiveBatch(ctx context.Context, batchID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "archive_batch", map[string]any{"batch_id": batchID})
}

// GetBatchDocuments returns the documents in a batch.
func (c *Scrub) GetBatchDocuments(ctx context.Context, batchID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_batch_documents", map[string]any{"batch_id": batchID})
}

// GetBatchStatistics returns per-document statistics for a batch.
func (c *Scrub) GetBatchStatistics(ctx context.Context, batchID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_batch_statistics", map[string]any{"batch_id": batchID})
}

// ProcessDocuments OCRs every PDF in a directory into a batch. Pass batchID
// to extend an existing batch, batchName to label a new one; a zero dpi uses
// the server default.
func (c *Scrub) ProcessDocuments(ctx context.Context, directoryPath, batchName, batchID string, dpi int) (domain.Result, error) {
	args := map[string]any{"directory_path": directoryPath}
	if batchName != "" {
		args["batch_name"] = batchName
	}
	if batchID != "" {
		args["batch_id"] = batchID
	}
	if dpi > 0 {
		args["dpi"] = dpi
	}
	return c.rpc.CallTool(ctx, "batch_process_documents", args)
}

// AddTextDocuments adds plain-text documents directly to a batch.
func (c *Scrub) AddTextDocuments(ctx context.Context, batchID string, texts []map[string]any) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "add_text_documents", map[string]any{
		"batch_id": batchID,
		"texts":    texts,
	})
}

// GetDocumentPreview previews a document; a zero maxLines uses the server
// default.
func (c *Scrub) GetDocumentPreview(ctx context.Context, batchID string, docID, maxLines int) (domain.Result, error) {
	args := map[string]any{"batch_id": batchID, "doc_id": docID}
	if maxLines > 0 {
		args["max_lines"] = maxLines
	}
	return c.rpc.CallTool(ctx, "get_document_preview", args)
}

// GetScrubbedDocument returns the scrubbed text of a document.
func (c *Scrub) GetScrubbedDocument(ctx context.Context, docID int) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_scrubbed_document", map[string]any{"doc_id": docID})
}

// ValidateNames checks detected student names against the roster.
func (c *Scrub) ValidateNames(ctx context.Context, batchID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "validate_student_names", map[string]any{"batch_id": batchID})
}

// CorrectName fixes a misdetected name on one document.
func (c *Scrub) CorrectName(ctx context.Context, batchID string, docID int, correctedName string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "correct_detected_name", map[string]any{
		"batch_id":       batchID,
		"doc_id":         docID,
		"corrected_name": correctedName,
	})
}

// AddCustomScrubWords registers extra words to remove from documents.
func (c *Scrub) AddCustomScrubWords(ctx context.Context, batchID string, words []string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "add_custom_scrub_words", map[string]any{
		"batch_id": batchID,
		"words":    words,
	})
}

// GetCustomScrubWords returns the custom scrub words of a batch.
func (c *Scrub) GetCustomScrubWords(ctx context.Context, batchID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "get_custom_scrub_words", map[string]any{"batch_id": batchID})
}

// ScrubBatch removes PII from every document in a batch.
func (c *Scrub) ScrubBatch(ctx context.Context, batchID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "scrub_batch", map[string]any{"batch_id": batchID})
}

// ReScrubBatch re-runs scrubbing after custom words or name corrections
// changed.
func (c *Scrub) ReScrubBatch(ctx context.Context, batchID string) (domain.Result, error) {
	return c.rpc.CallTool(ctx, "re_scrub_batch", map[string]any{"batch_id": batchID})
}
