package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gradedesk/gradedesk/internal/config"
)

// evaluationSchema constrains the Grok response to the structured evaluation
// format the reports pipeline expects.
var evaluationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"criteria": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":  map[string]any{"type": "string"},
					"score": map[string]any{"type": "string"},
					"feedback": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"justification":     map[string]any{"type": "string"},
							"examples":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"advice":            map[string]any{"type": "string"},
							"rewritten_example": map[string]any{"type": "string"},
						},
						"required": []string{"justification", "examples", "advice", "rewritten_example"},
					},
				},
				"required": []string{"name", "score", "feedback"},
			},
		},
		"overall_score": map[string]any{"type": "string"},
		"summary":       map[string]any{"type": "string"},
	},
	"required": []string{"criteria", "overall_score", "summary"},
}

const evaluatorSystemPrompt = "You are an expert academic evaluator specializing in providing consistent, structured feedback."

// XAI is a direct client for the Grok chat-completions API, used for essay
// evaluation with structured JSON output. Unlike the tool-server clients it
// speaks HTTPS, not stdio.
type XAI struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewXAI constructs the Grok client from configuration.
func NewXAI(cfg config.XAIConfig) *XAI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.x.ai/v1"
	}
	return &XAI{
		client:  &http.Client{Timeout: 5 * time.Minute},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// Configured reports whether an API key is present. Callers skip the
// advisory evaluation pass when it is not.
func (c *XAI) Configured() bool {
	return c != nil && c.apiKey != ""
}

// ChatMessage is one turn of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []ChatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat any           `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// CriterionFeedback is the structured feedback for one rubric criterion.
type CriterionFeedback struct {
	Justification    string   `json:"justification"`
	Examples         []string `json:"examples"`
	Advice           string   `json:"advice"`
	RewrittenExample string   `json:"rewritten_example"`
}

// CriterionResult scores one rubric criterion.
type CriterionResult struct {
	Name     string            `json:"name"`
	Score    string            `json:"score"`
	Feedback CriterionFeedback `json:"feedback"`
}

// Evaluation is the full structured result for one essay.
type Evaluation struct {
	Criteria     []CriterionResult `json:"criteria"`
	OverallScore string            `json:"overall_score"`
	Summary      string            `json:"summary"`
}

// EvaluateEssay grades one essay against a rubric with structured JSON
// output. The essay text should already be scrubbed of PII. question and
// contextMaterial are optional.
func (c *XAI) EvaluateEssay(ctx context.Context, essayText, rubric, question, contextMaterial string) (*Evaluation, error) {
	prompt := buildEvaluationPrompt(essayText, rubric, question, contextMaterial)

	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: evaluatorSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "evaluation",
				"schema": evaluationSchema,
				"strict": true,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(content), &eval); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}
	return &eval, nil
}

// BatchEssay is one essay of a batch evaluation.
type BatchEssay struct {
	EssayID     int
	StudentName string
	Text        string
}

// BatchResult is the outcome for one essay of a batch; exactly one of
// Evaluation or Err is set.
type BatchResult struct {
	EssayID     int
	StudentName string
	Evaluation  *Evaluation
	Err         error
}

// ProgressFunc reports batch progress as (current, total, essayID).
type ProgressFunc func(current, total, essayID int)

// EvaluateBatch grades essays sequentially so rate limits stay predictable.
// A per-essay failure is recorded in its BatchResult and does not stop the
// batch.
func (c *XAI) EvaluateBatch(ctx context.Context, essays []BatchEssay, rubric, question, contextMaterial string, onProgress ProgressFunc) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(essays))
	for i, essay := range essays {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if onProgress != nil {
			onProgress(i+1, len(essays), essay.EssayID)
		}
		eval, err := c.EvaluateEssay(ctx, essay.Text, rubric, question, contextMaterial)
		results = append(results, BatchResult{
			EssayID:     essay.EssayID,
			StudentName: essay.StudentName,
			Evaluation:  eval,
			Err:         err,
		})
	}
	return results, nil
}

// Chat runs a free-form completion for guidance questions; systemPrompt is
// optional.
func (c *XAI) Chat(ctx context.Context, messages []ChatMessage, systemPrompt string) (string, error) {
	all := make([]ChatMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		all = append(all, ChatMessage{Role: "system", Content: systemPrompt})
	}
	all = append(all, messages...)

	return c.complete(ctx, chatRequest{
		Model:       c.model,
		Messages:    all,
		Temperature: 0.7,
	})
}

func (c *XAI) complete(ctx context.Context, req chatRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("xai: status %d: %s", res.StatusCode, string(b))
	}

	var resp chatResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("xai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// buildEvaluationPrompt assembles the grading prompt from its optional
// sections in a fixed order.
func buildEvaluationPrompt(essayText, rubric, question, contextMaterial string) string {
	var sections []string

	if q := strings.TrimSpace(question); q != "" {
		sections = append(sections, fmt.Sprintf(`---
# ESSAY QUESTION/PROMPT:
%s

(This is provided for context. The rubric below may reference this question.)`, q))
	}

	if m := strings.TrimSpace(contextMaterial); m != "" {
		sections = append(sections, fmt.Sprintf(`---
# CONTEXT / SOURCE MATERIAL:
%s

(This is provided for reference. The rubric below may expect students to engage with this material.)`, m))
	}

	sections = append(sections, fmt.Sprintf(`---
# GRADING RUBRIC:
%s`, rubric))

	sections = append(sections, fmt.Sprintf(`---
# STUDENT ESSAY:
%s`, essayText))

	sections = append(sections, `---
# OUTPUT INSTRUCTIONS:
Evaluate the student's essay strictly according to the provided grading rubric. First, identify the distinct criteria from the rubric (e.g., "grammar", "theme").

For each criterion:
- Assign a score based on the points specified in the rubric.
- Provide feedback in this exact format:
  1. Justification: A 1-2 sentence explanation of WHY this score was assigned.
  2. Specific examples: Quote 1-3 direct examples from the essay that justify the score.
  3. Advice on improvement: Give 1-2 actionable suggestions.
  4. Rewritten example: Provide a rewritten version of one of the quoted examples.

You must output ONLY a valid JSON object matching the required schema.`)

	return strings.Join(sections, "\n\n")
}
