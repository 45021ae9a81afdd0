package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradedesk/gradedesk/internal/config"
)

func newXAITestServer(t *testing.T, handler func(body map[string]any) string) (*httptest.Server, *XAI) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		content := handler(body)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	xai := NewXAI(config.XAIConfig{
		APIKey:  "test-key",
		Model:   "grok-2-1212",
		BaseURL: srv.URL,
	})
	return srv, xai
}

func TestXAIEvaluateEssay(t *testing.T) {
	evaluation := `{
		"criteria": [{
			"name": "grammar",
			"score": "4/5",
			"feedback": {
				"justification": "Mostly clean prose.",
				"examples": ["their going to the store"],
				"advice": "Watch homophones.",
				"rewritten_example": "they're going to the store"
			}
		}],
		"overall_score": "4/5",
		"summary": "Solid essay."
	}`

	var gotBody map[string]any
	_, xai := newXAITestServer(t, func(body map[string]any) string {
		gotBody = body
		return evaluation
	})

	eval, err := xai.EvaluateEssay(context.Background(), "essay text", "rubric text", "the question", "")
	require.NoError(t, err)

	require.Len(t, eval.Criteria, 1)
	assert.Equal(t, "grammar", eval.Criteria[0].Name)
	assert.Equal(t, "they're going to the store", eval.Criteria[0].Feedback.RewrittenExample)
	assert.Equal(t, "4/5", eval.OverallScore)

	assert.Equal(t, "grok-2-1212", gotBody["model"])
	assert.Equal(t, 0.0, gotBody["temperature"])
	require.Contains(t, gotBody, "response_format")

	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "# ESSAY QUESTION/PROMPT:")
	assert.Contains(t, user, "# GRADING RUBRIC:")
	assert.Contains(t, user, "# STUDENT ESSAY:")
	assert.NotContains(t, user, "# CONTEXT / SOURCE MATERIAL:")
}

func TestXAIEvaluateBatchRecordsPerEssayFailures(t *testing.T) {
	calls := 0
	_, xai := newXAITestServer(t, func(map[string]any) string {
		calls++
		if calls == 1 {
			return "not json"
		}
		return `{"criteria": [], "overall_score": "3/5", "summary": "ok"}`
	})

	var progress []int
	results, err := xai.EvaluateBatch(context.Background(), []BatchEssay{
		{EssayID: 1, StudentName: "Ada", Text: "first"},
		{EssayID: 2, StudentName: "Bob", Text: "second"},
	}, "rubric", "", "", func(current, total, essayID int) {
		progress = append(progress, essayID)
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Nil(t, results[0].Evaluation)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, "3/5", results[1].Evaluation.OverallScore)
	assert.Equal(t, []int{1, 2}, progress)
}

func TestXAIChatUsesFreeTemperature(t *testing.T) {
	var gotBody map[string]any
	_, xai := newXAITestServer(t, func(body map[string]any) string {
		gotBody = body
		return "answer"
	})

	got, err := xai.Chat(context.Background(), []ChatMessage{
		{Role: "user", Content: "how do I start?"},
	}, "You are a helpful grading assistant.")
	require.NoError(t, err)

	assert.Equal(t, "answer", got)
	assert.Equal(t, 0.7, gotBody["temperature"])
	assert.NotContains(t, gotBody, "response_format")

	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestXAIErrorStatusSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	xai := NewXAI(config.XAIConfig{APIKey: "bad", BaseURL: srv.URL})
	_, err := xai.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid api key")
}
