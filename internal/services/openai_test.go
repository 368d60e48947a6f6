package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sentra/backend/pkg/models"
)

// NoOpLogger for testing
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, args ...interface{}) {}
func (l *NoOpLogger) Info(msg string, args ...interface{})  {}
func (l *NoOpLogger) Warn(msg string, args ...interface{})  {}
func (l *NoOpLogger) Error(msg string, args ...interface{}) {}

// MockCompletionClient satisfies CompletionClient
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

func newTestAnalyzer(client CompletionClient) *OpenAIAnalyzer {
	return NewOpenAIAnalyzer(client, NewMockAnalyzer(), &NoOpLogger{})
}

func TestAnalyzeStepParsesReply(t *testing.T) {
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(
		`{"risk": "high", "recommendation": "Add human sign-off", "reason": "Unreviewed automation",
		  "risk_types": ["Legal", "Bias"], "suggested_reviewer": "Legal", "rewritten_step": "AI drafts, human decides"}`,
		nil,
	)

	result := newTestAnalyzer(client).AnalyzeStep(context.Background(), "Auto-approves claims")

	assert.Equal(t, models.AnalysisResult{
		Step:              "Auto-approves claims",
		Risk:              "high",
		Recommendation:    "Add human sign-off",
		Reason:            "Unreviewed automation",
		RiskTypes:         []string{"Legal", "Bias"},
		SuggestedReviewer: "Legal",
		RewrittenStep:     "AI drafts, human decides",
	}, result)
	client.AssertExpectations(t)
}

func TestAnalyzeStepMissingFieldsGetDefaults(t *testing.T) {
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(`{}`, nil)

	result := newTestAnalyzer(client).AnalyzeStep(context.Background(), "Some step")

	assert.Equal(t, "unknown", result.Risk)
	assert.Equal(t, "No specific recommendation", result.Recommendation)
	assert.Equal(t, "No explanation provided", result.Reason)
	assert.Empty(t, result.RiskTypes)
	assert.NotNil(t, result.RiskTypes)
	assert.Equal(t, "", result.SuggestedReviewer)
	assert.Equal(t, "", result.RewrittenStep)
}

func TestAnalyzeStepRiskTypesPassedThrough(t *testing.T) {
	// Duplicates and out-of-vocabulary tags are not cleaned up; only
	// non-string elements are dropped.
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(
		`{"risk": "low", "risk_types": ["Legal", "Legal", 42, "Reputational"]}`, nil,
	)

	result := newTestAnalyzer(client).AnalyzeStep(context.Background(), "Some step")

	assert.Equal(t, []string{"Legal", "Legal", "Reputational"}, result.RiskTypes)
}

func TestAnalyzeStepUnparsableReply(t *testing.T) {
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("Sorry, I cannot do that.", nil)

	result := newTestAnalyzer(client).AnalyzeStep(context.Background(), "Some step")

	assert.Equal(t, models.AnalysisResult{
		Step:              "Some step",
		Risk:              "unknown",
		Recommendation:    "Error processing this step",
		Reason:            "Could not parse AI response",
		RiskTypes:         []string{"Transparency"},
		SuggestedReviewer: "Engineering",
		RewrittenStep:     "",
	}, result)
}

func TestAnalyzeStepBackendErrorFallsBackToMock(t *testing.T) {
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	result := newTestAnalyzer(client).AnalyzeStep(context.Background(), "AI scans resumes")

	assert.Equal(t, "low", result.Risk)
	assert.Equal(t,
		"Continue with automated scanning, but periodically audit for bias (Mock response due to API error)",
		result.Recommendation)
	assert.Equal(t,
		"Initial scanning is low risk as it's just collecting data, not making decisions (API Error: connection refused...)",
		result.Reason)
	assert.Equal(t, []string{"Bias", "Privacy"}, result.RiskTypes)
	assert.Equal(t, "HR", result.SuggestedReviewer)
}

func TestAnalyzeStepBackendErrorMessageTruncated(t *testing.T) {
	long := strings.Repeat("x", 150)
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New(long))

	result := newTestAnalyzer(client).AnalyzeStep(context.Background(), "Some step")

	assert.Contains(t, result.Reason, "(API Error: "+strings.Repeat("x", 100)+"...)")
	assert.NotContains(t, result.Reason, strings.Repeat("x", 101))
}

func TestRewriteStepParsesReply(t *testing.T) {
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(
		`{"risk": "low", "recommendation": "Proceed", "reason": "Human now decides",
		  "risk_types": ["Ethical"], "suggested_reviewer": "Ethics Advisor",
		  "rewritten_step": "AI recommends, human approves"}`,
		nil,
	)

	result := newTestAnalyzer(client).RewriteStep(context.Background(), models.FixStepRequest{
		Step:           "Auto-approves claims",
		Risk:           "high",
		Recommendation: "Add review",
		Reason:         "Too risky",
	})

	assert.Equal(t, "low", result.Risk)
	assert.Equal(t, "AI recommends, human approves", result.RewrittenStep)
}

func TestRewriteStepMissingFieldsKeepCallerValues(t *testing.T) {
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(
		`{"rewritten_step": "AI recommends, human approves"}`, nil,
	)

	result := newTestAnalyzer(client).RewriteStep(context.Background(), models.FixStepRequest{
		Step:           "Auto-approves claims",
		Risk:           "high",
		Recommendation: "Add review",
		Reason:         "Too risky",
	})

	assert.Equal(t, "high", result.Risk)
	assert.Equal(t, "Add review", result.Recommendation)
	assert.Equal(t, "Too risky", result.Reason)
	assert.Equal(t, "AI recommends, human approves", result.RewrittenStep)
}

func TestRewriteStepUnparsableReplyKeepsCallerAssessment(t *testing.T) {
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("not json", nil)

	result := newTestAnalyzer(client).RewriteStep(context.Background(), models.FixStepRequest{
		Step:           "Auto-approves claims",
		Risk:           "high",
		Recommendation: "Add review",
		Reason:         "Too risky",
	})

	assert.Equal(t, "high", result.Risk)
	assert.Equal(t, "Add review", result.Recommendation)
	assert.Equal(t, "Too risky", result.Reason)
	assert.Equal(t, "Could not parse AI response", result.RewrittenStep)
}

func TestRewriteStepBackendErrorFallsBackToMock(t *testing.T) {
	client := new(MockCompletionClient)
	client.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("429 too many requests"))

	result := newTestAnalyzer(client).RewriteStep(context.Background(), models.FixStepRequest{
		Step: "Sets interest rate",
		Risk: "high",
	})

	assert.Equal(t, "high", result.Risk)
	assert.Equal(t,
		"Implement human review of interest rate determinations (Mock response due to API error)",
		result.Recommendation)
	assert.True(t, strings.HasSuffix(result.Reason, "(API Error: 429 too many requests...)"))
}

func TestAnalyzePromptNamesEveryField(t *testing.T) {
	prompt := analyzePrompt("AI scans resumes")

	assert.Contains(t, prompt, `"AI scans resumes"`)
	for _, key := range []string{"risk", "recommendation", "reason", "risk_types", "suggested_reviewer", "rewritten_step"} {
		assert.Contains(t, prompt, `"`+key+`"`)
	}
}

func TestHTTPCompletionClient(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "{\"risk\": \"low\"}"}}]}`))
	}))
	defer srv.Close()

	client := NewHTTPCompletionClient(srv.URL, "sk-test", "gpt-3.5-turbo", 5*time.Second)
	reply, err := client.Complete(context.Background(), "system prompt", "user prompt")

	assert.NoError(t, err)
	assert.Equal(t, `{"risk": "low"}`, reply)
	assert.Equal(t, "gpt-3.5-turbo", captured["model"])
	assert.Equal(t, 0.3, captured["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])

	messages, ok := captured["messages"].([]any)
	assert.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestHTTPCompletionClientNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid_api_key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewHTTPCompletionClient(srv.URL, "sk-bad", "gpt-3.5-turbo", 5*time.Second)
	_, err := client.Complete(context.Background(), "system prompt", "user prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status code 401")
}

func TestHTTPCompletionClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := NewHTTPCompletionClient(srv.URL, "sk-test", "gpt-3.5-turbo", 5*time.Second)
	_, err := client.Complete(context.Background(), "system prompt", "user prompt")

	assert.Error(t, err)
}

func TestFixPromptCarriesCurrentAssessment(t *testing.T) {
	prompt := fixPrompt(models.FixStepRequest{
		Step:           "Auto-approves claims",
		Risk:           "high",
		Recommendation: "Add review",
		Reason:         "Too risky",
	})

	assert.Contains(t, prompt, `"Auto-approves claims"`)
	assert.Contains(t, prompt, "Risk: high")
	assert.Contains(t, prompt, "Recommendation: Add review")
	assert.Contains(t, prompt, "Reason: Too risky")
}
