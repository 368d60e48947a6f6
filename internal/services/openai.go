package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sentra/backend/pkg/models"
)

const systemPrompt = "You are an AI ethics and compliance assistant that analyzes workflow steps and outputs JSON."

// Low temperature for more consistent outputs.
const completionTemperature = 0.3

// OpenAIAnalyzer assesses steps through a chat-completion backend. Any
// backend failure degrades to the MockAnalyzer's record for that step with a
// diagnostic note appended, so a single step never fails outright.
type OpenAIAnalyzer struct {
	client   CompletionClient
	fallback *MockAnalyzer
	logger   Logger
}

// NewOpenAIAnalyzer creates a new OpenAIAnalyzer.
func NewOpenAIAnalyzer(client CompletionClient, fallback *MockAnalyzer, logger Logger) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{
		client:   client,
		fallback: fallback,
		logger:   logger,
	}
}

// AnalyzeStep asks the model to assess one step.
func (a *OpenAIAnalyzer) AnalyzeStep(ctx context.Context, step string) models.AnalysisResult {
	reply, err := a.client.Complete(ctx, systemPrompt, analyzePrompt(step))
	if err != nil {
		a.logger.Error("completion call failed, falling back to mock", "step", step, "error", err)
		return a.apiErrorFallback(step, err)
	}

	fields, err := parseReply(reply)
	if err != nil {
		a.logger.Error("could not parse model reply", "step", step, "error", err)
		return models.AnalysisResult{
			Step:              step,
			Risk:              "unknown",
			Recommendation:    "Error processing this step",
			Reason:            "Could not parse AI response",
			RiskTypes:         []string{"Transparency"},
			SuggestedReviewer: "Engineering",
			RewrittenStep:     "",
		}
	}

	return models.AnalysisResult{
		Step:              step,
		Risk:              stringField(fields, "risk", "unknown"),
		Recommendation:    stringField(fields, "recommendation", "No specific recommendation"),
		Reason:            stringField(fields, "reason", "No explanation provided"),
		RiskTypes:         stringListField(fields, "risk_types"),
		SuggestedReviewer: stringField(fields, "suggested_reviewer", ""),
		RewrittenStep:     stringField(fields, "rewritten_step", ""),
	}
}

// RewriteStep asks the model for a lower-risk rewrite, steered by the
// caller's current assessment. Missing reply fields keep the caller's values.
func (a *OpenAIAnalyzer) RewriteStep(ctx context.Context, req models.FixStepRequest) models.AnalysisResult {
	reply, err := a.client.Complete(ctx, systemPrompt, fixPrompt(req))
	if err != nil {
		a.logger.Error("completion call failed, falling back to mock", "step", req.Step, "error", err)
		return a.apiErrorFallback(req.Step, err)
	}

	fields, err := parseReply(reply)
	if err != nil {
		a.logger.Error("could not parse model reply", "step", req.Step, "error", err)
		return models.AnalysisResult{
			Step:              req.Step,
			Risk:              req.Risk,
			Recommendation:    req.Recommendation,
			Reason:            req.Reason,
			RiskTypes:         []string{},
			SuggestedReviewer: "",
			RewrittenStep:     "Could not parse AI response",
		}
	}

	return models.AnalysisResult{
		Step:              req.Step,
		Risk:              stringField(fields, "risk", req.Risk),
		Recommendation:    stringField(fields, "recommendation", req.Recommendation),
		Reason:            stringField(fields, "reason", req.Reason),
		RiskTypes:         stringListField(fields, "risk_types"),
		SuggestedReviewer: stringField(fields, "suggested_reviewer", ""),
		RewrittenStep:     stringField(fields, "rewritten_step", ""),
	}
}

// apiErrorFallback returns the mock record for the step annotated with the
// backend failure. Only the first 100 characters of the error are carried
// into the reason.
func (a *OpenAIAnalyzer) apiErrorFallback(step string, err error) models.AnalysisResult {
	result := a.fallback.Lookup(step)
	msg := err.Error()
	if len(msg) > 100 {
		msg = msg[:100]
	}
	result.Recommendation += " (Mock response due to API error)"
	result.Reason += fmt.Sprintf(" (API Error: %s...)", msg)
	return result
}

func analyzePrompt(step string) string {
	return fmt.Sprintf(`Step: %q

Analyze this step for:
- How critical the decision is
- Whether human oversight is needed
- Legal or ethical risk
- Auditability

Output in JSON:
- "risk": low/medium/high
- "recommendation": (string)
- "reason": (short explanation)
- "risk_types": (list of applicable tags from: Legal, Ethical, Bias, Privacy, Transparency)
- "suggested_reviewer": (one of: HR, Legal, Ethics Advisor, Data Analyst, Engineering, Product Manager)
- "rewritten_step": (a lower-risk rewrite of the step)`, step)
}

func fixPrompt(req models.FixStepRequest) string {
	return fmt.Sprintf(`Step: %q

Current assessment:
- Risk: %s
- Recommendation: %s
- Reason: %s

Rewrite this step to reduce its risk while preserving its intent.

Output in JSON:
- "risk": low/medium/high for the rewritten step
- "recommendation": (string)
- "reason": (short explanation)
- "risk_types": (list of applicable tags from: Legal, Ethical, Bias, Privacy, Transparency)
- "suggested_reviewer": (one of: HR, Legal, Ethics Advisor, Data Analyst, Engineering, Product Manager)
- "rewritten_step": (the rewritten step)`, req.Step, req.Risk, req.Recommendation, req.Reason)
}

func parseReply(reply string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(reply), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode model reply: %w", err)
	}
	return fields, nil
}

func stringField(fields map[string]any, key, fallback string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return fallback
}

// stringListField reads a JSON array of strings. Values are passed through as
// the model sent them; non-string elements are skipped.
func stringListField(fields map[string]any, key string) []string {
	values := []string{}
	list, ok := fields[key].([]any)
	if !ok {
		return values
	}
	for _, v := range list {
		if s, ok := v.(string); ok {
			values = append(values, s)
		}
	}
	return values
}

// HTTPCompletionClient is an HTTP implementation of the CompletionClient
// interface against an OpenAI-compatible chat-completions endpoint.
type HTTPCompletionClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewHTTPCompletionClient creates a new HTTPCompletionClient. Timeout expiry
// surfaces as an ordinary request error.
func NewHTTPCompletionClient(baseURL, apiKey, model string, timeout time.Duration) *HTTPCompletionClient {
	return &HTTPCompletionClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompts to the chat-completions endpoint and returns the
// first choice's message content.
func (c *HTTPCompletionClient) Complete(ctx context.Context, system, user string) (string, error) {
	body := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: completionTemperature,
	}
	body.ResponseFormat.Type = "json_object"

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion request failed: status code %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
