package services

import (
	"context"

	"sentra/backend/pkg/models"
)

// Strategy produces a risk assessment for a single workflow step.
//
// Implementations never fail: every backend error is resolved internally to a
// deterministic fallback, so callers always receive a well-formed assessment
// for any non-blank step.
type Strategy interface {
	// AnalyzeStep assesses one workflow step.
	AnalyzeStep(ctx context.Context, step string) models.AnalysisResult
	// RewriteStep produces a lower-risk rewrite of the step. The request's
	// current risk/recommendation/reason steer the rewrite where the
	// implementation supports it.
	RewriteStep(ctx context.Context, req models.FixStepRequest) models.AnalysisResult
}

// Logger is the logging surface the services need. Satisfied by
// logging.Logger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// CompletionClient is an interface for communicating with a chat-completion
// backend.
type CompletionClient interface {
	// Complete sends a system and user prompt and returns the raw text of
	// the model's reply.
	Complete(ctx context.Context, system, user string) (string, error)
}
