package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"sentra/backend/pkg/models"
)

// Validation errors surfaced to the HTTP layer as client errors.
var (
	ErrNoSteps   = errors.New("workflow must contain at least one step")
	ErrBlankStep = errors.New("step must not be blank")
)

// AuditService orchestrates workflow audits. It selects the per-call strategy
// (static table vs model backend) and holds no per-request state.
type AuditService struct {
	mock   *MockAnalyzer
	model  Strategy
	logger Logger
}

// NewAuditService creates a new AuditService. model may be nil when no
// backend credential is configured; every request then answers from the mock
// table regardless of its use_mock flag.
func NewAuditService(mock *MockAnalyzer, model Strategy, logger Logger) *AuditService {
	return &AuditService{
		mock:   mock,
		model:  model,
		logger: logger,
	}
}

// selectStrategy picks the strategy for one request.
func (s *AuditService) selectStrategy(useMock bool) Strategy {
	if useMock || s.model == nil {
		return s.mock
	}
	return s.model
}

// AnalyzeWorkflow assesses each non-blank step in input order. Blank steps
// produce no output entry. An empty step list is a validation error.
func (s *AuditService) AnalyzeWorkflow(ctx context.Context, req models.WorkflowRequest) ([]models.AnalysisResult, error) {
	if len(req.Steps) == 0 {
		return nil, ErrNoSteps
	}

	auditID := uuid.New().String()
	strategy := s.selectStrategy(req.UseMock)

	results := make([]models.AnalysisResult, 0, len(req.Steps))
	for _, step := range req.Steps {
		if strings.TrimSpace(step) == "" {
			continue
		}
		results = append(results, strategy.AnalyzeStep(ctx, step))
	}

	s.logger.Info("workflow analyzed",
		"audit_id", auditID,
		"steps", len(req.Steps),
		"results", len(results),
		"mock", req.UseMock || s.model == nil,
	)

	return results, nil
}

// FixStep produces a lower-risk rewrite of a single step, steered by the
// caller's current assessment.
func (s *AuditService) FixStep(ctx context.Context, req models.FixStepRequest) (models.AnalysisResult, error) {
	if strings.TrimSpace(req.Step) == "" {
		return models.AnalysisResult{}, ErrBlankStep
	}

	strategy := s.selectStrategy(req.UseMock)
	result := strategy.RewriteStep(ctx, req)

	s.logger.Info("workflow step fixed",
		"audit_id", uuid.New().String(),
		"step", req.Step,
		"risk", result.Risk,
	)

	return result, nil
}
