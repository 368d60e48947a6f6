package services

import (
	"context"

	"sentra/backend/pkg/models"
)

// MockAnalyzer answers from a fixed table keyed by exact step text. It backs
// mock mode and is the fallback when the model backend is unreachable.
type MockAnalyzer struct{}

// NewMockAnalyzer creates a new MockAnalyzer.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

// Lookup returns the canned assessment for a step. Matching is exact
// (case- and whitespace-sensitive); unknown steps get the default record.
func (m *MockAnalyzer) Lookup(step string) models.AnalysisResult {
	record, ok := mockResponses[step]
	if !ok {
		record = defaultMockResponse
	}
	record.Step = step
	return record
}

// AnalyzeStep assesses a step from the table.
func (m *MockAnalyzer) AnalyzeStep(ctx context.Context, step string) models.AnalysisResult {
	return m.Lookup(step)
}

// RewriteStep returns the table record for the step. The caller's current
// assessment is only meaningful to the model-backed strategy.
func (m *MockAnalyzer) RewriteStep(ctx context.Context, req models.FixStepRequest) models.AnalysisResult {
	return m.Lookup(req.Step)
}

// defaultMockResponse is used for any step not present in mockResponses.
var defaultMockResponse = models.AnalysisResult{
	Risk:              "medium",
	Recommendation:    "Add human oversight to this step",
	Reason:            "Automated decision-making without human oversight may introduce risks",
	RiskTypes:         []string{"Ethical"},
	SuggestedReviewer: "Ethics Advisor",
	RewrittenStep:     "Add a human checkpoint to this step before its outcome takes effect",
}

// mockResponses covers the hiring, content-moderation and lending demo
// workflows. Read-only after init.
var mockResponses = map[string]models.AnalysisResult{
	"AI scans resumes": {
		Risk:              "low",
		Recommendation:    "Continue with automated scanning, but periodically audit for bias",
		Reason:            "Initial scanning is low risk as it's just collecting data, not making decisions",
		RiskTypes:         []string{"Bias", "Privacy"},
		SuggestedReviewer: "HR",
		RewrittenStep:     "AI scans resumes with periodic bias audits and clear data retention policies",
	},
	"Filters top 20%": {
		Risk:              "medium",
		Recommendation:    "Add human review of filtering criteria and periodic audits",
		Reason:            "Automated filtering may introduce bias based on the criteria used",
		RiskTypes:         []string{"Bias", "Transparency"},
		SuggestedReviewer: "HR",
		RewrittenStep:     "AI filters top 20% using criteria reviewed and periodically audited by a human",
	},
	"Auto-rejects bottom 80%": {
		Risk:              "high",
		Recommendation:    "Add human reviewer for rejections or sample-based review",
		Reason:            "Automated rejection without human oversight may violate employment regulations and introduce bias",
		RiskTypes:         []string{"Legal", "Bias"},
		SuggestedReviewer: "HR",
		RewrittenStep:     "AI flags bottom 80% for human review before any rejection is sent",
	},
	"Sends interview invites": {
		Risk:              "medium",
		Recommendation:    "Have human approve final invite list",
		Reason:            "Automated invitations may miss qualified candidates due to algorithm limitations",
		RiskTypes:         []string{"Bias"},
		SuggestedReviewer: "HR",
		RewrittenStep:     "AI drafts interview invites for a human-approved final list",
	},
	"AI scans user content": {
		Risk:              "low",
		Recommendation:    "Continue with automated scanning, but have clear appeal process",
		Reason:            "Initial content scanning is low risk as it's just flagging for review",
		RiskTypes:         []string{"Privacy", "Transparency"},
		SuggestedReviewer: "Ethics Advisor",
		RewrittenStep:     "AI scans user content with a documented appeal process for affected users",
	},
	"Flags potential violations": {
		Risk:              "low",
		Recommendation:    "Maintain human review of flagged content",
		Reason:            "Flagging for human review is appropriate and low risk",
		RiskTypes:         []string{"Transparency"},
		SuggestedReviewer: "Ethics Advisor",
		RewrittenStep:     "AI flags potential violations for mandatory human review",
	},
	"Auto-removes extreme content": {
		Risk:              "high",
		Recommendation:    "Implement human review before removal or immediate appeal process",
		Reason:            "Automated content removal may violate free speech or remove legitimate content",
		RiskTypes:         []string{"Legal", "Ethical"},
		SuggestedReviewer: "Legal",
		RewrittenStep:     "AI queues extreme content for human review before removal, with an immediate appeal path",
	},
	"Sends warnings to borderline cases": {
		Risk:              "medium",
		Recommendation:    "Have human review warnings before sending",
		Reason:            "Automated warnings may cause user frustration if incorrectly applied",
		RiskTypes:         []string{"Ethical", "Transparency"},
		SuggestedReviewer: "Ethics Advisor",
		RewrittenStep:     "AI drafts warnings for borderline cases that a human reviews before sending",
	},
	"Restricts repeat offenders": {
		Risk:              "high",
		Recommendation:    "Require human approval for account restrictions",
		Reason:            "Account restrictions have significant impact on users and require due process",
		RiskTypes:         []string{"Legal", "Ethical"},
		SuggestedReviewer: "Legal",
		RewrittenStep:     "AI recommends restrictions for repeat offenders, applied only after human approval",
	},
	"AI collects financial data": {
		Risk:              "medium",
		Recommendation:    "Ensure proper data security and consent mechanisms",
		Reason:            "Financial data collection involves privacy concerns and regulatory requirements",
		RiskTypes:         []string{"Privacy", "Legal"},
		SuggestedReviewer: "Data Analyst",
		RewrittenStep:     "AI collects financial data with explicit consent and encrypted storage",
	},
	"Calculates credit score": {
		Risk:              "high",
		Recommendation:    "Ensure algorithm is explainable and complies with regulations",
		Reason:            "Credit scoring is heavily regulated and must be transparent and fair",
		RiskTypes:         []string{"Legal", "Transparency", "Bias"},
		SuggestedReviewer: "Data Analyst",
		RewrittenStep:     "AI calculates credit scores using an explainable model with documented inputs",
	},
	"Determines loan eligibility": {
		Risk:              "high",
		Recommendation:    "Require human review of eligibility decisions",
		Reason:            "Loan eligibility decisions have significant financial impact and regulatory oversight",
		RiskTypes:         []string{"Legal", "Bias"},
		SuggestedReviewer: "Legal",
		RewrittenStep:     "AI pre-screens loan eligibility with final decisions made by a human underwriter",
	},
	"Sets interest rate": {
		Risk:              "high",
		Recommendation:    "Implement human review of interest rate determinations",
		Reason:            "Interest rate setting may have discriminatory effects if not properly overseen",
		RiskTypes:         []string{"Legal", "Bias"},
		SuggestedReviewer: "Legal",
		RewrittenStep:     "AI proposes interest rates that a human reviews for discriminatory effects before applying",
	},
	"Auto-approves qualifying applications": {
		Risk:              "high",
		Recommendation:    "Add human review step before final approval",
		Reason:            "Automated loan approval may miss nuances and has significant financial implications",
		RiskTypes:         []string{"Legal", "Ethical"},
		SuggestedReviewer: "Product Manager",
		RewrittenStep:     "AI shortlists qualifying applications for human sign-off before approval",
	},
}
