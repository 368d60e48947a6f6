package models

// WorkflowRequest is the body of POST /analyze: the workflow steps to audit,
// in the order the workflow executes them.
type WorkflowRequest struct {
	Steps   []string `json:"steps"`
	UseMock bool     `json:"use_mock"`
}

// FixStepRequest is the body of POST /fix-step. The current assessment fields
// give the rewrite context about why the step was flagged.
type FixStepRequest struct {
	Step           string `json:"step"`
	Risk           string `json:"risk"`
	Recommendation string `json:"recommendation"`
	Reason         string `json:"reason"`
	UseMock        bool   `json:"use_mock"`
}

// AnalysisResult is the per-step assessment returned by both operations.
//
// Risk is low/medium/high, or "unknown" when the model reply could not be
// interpreted. RiskTypes is drawn from {Legal, Ethical, Bias, Privacy,
// Transparency} and SuggestedReviewer from {HR, Legal, Ethics Advisor,
// Data Analyst, Engineering, Product Manager}, but values coming back from
// the model are passed through without validation. RewrittenStep is empty
// when no lower-risk rewrite was produced.
type AnalysisResult struct {
	Step              string   `json:"step"`
	Risk              string   `json:"risk"`
	Recommendation    string   `json:"recommendation"`
	Reason            string   `json:"reason"`
	RiskTypes         []string `json:"risk_types"`
	SuggestedReviewer string   `json:"suggested_reviewer"`
	RewrittenStep     string   `json:"rewritten_step"`
}
