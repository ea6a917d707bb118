package schema

// SemanticItem is the provider input for one commit.
type SemanticItem struct {
	SHA     string `json:"sha"`
	Message string `json:"message"` // subject line
	Body    string `json:"body,omitempty"`
}

// SemanticAnalysis is a validated provider judgment of one commit.
type SemanticAnalysis struct {
	Intent           Intent `json:"intent"`
	Clarity          int    `json:"clarity"`
	Completeness     int    `json:"completeness"`
	TechnicalQuality int    `json:"technical_quality"`
	Summary          string `json:"summary"`
}

// EnhancedCommitScore blends the heuristic score with a semantic analysis.
// Clarity, Completeness and Technical are zero when AIApplied is false.
type EnhancedCommitScore struct {
	SHA          string `json:"sha"`
	Heuristic    int    `json:"heuristic"`
	Size         int    `json:"size"`
	Clarity      int    `json:"clarity"`
	Completeness int    `json:"completeness"`
	Technical    int    `json:"technical"`
	Intent       Intent `json:"intent,omitempty"`
	Summary      string `json:"summary,omitempty"`
	Overall      int    `json:"overall"`
	AIApplied    bool   `json:"ai_applied"`
}

// TokenUsage is the per-run provider usage total.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
	Requests         int `json:"requests"`
	FailedBatches    int `json:"failed_batches"`
}

// Add returns the sum of two usage values.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
		Requests:         u.Requests + o.Requests,
		FailedBatches:    u.FailedBatches + o.FailedBatches,
	}
}
