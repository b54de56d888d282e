package model

// PassType identifies one independent reasoning pass.
type PassType string

const (
	PassKeyword    PassType = "keyword"
	PassCompetitor PassType = "competitor"
	PassStrategy   PassType = "strategy"
)

// AllPassTypes returns the pass types in their fixed execution order.
func AllPassTypes() []PassType {
	return []PassType{PassKeyword, PassCompetitor, PassStrategy}
}

// PassState tracks a pass through its lifecycle.
type PassState string

const (
	PassPending     PassState = "pending"
	PassAwaiting    PassState = "awaiting_response"
	PassParsing     PassState = "parsing"
	PassSucceeded   PassState = "success"
	PassParseFailed PassState = "parse_failed"
	PassCallFailed  PassState = "call_failed"
)

// AnalysisPass is the structured outcome of one reasoning pass. Output is
// empty (never nil) when the pass failed.
type AnalysisPass struct {
	Type    PassType       `json:"type"`
	Output  map[string]any `json:"output"`
	Success bool           `json:"success"`
	State   PassState      `json:"state"`
	Error   string         `json:"error,omitempty"`
}

// SucceededPasses counts successful passes.
func SucceededPasses(passes []AnalysisPass) int {
	n := 0
	for _, p := range passes {
		if p.Success {
			n++
		}
	}
	return n
}

// FindPass returns the pass of type t, or a failed empty pass when absent.
func FindPass(passes []AnalysisPass, t PassType) AnalysisPass {
	for _, p := range passes {
		if p.Type == t {
			return p
		}
	}
	return AnalysisPass{Type: t, Output: map[string]any{}, State: PassPending}
}
