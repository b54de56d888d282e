package evidence

import "github.com/sells-group/evidence-cli/internal/model"

// Confidence bounds.
const (
	BaseConfidence = 50
	MaxConfidence  = 98
)

// Score computes the 0-98 confidence for a bundle. It starts at
// BaseConfidence, adds a bonus for each independent real signal and is
// capped at MaxConfidence. Adding a signal never lowers the score.
func Score(b *model.EvidenceBundle, free model.FreeDataBag, hadSerpData bool) int {
	if b == nil {
		b = &model.EvidenceBundle{}
	}
	score := BaseConfidence

	if b.Methodology.SuccessfulPasses >= len(model.AllPassTypes()) {
		score += 15
	}
	if len(free.Autocomplete) > 5 {
		score += 10
	}
	if n := len(free.Competitors); n >= 1 {
		score += 10
		if n >= 2 {
			score += 5
		}
	}
	if len(free.RelatedSearches) > 0 {
		score += 5
	}
	if hadSerpData {
		score += 15
	}
	if len(b.KeywordAnalysis.PrimaryKeywords) >= 5 {
		score += 5
	}
	if b.KeywordAnalysis.ValidatedKeywords > 0 {
		score += 5
	}
	if len(b.CompetitorAnalysis.ExploitableGaps) >= 2 {
		score += 5
	}
	if b.AIReasoning.GroundedSteps() >= 4 {
		score += 5
	}

	return min(score, MaxConfidence)
}

// Build synthesizes and scores in one step.
func Build(passes []model.AnalysisPass, free model.FreeDataBag, opts ...Option) *model.EvidenceBundle {
	b := Synthesize(passes, free, opts...)
	b.OverallConfidence = Score(b, free, b.SerpAnalysis.Available)
	return b
}
