package evidence

import (
	"fmt"

	"github.com/sells-group/evidence-cli/internal/model"
)

func keywordOutput() map[string]any {
	primary := []any{}
	for _, k := range []string{"running shoes", "best running shoes", "trail running shoes", "running shoes for flat feet", "carbon plate shoes"} {
		primary = append(primary, map[string]any{
			"keyword":          k,
			"search_intent":    "commercial",
			"difficulty":       "medium",
			"estimated_volume": "10k-100k",
		})
	}
	return map[string]any{
		"primary_keywords":   primary,
		"long_tail_keywords": []any{"best running shoes for beginners 2026"},
		"question_keywords":  []any{"how often should you replace running shoes"},
		"seo_potential":      "high",
		"competition_level":  "High",
		"key_highlights":     []any{"Strong commercial intent", "Large question cluster", "Third highlight"},
		"reasoning":          "Autocomplete confirms demand for comparison queries.",
	}
}

func competitorOutput() map[string]any {
	return map[string]any{
		"competitors": []any{
			map[string]any{"domain": "runnersworld.com", "strengths": []any{"authority"}, "weaknesses": []any{"dated reviews"}},
			map[string]any{"domain": "rei.com", "strengths": []any{"catalog"}, "weaknesses": "thin guides"},
			map[string]any{"strengths": []any{"ignored without domain"}},
		},
		"content_gaps":           []any{"no gait guide"},
		"exploitable_gaps":       []any{"no foot-type matrix", "no durability data"},
		"competitive_advantages": []any{"Lab-tested durability", "Foot-type matrix", "Third advantage"},
		"reasoning":              "Top pages skip durability testing.",
	}
}

func strategyOutput() map[string]any {
	return map[string]any{
		"trend": map[string]any{
			"direction":   "rising",
			"seasonality": "peaks in January",
			"momentum":    "strong",
			"notes":       "New year resolutions drive spikes.",
			"reasoning":   "Searches peak every January.",
		},
		"content_recommendations": map[string]any{
			"format":     "buying guide",
			"word_count": 2500.0,
			"structure":  []any{"intro", "matrix", "picks"},
			"angles":     []any{"durability"},
		},
		"audience_insights": map[string]any{
			"primary_audience": "new runners",
			"search_intent":    "commercial",
			"pain_points":      []any{"injury", "cost"},
		},
		"risk_assessment": map[string]any{
			"level":       "Medium",
			"risks":       []any{"affiliate saturation"},
			"mitigations": []any{"original testing"},
		},
		"differentiation_hook": "The only guide with lab-tested midsole wear.",
		"assumptions":          []any{"US audience"},
		"limitations":          []any{"No lab data yet"},
		"reasoning":            "Lead with durability where competitors are silent.",
	}
}

func succeeded(t model.PassType, out map[string]any) model.AnalysisPass {
	return model.AnalysisPass{Type: t, Output: out, Success: true, State: model.PassSucceeded}
}

func failedPass(t model.PassType) model.AnalysisPass {
	return model.AnalysisPass{Type: t, Output: map[string]any{}, State: model.PassCallFailed, Error: "boom"}
}

func allSucceeded() []model.AnalysisPass {
	return []model.AnalysisPass{
		succeeded(model.PassKeyword, keywordOutput()),
		succeeded(model.PassCompetitor, competitorOutput()),
		succeeded(model.PassStrategy, strategyOutput()),
	}
}

func allFailed() []model.AnalysisPass {
	return []model.AnalysisPass{
		failedPass(model.PassKeyword),
		failedPass(model.PassCompetitor),
		failedPass(model.PassStrategy),
	}
}

func richFreeData() model.FreeDataBag {
	auto := make([]string, 0, 8)
	for i := range 8 {
		auto = append(auto, fmt.Sprintf("running shoes option %d", i))
	}
	return model.FreeDataBag{
		Autocomplete:    auto,
		RelatedSearches: []string{"best running shoes for women"},
		Competitors: []model.CompetitorPageSummary{
			{URL: "https://www.runnersworld.com/gear", Domain: "runnersworld.com", WordCount: 1800},
			{URL: "https://www.rei.com/learn", Domain: "rei.com", WordCount: 2400},
		},
		Sources: []string{model.SourceAutocomplete, model.SourceCompetitorPages, model.SourceRelatedSearches},
	}
}

func serpSnapshot() *model.SerpSnapshot {
	s := &model.SerpSnapshot{Keyword: "running shoes", LocationCode: 2840, LanguageCode: "en", FeaturedSnippet: true}
	for i := range 12 {
		domain := fmt.Sprintf("site%d.com", i%7)
		s.Results = append(s.Results, model.SerpResult{Rank: i + 1, URL: "https://" + domain + "/p", Domain: domain})
	}
	return s
}
