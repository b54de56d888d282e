// Package evidence merges analysis passes and real data into an evidence
// bundle and scores how much of it rests on real signals.
package evidence

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/evidence-cli/internal/model"
)

// Provenance names for paid data sources.
const (
	SourceKeywordMetrics = "DataForSEO Keyword Metrics"
	SourceSerp           = "DataForSEO SERP"
)

// Missing-data identifiers.
const (
	MissingSearchVolume   = "keyword_search_volume"
	MissingSerp           = "serp_results"
	MissingAutocomplete   = "autocomplete_suggestions"
	MissingCompetitors    = "competitor_pages"
	MissingRelated        = "related_searches"
	defaultProviderName   = "AI"
	maxKeyInsights        = 5
	maxSerpTopResults     = 10
	maxKeywordHighlights  = 2
	maxCompetitorInsights = 2
)

// ProviderStatus is the outcome of the paid data provider for a request.
type ProviderStatus int

const (
	// ProviderNotConfigured means no credentials were set, so no call was made.
	ProviderNotConfigured ProviderStatus = iota
	// ProviderOK means at least one provider call returned data.
	ProviderOK
	// ProviderUnavailable means calls were made and all of them failed.
	ProviderUnavailable
)

type options struct {
	serp          *model.SerpSnapshot
	metrics       []model.KeywordMetric
	provider      ProviderStatus
	reasoningName string
}

// Option adds real data or context to Synthesize.
type Option func(*options)

// WithSerp attaches the real SERP snapshot.
func WithSerp(s *model.SerpSnapshot) Option {
	return func(o *options) { o.serp = s }
}

// WithKeywordMetrics attaches real keyword metrics.
func WithKeywordMetrics(m []model.KeywordMetric) Option {
	return func(o *options) { o.metrics = m }
}

// WithProviderStatus records how the paid data provider fared.
func WithProviderStatus(s ProviderStatus) Option {
	return func(o *options) { o.provider = s }
}

// WithReasoningProvider sets the display name used in data_sources.
func WithReasoningProvider(name string) Option {
	return func(o *options) { o.reasoningName = name }
}

// Generic narrative used when a pass has no reasoning of its own.
var stepDefaults = [4][2]string{
	{"keyword_research", "Identified primary, long-tail and question keywords for the topic."},
	{"competition_analysis", "Reviewed the competitive landscape for content gaps and advantages."},
	{"trend_assessment", "Estimated the interest trend and seasonality for the topic."},
	{"strategy_formation", "Combined the analyses into a content strategy recommendation."},
}

var fold = cases.Fold()

// Synthesize builds the evidence bundle. It is pure: identical inputs give
// identical bundles. Each section comes from exactly one pass, and a failed
// pass leaves its sections at neutral defaults. OverallConfidence is left at
// zero for Score.
func Synthesize(passes []model.AnalysisPass, free model.FreeDataBag, opts ...Option) *model.EvidenceBundle {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.reasoningName == "" {
		o.reasoningName = defaultProviderName
	}

	kw := output(passes, model.PassKeyword)
	comp := output(passes, model.PassCompetitor)
	strat := output(passes, model.PassStrategy)

	b := &model.EvidenceBundle{
		SEOPotential:     model.SEOPotentialMedium,
		CompetitionLevel: model.CompetitionLevelMedium,
		TrendDirection:   model.TrendStable,
	}

	b.KeywordAnalysis = keywordSection(kw, free, o.metrics)
	b.SEOPotential = model.SEOPotential(level(kw["seo_potential"], string(model.SEOPotentialMedium)))
	b.CompetitionLevel = model.CompetitionLevel(level(kw["competition_level"], string(model.CompetitionLevelMedium)))

	b.CompetitorAnalysis = competitorSection(comp, free)

	b.TrendAnalysis = trendSection(strat)
	b.TrendDirection = b.TrendAnalysis.Direction
	b.ContentRecommendations = contentSection(strat)
	b.AudienceInsights = audienceSection(strat)
	b.RiskAssessment = riskSection(strat)

	b.SerpAnalysis = serpSection(o.serp)
	b.KeyInsights = keyInsights(kw, comp, strat)

	b.DataSources = dataSources(o, free)
	b.MissingData = missingData(o, free)

	dataSource := dataSourceKind(o, b.DataSources)
	b.AIReasoning = narrative(kw, comp, strat, dataSource)

	b.Methodology = model.Methodology{
		Passes:           len(passes),
		SuccessfulPasses: model.SucceededPasses(passes),
		RealDataSources:  append([]string{}, b.DataSources[1:]...),
		ValidationMethod: model.ValidationMethodMultiPass,
		DataSource:       dataSource,
		Message:          methodologyMessage(dataSource, len(b.DataSources)-1),
	}
	return b
}

// output returns the pass's output, or an empty map when it failed.
func output(passes []model.AnalysisPass, t model.PassType) map[string]any {
	p := model.FindPass(passes, t)
	if !p.Success || p.Output == nil {
		return map[string]any{}
	}
	return p.Output
}

func level(v any, def string) string {
	switch s := strings.ToLower(str(v)); s {
	case "low", "medium", "high":
		return s
	default:
		return def
	}
}

func keywordSection(kw map[string]any, free model.FreeDataBag, metrics []model.KeywordMetric) model.KeywordAnalysis {
	ka := model.KeywordAnalysis{
		PrimaryKeywords:  []model.KeywordInsight{},
		LongTailKeywords: strList(kw["long_tail_keywords"]),
		QuestionKeywords: strList(kw["question_keywords"]),
		Metrics:          []model.KeywordMetric{},
	}
	ka.Metrics = append(ka.Metrics, metrics...)

	suggestions := foldAll(free.Autocomplete, free.RelatedSearches)
	for _, item := range list(kw["primary_keywords"]) {
		var ki model.KeywordInsight
		if s, ok := item.(string); ok {
			ki.Keyword = strings.TrimSpace(s)
		} else {
			m := obj(item)
			ki = model.KeywordInsight{
				Keyword:         str(m["keyword"]),
				SearchIntent:    str(m["search_intent"]),
				Difficulty:      str(m["difficulty"]),
				EstimatedVolume: str(m["estimated_volume"]),
			}
		}
		if ki.Keyword == "" {
			continue
		}
		ki.Validated = crossValidated(ki.Keyword, suggestions)
		if ki.Validated {
			ka.ValidatedKeywords++
		}
		ka.PrimaryKeywords = append(ka.PrimaryKeywords, ki)
	}
	return ka
}

func foldAll(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		for _, s := range l {
			if f := fold.String(strings.TrimSpace(s)); f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}

// crossValidated reports whether keyword appears in, or contains, any real
// suggestion.
func crossValidated(keyword string, folded []string) bool {
	k := fold.String(strings.TrimSpace(keyword))
	for _, s := range folded {
		if strings.Contains(s, k) || strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func competitorSection(comp map[string]any, free model.FreeDataBag) model.CompetitorAnalysis {
	ca := model.CompetitorAnalysis{
		Competitors:           []model.CompetitorInsight{},
		ContentGaps:           strList(comp["content_gaps"]),
		ExploitableGaps:       strList(comp["exploitable_gaps"]),
		CompetitiveAdvantages: strList(comp["competitive_advantages"]),
		PagesAnalyzed:         len(free.Competitors),
	}
	for _, item := range list(comp["competitors"]) {
		m := obj(item)
		domain := str(m["domain"])
		if domain == "" {
			continue
		}
		ca.Competitors = append(ca.Competitors, model.CompetitorInsight{
			Domain:     domain,
			Strengths:  strList(m["strengths"]),
			Weaknesses: strList(m["weaknesses"]),
		})
	}
	return ca
}

func trendSection(strat map[string]any) model.TrendAnalysis {
	t := obj(strat["trend"])
	dir := model.TrendStable
	switch strings.ToLower(str(t["direction"])) {
	case "rising", "up", "growing":
		dir = model.TrendRising
	case "declining", "down", "falling":
		dir = model.TrendDeclining
	}
	return model.TrendAnalysis{
		Direction:   dir,
		Seasonality: str(t["seasonality"]),
		Momentum:    str(t["momentum"]),
		Notes:       strList(t["notes"]),
	}
}

func contentSection(strat map[string]any) model.ContentRecommendations {
	c := obj(strat["content_recommendations"])
	return model.ContentRecommendations{
		Format:          str(c["format"]),
		TargetWordCount: num(c["word_count"]),
		Structure:       strList(c["structure"]),
		Angles:          strList(c["angles"]),
	}
}

func audienceSection(strat map[string]any) model.AudienceInsights {
	a := obj(strat["audience_insights"])
	return model.AudienceInsights{
		PrimaryAudience: str(a["primary_audience"]),
		SearchIntent:    str(a["search_intent"]),
		PainPoints:      strList(a["pain_points"]),
	}
}

func riskSection(strat map[string]any) model.RiskAssessment {
	r := obj(strat["risk_assessment"])
	lvl := ""
	if v := str(r["level"]); v != "" {
		lvl = level(v, "")
	}
	return model.RiskAssessment{
		Level:       lvl,
		Risks:       strList(r["risks"]),
		Mitigations: strList(r["mitigations"]),
	}
}

func serpSection(s *model.SerpSnapshot) model.SerpAnalysis {
	sa := model.SerpAnalysis{
		TopResults: []model.SerpResult{},
		TopDomains: []string{},
	}
	if s == nil {
		return sa
	}
	sa.Available = true
	sa.Keyword = s.Keyword
	sa.FeaturedSnippet = s.FeaturedSnippet
	sa.HasLocalPack = len(s.LocalPack) > 0

	seen := map[string]struct{}{}
	for i, r := range s.Results {
		if i >= maxSerpTopResults {
			break
		}
		sa.TopResults = append(sa.TopResults, r)
		if r.Domain == "" {
			continue
		}
		if _, ok := seen[r.Domain]; !ok {
			seen[r.Domain] = struct{}{}
			sa.TopDomains = append(sa.TopDomains, r.Domain)
		}
	}
	return sa
}

func keyInsights(kw, comp, strat map[string]any) []string {
	var all []string
	all = append(all, head(strList(kw["key_highlights"]), maxKeywordHighlights)...)
	all = append(all, head(strList(comp["competitive_advantages"]), maxCompetitorInsights)...)
	if hook := str(strat["differentiation_hook"]); hook != "" {
		all = append(all, hook)
	}

	out := []string{}
	for _, s := range all {
		if s != "" {
			out = append(out, s)
		}
	}
	return head(out, maxKeyInsights)
}

func narrative(kw, comp, strat map[string]any, dataSource string) model.Reasoning {
	sources := [4]string{
		str(kw["reasoning"]),
		str(comp["reasoning"]),
		str(obj(strat["trend"])["reasoning"]),
		str(strat["reasoning"]),
	}

	r := model.Reasoning{
		Steps:       make([]model.ReasoningStep, 0, len(stepDefaults)),
		Assumptions: strList(strat["assumptions"]),
		Limitations: strList(strat["limitations"]),
	}
	for i, d := range stepDefaults {
		step := model.ReasoningStep{Phase: d[0], Description: d[1]}
		if sources[i] != "" {
			step.Description = sources[i]
			step.FromAnalysis = true
		}
		r.Steps = append(r.Steps, step)
	}

	if dataSource != model.DataSourceReal {
		r.Limitations = append(r.Limitations, "No real search data was available; volumes and difficulty are AI estimates.")
	}
	return r
}

func dataSources(o options, free model.FreeDataBag) []string {
	out := []string{o.reasoningName + " Multi-Pass Analysis"}
	out = append(out, free.Sources...)
	if len(o.metrics) > 0 {
		out = append(out, SourceKeywordMetrics)
	}
	if o.serp != nil {
		out = append(out, SourceSerp)
	}
	return out
}

func missingData(o options, free model.FreeDataBag) []string {
	out := []string{}
	if len(o.metrics) == 0 {
		out = append(out, MissingSearchVolume)
	}
	if o.serp == nil {
		out = append(out, MissingSerp)
	}
	if len(free.Autocomplete) == 0 {
		out = append(out, MissingAutocomplete)
	}
	if len(free.Competitors) == 0 {
		out = append(out, MissingCompetitors)
	}
	if len(free.RelatedSearches) == 0 {
		out = append(out, MissingRelated)
	}
	return out
}

func dataSourceKind(o options, sources []string) string {
	switch {
	case o.provider == ProviderUnavailable:
		return model.DataSourceAIFallback
	case len(sources) > 1:
		return model.DataSourceReal
	default:
		return model.DataSourceAIEstimate
	}
}

func methodologyMessage(kind string, realSources int) string {
	switch kind {
	case model.DataSourceAIFallback:
		return "The keyword data provider was unavailable, so this analysis falls back to AI estimates plus any free data that could be gathered."
	case model.DataSourceReal:
		return fmt.Sprintf("This analysis combines %d real data source(s) with multi-pass AI reasoning.", realSources)
	default:
		return "No real data sources were available, so this analysis is based on AI estimates only."
	}
}
