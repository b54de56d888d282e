package model

// SEOPotential is the estimated organic upside for a topic.
type SEOPotential string

const (
	SEOPotentialHigh   SEOPotential = "high"
	SEOPotentialMedium SEOPotential = "medium"
	SEOPotentialLow    SEOPotential = "low"
)

// CompetitionLevel is the estimated organic competition for a topic.
type CompetitionLevel string

const (
	CompetitionLevelLow    CompetitionLevel = "low"
	CompetitionLevelMedium CompetitionLevel = "medium"
	CompetitionLevelHigh   CompetitionLevel = "high"
)

// TrendDirection is the estimated interest trajectory for a topic.
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// DataSource values for Methodology.DataSource.
const (
	DataSourceReal       = "real_data"
	DataSourceAIEstimate = "ai_estimate"
	DataSourceAIFallback = "ai_fallback"
)

// ValidationMethodMultiPass names the validation strategy recorded in bundles.
const ValidationMethodMultiPass = "multi_pass_cross_validation"

// EvidenceBundle is the scored "why this recommendation" evidence produced
// for one content-generation request. It is immutable once returned.
type EvidenceBundle struct {
	OverallConfidence      int                    `json:"overall_confidence"`
	SEOPotential           SEOPotential           `json:"seo_potential"`
	CompetitionLevel       CompetitionLevel       `json:"competition_level"`
	TrendDirection         TrendDirection         `json:"trend_direction"`
	KeyInsights            []string               `json:"key_insights"`
	KeywordAnalysis        KeywordAnalysis        `json:"keyword_analysis"`
	CompetitorAnalysis     CompetitorAnalysis     `json:"competitor_analysis"`
	TrendAnalysis          TrendAnalysis          `json:"trend_analysis"`
	SerpAnalysis           SerpAnalysis           `json:"serp_analysis"`
	ContentRecommendations ContentRecommendations `json:"content_recommendations"`
	AudienceInsights       AudienceInsights       `json:"audience_insights"`
	RiskAssessment         RiskAssessment         `json:"risk_assessment"`
	AIReasoning            Reasoning              `json:"ai_reasoning"`
	DataSources            []string               `json:"data_sources"`
	MissingData            []string               `json:"missing_data"`
	Methodology            Methodology            `json:"methodology"`
}

// KeywordInsight is one primary keyword proposed by the keyword pass.
type KeywordInsight struct {
	Keyword         string `json:"keyword"`
	SearchIntent    string `json:"search_intent,omitempty"`
	Difficulty      string `json:"difficulty,omitempty"`
	EstimatedVolume string `json:"estimated_volume,omitempty"`
	Validated       bool   `json:"validated"`
}

// KeywordAnalysis is sourced from the keyword pass plus real keyword metrics.
type KeywordAnalysis struct {
	PrimaryKeywords   []KeywordInsight `json:"primary_keywords"`
	LongTailKeywords  []string         `json:"long_tail_keywords"`
	QuestionKeywords  []string         `json:"question_keywords"`
	Metrics           []KeywordMetric  `json:"metrics"`
	ValidatedKeywords int              `json:"validated_keywords"`
}

// CompetitorInsight is one competitor profile from the competitor pass.
type CompetitorInsight struct {
	Domain     string   `json:"domain"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// CompetitorAnalysis is sourced from the competitor pass.
type CompetitorAnalysis struct {
	Competitors           []CompetitorInsight `json:"competitors"`
	ContentGaps           []string            `json:"content_gaps"`
	ExploitableGaps       []string            `json:"exploitable_gaps"`
	CompetitiveAdvantages []string            `json:"competitive_advantages"`
	PagesAnalyzed         int                 `json:"pages_analyzed"`
}

// TrendAnalysis is sourced from the strategy pass.
type TrendAnalysis struct {
	Direction   TrendDirection `json:"direction"`
	Seasonality string         `json:"seasonality,omitempty"`
	Momentum    string         `json:"momentum,omitempty"`
	Notes       []string       `json:"notes"`
}

// SerpAnalysis is sourced from the real SERP snapshot when one was obtained.
type SerpAnalysis struct {
	Available       bool         `json:"available"`
	Keyword         string       `json:"keyword,omitempty"`
	FeaturedSnippet bool         `json:"featured_snippet"`
	HasLocalPack    bool         `json:"has_local_pack"`
	TopResults      []SerpResult `json:"top_results"`
	TopDomains      []string     `json:"top_domains"`
}

// ContentRecommendations is sourced from the strategy pass.
type ContentRecommendations struct {
	Format          string   `json:"format,omitempty"`
	TargetWordCount int      `json:"target_word_count,omitempty"`
	Structure       []string `json:"structure"`
	Angles          []string `json:"angles"`
}

// AudienceInsights is sourced from the strategy pass.
type AudienceInsights struct {
	PrimaryAudience string   `json:"primary_audience,omitempty"`
	SearchIntent    string   `json:"search_intent,omitempty"`
	PainPoints      []string `json:"pain_points"`
}

// RiskAssessment is sourced from the strategy pass.
type RiskAssessment struct {
	Level       string   `json:"level,omitempty"`
	Risks       []string `json:"risks"`
	Mitigations []string `json:"mitigations"`
}

// ReasoningStep is one step of the reasoning narrative. FromAnalysis is true
// when the description came from the pass itself rather than a generic default.
type ReasoningStep struct {
	Phase        string `json:"phase"`
	Description  string `json:"description"`
	FromAnalysis bool   `json:"from_analysis"`
}

// Reasoning is the ordered narrative explaining how the bundle was reached.
type Reasoning struct {
	Steps       []ReasoningStep `json:"steps"`
	Assumptions []string        `json:"assumptions"`
	Limitations []string        `json:"limitations"`
}

// GroundedSteps counts steps whose description came from a pass.
func (r Reasoning) GroundedSteps() int {
	n := 0
	for _, s := range r.Steps {
		if s.FromAnalysis {
			n++
		}
	}
	return n
}

// Methodology describes how the bundle was produced.
type Methodology struct {
	Passes           int      `json:"passes"`
	SuccessfulPasses int      `json:"successful_passes"`
	RealDataSources  []string `json:"real_data_sources"`
	ValidationMethod string   `json:"validation_method"`
	DataSource       string   `json:"data_source"`
	Message          string   `json:"message"`
}
