package reasoning

import (
	"fmt"
	"strings"

	"github.com/sells-group/evidence-cli/internal/model"
)

const systemPrompt = `You are a senior SEO strategist. You analyze a content topic using the evidence provided and your own expertise.
Respond with a single JSON object and nothing else: no prose, no markdown fences.
Treat the evidence section as ground truth. When evidence is missing, estimate, and say so in a "limitations" or "reasoning" field.`

// Prompt limits keep the user message compact.
const (
	maxListItems    = 10
	maxMetricRows   = 20
	maxSerpResults  = 10
	maxPromptTopics = 5
)

// PassContext is everything a pass may embed in its prompt.
type PassContext struct {
	Topic          string
	Keywords       []string
	CompetitorURLs []string
	FreeData       model.FreeDataBag
	KeywordMetrics []model.KeywordMetric
	Serp           *model.SerpSnapshot
}

// HasRealData reports whether any real evidence is available.
func (pc PassContext) HasRealData() bool {
	return !pc.FreeData.Empty() || len(pc.KeywordMetrics) > 0 || pc.Serp != nil
}

func buildPrompt(t model.PassType, pc PassContext) string {
	var task string
	switch t {
	case model.PassKeyword:
		task = keywordTask
	case model.PassCompetitor:
		task = competitorTask
	default:
		task = strategyTask
	}
	return fmt.Sprintf("Topic: %s\nTarget keywords: %s\n\n## Evidence\n%s\n## Task\n%s",
		pc.Topic, joinOrNone(pc.Keywords), evidenceSection(pc), task)
}

const keywordTask = `Perform keyword research for the topic. Return JSON with this shape:
{
  "primary_keywords": [{"keyword": "", "search_intent": "informational|commercial|transactional|navigational", "difficulty": "low|medium|high", "estimated_volume": ""}],
  "long_tail_keywords": [""],
  "question_keywords": [""],
  "seo_potential": "low|medium|high",
  "competition_level": "low|medium|high",
  "key_highlights": [""],
  "reasoning": "how the evidence supports these conclusions"
}
List at least five primary keywords when the topic supports it. Prefer keywords that appear in the autocomplete or related-search evidence.`

const competitorTask = `Analyze the competitive landscape for the topic. Return JSON with this shape:
{
  "competitors": [{"domain": "", "strengths": [""], "weaknesses": [""]}],
  "content_gaps": [""],
  "exploitable_gaps": [""],
  "competitive_advantages": [""],
  "reasoning": "how the evidence supports these conclusions"
}
Base competitor entries on the scraped pages and SERP results when present.`

const strategyTask = `Assess trend and content strategy for the topic. Return JSON with this shape:
{
  "trend": {"direction": "rising|stable|declining", "seasonality": "", "momentum": "", "notes": "", "reasoning": ""},
  "content_recommendations": {"format": "", "word_count": 0, "structure": [""], "angles": [""]},
  "audience_insights": {"primary_audience": "", "search_intent": "", "pain_points": [""]},
  "risk_assessment": {"level": "low|medium|high", "risks": [""], "mitigations": [""]},
  "differentiation_hook": "",
  "assumptions": [""],
  "limitations": [""],
  "reasoning": "how the strategy follows from the evidence"
}`

func evidenceSection(pc PassContext) string {
	if !pc.HasRealData() {
		return "No real data was available. Base the analysis on your own knowledge and list that as a limitation.\n"
	}

	var b strings.Builder
	fd := pc.FreeData

	if len(fd.Autocomplete) > 0 {
		fmt.Fprintf(&b, "Autocomplete suggestions: %s\n", strings.Join(head(fd.Autocomplete, maxListItems), "; "))
	}
	if len(fd.RelatedSearches) > 0 {
		fmt.Fprintf(&b, "Related searches: %s\n", strings.Join(head(fd.RelatedSearches, maxListItems), "; "))
	}
	if len(fd.Competitors) > 0 {
		b.WriteString("Competitor pages:\n")
		for _, c := range fd.Competitors {
			fmt.Fprintf(&b, "- %s %q: %d words, %d H1, %d H2, structured data: %t",
				c.Domain, c.Title, c.WordCount, c.H1Count, c.H2Count, c.HasSchema)
			if len(c.Topics) > 0 {
				fmt.Fprintf(&b, ", subtopics: %s", strings.Join(head(c.Topics, maxPromptTopics), "; "))
			}
			b.WriteString("\n")
		}
	}
	if len(pc.KeywordMetrics) > 0 {
		b.WriteString("Keyword metrics (monthly volume, competition, CPC USD):\n")
		for _, m := range head(pc.KeywordMetrics, maxMetricRows) {
			comp := string(m.Competition)
			if comp == "" {
				comp = "unknown"
			}
			fmt.Fprintf(&b, "- %s: %d, %s, %.2f\n", m.Keyword, m.SearchVolume, comp, m.CPC)
		}
	}
	if s := pc.Serp; s != nil {
		fmt.Fprintf(&b, "Search results for %q (featured snippet: %t, local pack: %t):\n",
			s.Keyword, s.FeaturedSnippet, len(s.LocalPack) > 0)
		for _, r := range head(s.Results, maxSerpResults) {
			fmt.Fprintf(&b, "%d. %s %q\n", r.Rank, r.Domain, r.Title)
		}
	}
	return b.String()
}

func head[T any](in []T, n int) []T {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func joinOrNone(in []string) string {
	if len(in) == 0 {
		return "(none provided)"
	}
	return strings.Join(in, ", ")
}
