package model

// Provenance names recorded by the free-data gatherer.
const (
	SourceAutocomplete    = "Google Autocomplete"
	SourceCompetitorPages = "Competitor Page Analysis"
	SourceRelatedSearches = "Google Related Searches"
)

// CompetitorPageSummary is the lightweight on-page profile of a competitor URL.
type CompetitorPageSummary struct {
	URL             string   `json:"url"`
	Domain          string   `json:"domain"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	H1Count         int      `json:"h1_count"`
	H2Count         int      `json:"h2_count"`
	WordCount       int      `json:"word_count"`
	HasSchema       bool     `json:"has_schema"`
	Topics          []string `json:"topics,omitempty"`
}

// FreeDataBag collects the best-effort, low-cost signals gathered for a topic.
// Sources lists only the sources that actually returned data.
type FreeDataBag struct {
	Autocomplete    []string                `json:"autocomplete"`
	RelatedSearches []string                `json:"related_searches"`
	Competitors     []CompetitorPageSummary `json:"competitors"`
	Sources         []string                `json:"sources"`
}

// Empty reports whether no free source returned anything.
func (b FreeDataBag) Empty() bool {
	return len(b.Autocomplete) == 0 && len(b.RelatedSearches) == 0 && len(b.Competitors) == 0
}
