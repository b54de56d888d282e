package model

import "time"

// Competition is the advertiser competition bucket reported for a keyword.
type Competition string

const (
	CompetitionLow     Competition = "low"
	CompetitionMedium  Competition = "medium"
	CompetitionHigh    Competition = "high"
	CompetitionUnknown Competition = ""
)

// KeywordMetric holds search metrics for a single keyword as reported by the
// external data provider. Values are immutable once cached.
type KeywordMetric struct {
	Keyword          string      `json:"keyword"`
	SearchVolume     int64       `json:"search_volume"`
	Competition      Competition `json:"competition,omitempty"`
	CompetitionIndex float64     `json:"competition_index,omitempty"`
	CPC              float64     `json:"cpc"`
	RetrievedAt      time.Time   `json:"retrieved_at"`
}

// SerpResult is a single organic result on a search results page.
type SerpResult struct {
	Rank        int    `json:"rank"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	Description string `json:"description,omitempty"`
}

// LocalPackEntry is a map-pack listing shown for local-intent queries.
type LocalPackEntry struct {
	Title  string  `json:"title"`
	Domain string  `json:"domain,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// SerpSnapshot is the organic result set for a query in a location/language
// context. Values are immutable once cached.
type SerpSnapshot struct {
	Keyword         string           `json:"keyword"`
	LocationCode    int              `json:"location_code"`
	LanguageCode    string           `json:"language_code"`
	Device          string           `json:"device,omitempty"`
	Results         []SerpResult     `json:"results"`
	FeaturedSnippet bool             `json:"featured_snippet"`
	LocalPack       []LocalPackEntry `json:"local_pack,omitempty"`
	RetrievedAt     time.Time        `json:"retrieved_at"`
}
