package keyworddata

import (
	"strings"
	"time"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/pkg/dataforseo"
)

func toCompetition(s string) model.Competition {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return model.CompetitionLow
	case "medium":
		return model.CompetitionMedium
	case "high":
		return model.CompetitionHigh
	default:
		return model.CompetitionUnknown
	}
}

func toKeywordMetrics(rows []dataforseo.KeywordResult, now time.Time) []model.KeywordMetric {
	out := make([]model.KeywordMetric, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Keyword) == "" {
			continue
		}
		m := model.KeywordMetric{
			Keyword:     r.Keyword,
			Competition: toCompetition(r.Competition),
			RetrievedAt: now,
		}
		if r.SearchVolume != nil {
			m.SearchVolume = *r.SearchVolume
		}
		if r.CompetitionIndex != nil {
			m.CompetitionIndex = *r.CompetitionIndex
		}
		if r.CPC != nil {
			m.CPC = *r.CPC
		}
		out = append(out, m)
	}
	return out
}

func dedupeMetrics(in []model.KeywordMetric) []model.KeywordMetric {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, m := range in {
		k := foldKey(m.Keyword)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}

func limitMetrics(in []model.KeywordMetric, limit int) []model.KeywordMetric {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

// toSerpSnapshot flattens the item list into organic results, a featured
// snippet flag and local-pack entries.
func toSerpSnapshot(res *dataforseo.SerpResult, req dataforseo.SerpTaskRequest, now time.Time) *model.SerpSnapshot {
	snap := &model.SerpSnapshot{
		Keyword:      req.Keyword,
		LocationCode: req.LocationCode,
		LanguageCode: req.LanguageCode,
		Device:       req.Device,
		Results:      []model.SerpResult{},
		RetrievedAt:  now,
	}
	if res.Keyword != "" {
		snap.Keyword = res.Keyword
	}

	for _, it := range res.Items {
		switch it.Type {
		case "organic":
			rank := it.RankGroup
			if rank == 0 {
				rank = len(snap.Results) + 1
			}
			snap.Results = append(snap.Results, model.SerpResult{
				Rank:        rank,
				Title:       it.Title,
				URL:         it.URL,
				Domain:      it.Domain,
				Description: it.Description,
			})
		case "featured_snippet":
			snap.FeaturedSnippet = true
		case "local_pack":
			e := model.LocalPackEntry{Title: it.Title, Domain: it.Domain}
			if it.Rating != nil {
				e.Rating = it.Rating.Value
			}
			snap.LocalPack = append(snap.LocalPack, e)
		}
	}
	return snap
}
