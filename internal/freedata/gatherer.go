// Package freedata gathers the best-effort, no-cost signals for a topic:
// autocomplete suggestions, competitor page profiles and related searches.
package freedata

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/resilience"
	"github.com/sells-group/evidence-cli/internal/scrape"
	"github.com/sells-group/evidence-cli/pkg/suggest"
)

// Source labels used for metrics and logs.
const (
	sourceAutocomplete = "autocomplete"
	sourceCompetitor   = "competitor_page"
	sourceRelated      = "related_searches"
)

// Config bounds the gatherer's work.
type Config struct {
	Timeout           time.Duration
	MaxCompetitors    int
	MaxKeywordLookups int
	Language          string
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		Timeout:           4 * time.Second,
		MaxCompetitors:    3,
		MaxKeywordLookups: 3,
		Language:          "en",
	}
}

// Gatherer runs the free-data sub-fetches.
type Gatherer struct {
	suggest suggest.Client
	scraper scrape.PageScraper
	cfg     Config
}

// New creates a Gatherer. Zero config values fall back to DefaultConfig.
func New(sc suggest.Client, ps scrape.PageScraper, cfg Config) *Gatherer {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxCompetitors <= 0 {
		cfg.MaxCompetitors = def.MaxCompetitors
	}
	if cfg.MaxKeywordLookups <= 0 {
		cfg.MaxKeywordLookups = def.MaxKeywordLookups
	}
	return &Gatherer{suggest: sc, scraper: ps, cfg: cfg}
}

// Gather runs the three sub-fetches concurrently, each under its own
// timeout. It never fails: a source that errors or times out contributes
// nothing and is left out of Sources.
func (g *Gatherer) Gather(ctx context.Context, topic string, keywords, competitorURLs []string) model.FreeDataBag {
	bag := model.FreeDataBag{
		Autocomplete:    []string{},
		RelatedSearches: []string{},
		Competitors:     []model.CompetitorPageSummary{},
		Sources:         []string{},
	}

	eg, gctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if s, ok := g.autocomplete(gctx, topic); ok {
			bag.Autocomplete = s
		}
		return nil
	})

	eg.Go(func() error {
		bag.Competitors = g.competitors(gctx, competitorURLs)
		return nil
	})

	eg.Go(func() error {
		bag.RelatedSearches = g.related(gctx, keywords)
		return nil
	})

	_ = eg.Wait()

	if len(bag.Autocomplete) > 0 {
		bag.Sources = append(bag.Sources, model.SourceAutocomplete)
	}
	if len(bag.Competitors) > 0 {
		bag.Sources = append(bag.Sources, model.SourceCompetitorPages)
	}
	if len(bag.RelatedSearches) > 0 {
		bag.Sources = append(bag.Sources, model.SourceRelatedSearches)
	}

	zap.L().Debug("freedata: gathered",
		zap.String("topic", topic),
		zap.Int("autocomplete", len(bag.Autocomplete)),
		zap.Int("competitors", len(bag.Competitors)),
		zap.Int("related", len(bag.RelatedSearches)),
	)
	return bag
}

func (g *Gatherer) autocomplete(ctx context.Context, topic string) ([]string, bool) {
	if g.suggest == nil || strings.TrimSpace(topic) == "" {
		return nil, false
	}
	s, ok := resilience.BestEffort(ctx, sourceAutocomplete, g.cfg.Timeout, func(ctx context.Context) ([]string, error) {
		return g.suggest.Suggest(ctx, topic, g.cfg.Language)
	})
	if !ok || len(s) == 0 {
		return nil, false
	}
	return uniqueFold(s), true
}

// competitors scrapes up to MaxCompetitors URLs in parallel, keeping the
// caller's order for the pages that succeeded.
func (g *Gatherer) competitors(ctx context.Context, urls []string) []model.CompetitorPageSummary {
	out := []model.CompetitorPageSummary{}
	if g.scraper == nil {
		return out
	}
	urls = uniqueFold(urls)
	if len(urls) > g.cfg.MaxCompetitors {
		urls = urls[:g.cfg.MaxCompetitors]
	}

	results := make([]*model.CompetitorPageSummary, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, ok := resilience.BestEffort(ctx, sourceCompetitor, g.cfg.Timeout, func(ctx context.Context) (*model.CompetitorPageSummary, error) {
				return g.scraper.Scrape(ctx, u)
			})
			if ok && page != nil {
				results[i] = page
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// related merges the suggestions for up to MaxKeywordLookups keywords.
func (g *Gatherer) related(ctx context.Context, keywords []string) []string {
	if g.suggest == nil {
		return []string{}
	}
	keywords = uniqueFold(keywords)
	if len(keywords) > g.cfg.MaxKeywordLookups {
		keywords = keywords[:g.cfg.MaxKeywordLookups]
	}

	lists := make([][]string, len(keywords))
	var wg sync.WaitGroup
	for i, kw := range keywords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, ok := resilience.BestEffort(ctx, sourceRelated, g.cfg.Timeout, func(ctx context.Context) ([]string, error) {
				return g.suggest.Suggest(ctx, kw, g.cfg.Language)
			})
			if ok {
				lists[i] = s
			}
		}()
	}
	wg.Wait()

	var merged []string
	for _, l := range lists {
		merged = append(merged, l...)
	}
	return uniqueFold(merged)
}

// uniqueFold trims, drops blanks and removes case-insensitive duplicates
// while keeping first-seen order.
func uniqueFold(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
