// Package keyworddata fetches keyword metrics, SERP snapshots and related
// keywords from the data provider. Calls go through the response cache and a
// circuit breaker, and every failure is reported as ErrDataUnavailable.
package keyworddata

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/time/rate"

	"github.com/sells-group/evidence-cli/internal/cache"
	"github.com/sells-group/evidence-cli/internal/metrics"
	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/resilience"
	"github.com/sells-group/evidence-cli/pkg/dataforseo"
)

// Fetcher is the contract the pipeline uses for real keyword data.
type Fetcher interface {
	FetchKeywordMetrics(ctx context.Context, keywords []string, locationCode int, languageCode string) ([]model.KeywordMetric, error)
	FetchSerp(ctx context.Context, keyword string, locationCode int, languageCode, device string) (*model.SerpSnapshot, error)
	FetchRelatedKeywords(ctx context.Context, keyword string, locationCode int, languageCode string, limit int) ([]model.KeywordMetric, error)
}

// Config tunes batching, waits and cache lifetimes.
type Config struct {
	BatchSize   int
	BatchDelay  time.Duration
	KeywordWait time.Duration
	SerpWait    time.Duration
	SerpDepth   int
	KeywordTTL  time.Duration
	SerpTTL     time.Duration
	RelatedTTL  time.Duration
}

// DefaultConfig returns the provider-friendly defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:   100,
		BatchDelay:  time.Second,
		KeywordWait: dataforseo.DefaultKeywordWait,
		SerpWait:    dataforseo.DefaultSerpWait,
		SerpDepth:   20,
		KeywordTTL:  cache.KeywordDataTTL,
		SerpTTL:     cache.SerpTTL,
		RelatedTTL:  cache.RelatedKeywordsTTL,
	}
}

// Option configures a Client.
type Option func(*Client)

// WithSleeper replaces the wait between submit and fetch.
func WithSleeper(s dataforseo.Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithClock sets the time source used for RetrievedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithBreaker replaces the default provider circuit breaker.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// Client implements Fetcher on top of the DataForSEO task API.
type Client struct {
	api     dataforseo.Client
	cache   *cache.Cache
	breaker *resilience.CircuitBreaker
	cfg     Config
	sleep   dataforseo.Sleeper
	now     func() time.Time
}

var _ Fetcher = (*Client)(nil)

// New creates a Client. A nil cache disables caching.
func New(api dataforseo.Client, c *cache.Cache, cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.KeywordTTL <= 0 {
		cfg.KeywordTTL = def.KeywordTTL
	}
	if cfg.SerpTTL <= 0 {
		cfg.SerpTTL = def.SerpTTL
	}
	if cfg.RelatedTTL <= 0 {
		cfg.RelatedTTL = def.RelatedTTL
	}

	cl := &Client{
		api:   api,
		cache: c,
		cfg:   cfg,
		sleep: dataforseo.SleepContext,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(cl)
	}
	if cl.breaker == nil {
		bc := resilience.DefaultCircuitBreakerConfig()
		bc.Name = "dataforseo"
		bc.ShouldTrip = tripsBreaker
		cl.breaker = resilience.NewCircuitBreaker(bc)
	}
	return cl
}

// FetchKeywordMetrics returns metrics for keywords, chunked into batches of
// at most BatchSize with BatchDelay between batches. A failed batch is
// logged and skipped; the error is ErrDataUnavailable only when every batch
// failed.
func (c *Client) FetchKeywordMetrics(ctx context.Context, keywords []string, locationCode int, languageCode string) ([]model.KeywordMetric, error) {
	keywords = dedupe(keywords)
	if len(keywords) == 0 {
		return nil, nil
	}

	batches := chunk(keywords, c.cfg.BatchSize)
	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.cfg.BatchDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(c.cfg.BatchDelay), 1)
	}

	var (
		out      []model.KeywordMetric
		seen     = make(map[string]struct{}, len(keywords))
		failed   int
		firstErr error
	)
	for i, batch := range batches {
		if err := limiter.Wait(ctx); err != nil {
			return out, unavailable("keyword metrics", err)
		}

		params := cache.Params{
			"keywords":      batch,
			"location_code": locationCode,
			"language_code": languageCode,
		}
		metricsBatch, err := cachedFetch(ctx, c.cache, cache.KindKeywordData, params, c.cfg.KeywordTTL, func(ctx context.Context) ([]model.KeywordMetric, error) {
			return c.keywordBatch(ctx, batch, locationCode, languageCode)
		})
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			zap.L().Warn("keyworddata: keyword batch failed, skipping",
				zap.Int("batch", i+1),
				zap.Int("batches", len(batches)),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		for _, m := range metricsBatch {
			k := foldKey(m.Keyword)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, m)
		}
	}

	if failed == len(batches) {
		return nil, unavailable("keyword metrics", firstErr)
	}
	return out, nil
}

func (c *Client) keywordBatch(ctx context.Context, batch []string, locationCode int, languageCode string) ([]model.KeywordMetric, error) {
	req := dataforseo.KeywordTaskRequest{
		Keywords:     batch,
		LocationCode: locationCode,
		LanguageCode: languageCode,
	}
	res, err := awaitTask(ctx, c, "keyword_metrics", c.cfg.KeywordWait,
		func(ctx context.Context) (string, error) { return c.api.SubmitKeywordTask(ctx, req) },
		func(ctx context.Context, id string) ([]dataforseo.KeywordResult, error) {
			return c.api.GetKeywordTaskResult(ctx, id)
		},
	)
	if err != nil {
		return nil, err
	}
	return toKeywordMetrics(res, c.now()), nil
}

// FetchSerp returns the organic results page for keyword.
func (c *Client) FetchSerp(ctx context.Context, keyword string, locationCode int, languageCode, device string) (*model.SerpSnapshot, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, unavailable("serp", dataforseo.ErrEmptyResult)
	}

	params := cache.Params{
		"keyword":       keyword,
		"location_code": locationCode,
		"language_code": languageCode,
		"device":        device,
	}
	snap, err := cachedFetch(ctx, c.cache, cache.KindSerp, params, c.cfg.SerpTTL, func(ctx context.Context) (*model.SerpSnapshot, error) {
		req := dataforseo.SerpTaskRequest{
			Keyword:      keyword,
			LocationCode: locationCode,
			LanguageCode: languageCode,
			Device:       device,
			Depth:        c.cfg.SerpDepth,
		}
		res, err := awaitTask(ctx, c, "serp", c.cfg.SerpWait,
			func(ctx context.Context) (string, error) { return c.api.SubmitSerpTask(ctx, req) },
			func(ctx context.Context, id string) (*dataforseo.SerpResult, error) {
				return c.api.GetSerpTaskResult(ctx, id)
			},
		)
		if err != nil {
			return nil, err
		}
		return toSerpSnapshot(res, req, c.now()), nil
	})
	if err != nil {
		return nil, unavailable("serp", err)
	}
	return snap, nil
}

// FetchRelatedKeywords returns up to limit keywords related to keyword. A
// limit of zero or less returns everything the provider sent.
func (c *Client) FetchRelatedKeywords(ctx context.Context, keyword string, locationCode int, languageCode string, limit int) ([]model.KeywordMetric, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, unavailable("related keywords", dataforseo.ErrEmptyResult)
	}

	params := cache.Params{
		"keyword":       keyword,
		"location_code": locationCode,
		"language_code": languageCode,
		"limit":         limit,
	}
	related, err := cachedFetch(ctx, c.cache, cache.KindRelatedKeywords, params, c.cfg.RelatedTTL, func(ctx context.Context) ([]model.KeywordMetric, error) {
		req := dataforseo.RelatedTaskRequest{
			Keywords:     []string{keyword},
			LocationCode: locationCode,
			LanguageCode: languageCode,
		}
		res, err := awaitTask(ctx, c, "related_keywords", c.cfg.KeywordWait,
			func(ctx context.Context) (string, error) { return c.api.SubmitRelatedTask(ctx, req) },
			func(ctx context.Context, id string) ([]dataforseo.KeywordResult, error) {
				return c.api.GetRelatedTaskResult(ctx, id)
			},
		)
		if err != nil {
			return nil, err
		}
		return limitMetrics(dedupeMetrics(toKeywordMetrics(res, c.now())), limit), nil
	})
	if err != nil {
		return nil, unavailable("related keywords", err)
	}
	return related, nil
}

// cachedFetch routes fetch through the response cache when one is configured.
func cachedFetch[T any](ctx context.Context, c *cache.Cache, kind cache.Kind, params cache.Params, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return fetch(ctx)
	}
	return cache.GetOrFetch(ctx, c, kind, params, ttl, fetch)
}

// awaitTask runs one submit/wait/fetch cycle through the circuit breaker and
// records the outcome.
func awaitTask[T any](ctx context.Context, c *Client, op string, wait time.Duration,
	submit func(ctx context.Context) (string, error),
	fetch func(ctx context.Context, id string) (T, error),
) (T, error) {
	res, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (T, error) {
		t, err := dataforseo.Await(ctx, wait, c.sleep, submit, fetch)
		if err != nil {
			var zero T
			zap.L().Debug("keyworddata: provider task failed",
				zap.String("operation", op),
				zap.String("task_id", t.ID),
				zap.String("state", string(t.State)),
				zap.Error(err),
			)
			return zero, err
		}
		return t.Result, nil
	})
	metrics.ProviderRequests.WithLabelValues(op, outcome(err)).Inc()
	return res, err
}

var fold = cases.Fold()

func foldKey(s string) string {
	return fold.String(strings.TrimSpace(s))
}

// dedupe drops blank and case-insensitively repeated keywords, keeping the
// first spelling.
func dedupe(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		fk := fold.String(k)
		if _, ok := seen[fk]; ok {
			continue
		}
		seen[fk] = struct{}{}
		out = append(out, k)
	}
	return out
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
