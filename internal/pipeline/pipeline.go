// Package pipeline runs one evidence request end to end: free data and real
// keyword data in parallel, then reasoning passes, synthesis and scoring.
package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/evidence-cli/internal/evidence"
	"github.com/sells-group/evidence-cli/internal/keyworddata"
	"github.com/sells-group/evidence-cli/internal/metrics"
	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/reasoning"
	"github.com/sells-group/evidence-cli/internal/resilience"
	"github.com/sells-group/evidence-cli/internal/store"
)

// Request is one content-generation evidence request.
type Request struct {
	ContentID      string   `json:"content_id,omitempty"`
	Topic          string   `json:"topic"`
	Keywords       []string `json:"keywords,omitempty"`
	CompetitorURLs []string `json:"competitor_urls,omitempty"`
}

// ErrTopicRequired is returned by Validate for a blank topic.
var ErrTopicRequired = eris.New("pipeline: topic is required")

// Validate checks the request before it reaches the engine.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrTopicRequired
	}
	return nil
}

// Gatherer collects free, best-effort signals for a topic.
type Gatherer interface {
	Gather(ctx context.Context, topic string, keywords, competitorURLs []string) model.FreeDataBag
}

// Reasoner runs the independent analysis passes.
type Reasoner interface {
	RunPasses(ctx context.Context, pc reasoning.PassContext) []model.AnalysisPass
	ProviderName() string
}

// Config holds the provider context sent with every real-data request.
type Config struct {
	LocationCode int
	LanguageCode string
	Device       string
	// RelatedLimit caps related-keyword metrics for the lead keyword. Zero disables the lookup.
	RelatedLimit int
	SaveRetry    resilience.RetryConfig
}

// DefaultConfig returns US/English desktop defaults.
func DefaultConfig() Config {
	return Config{
		LocationCode: 2840,
		LanguageCode: "en",
		Device:       "desktop",
		RelatedLimit: 10,
		SaveRetry:    resilience.DefaultRetryConfig(),
	}
}

// Engine wires the evidence components together. data and st may be nil.
type Engine struct {
	cfg      Config
	free     Gatherer
	data     keyworddata.Fetcher
	reasoner Reasoner
	store    store.Store
}

// New creates an Engine. A nil reasoner is replaced by one whose passes all
// fail, so every bundle still reports three passes.
func New(cfg Config, free Gatherer, data keyworddata.Fetcher, reasoner Reasoner, st store.Store) *Engine {
	if reasoner == nil {
		reasoner = reasoning.NewOrchestrator(nil, 0)
	}
	return &Engine{cfg: cfg, free: free, data: data, reasoner: reasoner, store: st}
}

// realData is what the paid provider returned for a request.
type realData struct {
	metrics []model.KeywordMetric
	serp    *model.SerpSnapshot
	status  evidence.ProviderStatus
}

// Run produces the scored evidence bundle for req. It never fails: every
// upstream failure degrades the bundle instead. The bundle is persisted
// when req.ContentID is set.
func (e *Engine) Run(ctx context.Context, req Request) (bundle *model.EvidenceBundle) {
	start := time.Now()
	keywords := requestKeywords(req)
	lead := leadKeywords(req)
	log := zap.L().With(zap.String("topic", req.Topic), zap.String("content_id", req.ContentID))

	var (
		free model.FreeDataBag
		paid = realData{status: e.initialStatus(lead)}
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: recovered from panic", zap.Any("panic", r))
			bundle = e.fallback(req.Topic, paid.status)
		}
	}()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer absorbPanic("free_data")
		if e.free != nil {
			free = e.free.Gather(gCtx, req.Topic, keywords, req.CompetitorURLs)
		}
		return nil
	})
	g.Go(func() error {
		defer absorbPanic("real_data")
		paid = e.fetchRealData(gCtx, lead)
		return nil
	})
	_ = g.Wait()

	passes := e.reasoner.RunPasses(ctx, reasoning.PassContext{
		Topic:          req.Topic,
		Keywords:       lead,
		CompetitorURLs: req.CompetitorURLs,
		FreeData:       free,
		KeywordMetrics: paid.metrics,
		Serp:           paid.serp,
	})

	bundle = evidence.Build(passes, free,
		evidence.WithKeywordMetrics(paid.metrics),
		evidence.WithSerp(paid.serp),
		evidence.WithProviderStatus(paid.status),
		evidence.WithReasoningProvider(e.reasoner.ProviderName()),
	)
	metrics.ConfidenceScore.Observe(float64(bundle.OverallConfidence))

	log.Info("pipeline: evidence ready",
		zap.Int("confidence", bundle.OverallConfidence),
		zap.Int("successful_passes", bundle.Methodology.SuccessfulPasses),
		zap.String("data_source", bundle.Methodology.DataSource),
		zap.Duration("elapsed", time.Since(start)),
	)

	if req.ContentID != "" {
		e.Save(ctx, req.ContentID, bundle)
	}
	return bundle
}

// initialStatus is the provider status a run reports if it never hears back
// from the provider.
func (e *Engine) initialStatus(lead []string) evidence.ProviderStatus {
	if e.data == nil || len(lead) == 0 {
		return evidence.ProviderNotConfigured
	}
	return evidence.ProviderUnavailable
}

// fallback is the bundle for a run that panicked: three failed passes and no
// gathered data.
func (e *Engine) fallback(topic string, status evidence.ProviderStatus) *model.EvidenceBundle {
	passes := reasoning.NewOrchestrator(nil, 0).RunPasses(context.Background(), reasoning.PassContext{Topic: topic})
	return evidence.Build(passes, model.FreeDataBag{},
		evidence.WithProviderStatus(status),
		evidence.WithReasoningProvider(safeProviderName(e.reasoner)),
	)
}

// safeProviderName returns r's name, or the generic name if r panics.
func safeProviderName(r Reasoner) (name string) {
	name = "AI"
	defer func() { _ = recover() }()
	if r != nil {
		name = r.ProviderName()
	}
	return name
}

// fetchRealData asks the paid provider for keyword metrics, related keyword
// metrics and the lead SERP in parallel. Any failure is absorbed.
func (e *Engine) fetchRealData(ctx context.Context, keywords []string) realData {
	if e.data == nil || len(keywords) == 0 {
		return realData{status: evidence.ProviderNotConfigured}
	}
	lead := keywords[0]

	var (
		mu       sync.Mutex
		calls    int
		failures int
		out      realData
		related  []model.KeywordMetric
	)
	record := func(op string, err error) bool {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if err != nil {
			failures++
			zap.L().Warn("pipeline: real data unavailable", zap.String("operation", op), zap.Error(err))
			return false
		}
		return true
	}

	var g errgroup.Group
	g.Go(func() error {
		m, err := e.data.FetchKeywordMetrics(ctx, keywords, e.cfg.LocationCode, e.cfg.LanguageCode)
		if record("keyword_metrics", err) {
			out.metrics = m
		}
		return nil
	})
	g.Go(func() error {
		s, err := e.data.FetchSerp(ctx, lead, e.cfg.LocationCode, e.cfg.LanguageCode, e.cfg.Device)
		if record("serp", err) {
			out.serp = s
		}
		return nil
	})
	if e.cfg.RelatedLimit > 0 {
		g.Go(func() error {
			r, err := e.data.FetchRelatedKeywords(ctx, lead, e.cfg.LocationCode, e.cfg.LanguageCode, e.cfg.RelatedLimit)
			if record("related_keywords", err) {
				related = r
			}
			return nil
		})
	}
	_ = g.Wait()

	out.metrics = mergeMetrics(out.metrics, related)
	out.status = evidence.ProviderOK
	if failures == calls {
		out.status = evidence.ProviderUnavailable
	}
	return out
}

// Get returns the stored bundle for contentID, or nil when none exists.
func (e *Engine) Get(ctx context.Context, contentID string) (*model.EvidenceBundle, error) {
	if e.store == nil {
		return nil, eris.New("pipeline: no evidence store configured")
	}
	b, err := e.store.GetEvidence(ctx, contentID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: get evidence")
	}
	return b, nil
}

// Save persists bundle and reports whether it was stored. Transient store
// errors are retried; every failure is logged and swallowed.
func (e *Engine) Save(ctx context.Context, contentID string, bundle *model.EvidenceBundle) bool {
	if e.store == nil {
		zap.L().Debug("pipeline: no store configured, skipping save", zap.String("content_id", contentID))
		return false
	}
	cfg := e.cfg.SaveRetry
	cfg.OnRetry = resilience.RetryLogger("pipeline", "save_evidence")

	err := resilience.Do(ctx, cfg, func(ctx context.Context) error {
		return e.store.SaveEvidence(ctx, contentID, bundle)
	})
	if err != nil {
		zap.L().Warn("pipeline: save evidence failed", zap.String("content_id", contentID), zap.Error(err))
		return false
	}
	return true
}

// absorbPanic keeps a panicking fan-out branch from taking the process down;
// the branch's output stays empty.
func absorbPanic(branch string) {
	if r := recover(); r != nil {
		zap.L().Error("pipeline: recovered from panic", zap.String("branch", branch), zap.Any("panic", r))
	}
}

// requestKeywords returns the trimmed, non-blank keywords the caller supplied.
func requestKeywords(req Request) []string {
	var out []string
	for _, k := range req.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// leadKeywords is requestKeywords falling back to the topic. Only the paid
// provider and the prompts use it; related searches need real keywords.
func leadKeywords(req Request) []string {
	out := requestKeywords(req)
	if len(out) == 0 {
		if t := strings.TrimSpace(req.Topic); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// mergeMetrics appends related metrics whose keyword is not already present.
func mergeMetrics(primary, related []model.KeywordMetric) []model.KeywordMetric {
	if len(related) == 0 {
		return primary
	}
	seen := make(map[string]struct{}, len(primary))
	out := make([]model.KeywordMetric, 0, len(primary)+len(related))
	for _, m := range primary {
		seen[strings.ToLower(m.Keyword)] = struct{}{}
		out = append(out, m)
	}
	for _, m := range related {
		k := strings.ToLower(m.Keyword)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}
