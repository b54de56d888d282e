package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/cache"
	"github.com/sells-group/evidence-cli/internal/config"
	"github.com/sells-group/evidence-cli/internal/freedata"
	"github.com/sells-group/evidence-cli/internal/keyworddata"
	"github.com/sells-group/evidence-cli/internal/pipeline"
	"github.com/sells-group/evidence-cli/internal/reasoning"
	"github.com/sells-group/evidence-cli/internal/resilience"
	"github.com/sells-group/evidence-cli/internal/scrape"
	"github.com/sells-group/evidence-cli/internal/store"
	anthropicpkg "github.com/sells-group/evidence-cli/pkg/anthropic"
	"github.com/sells-group/evidence-cli/pkg/dataforseo"
	"github.com/sells-group/evidence-cli/pkg/suggest"
)

// pipelineEnv holds the initialized store, cache and engine used by the
// run and serve commands.
type pipelineEnv struct {
	Store  store.Store
	Cache  *cache.Cache
	Engine *pipeline.Engine
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Cache != nil {
		pe.Cache.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates config for mode, opens and migrates the store, and
// builds the Engine. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	c := cache.New(cache.WithSweepInterval(cfg.Cache.SweepInterval))
	engine := buildEngine(cfg, c, st, anthropicpkg.NewClient(cfg.Anthropic.Key))
	return &pipelineEnv{Store: st, Cache: c, Engine: engine}, nil
}

func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "sqlite":
		dsn := sc.DatabaseURL
		if dsn == "" {
			dsn = "evidence.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, &store.PoolConfig{MaxConns: sc.MaxConns, MinConns: sc.MinConns})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}

// buildEngine wires every component from config. The keyword data provider
// is optional: without credentials the engine runs on free data only.
func buildEngine(c *config.Config, rc *cache.Cache, st store.Store, ai anthropicpkg.Client) *pipeline.Engine {
	scraper := scrape.NewHTTPScraper(
		scrape.WithTimeout(c.FreeData.Timeout),
		scrape.WithUserAgent(c.FreeData.UserAgent),
	)
	gatherer := freedata.New(
		suggest.NewClient(suggest.WithBaseURL(c.Suggest.BaseURL)),
		scraper,
		freedata.Config{
			Timeout:           c.FreeData.Timeout,
			MaxCompetitors:    c.FreeData.MaxCompetitors,
			MaxKeywordLookups: c.FreeData.MaxKeywordLookups,
			Language:          c.Pipeline.LanguageCode,
		},
	)

	var fetcher keyworddata.Fetcher
	if c.DataForSEO.Configured() {
		api := dataforseo.NewClient(c.DataForSEO.Login, c.DataForSEO.Password, dataforseo.WithBaseURL(c.DataForSEO.BaseURL))
		fetcher = keyworddata.New(api, rc, keywordConfig(c))
		zap.L().Info("keyword data provider enabled")
	} else {
		zap.L().Debug("EVIDENCE_DATAFORSEO_LOGIN not set, running on free data only")
	}

	var reasoner pipeline.Reasoner
	if ai != nil {
		provider := reasoning.NewAnthropicProvider(ai, reasoning.AnthropicConfig{
			Name:        c.Reasoning.ProviderName,
			Model:       c.Anthropic.Model,
			MaxTokens:   c.Anthropic.MaxTokens,
			Temperature: c.Anthropic.Temperature,
		})
		reasoner = reasoning.NewOrchestrator(provider, c.Reasoning.PassTimeout)
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.LocationCode = c.Pipeline.LocationCode
	pcfg.LanguageCode = c.Pipeline.LanguageCode
	pcfg.Device = c.Pipeline.Device
	pcfg.RelatedLimit = c.Pipeline.RelatedLimit
	pcfg.SaveRetry = resilience.DefaultRetryConfig()
	if c.Pipeline.SaveAttempts > 0 {
		pcfg.SaveRetry.MaxAttempts = c.Pipeline.SaveAttempts
	}

	return pipeline.New(pcfg, gatherer, fetcher, reasoner, st)
}

func keywordConfig(c *config.Config) keyworddata.Config {
	kc := keyworddata.DefaultConfig()
	setInt(&kc.BatchSize, c.DataForSEO.BatchSize)
	setInt(&kc.SerpDepth, c.DataForSEO.SerpDepth)
	setDuration(&kc.BatchDelay, c.DataForSEO.BatchDelay)
	setDuration(&kc.KeywordWait, c.DataForSEO.KeywordWait)
	setDuration(&kc.SerpWait, c.DataForSEO.SerpWait)
	setDuration(&kc.KeywordTTL, c.Cache.KeywordTTL)
	setDuration(&kc.SerpTTL, c.Cache.SerpTTL)
	setDuration(&kc.RelatedTTL, c.Cache.RelatedTTL)
	return kc
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}
