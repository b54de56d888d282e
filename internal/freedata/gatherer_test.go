package freedata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/scrape"
	"github.com/sells-group/evidence-cli/pkg/suggest"
)

type mockSuggest struct {
	mock.Mock
}

func (m *mockSuggest) Suggest(ctx context.Context, query, language string) ([]string, error) {
	args := m.Called(ctx, query, language)
	res, _ := args.Get(0).([]string)
	return res, args.Error(1)
}

// fakeScraper returns a summary for every URL not listed in fail.
type fakeScraper struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (*model.CompetitorPageSummary, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if f.fail[url] {
		return nil, errors.New("blocked")
	}
	return &model.CompetitorPageSummary{URL: url, Domain: scrape.Domain(url), H1Count: 1}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = 200 * time.Millisecond
	return cfg
}

func eight(prefix string) []string {
	out := make([]string, 8)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i)
	}
	return out
}

func TestGather_AllSources(t *testing.T) {
	sg := &mockSuggest{}
	sg.On("Suggest", mock.Anything, "best running shoes", "en").Return(eight("best running shoes"), nil)
	sg.On("Suggest", mock.Anything, "running shoes", "en").Return([]string{"running shoes for women", "running shoes sale"}, nil)
	sg.On("Suggest", mock.Anything, "trail shoes", "en").Return([]string{"Running Shoes Sale", "trail shoes waterproof"}, nil)

	sc := &fakeScraper{}
	g := New(sg, sc, testConfig())

	bag := g.Gather(context.Background(), "best running shoes",
		[]string{"running shoes", "trail shoes"},
		[]string{"https://a.example/x", "https://b.example/y"})

	assert.Len(t, bag.Autocomplete, 8)
	require.Len(t, bag.Competitors, 2)
	assert.Equal(t, "a.example", bag.Competitors[0].Domain)
	assert.Equal(t, "b.example", bag.Competitors[1].Domain)
	assert.Equal(t, []string{"running shoes for women", "running shoes sale", "trail shoes waterproof"}, bag.RelatedSearches)
	assert.Equal(t, []string{model.SourceAutocomplete, model.SourceCompetitorPages, model.SourceRelatedSearches}, bag.Sources)
	sg.AssertExpectations(t)
}

func TestGather_EverythingFails(t *testing.T) {
	sg := &mockSuggest{}
	sg.On("Suggest", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("429"))

	sc := &fakeScraper{fail: map[string]bool{"https://a.example": true}}
	g := New(sg, sc, testConfig())

	bag := g.Gather(context.Background(), "topic", []string{"k"}, []string{"https://a.example"})

	assert.True(t, bag.Empty())
	assert.NotNil(t, bag.Autocomplete)
	assert.NotNil(t, bag.RelatedSearches)
	assert.NotNil(t, bag.Competitors)
	assert.Empty(t, bag.Sources)
}

func TestGather_ProvenanceOnlyForSourcesWithData(t *testing.T) {
	sg := &mockSuggest{}
	sg.On("Suggest", mock.Anything, "topic", "en").Return([]string{}, nil)
	sg.On("Suggest", mock.Anything, "kw", "en").Return([]string{"kw ideas"}, nil)

	g := New(sg, &fakeScraper{}, testConfig())
	bag := g.Gather(context.Background(), "topic", []string{"kw"}, nil)

	assert.Empty(t, bag.Autocomplete)
	assert.Empty(t, bag.Competitors)
	assert.Equal(t, []string{model.SourceRelatedSearches}, bag.Sources)
}

func TestGather_CompetitorCapAndOrder(t *testing.T) {
	sc := &fakeScraper{fail: map[string]bool{"https://b.example": true}}
	g := New(nil, sc, testConfig())

	bag := g.Gather(context.Background(), "", nil, []string{
		"https://a.example", "https://b.example", "https://A.example", "https://c.example", "https://d.example", "https://e.example",
	})

	assert.Len(t, sc.calls, 3)
	require.Len(t, bag.Competitors, 2)
	assert.Equal(t, "a.example", bag.Competitors[0].Domain)
	assert.Equal(t, "c.example", bag.Competitors[1].Domain)
}

func TestGather_KeywordLookupCap(t *testing.T) {
	sg := &mockSuggest{}
	sg.On("Suggest", mock.Anything, mock.Anything, mock.Anything).Return([]string{"x"}, nil)

	g := New(sg, nil, testConfig())
	bag := g.Gather(context.Background(), "", []string{"k1", "k2", "k3", "k4", "k5"}, nil)

	sg.AssertNumberOfCalls(t, "Suggest", 3)
	assert.Equal(t, []string{"x"}, bag.RelatedSearches)
}

func TestGather_SlowSourceBoundedByTimeout(t *testing.T) {
	sg := &mockSuggest{}
	sg.On("Suggest", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	cfg := testConfig()
	cfg.Timeout = 30 * time.Millisecond
	g := New(sg, nil, cfg)

	start := time.Now()
	bag := g.Gather(context.Background(), "topic", []string{"k"}, nil)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, bag.Empty())
}

func TestGather_HTTP(t *testing.T) {
	suggestSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		_, _ = fmt.Fprintf(w, `[%q,[%q,%q]]`, q, q+" review", q+" guide")
	}))
	defer suggestSrv.Close()

	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/moved" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`<html><head><title>Shoes</title></head><body><h1>Shoes</h1><h2>Road</h2><p>one two three</p></body></html>`))
	}))
	defer pageSrv.Close()

	g := New(suggest.NewClient(suggest.WithBaseURL(suggestSrv.URL)), scrape.NewHTTPScraper(), testConfig())
	bag := g.Gather(context.Background(), "running shoes", []string{"trail shoes"}, []string{pageSrv.URL + "/", pageSrv.URL + "/moved"})

	assert.Equal(t, []string{"running shoes review", "running shoes guide"}, bag.Autocomplete)
	assert.Equal(t, []string{"trail shoes review", "trail shoes guide"}, bag.RelatedSearches)
	require.Len(t, bag.Competitors, 1)
	assert.Equal(t, "Shoes", bag.Competitors[0].Title)
	assert.Equal(t, []string{"Road"}, bag.Competitors[0].Topics)
	assert.Len(t, bag.Sources, 3)
}
