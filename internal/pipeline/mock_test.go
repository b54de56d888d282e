package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/reasoning"
)

// --- Gatherer Mock ---

type mockGatherer struct {
	mock.Mock
}

func (m *mockGatherer) Gather(ctx context.Context, topic string, keywords, competitorURLs []string) model.FreeDataBag {
	args := m.Called(ctx, topic, keywords, competitorURLs)
	return args.Get(0).(model.FreeDataBag)
}

// --- Fetcher Mock ---

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchKeywordMetrics(ctx context.Context, keywords []string, locationCode int, languageCode string) ([]model.KeywordMetric, error) {
	args := m.Called(ctx, keywords, locationCode, languageCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.KeywordMetric), args.Error(1)
}

func (m *mockFetcher) FetchSerp(ctx context.Context, keyword string, locationCode int, languageCode, device string) (*model.SerpSnapshot, error) {
	args := m.Called(ctx, keyword, locationCode, languageCode, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SerpSnapshot), args.Error(1)
}

func (m *mockFetcher) FetchRelatedKeywords(ctx context.Context, keyword string, locationCode int, languageCode string, limit int) ([]model.KeywordMetric, error) {
	args := m.Called(ctx, keyword, locationCode, languageCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.KeywordMetric), args.Error(1)
}

// --- Reasoner Mock ---

type mockReasoner struct {
	mock.Mock
}

func (m *mockReasoner) RunPasses(ctx context.Context, pc reasoning.PassContext) []model.AnalysisPass {
	args := m.Called(ctx, pc)
	return args.Get(0).([]model.AnalysisPass)
}

func (m *mockReasoner) ProviderName() string {
	return m.Called().String(0)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveEvidence(ctx context.Context, contentID string, bundle *model.EvidenceBundle) error {
	return m.Called(ctx, contentID, bundle).Error(0)
}

func (m *mockStore) GetEvidence(ctx context.Context, contentID string) (*model.EvidenceBundle, error) {
	args := m.Called(ctx, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidenceBundle), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
