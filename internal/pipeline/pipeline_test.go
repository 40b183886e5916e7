package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/budget"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/extract"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/scrape"
	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/store"
)

type memStore struct {
	mu        sync.Mutex
	snapshots []model.AumSnapshot
	scrapes   []model.ScrapeLog
	usage     []model.UsageDay
	companies []model.Company
}

func (m *memStore) CreateCompany(_ context.Context, c model.Company) (*model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New().String()
	m.companies = append(m.companies, c)
	return &c, nil
}

func (m *memStore) GetCompany(_ context.Context, id string) (*model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListCompanies(context.Context) ([]model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Company(nil), m.companies...), nil
}

func (m *memStore) SaveSnapshot(_ context.Context, snap model.AumSnapshot) (*model.AumSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap.ID = uuid.New().String()
	snap.CreatedAt = time.Now().UTC()
	m.snapshots = append(m.snapshots, snap)
	return &snap, nil
}

func (m *memStore) ListSnapshots(context.Context, string, int) ([]model.AumSnapshot, error) {
	return nil, nil
}

func (m *memStore) LatestSnapshots(context.Context) ([]store.LatestAum, error) {
	return nil, nil
}

func (m *memStore) LogScrape(_ context.Context, entry model.ScrapeLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrapes = append(m.scrapes, entry)
	return nil
}

func (m *memStore) UpsertUsage(_ context.Context, day model.UsageDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = append(m.usage, day)
	return nil
}

func (m *memStore) GetUsage(context.Context, time.Time) (*model.UsageDay, error) {
	return nil, nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

type fixedScraper struct {
	content string
	err     error
}

func (f fixedScraper) Scrape(_ context.Context, url string) (*scrape.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &scrape.Result{URL: url, Content: f.content, StatusCode: 200, Source: "stub"}, nil
}

func (f fixedScraper) Name() string { return "stub" }

type fixedStrategy struct {
	answer string
	tokens int
}

func (f fixedStrategy) Name() string { return "stub" }

func (f fixedStrategy) Extract(context.Context, string) (string, int, error) {
	return f.answer, f.tokens, nil
}

func newTestPipeline(t *testing.T, st store.Store, scraper scrape.Scraper, answer string) (*Pipeline, *budget.Tracker) {
	t.Helper()
	tracker := budget.New(100000, 0.8)
	ex, err := extract.New(fixedStrategy{answer: answer, tokens: 42}, tracker, extract.DefaultConfig())
	require.NoError(t, err)
	p, err := New(st, scraper, ex, tracker, 2)
	require.NoError(t, err)
	return p, tracker
}

func TestPipelineRunSavesSnapshotAndLogs(t *testing.T) {
	st := &memStore{}
	p, _ := newTestPipeline(t, st, fixedScraper{content: "A gestora anunciou patrimônio sob gestão de R$ 2,3 bi em fundos."}, "R$ 2,3 bi")

	company := model.Company{
		ID:          "c-1",
		Name:        "Alfa Capital",
		SiteURL:     "https://alfa.example.com.br",
		LinkedInURL: "https://linkedin.com/company/alfa",
	}

	res, err := p.Run(context.Background(), company)
	require.NoError(t, err)

	assert.True(t, res.Extraction.HasValue())
	assert.Equal(t, model.MethodLLM, res.Extraction.Method)
	assert.Equal(t, 2, res.Sources)

	require.NotNil(t, res.Snapshot)
	assert.Equal(t, "c-1", res.Snapshot.CompanyID)
	assert.Equal(t, "combined", res.Snapshot.SourceType)
	assert.NotEmpty(t, res.Snapshot.ID)

	require.Len(t, st.scrapes, 2)
	assert.Equal(t, "website", st.scrapes[0].SourceType)
	assert.Equal(t, "success", st.scrapes[0].Status)
	assert.Equal(t, "linkedin", st.scrapes[1].SourceType)

	require.Len(t, st.usage, 1)
	assert.Equal(t, 42, st.usage[0].TokensUsed)
}

func TestPipelineRunSingleSourceKeepsSourceType(t *testing.T) {
	st := &memStore{}
	p, _ := newTestPipeline(t, st, fixedScraper{content: "Patrimônio sob gestão de R$ 500 mi reportado pela gestora no último trimestre."}, "R$ 500 mi")

	company := model.Company{ID: "c-2", Name: "Beta Invest", SiteURL: "https://beta.example.com.br"}

	res, err := p.Run(context.Background(), company)
	require.NoError(t, err)
	assert.Equal(t, "website", res.Snapshot.SourceType)
	assert.Equal(t, 1, res.Sources)
}

func TestPipelineRunAllSourcesFail(t *testing.T) {
	st := &memStore{}
	p, _ := newTestPipeline(t, st, fixedScraper{err: assert.AnError}, "NAO_DISPONIVEL")

	company := model.Company{ID: "c-3", Name: "Gama Asset", SiteURL: "https://gama.example.com.br"}

	res, err := p.Run(context.Background(), company)
	require.NoError(t, err)

	assert.False(t, res.Extraction.HasValue())
	assert.Equal(t, model.MethodNone, res.Extraction.Method)
	assert.Equal(t, 0, res.Sources)

	require.Len(t, st.scrapes, 1)
	assert.Equal(t, "failed", st.scrapes[0].Status)
	assert.NotEmpty(t, st.scrapes[0].ErrorMessage)
}

func TestPipelineRunBatch(t *testing.T) {
	st := &memStore{}
	p, _ := newTestPipeline(t, st, fixedScraper{content: "A gestora administra patrimônio sob gestão de R$ 1,2 bi em fundos de ações."}, "R$ 1,2 bi")

	companies := []model.Company{
		{ID: "c-1", Name: "Alfa", SiteURL: "https://alfa.example.com.br"},
		{ID: "c-2", Name: "Beta", SiteURL: "https://beta.example.com.br"},
		{ID: "c-3", Name: "Gama", SiteURL: "https://gama.example.com.br"},
	}

	results := p.RunBatch(context.Background(), companies, 2)
	require.Len(t, results, 3)

	seen := map[string]bool{}
	for _, r := range results {
		seen[r.Company.ID] = true
		assert.True(t, r.Extraction.HasValue())
	}
	assert.Len(t, seen, 3)
}

func TestPipelineNewValidation(t *testing.T) {
	_, err := New(nil, nil, nil, nil, 1)
	assert.Error(t, err)
}
