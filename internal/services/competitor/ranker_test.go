package competitor

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockmind/internal/models"
)

// --- Mocks ---

type mockResolver struct {
	tickers map[string]string
	calls   []string
}

func (m *mockResolver) Resolve(_ context.Context, name string) (string, models.SourceStatus) {
	m.calls = append(m.calls, name)
	if t, ok := m.tickers[strings.ToLower(name)]; ok {
		return t, models.SourceOK
	}
	return strings.ToUpper(strings.Fields(name)[0]), models.SourceDegraded
}

type mockMarket struct {
	mu       sync.Mutex
	caps     map[string]int64
	noPrices map[string]bool
	capCalls map[string]int
}

func (m *mockMarket) History(_ context.Context, ticker string) (models.PriceSeries, models.SourceStatus) {
	if m.noPrices[ticker] {
		return models.PriceSeries{Dates: []string{"2026-01-01"}, Prices: []float64{1}}, models.SourceDegraded
	}
	return models.PriceSeries{
		Dates:  []string{"2026-10-15", "2026-10-16"},
		Prices: []float64{10, 11.5},
	}, models.SourceOK
}

func (m *mockMarket) MarketCap(_ context.Context, ticker string) (*int64, models.SourceStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capCalls == nil {
		m.capCalls = make(map[string]int)
	}
	m.capCalls[ticker]++
	if mc, ok := m.caps[ticker]; ok {
		return &mc, models.SourceOK
	}
	return nil, models.SourceFailed
}

func (m *mockMarket) RecentCloses(_ context.Context, _ string, _ int) ([]float64, error) {
	return nil, nil
}

func TestTopCompetitors_RanksByMarketCap(t *testing.T) {
	resolver := &mockResolver{tickers: map[string]string{
		"amazon": "AMZN", "google": "GOOGL", "zoho": "ZOHO", "oracle": "ORCL", "ibm": "IBM",
	}}
	mkt := &mockMarket{caps: map[string]int64{
		"AMZN": 2_000, "GOOGL": 2_100, "ORCL": 400, "IBM": 200,
	}}
	ranker := NewRanker(resolver, mkt, nil)

	top, status := ranker.TopCompetitors(context.Background(), []string{"Amazon", "Google", "Zoho", "Oracle", "IBM"})
	require.Equal(t, models.SourceOK, status)
	require.Len(t, top, 3)

	assert.Equal(t, "GOOGL", top[0].Ticker)
	assert.Equal(t, "AMZN", top[1].Ticker)
	assert.Equal(t, "ORCL", top[2].Ticker)

	assert.Equal(t, "Google", top[0].Name)
	assert.Equal(t, 11.5, top[0].StockPrice)
	assert.Equal(t, []string{"2026-10-15", "2026-10-16"}, top[0].TimeLabels)
}

func TestTopCompetitors_DedupesNamesAndTickers(t *testing.T) {
	resolver := &mockResolver{tickers: map[string]string{
		"google": "GOOGL", "alphabet": "GOOGL", "apple": "AAPL",
	}}
	mkt := &mockMarket{caps: map[string]int64{"GOOGL": 2, "AAPL": 3}}
	ranker := NewRanker(resolver, mkt, nil)

	top, status := ranker.TopCompetitors(context.Background(), []string{"Google", "google ", "GOOGLE", "Alphabet", "Apple"})
	require.Equal(t, models.SourceOK, status)
	require.Len(t, top, 2)

	assert.Equal(t, []string{"Google", "Alphabet", "Apple"}, resolver.calls)
	assert.Equal(t, 1, mkt.capCalls["GOOGL"])
	assert.Equal(t, "Google", top[1].Name)
}

func TestTopCompetitors_TiesKeepInputOrder(t *testing.T) {
	resolver := &mockResolver{tickers: map[string]string{"b": "BBB", "a": "AAA", "c": "CCC"}}
	mkt := &mockMarket{caps: map[string]int64{"AAA": 5, "BBB": 5, "CCC": 5}}
	ranker := NewRanker(resolver, mkt, nil)

	top, _ := ranker.TopCompetitors(context.Background(), []string{"b", "a", "c"})
	require.Len(t, top, 3)
	assert.Equal(t, []string{"BBB", "AAA", "CCC"}, []string{top[0].Ticker, top[1].Ticker, top[2].Ticker})
}

func TestTopCompetitors_SkipsMockHistory(t *testing.T) {
	resolver := &mockResolver{tickers: map[string]string{"real": "REAL", "fake": "FAKE"}}
	mkt := &mockMarket{
		caps:     map[string]int64{"REAL": 1, "FAKE": 100},
		noPrices: map[string]bool{"FAKE": true},
	}
	ranker := NewRanker(resolver, mkt, nil)

	top, status := ranker.TopCompetitors(context.Background(), []string{"fake", "real"})
	assert.Equal(t, models.SourceOK, status)
	require.Len(t, top, 1)
	assert.Equal(t, "REAL", top[0].Ticker)
}

func TestTopCompetitors_Fallback(t *testing.T) {
	ranker := NewRanker(&mockResolver{}, &mockMarket{}, nil)
	ranker.SetRand(rand.New(rand.NewPCG(1, 1)))
	ranker.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }

	top, status := ranker.TopCompetitors(context.Background(), []string{"Nobody Inc"})
	assert.Equal(t, models.SourceDegraded, status)
	require.Len(t, top, 3)

	assert.Equal(t, []string{"MIC", "APP", "AMA"}, []string{top[0].Ticker, top[1].Ticker, top[2].Ticker})
	assert.Equal(t, []string{"Microsoft", "Apple", "Amazon"}, []string{top[0].Name, top[1].Name, top[2].Name})
	assert.Equal(t, int64(3_000_000_000_000), top[0].MarketCap)
	assert.Equal(t, int64(2_500_000_000_000), top[1].MarketCap)
	assert.Equal(t, int64(2_000_000_000_000), top[2].MarketCap)

	for _, e := range top {
		assert.Len(t, e.StockPrices, 90)
		assert.Len(t, e.TimeLabels, 90)
		assert.Equal(t, e.StockPrices[89], e.StockPrice)
	}
	assert.NotEqual(t, top[0].StockPrices, top[1].StockPrices, "fallback series are independent")
}

func TestTopCompetitors_EmptyInput(t *testing.T) {
	ranker := NewRanker(&mockResolver{}, &mockMarket{}, nil)
	top, status := ranker.TopCompetitors(context.Background(), nil)
	assert.Equal(t, models.SourceDegraded, status)
	assert.Len(t, top, 3)
}

func TestSetTopN(t *testing.T) {
	resolver := &mockResolver{tickers: map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"}}
	mkt := &mockMarket{caps: map[string]int64{"A": 1, "B": 2, "C": 3, "D": 4}}
	ranker := NewRanker(resolver, mkt, nil)
	ranker.SetTopN(2)

	top, _ := ranker.TopCompetitors(context.Background(), []string{"a", "b", "c", "d"})
	require.Len(t, top, 2)
	assert.Equal(t, "D", top[0].Ticker)
}

func TestDedupeNames(t *testing.T) {
	assert.Equal(t, []string{"Apple", "Google"}, DedupeNames([]string{"Apple", " apple", "", "Google", "APPLE"}))
}
