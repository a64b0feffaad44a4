package market

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
)

// --- Mocks ---

type mockEODHD struct {
	bars         []models.EODBar
	eodErr       error
	fundamentals *models.Fundamentals
	fundErr      error

	lastTicker string
	lastParams interfaces.EODParams
}

func (m *mockEODHD) GetEOD(_ context.Context, ticker string, opts ...interfaces.EODOption) (*models.EODResponse, error) {
	m.lastTicker = ticker
	m.lastParams = interfaces.EODParams{}
	for _, opt := range opts {
		opt(&m.lastParams)
	}
	if m.eodErr != nil {
		return nil, m.eodErr
	}
	return &models.EODResponse{Data: m.bars}, nil
}

func (m *mockEODHD) GetFundamentals(_ context.Context, ticker string) (*models.Fundamentals, error) {
	m.lastTicker = ticker
	return m.fundamentals, m.fundErr
}

var fixedNow = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func newTestService(client interfaces.EODHDClient) *Service {
	svc := NewService(client, nil)
	svc.SetClock(func() time.Time { return fixedNow })
	svc.SetRand(rand.New(rand.NewPCG(1, 2)))
	return svc
}

func TestExchangeTicker(t *testing.T) {
	assert.Equal(t, "AAPL.US", ExchangeTicker("aapl"))
	assert.Equal(t, "BHP.AU", ExchangeTicker("BHP.AU"))
	assert.Equal(t, "", ExchangeTicker(" "))
}

func TestHistory_RealData(t *testing.T) {
	client := &mockEODHD{bars: []models.EODBar{
		{Date: time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC), Close: 101.236},
		{Date: time.Date(2026, 7, 21, 0, 0, 0, 0, time.UTC), Close: 102.5},
	}}
	svc := newTestService(client)

	series, status := svc.History(context.Background(), "AAPL")
	require.Equal(t, models.SourceOK, status)

	assert.Equal(t, "AAPL.US", client.lastTicker)
	assert.Equal(t, fixedNow.AddDate(0, -3, 0), client.lastParams.From)
	assert.Equal(t, fixedNow, client.lastParams.To)
	assert.Equal(t, "a", client.lastParams.Order)

	assert.Equal(t, []string{"2026-07-20", "2026-07-21"}, series.Dates)
	assert.Equal(t, []float64{101.24, 102.5}, series.Prices)
}

func TestHistory_MockOnError(t *testing.T) {
	svc := newTestService(&mockEODHD{eodErr: errors.New("boom")})

	series, status := svc.History(context.Background(), "AAPL")
	assert.Equal(t, models.SourceDegraded, status)
	assertMockShape(t, series)
}

func TestHistory_MockOnEmpty(t *testing.T) {
	svc := newTestService(&mockEODHD{})

	series, status := svc.History(context.Background(), "AAPL")
	assert.Equal(t, models.SourceDegraded, status)
	assertMockShape(t, series)
}

func TestHistory_NilClient(t *testing.T) {
	svc := newTestService(nil)

	series, status := svc.History(context.Background(), "AAPL")
	assert.Equal(t, models.SourceDegraded, status)
	assertMockShape(t, series)
}

func assertMockShape(t *testing.T, series models.PriceSeries) {
	t.Helper()
	require.Len(t, series.Prices, MockPoints)
	require.Len(t, series.Dates, MockPoints)

	assert.Equal(t, "2026-07-20", series.Dates[0])
	assert.Equal(t, "2026-10-17", series.Dates[MockPoints-1])

	for i, p := range series.Prices {
		assert.GreaterOrEqual(t, p, MockMinPrice)
		assert.InDelta(t, p, math.Round(p*100)/100, 1e-9, "price %d not rounded", i)
	}
}

func TestRandomWalk_StepBounds(t *testing.T) {
	series := RandomWalk(rand.New(rand.NewPCG(7, 7)), fixedNow, 500, MockBase)

	prev := MockBase
	for _, p := range series.Prices {
		if p > MockMinPrice && prev > MockMinPrice {
			assert.LessOrEqual(t, math.Abs(p-prev), MockMaxStep+0.01)
		}
		prev = p
	}
}

func TestRandomWalk_FloorAtMinimum(t *testing.T) {
	series := RandomWalk(rand.New(rand.NewPCG(3, 4)), fixedNow, 200, 0.5)
	for _, p := range series.Prices {
		assert.GreaterOrEqual(t, p, MockMinPrice)
	}
}

func TestRandomWalk_Deterministic(t *testing.T) {
	a := RandomWalk(rand.New(rand.NewPCG(9, 9)), fixedNow, 30, MockBase)
	b := RandomWalk(rand.New(rand.NewPCG(9, 9)), fixedNow, 30, MockBase)
	assert.Equal(t, a, b)
}

func TestMarketCap(t *testing.T) {
	tests := []struct {
		name     string
		client   *mockEODHD
		expected *int64
		status   models.SourceStatus
	}{
		{
			name:     "ok",
			client:   &mockEODHD{fundamentals: &models.Fundamentals{MarketCap: 3.1e12}},
			expected: ptr(int64(3_100_000_000_000)),
			status:   models.SourceOK,
		},
		{
			name:   "error",
			client: &mockEODHD{fundErr: errors.New("404")},
			status: models.SourceFailed,
		},
		{
			name:   "zero market cap",
			client: &mockEODHD{fundamentals: &models.Fundamentals{}},
			status: models.SourceFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.client)
			mc, status := svc.MarketCap(context.Background(), "msft")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.expected, mc)
			assert.Equal(t, "MSFT.US", tt.client.lastTicker)
		})
	}
}

func TestRecentCloses_NoMockFallback(t *testing.T) {
	svc := newTestService(&mockEODHD{eodErr: errors.New("down")})
	_, err := svc.RecentCloses(context.Background(), "AAPL", 5)
	assert.Error(t, err)

	svc = newTestService(&mockEODHD{})
	_, err = svc.RecentCloses(context.Background(), "AAPL", 5)
	assert.Error(t, err)
}

func TestRecentCloses_Window(t *testing.T) {
	client := &mockEODHD{bars: []models.EODBar{
		{Date: fixedNow.AddDate(0, 0, -2), Close: 99},
		{Date: fixedNow.AddDate(0, 0, -1), Close: 105},
	}}
	svc := newTestService(client)

	closes, err := svc.RecentCloses(context.Background(), "AAPL", 45)
	require.NoError(t, err)
	assert.Equal(t, []float64{99, 105}, closes)
	assert.Equal(t, fixedNow.AddDate(0, 0, -45), client.lastParams.From)
}

func ptr[T any](v T) *T {
	return &v
}
