package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/models"
)

// --- Mocks ---

type mockMarket struct {
	mu     sync.Mutex
	closes map[string][]float64
	errs   map[string]error
	days   []int
}

func (m *mockMarket) History(_ context.Context, _ string) (models.PriceSeries, models.SourceStatus) {
	return models.PriceSeries{}, models.SourceDegraded
}

func (m *mockMarket) MarketCap(_ context.Context, _ string) (*int64, models.SourceStatus) {
	return nil, models.SourceFailed
}

func (m *mockMarket) RecentCloses(_ context.Context, ticker string, days int) ([]float64, error) {
	m.mu.Lock()
	m.days = append(m.days, days)
	m.mu.Unlock()
	if err := m.errs[ticker]; err != nil {
		return nil, err
	}
	return m.closes[ticker], nil
}

func newTestService(market *mockMarket) *Service {
	svc := NewService(NewStore(), market, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
	return svc
}

func TestCreateAlert_DefaultsAndNormalization(t *testing.T) {
	svc := newTestService(&mockMarket{})

	price, err := svc.CreateAlert(context.Background(), models.AlertSpec{Kind: "price", Ticker: " aapl ", Target: 100})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", price.Ticker)
	assert.Equal(t, models.DirectionAbove, price.Direction)
	assert.Equal(t, "alert-1", price.ID)
	assert.False(t, price.CreatedAt.IsZero())

	rsi, err := svc.CreateAlert(context.Background(), models.AlertSpec{Kind: "RSI", Ticker: "msft"})
	require.NoError(t, err)
	assert.Equal(t, models.AlertKindRSI, rsi.Kind)
	assert.Equal(t, models.DirectionBelow, rsi.Direction)
	assert.Equal(t, 30.0, rsi.Threshold)

	assert.Len(t, svc.ListAlerts(context.Background()), 2)
}

func TestCreateAlert_Validation(t *testing.T) {
	tests := []struct {
		name  string
		spec  models.AlertSpec
		field string
	}{
		{"unknown type", models.AlertSpec{Kind: "volume", Ticker: "AAPL", Target: 1}, "type"},
		{"missing type", models.AlertSpec{Ticker: "AAPL", Target: 1}, "type"},
		{"missing ticker", models.AlertSpec{Kind: "price", Target: 1}, "ticker"},
		{"bad ticker", models.AlertSpec{Kind: "price", Ticker: "AA PL", Target: 1}, "ticker"},
		{"bad direction", models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: 1, Direction: "sideways"}, "direction"},
		{"zero target", models.AlertSpec{Kind: "price", Ticker: "AAPL"}, "target"},
		{"negative target", models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: -5}, "target"},
		{"threshold too high", models.AlertSpec{Kind: "rsi", Ticker: "AAPL", Threshold: 100}, "threshold"},
		{"negative threshold", models.AlertSpec{Kind: "rsi", Ticker: "AAPL", Threshold: -1}, "threshold"},
		{"bad email", models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: 1, Email: "not-an-email"}, "email"},
		{"infinite target", models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: math.Inf(1)}, "target"},
		{"NaN target", models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: math.NaN()}, "target"},
		{"NaN threshold", models.AlertSpec{Kind: "rsi", Ticker: "AAPL", Threshold: math.NaN()}, "threshold"},
		{"infinite threshold", models.AlertSpec{Kind: "rsi", Ticker: "AAPL", Threshold: math.Inf(-1)}, "threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockMarket{})
			_, err := svc.CreateAlert(context.Background(), tt.spec)
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Empty(t, svc.ListAlerts(context.Background()))
		})
	}
}

func TestCreateAlert_NoUniquenessCheck(t *testing.T) {
	svc := newTestService(&mockMarket{})
	spec := models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: 100, Email: "me@example.com"}

	_, err := svc.CreateAlert(context.Background(), spec)
	require.NoError(t, err)
	_, err = svc.CreateAlert(context.Background(), spec)
	require.NoError(t, err)

	assert.Len(t, svc.ListAlerts(context.Background()), 2)
}

func TestCheckAlerts_Price(t *testing.T) {
	market := &mockMarket{closes: map[string][]float64{"AAPL": {98, 101, 105}}}
	svc := newTestService(market)

	ctx := context.Background()
	_, _ = svc.CreateAlert(ctx, models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: 100, Direction: "above"})
	_, _ = svc.CreateAlert(ctx, models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: 110, Direction: "above"})
	_, _ = svc.CreateAlert(ctx, models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: 105, Direction: "below"})

	results := svc.CheckAlerts(ctx)
	require.Len(t, results, 3)

	assert.True(t, results[0].Triggered)
	assert.Equal(t, 105.0, results[0].Value)
	assert.False(t, results[1].Triggered)
	assert.True(t, results[2].Triggered, "below is inclusive")
	assert.Equal(t, PriceLookbackDays, market.days[0])
}

func TestCheckAlerts_RSI(t *testing.T) {
	up := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	market := &mockMarket{closes: map[string][]float64{"UP": up}}
	svc := newTestService(market)

	ctx := context.Background()
	_, _ = svc.CreateAlert(ctx, models.AlertSpec{Kind: "rsi", Ticker: "UP", Threshold: 70, Direction: "above"})
	_, _ = svc.CreateAlert(ctx, models.AlertSpec{Kind: "rsi", Ticker: "UP", Threshold: 30, Direction: "below"})

	results := svc.CheckAlerts(ctx)
	require.Len(t, results, 2)
	assert.Equal(t, 100.0, results[0].Value)
	assert.True(t, results[0].Triggered)
	assert.False(t, results[1].Triggered)
	assert.Equal(t, RSILookbackDays, market.days[0])
}

func TestCheckAlerts_LogsRSIZone(t *testing.T) {
	down := make([]float64, 30)
	for i := range down {
		down[i] = 200 - float64(i)
	}
	market := &mockMarket{closes: map[string][]float64{"DOWN": down, "AAPL": {120}}}

	var buf bytes.Buffer
	svc := NewService(NewStore(), market, common.NewLoggerWithOutput("debug", &buf))

	ctx := context.Background()
	_, err := svc.CreateAlert(ctx, models.AlertSpec{Kind: "rsi", Ticker: "DOWN", Threshold: 30, Direction: "below"})
	require.NoError(t, err)
	_, err = svc.CreateAlert(ctx, models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: 100})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"total":1`)
	assert.Contains(t, out, `"total":2`)

	buf.Reset()
	results := svc.CheckAlerts(ctx)
	require.Len(t, results, 2)
	require.True(t, results[0].Triggered)
	require.True(t, results[1].Triggered)

	out = buf.String()
	assert.Contains(t, out, `"zone":"oversold"`)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"zone"`)), "price alerts carry no RSI zone")
}

func TestCheckAlerts_DataErrorsSkipped(t *testing.T) {
	market := &mockMarket{
		closes: map[string][]float64{"AAPL": {120}, "SHORT": {1, 2, 3}},
		errs:   map[string]error{"DOWN": errors.New("upstream unavailable")},
	}
	svc := newTestService(market)

	ctx := context.Background()
	_, _ = svc.CreateAlert(ctx, models.AlertSpec{Kind: "price", Ticker: "DOWN", Target: 1})
	_, _ = svc.CreateAlert(ctx, models.AlertSpec{Kind: "rsi", Ticker: "SHORT"})
	_, _ = svc.CreateAlert(ctx, models.AlertSpec{Kind: "price", Ticker: "AAPL", Target: 100})

	results := svc.CheckAlerts(ctx)
	require.Len(t, results, 3)

	assert.Contains(t, results[0].Error, "upstream unavailable")
	assert.False(t, results[0].Triggered)
	assert.NotEmpty(t, results[1].Error)
	assert.False(t, results[1].Triggered)
	assert.Empty(t, results[2].Error)
	assert.True(t, results[2].Triggered)
}

func TestTriggered(t *testing.T) {
	tests := []struct {
		name     string
		alert    models.AlertSpec
		value    float64
		expected bool
	}{
		{"price above hit", models.AlertSpec{Kind: models.AlertKindPrice, Target: 100, Direction: models.DirectionAbove}, 100, true},
		{"price above miss", models.AlertSpec{Kind: models.AlertKindPrice, Target: 100, Direction: models.DirectionAbove}, 99.99, false},
		{"price below hit", models.AlertSpec{Kind: models.AlertKindPrice, Target: 100, Direction: models.DirectionBelow}, 100, true},
		{"rsi above strict", models.AlertSpec{Kind: models.AlertKindRSI, Threshold: 70, Direction: models.DirectionAbove}, 70, false},
		{"rsi above hit", models.AlertSpec{Kind: models.AlertKindRSI, Threshold: 70, Direction: models.DirectionAbove}, 70.1, true},
		{"rsi below strict", models.AlertSpec{Kind: models.AlertKindRSI, Threshold: 30, Direction: models.DirectionBelow}, 30, false},
		{"rsi below hit", models.AlertSpec{Kind: models.AlertKindRSI, Threshold: 30, Direction: models.DirectionBelow}, 29.9, true},
		{"unknown kind", models.AlertSpec{Kind: "volume"}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Triggered(tt.alert, tt.value))
		})
	}
}

func TestStore_ConcurrentAddAndSnapshot(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.Add(models.AlertSpec{Ticker: fmt.Sprintf("T%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = store.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, store.Len())
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	store := NewStore()
	store.Add(models.AlertSpec{Ticker: "AAPL"})

	snap := store.Snapshot()
	snap[0].Ticker = "CHANGED"

	assert.Equal(t, "AAPL", store.Snapshot()[0].Ticker)
}
