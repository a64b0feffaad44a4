// Package market provides price history and market capitalisation from EODHD
package market

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
)

const (
	// HistoryMonths is the lookback window for History
	HistoryMonths = 3

	// Mock series shape used when real history is unavailable
	MockPoints   = 90
	MockBase     = 100.0
	MockMaxStep  = 10.0
	MockMinPrice = 0.01

	dateLayout = "2006-01-02"
)

// Service implements MarketDataProvider
type Service struct {
	eodhd  interfaces.EODHDClient
	logger *common.Logger
	now    func() time.Time // injectable clock for testing

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a market data service. eodhd may be nil, in which case
// History always returns mock data and MarketCap is always absent.
func NewService(eodhd interfaces.EODHDClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		eodhd:  eodhd,
		logger: logger,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetRand replaces the random source used for mock series
func (s *Service) SetRand(r *rand.Rand) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng = r
}

// SetClock replaces the clock
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ExchangeTicker appends the US exchange suffix to bare tickers
func ExchangeTicker(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" || strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + ".US"
}

// History returns about three months of daily closes, oldest first.
// On error or empty data a mock series is returned with SourceDegraded.
func (s *Service) History(ctx context.Context, ticker string) (models.PriceSeries, models.SourceStatus) {
	to := s.now()
	from := to.AddDate(0, -HistoryMonths, 0)

	series, err := s.fetch(ctx, ticker, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Price history unavailable, using mock series")
		return s.MockSeries(), models.SourceDegraded
	}
	if !series.Valid() {
		s.logger.Warn().Str("ticker", ticker).Msg("Empty price history, using mock series")
		return s.MockSeries(), models.SourceDegraded
	}

	return series, models.SourceOK
}

// MarketCap returns the market capitalisation, or nil with SourceFailed when
// it cannot be fetched.
func (s *Service) MarketCap(ctx context.Context, ticker string) (*int64, models.SourceStatus) {
	if s.eodhd == nil || strings.TrimSpace(ticker) == "" {
		return nil, models.SourceFailed
	}

	f, err := s.eodhd.GetFundamentals(ctx, ExchangeTicker(ticker))
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Market cap unavailable")
		return nil, models.SourceFailed
	}
	if f == nil || f.MarketCap <= 0 {
		s.logger.Debug().Str("ticker", ticker).Msg("Fundamentals carry no market cap")
		return nil, models.SourceFailed
	}

	mc := int64(f.MarketCap)
	return &mc, models.SourceOK
}

// RecentCloses returns real closes for the last days calendar days, oldest first
func (s *Service) RecentCloses(ctx context.Context, ticker string, days int) ([]float64, error) {
	if days <= 0 {
		return nil, fmt.Errorf("invalid lookback %d days", days)
	}

	to := s.now()
	series, err := s.fetch(ctx, ticker, to.AddDate(0, 0, -days), to)
	if err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("no price data for %s", ticker)
	}
	return series.Prices, nil
}

func (s *Service) fetch(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	if s.eodhd == nil {
		return models.PriceSeries{}, fmt.Errorf("no market data client configured")
	}
	if strings.TrimSpace(ticker) == "" {
		return models.PriceSeries{}, fmt.Errorf("empty ticker")
	}

	resp, err := s.eodhd.GetEOD(ctx, ExchangeTicker(ticker),
		interfaces.WithDateRange(from, to),
		interfaces.WithOrder("a"),
	)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("failed to fetch EOD for %s: %w", ticker, err)
	}

	var series models.PriceSeries
	if resp == nil {
		return series, nil
	}
	series.Dates = make([]string, 0, len(resp.Data))
	series.Prices = make([]float64, 0, len(resp.Data))
	for _, bar := range resp.Data {
		series.Dates = append(series.Dates, bar.Date.Format(dateLayout))
		series.Prices = append(series.Prices, round2(bar.Close))
	}
	return series, nil
}

// MockSeries synthesizes a random walk labelled with the days preceding today
func (s *Service) MockSeries() models.PriceSeries {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return RandomWalk(s.rng, s.now(), MockPoints, MockBase)
}

// RandomWalk builds an n-point series starting from base. Each step is uniform
// in [-MockMaxStep, MockMaxStep]; prices are rounded to 2 decimals and never
// drop below MockMinPrice. Labels cover the n days before today, oldest first.
func RandomWalk(rng *rand.Rand, today time.Time, n int, base float64) models.PriceSeries {
	series := models.PriceSeries{
		Dates:  make([]string, n),
		Prices: make([]float64, n),
	}

	price := base
	for i := 0; i < n; i++ {
		price += (rng.Float64()*2 - 1) * MockMaxStep
		price = math.Max(round2(price), MockMinPrice)
		series.Prices[i] = price
		series.Dates[i] = today.AddDate(0, 0, i-n).Format(dateLayout)
	}
	return series
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ensure Service implements MarketDataProvider
var _ interfaces.MarketDataProvider = (*Service)(nil)
