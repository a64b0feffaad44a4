package competitor

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
	"github.com/bobmcallan/stockmind/internal/services/market"
)

// DefaultTopN is the number of competitors returned
const DefaultTopN = 3

var fallbackCompetitors = []struct {
	name      string
	marketCap int64
}{
	{"Microsoft", 3_000_000_000_000},
	{"Apple", 2_500_000_000_000},
	{"Amazon", 2_000_000_000_000},
}

// Ranker implements CompetitorRanker
type Ranker struct {
	resolver interfaces.TickerResolver
	market   interfaces.MarketDataProvider
	logger   *common.Logger
	topN     int
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRanker creates a competitor ranker
func NewRanker(resolver interfaces.TickerResolver, market interfaces.MarketDataProvider, logger *common.Logger) *Ranker {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Ranker{
		resolver: resolver,
		market:   market,
		logger:   logger,
		topN:     DefaultTopN,
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetTopN overrides how many competitors are returned
func (r *Ranker) SetTopN(n int) {
	if n > 0 {
		r.topN = n
	}
}

// SetRand replaces the random source used for fallback series
func (r *Ranker) SetRand(rng *rand.Rand) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	r.rng = rng
}

// TopCompetitors resolves each distinct name, keeps those with a market cap
// and real price history, and returns the largest by market cap. Ties keep
// input order. With nothing qualifying, synthesized entries are returned
// with SourceDegraded.
func (r *Ranker) TopCompetitors(ctx context.Context, names []string) ([]models.CompetitorEntry, models.SourceStatus) {
	seenTickers := make(map[string]bool)
	var entries []models.CompetitorEntry

	for _, name := range DedupeNames(names) {
		if ctx.Err() != nil {
			break
		}

		ticker, _ := r.resolver.Resolve(ctx, name)
		if ticker == "" || seenTickers[ticker] {
			continue
		}
		seenTickers[ticker] = true

		entry, ok := r.fetchEntry(ctx, name, ticker)
		if ok {
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		r.logger.Warn().Int("candidates", len(names)).Msg("No competitor qualified, using fallback competitors")
		return r.fallback(), models.SourceDegraded
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MarketCap > entries[j].MarketCap
	})
	if len(entries) > r.topN {
		entries = entries[:r.topN]
	}

	return entries, models.SourceOK
}

func (r *Ranker) fetchEntry(ctx context.Context, name, ticker string) (models.CompetitorEntry, bool) {
	mc, status := r.market.MarketCap(ctx, ticker)
	if status != models.SourceOK || mc == nil {
		r.logger.Debug().Str("competitor", name).Str("ticker", ticker).Msg("Skipping competitor without market cap")
		return models.CompetitorEntry{}, false
	}

	series, status := r.market.History(ctx, ticker)
	if status != models.SourceOK || !series.Valid() {
		r.logger.Debug().Str("competitor", name).Str("ticker", ticker).Msg("Skipping competitor without price history")
		return models.CompetitorEntry{}, false
	}

	return models.CompetitorEntry{
		Name:        name,
		Ticker:      ticker,
		MarketCap:   *mc,
		StockPrices: series.Prices,
		TimeLabels:  series.Dates,
		StockPrice:  series.Latest(),
	}, true
}

func (r *Ranker) fallback() []models.CompetitorEntry {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	today := r.now()
	out := make([]models.CompetitorEntry, 0, len(fallbackCompetitors))
	for _, fc := range fallbackCompetitors {
		series := market.RandomWalk(r.rng, today, market.MockPoints, market.MockBase)
		out = append(out, models.CompetitorEntry{
			Name:        fc.name,
			Ticker:      strings.ToUpper(fc.name[:3]),
			MarketCap:   fc.marketCap,
			StockPrices: series.Prices,
			TimeLabels:  series.Dates,
			StockPrice:  series.Latest(),
		})
	}
	return out
}

// DedupeNames drops blank names and case-insensitive repeats, keeping the
// first occurrence of each.
func DedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// Ensure Ranker implements CompetitorRanker
var _ interfaces.CompetitorRanker = (*Ranker)(nil)
