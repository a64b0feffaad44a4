// Package ticker resolves company names to ticker symbols
package ticker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
)

// DefaultSearchTimeout bounds a single symbol search call
const DefaultSearchTimeout = 3 * time.Second

// searchRegion is the only region accepted from symbol search results
const searchRegion = "United States"

type entry struct {
	name   string
	ticker string
}

// staticTable is matched in declaration order, so longer keys that contain
// shorter ones must come first.
var staticTable = []entry{
	{"apple", "AAPL"},
	{"microsoft", "MSFT"},
	{"alphabet", "GOOGL"},
	{"google", "GOOGL"},
	{"amazon", "AMZN"},
	{"meta platforms", "META"},
	{"facebook", "META"},
	{"meta", "META"},
	{"tesla", "TSLA"},
	{"nvidia", "NVDA"},
	{"netflix", "NFLX"},
	{"intel", "INTC"},
	{"advanced micro devices", "AMD"},
	{"amd", "AMD"},
	{"ibm", "IBM"},
	{"oracle", "ORCL"},
	{"salesforce", "CRM"},
	{"adobe", "ADBE"},
	{"cisco", "CSCO"},
	{"qualcomm", "QCOM"},
	{"jpmorgan", "JPM"},
	{"jp morgan", "JPM"},
	{"bank of america", "BAC"},
	{"goldman sachs", "GS"},
	{"morgan stanley", "MS"},
	{"wells fargo", "WFC"},
	{"citigroup", "C"},
	{"visa", "V"},
	{"mastercard", "MA"},
	{"paypal", "PYPL"},
	{"walmart", "WMT"},
	{"target", "TGT"},
	{"costco", "COST"},
	{"home depot", "HD"},
	{"nike", "NKE"},
	{"coca-cola", "KO"},
	{"coca cola", "KO"},
	{"pepsico", "PEP"},
	{"mcdonald", "MCD"},
	{"starbucks", "SBUX"},
	{"disney", "DIS"},
	{"exxon", "XOM"},
	{"chevron", "CVX"},
	{"johnson & johnson", "JNJ"},
	{"johnson and johnson", "JNJ"},
	{"pfizer", "PFE"},
	{"merck", "MRK"},
	{"unitedhealth", "UNH"},
	{"boeing", "BA"},
	{"ford", "F"},
	{"general motors", "GM"},
}

// Service implements TickerResolver. Search hits are appended to the lookup
// table and reused for the life of the process.
type Service struct {
	search  interfaces.SymbolSearchClient
	logger  *common.Logger
	timeout time.Duration

	mu    sync.RWMutex
	table []entry
}

// NewService creates a ticker resolver.
// search may be nil, in which case only the table and heuristic are used.
func NewService(search interfaces.SymbolSearchClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	table := make([]entry, len(staticTable))
	copy(table, staticTable)

	return &Service{
		search:  search,
		logger:  logger,
		timeout: DefaultSearchTimeout,
		table:   table,
	}
}

// SetSearchTimeout overrides the per-call search timeout
func (s *Service) SetSearchTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Resolve returns the ticker for companyName. It never fails: when neither
// the table nor the search API knows the name, the first word of the input
// is returned uppercased with SourceDegraded.
func (s *Service) Resolve(ctx context.Context, companyName string) (string, models.SourceStatus) {
	name := strings.TrimSpace(companyName)
	if name == "" {
		return "", models.SourceDegraded
	}

	if t, ok := s.Lookup(name); ok {
		return t, models.SourceOK
	}

	if t, ok := s.searchUS(ctx, name); ok {
		s.Remember(name, t)
		s.logger.Debug().Str("company", name).Str("ticker", t).Int("table_size", s.Size()).Msg("Ticker learned from symbol search")
		return t, models.SourceOK
	}

	guess := strings.ToUpper(strings.Fields(name)[0])
	s.logger.Debug().Str("company", name).Str("ticker", guess).Msg("Ticker resolved by heuristic")
	return guess, models.SourceDegraded
}

// Lookup checks the table without any network call. A key matches when it
// is a case-insensitive substring of the name.
func (s *Service) Lookup(companyName string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(companyName))
	if lower == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.table {
		if strings.Contains(lower, e.name) {
			return e.ticker, true
		}
	}
	return "", false
}

// Remember appends a name to ticker mapping
func (s *Service) Remember(companyName, ticker string) {
	key := strings.ToLower(strings.TrimSpace(companyName))
	if key == "" || ticker == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.table {
		if e.name == key {
			return
		}
	}
	s.table = append(s.table, entry{name: key, ticker: ticker})
}

// Size returns the number of table entries, static and learned
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}

func (s *Service) searchUS(ctx context.Context, name string) (string, bool) {
	if s.search == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	matches, err := s.search.SearchSymbols(ctx, name)
	if err != nil {
		s.logger.Warn().Err(err).Str("company", name).Msg("Symbol search failed")
		return "", false
	}

	for _, m := range matches {
		if m.Region == searchRegion && m.Symbol != "" {
			return m.Symbol, true
		}
	}

	s.logger.Debug().Str("company", name).Int("matches", len(matches)).Msg("No US listing in symbol search")
	return "", false
}

// Ensure Service implements TickerResolver
var _ interfaces.TickerResolver = (*Service)(nil)
