// Package analyze runs the company analysis pipeline
package analyze

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
	"github.com/bobmcallan/stockmind/internal/services/competitor"
)

// Failure messages returned to the caller
const (
	ErrMsgNoCompanyName   = "No company name provided."
	ErrMsgNoTicker        = "Could not find ticker symbol."
	ErrMsgNoDescription   = "Could not find company description."
	ErrMsgNoStockPrices   = "Could not fetch stock prices."
	noSectorsName         = "No Sectors"
	noCompetitorsSentinel = "No competitors found."
)

// Service implements AnalyzeService
type Service struct {
	resolver  interfaces.TickerResolver
	describer interfaces.DescriptionProvider
	market    interfaces.MarketDataProvider
	extractor interfaces.CompetitorExtractor
	ranker    interfaces.CompetitorRanker
	policy    string
	logger    *common.Logger
}

// NewService creates the orchestrator. policy is common.PolicyDegrade or
// common.PolicyFailFast; anything else is treated as degrade.
func NewService(
	resolver interfaces.TickerResolver,
	describer interfaces.DescriptionProvider,
	market interfaces.MarketDataProvider,
	extractor interfaces.CompetitorExtractor,
	ranker interfaces.CompetitorRanker,
	policy string,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if policy != common.PolicyFailFast {
		policy = common.PolicyDegrade
	}
	return &Service{
		resolver:  resolver,
		describer: describer,
		market:    market,
		extractor: extractor,
		ranker:    ranker,
		policy:    policy,
		logger:    logger,
	}
}

// Policy returns the active failure policy
func (s *Service) Policy() string {
	return s.policy
}

func (s *Service) failFast() bool {
	return s.policy == common.PolicyFailFast
}

// AnalyzeCompany resolves the ticker, fetches the description and prices,
// extracts competitor sectors and ranks the competitors.
func (s *Service) AnalyzeCompany(ctx context.Context, companyName string) *models.AnalyzeResponse {
	name := strings.TrimSpace(companyName)
	if name == "" {
		return models.AnalyzeFailure(ErrMsgNoCompanyName)
	}

	start := time.Now()
	resp := &models.AnalyzeResponse{}
	log := s.logger.With().Str("company", name).Str("policy", s.policy).Logger()

	ticker, status := s.resolver.Resolve(ctx, name)
	if status != models.SourceOK {
		if s.failFast() {
			return models.AnalyzeFailure(ErrMsgNoTicker)
		}
		resp.Degraded = append(resp.Degraded, models.StageResolveTicker)
	}
	resp.Ticker = ticker

	description, status := s.describer.Describe(ctx, name, ticker)
	if status != models.SourceOK {
		if s.failFast() {
			return models.AnalyzeFailure(ErrMsgNoDescription)
		}
		resp.Degraded = append(resp.Degraded, models.StageGetDescription)
	}
	resp.Description = description

	series, status := s.market.History(ctx, ticker)
	if status != models.SourceOK {
		if s.failFast() {
			return models.AnalyzeFailure(ErrMsgNoStockPrices)
		}
		resp.Degraded = append(resp.Degraded, models.StageFetchPrices)
	}
	resp.StockPrices = series.Prices
	resp.TimeLabels = series.Dates

	sectors, status := s.extractor.Extract(ctx, description)
	if status != models.SourceOK {
		if s.failFast() {
			sectors = []models.Sector{{Name: noSectorsName, Competitors: []string{noCompetitorsSentinel}}}
		} else {
			resp.Degraded = append(resp.Degraded, models.StageExtractCompetitors)
		}
	}
	resp.Competitors = sectors

	resp.TopCompetitors = s.rank(ctx, sectors, resp)

	resp.Success = true

	log.Info().
		Str("ticker", ticker).
		Int("sectors", len(sectors)).
		Int("top_competitors", len(resp.TopCompetitors)).
		Strs("degraded", resp.Degraded).
		Dur("elapsed", time.Since(start)).
		Msg("Company analyzed")

	return resp
}

// rank returns the top competitors. Under fail_fast synthesized entries are
// never returned; an empty list is used instead.
func (s *Service) rank(ctx context.Context, sectors []models.Sector, resp *models.AnalyzeResponse) []models.CompetitorEntry {
	names := competitor.CompetitorNames(sectors)
	if s.failFast() && len(names) == 1 && names[0] == noCompetitorsSentinel {
		return []models.CompetitorEntry{}
	}

	top, status := s.ranker.TopCompetitors(ctx, names)
	if status != models.SourceOK {
		if s.failFast() {
			return []models.CompetitorEntry{}
		}
		resp.Degraded = append(resp.Degraded, models.StageRankCompetitors)
	}
	return top
}

// Ensure Service implements AnalyzeService
var _ interfaces.AnalyzeService = (*Service)(nil)
