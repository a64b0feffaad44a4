package interfaces

import (
	"context"

	"github.com/bobmcallan/stockmind/internal/models"
)

// TickerResolver maps a company name to a ticker symbol. It never fails:
// a heuristic guess is returned with SourceDegraded when nothing matches.
type TickerResolver interface {
	Resolve(ctx context.Context, companyName string) (string, models.SourceStatus)
}

// DescriptionProvider returns a short description of a company
type DescriptionProvider interface {
	Describe(ctx context.Context, companyName, ticker string) (string, models.SourceStatus)
}

// MarketDataProvider supplies price history and market capitalisation
type MarketDataProvider interface {
	// History returns ~3 months of daily closes, synthesizing a mock series on failure
	History(ctx context.Context, ticker string) (models.PriceSeries, models.SourceStatus)

	// MarketCap returns the market capitalisation, or nil when unavailable
	MarketCap(ctx context.Context, ticker string) (*int64, models.SourceStatus)

	// RecentCloses returns real closes for the last `days` calendar days, oldest first.
	// It never substitutes mock data.
	RecentCloses(ctx context.Context, ticker string, days int) ([]float64, error)
}

// CompetitorExtractor asks the language model for sectors and competitors
type CompetitorExtractor interface {
	Extract(ctx context.Context, description string) ([]models.Sector, models.SourceStatus)
}

// CompetitorRanker resolves competitor names and ranks them by market cap
type CompetitorRanker interface {
	TopCompetitors(ctx context.Context, names []string) ([]models.CompetitorEntry, models.SourceStatus)
}

// AnalyzeService runs the full company analysis pipeline
type AnalyzeService interface {
	AnalyzeCompany(ctx context.Context, companyName string) *models.AnalyzeResponse
}

// AlertService creates and checks threshold alerts
type AlertService interface {
	CreateAlert(ctx context.Context, alert models.AlertSpec) (models.AlertSpec, error)
	ListAlerts(ctx context.Context) []models.AlertSpec
	CheckAlerts(ctx context.Context) []models.AlertEvaluation
}
