// Package interfaces defines service contracts for StockMind
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/stockmind/internal/models"
)

// EODHDClient provides access to EODHD API
type EODHDClient interface {
	// GetEOD retrieves end-of-day price data
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)

	// GetFundamentals retrieves fundamental data
	GetFundamentals(ctx context.Context, ticker string) (*models.Fundamentals, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithOrder sets the sort order for EOD query
func WithOrder(order string) EODOption {
	return func(p *EODParams) {
		p.Order = order
	}
}

// SymbolSearchClient looks up ticker symbols by company keywords
type SymbolSearchClient interface {
	SearchSymbols(ctx context.Context, keywords string) ([]models.SymbolMatch, error)
}

// WikipediaClient provides encyclopedia summaries and search
type WikipediaClient interface {
	// Summary returns the lead summary of a page. Missing pages return
	// wikipedia.ErrPageNotFound, ambiguous titles *wikipedia.DisambiguationError.
	Summary(ctx context.Context, title string) (*models.WikiPage, error)

	// Search returns page titles matching the query, best first
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// GeminiClient provides access to Gemini API
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
