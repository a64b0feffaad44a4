package models

import "encoding/json"

// Sector is one block of the LLM competitor answer
type Sector struct {
	Name        string   `json:"name"`
	Competitors []string `json:"competitors"`
}

// CompetitorEntry is a ranked competitor with its market data
type CompetitorEntry struct {
	Name        string    `json:"name"`
	Ticker      string    `json:"ticker"`
	MarketCap   int64     `json:"market_cap"`
	StockPrices []float64 `json:"stock_prices"`
	TimeLabels  []string  `json:"time_labels"`
	StockPrice  float64   `json:"stock_price"`
}

// Analyze pipeline stages, in execution order
const (
	StageResolveTicker      = "resolve_ticker"
	StageGetDescription     = "get_description"
	StageFetchPrices        = "fetch_prices"
	StageExtractCompetitors = "extract_competitors"
	StageRankCompetitors    = "rank_competitors"
)

// AnalyzeResponse is the JSON body of GET /analyze_company
type AnalyzeResponse struct {
	Success        bool              `json:"success"`
	Error          string            `json:"error,omitempty"`
	Description    string            `json:"description,omitempty"`
	Ticker         string            `json:"ticker,omitempty"`
	StockPrices    []float64         `json:"stock_prices,omitempty"`
	TimeLabels     []string          `json:"time_labels,omitempty"`
	Competitors    []Sector          `json:"competitors,omitempty"`
	TopCompetitors []CompetitorEntry `json:"top_competitors,omitempty"`
	Degraded       []string          `json:"degraded,omitempty"`
}

// MarshalJSON emits only success and error for failures. Successful responses
// always carry every field, with empty lists rather than omitted keys.
func (r AnalyzeResponse) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{r.Success, r.Error})
	}

	type success struct {
		Success        bool              `json:"success"`
		Description    string            `json:"description"`
		Ticker         string            `json:"ticker"`
		StockPrices    []float64         `json:"stock_prices"`
		TimeLabels     []string          `json:"time_labels"`
		Competitors    []Sector          `json:"competitors"`
		TopCompetitors []CompetitorEntry `json:"top_competitors"`
		Degraded       []string          `json:"degraded,omitempty"`
	}
	return json.Marshal(success{
		Success:        true,
		Description:    r.Description,
		Ticker:         r.Ticker,
		StockPrices:    nonNil(r.StockPrices),
		TimeLabels:     nonNil(r.TimeLabels),
		Competitors:    nonNil(r.Competitors),
		TopCompetitors: nonNil(r.TopCompetitors),
		Degraded:       r.Degraded,
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// AnalyzeFailure builds an unsuccessful response
func AnalyzeFailure(message string) *AnalyzeResponse {
	return &AnalyzeResponse{Success: false, Error: message}
}

// WikiPage is an encyclopedia page summary
type WikiPage struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	URL     string `json:"url,omitempty"`
}
