// Package models defines data structures for StockMind
package models

import (
	"time"
)

// SourceStatus records how a value obtained from an external source was produced.
type SourceStatus string

const (
	// SourceOK means the value came from the upstream source.
	SourceOK SourceStatus = "ok"
	// SourceDegraded means a fallback (mock, heuristic or template) was substituted.
	SourceDegraded SourceStatus = "degraded"
	// SourceFailed means no value could be produced.
	SourceFailed SourceStatus = "failed"
)

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// EODResponse holds end-of-day bars in the order requested
type EODResponse struct {
	Data []EODBar `json:"data"`
}

// Fundamentals contains the fundamental fields StockMind reads for a stock
type Fundamentals struct {
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name"`
	MarketCap   float64   `json:"market_cap"`
	Sector      string    `json:"sector"`
	Industry    string    `json:"industry"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
}

// SymbolMatch is a single symbol search result
type SymbolMatch struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Region   string  `json:"region"`
	Currency string  `json:"currency"`
	Score    float64 `json:"match_score"`
}

// PriceSeries is a chronological sequence of daily closes.
// Dates and Prices always have the same length.
type PriceSeries struct {
	Dates  []string  `json:"time_labels"`
	Prices []float64 `json:"stock_prices"`
}

// Len returns the number of points in the series
func (p PriceSeries) Len() int {
	return len(p.Prices)
}

// Valid reports whether the series is non-empty and its dates and prices line up
func (p PriceSeries) Valid() bool {
	return len(p.Prices) > 0 && len(p.Prices) == len(p.Dates)
}

// Latest returns the most recent close, or 0 for an empty series
func (p PriceSeries) Latest() float64 {
	if len(p.Prices) == 0 {
		return 0
	}
	return p.Prices[len(p.Prices)-1]
}
