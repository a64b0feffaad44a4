// Package chart renders price charts as PNG images
package chart

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
	"github.com/bobmcallan/stockmind/internal/signals"
)

const (
	Width     = 900
	Height    = 400
	SMAPeriod = 20
)

// RenderPriceChart renders a PNG line chart of closes with a 20-day SMA overlay
// when the series is long enough. Returns raw PNG bytes.
func RenderPriceChart(ticker string, series models.PriceSeries) ([]byte, error) {
	if !series.Valid() || series.Len() < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", series.Len())
	}

	xValues := make([]time.Time, 0, series.Len())
	yValues := make([]float64, 0, series.Len())
	for i, d := range series.Dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("invalid date label %q: %w", d, err)
		}
		xValues = append(xValues, t)
		yValues = append(yValues, series.Prices[i])
	}

	priceSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	all := []chart.Series{priceSeries}
	if sma := smaSeries(xValues, yValues); sma != nil {
		all = append(all, *sma)
	}

	graph := chart.Chart{
		Title:  strings.ToUpper(ticker),
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Range: yRange(yValues),
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: all,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func smaSeries(xValues []time.Time, yValues []float64) *chart.TimeSeries {
	if len(yValues) < SMAPeriod+1 {
		return nil
	}
	sma := signals.SMASeries(yValues, SMAPeriod)
	return &chart.TimeSeries{
		Name: fmt.Sprintf("SMA %d", SMAPeriod),
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues[SMAPeriod-1:],
		YValues: sma[SMAPeriod-1:],
	}
}

// yRange pads a flat series so the axis range is never zero
func yRange(values []float64) chart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi > lo {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// Service renders charts for tickers using the market data provider
type Service struct {
	market interfaces.MarketDataProvider
	logger *common.Logger
}

// NewService creates a chart service
func NewService(market interfaces.MarketDataProvider, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{market: market, logger: logger}
}

// PriceChart fetches the ticker's history and renders it. The status reports
// whether the plotted data is real or mock.
func (s *Service) PriceChart(ctx context.Context, ticker string) ([]byte, models.SourceStatus, error) {
	series, status := s.market.History(ctx, ticker)
	png, err := RenderPriceChart(ticker, series)
	if err != nil {
		return nil, status, err
	}
	s.logger.Debug().Str("ticker", ticker).Str("source", string(status)).Int("bytes", len(png)).Msg("Chart rendered")
	return png, status, nil
}
