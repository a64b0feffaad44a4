// Package alert stores price and RSI alerts and checks them against fresh market data
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/stockmind/internal/common"
	"github.com/bobmcallan/stockmind/internal/interfaces"
	"github.com/bobmcallan/stockmind/internal/models"
	"github.com/bobmcallan/stockmind/internal/signals"
)

// Lookback windows, in calendar days, for each alert kind
const (
	PriceLookbackDays = 7
	RSILookbackDays   = 90
)

// Service implements AlertService
type Service struct {
	store     *Store
	market    interfaces.MarketDataProvider
	logger    *common.Logger
	rsiPeriod int
	now       func() time.Time // injectable clock for testing
	newID     func() string
}

// NewService creates an alert service over store
func NewService(store *Store, market interfaces.MarketDataProvider, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if store == nil {
		store = NewStore()
	}
	return &Service{
		store:     store,
		market:    market,
		logger:    logger,
		rsiPeriod: signals.DefaultRSIPeriod,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SetRSIPeriod overrides the RSI lookback period
func (s *Service) SetRSIPeriod(period int) {
	if period > 0 {
		s.rsiPeriod = period
	}
}

// CreateAlert normalizes, validates and stores an alert. No uniqueness check
// is made; identical alerts are stored twice.
func (s *Service) CreateAlert(ctx context.Context, a models.AlertSpec) (models.AlertSpec, error) {
	a = Normalize(a)
	if err := Validate(a); err != nil {
		return models.AlertSpec{}, err
	}

	a.ID = s.newID()
	a.CreatedAt = s.now().UTC()
	s.store.Add(a)

	s.logger.Info().
		Str("alert_id", a.ID).
		Str("ticker", a.Ticker).
		Str("type", string(a.Kind)).
		Str("direction", string(a.Direction)).
		Float64("level", a.Level()).
		Int("total", s.store.Len()).
		Msg("Alert created")

	return a, nil
}

// ListAlerts returns all alerts in creation order
func (s *Service) ListAlerts(_ context.Context) []models.AlertSpec {
	return s.store.Snapshot()
}

// CheckAlerts evaluates every stored alert once. Alerts whose data cannot be
// fetched are skipped with a warning and reported with Error set.
func (s *Service) CheckAlerts(ctx context.Context) []models.AlertEvaluation {
	start := time.Now()
	alerts := s.store.Snapshot()
	results := make([]models.AlertEvaluation, 0, len(alerts))

	triggered, failed := 0, 0
	for _, a := range alerts {
		if ctx.Err() != nil {
			break
		}

		eval := s.evaluate(ctx, a)
		results = append(results, eval)

		switch {
		case eval.Error != "":
			failed++
			s.logger.Warn().Str("alert_id", a.ID).Str("ticker", a.Ticker).Str("error", eval.Error).Msg("Alert check skipped")
		case eval.Triggered:
			triggered++
			event := s.logger.Info().
				Str("alert_id", a.ID).
				Str("ticker", a.Ticker).
				Str("type", string(a.Kind)).
				Str("direction", string(a.Direction)).
				Float64("level", a.Level()).
				Float64("value", eval.Value).
				Str("email", a.Email)
			if a.Kind == models.AlertKindRSI {
				event = event.Str("zone", signals.ClassifyRSI(eval.Value))
			}
			event.Msg("Alert triggered")
		}
	}

	s.logger.Debug().
		Int("alerts", len(alerts)).
		Int("triggered", triggered).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Alert check complete")

	return results
}

func (s *Service) evaluate(ctx context.Context, a models.AlertSpec) models.AlertEvaluation {
	eval := models.AlertEvaluation{Alert: a, CheckedAt: s.now().UTC()}

	value, err := s.currentValue(ctx, a)
	if err != nil {
		eval.Error = err.Error()
		return eval
	}

	eval.Value = value
	eval.Triggered = Triggered(a, value)
	return eval
}

func (s *Service) currentValue(ctx context.Context, a models.AlertSpec) (float64, error) {
	if s.market == nil {
		return 0, fmt.Errorf("no market data provider configured")
	}

	switch a.Kind {
	case models.AlertKindPrice:
		closes, err := s.market.RecentCloses(ctx, a.Ticker, PriceLookbackDays)
		if err != nil {
			return 0, err
		}
		if len(closes) == 0 {
			return 0, fmt.Errorf("no recent close for %s", a.Ticker)
		}
		return closes[len(closes)-1], nil

	case models.AlertKindRSI:
		closes, err := s.market.RecentCloses(ctx, a.Ticker, RSILookbackDays)
		if err != nil {
			return 0, err
		}
		return signals.RSI(closes, s.rsiPeriod)

	default:
		return 0, fmt.Errorf("unknown alert type %q", a.Kind)
	}
}

// Triggered reports whether value crosses the alert's level. Price alerts
// are inclusive of the target; RSI alerts are strict.
func Triggered(a models.AlertSpec, value float64) bool {
	switch a.Kind {
	case models.AlertKindPrice:
		if a.Direction == models.DirectionBelow {
			return value <= a.Target
		}
		return value >= a.Target
	case models.AlertKindRSI:
		if a.Direction == models.DirectionAbove {
			return value > a.Threshold
		}
		return value < a.Threshold
	}
	return false
}

// Ensure Service implements AlertService
var _ interfaces.AlertService = (*Service)(nil)
