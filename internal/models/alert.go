package models

import (
	"fmt"
	"time"
)

// AlertKind selects which value an alert watches
type AlertKind string

const (
	AlertKindPrice AlertKind = "price"
	AlertKindRSI   AlertKind = "rsi"
)

// AlertDirection selects the side of the threshold that triggers
type AlertDirection string

const (
	DirectionAbove AlertDirection = "above"
	DirectionBelow AlertDirection = "below"
)

// AlertSpec is a price or RSI threshold alert held in memory
type AlertSpec struct {
	ID        string         `json:"id"`
	Kind      AlertKind      `json:"type"`
	Ticker    string         `json:"ticker"`
	Target    float64        `json:"target,omitempty"`    // price alerts
	Threshold float64        `json:"threshold,omitempty"` // rsi alerts
	Direction AlertDirection `json:"direction"`
	Email     string         `json:"email,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Level returns the number the alert compares against
func (a AlertSpec) Level() float64 {
	if a.Kind == AlertKindRSI {
		return a.Threshold
	}
	return a.Target
}

func (a AlertSpec) String() string {
	return fmt.Sprintf("%s %s %s %.2f", a.Ticker, a.Kind, a.Direction, a.Level())
}

// AlertEvaluation is the outcome of checking one alert
type AlertEvaluation struct {
	Alert     AlertSpec `json:"alert"`
	Value     float64   `json:"value"`
	Triggered bool      `json:"triggered"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}
