package alert

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/stockmind/internal/models"
)

// Defaults applied to fields left empty on creation
const (
	DefaultPriceDirection = models.DirectionAbove
	DefaultRSIDirection   = models.DirectionBelow
	DefaultRSIThreshold   = 30.0
)

// ValidationError describes the first invalid field of an alert
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// alertRules carries the validation tags for an AlertSpec
type alertRules struct {
	Type      string  `validate:"required,oneof=price rsi"`
	Ticker    string  `validate:"required,ticker"`
	Direction string  `validate:"required,oneof=above below"`
	Target    float64 `validate:"required_if=Type price,omitempty,finite,gt=0"`
	Threshold float64 `validate:"required_if=Type rsi,omitempty,finite,gt=0,lt=100"`
	Email     string  `validate:"omitempty,email"`
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,15}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return tickerPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	})
	return v
}

// Normalize trims and upper-cases the ticker, lower-cases the enums and
// fills defaults by kind.
func Normalize(a models.AlertSpec) models.AlertSpec {
	a.Ticker = strings.ToUpper(strings.TrimSpace(a.Ticker))
	a.Kind = models.AlertKind(strings.ToLower(strings.TrimSpace(string(a.Kind))))
	a.Direction = models.AlertDirection(strings.ToLower(strings.TrimSpace(string(a.Direction))))
	a.Email = strings.TrimSpace(a.Email)

	switch a.Kind {
	case models.AlertKindPrice:
		if a.Direction == "" {
			a.Direction = DefaultPriceDirection
		}
		a.Threshold = 0
	case models.AlertKindRSI:
		if a.Direction == "" {
			a.Direction = DefaultRSIDirection
		}
		if a.Threshold == 0 {
			a.Threshold = DefaultRSIThreshold
		}
		a.Target = 0
	}
	return a
}

// Validate checks a normalized alert
func Validate(a models.AlertSpec) error {
	err := validate.Struct(alertRules{
		Type:      string(a.Kind),
		Ticker:    a.Ticker,
		Direction: string(a.Direction),
		Target:    a.Target,
		Threshold: a.Threshold,
		Email:     a.Email,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	return &ValidationError{Field: field, Message: describe(field, fe.Tag())}
}

func describe(field, tag string) string {
	switch field + ":" + tag {
	case "type:required", "type:oneof":
		return "must be 'price' or 'rsi'"
	case "ticker:required":
		return "is required"
	case "ticker:ticker":
		return "is not a valid ticker symbol"
	case "direction:required", "direction:oneof":
		return "must be 'above' or 'below'"
	case "target:finite", "threshold:finite":
		return "must be a finite number"
	case "target:required_if", "target:gt":
		return "must be a positive price"
	case "threshold:required_if", "threshold:gt", "threshold:lt":
		return "must be between 0 and 100"
	case "email:email":
		return "is not a valid e-mail address"
	}
	return fmt.Sprintf("failed %q check", tag)
}
