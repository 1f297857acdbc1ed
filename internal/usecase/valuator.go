package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"Halcon/internal/domain/models"
	drepo "Halcon/internal/domain/repository"
	"Halcon/internal/services/valuation"
	applogger "Halcon/pkg/logger"
)

var validate = validator.New()

// Valuator runs the intrinsic value models on memoized fundamentals.
type Valuator struct {
	data     *MarketData
	defaults models.Assumptions
	metrics  drepo.Metrics
	l        *applogger.Logger
}

func NewValuator(data *MarketData, defaults models.Assumptions, metrics drepo.Metrics, l *applogger.Logger) *Valuator {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Valuator{data: data, defaults: defaults, metrics: metrics, l: l}
}

// Defaults are the configured assumptions callers override field by field.
func (v *Valuator) Defaults() models.Assumptions { return v.defaults }

// Value computes every model, the consensus, the upside and the Altman score
// for symbol. Models whose preconditions fail are reported as not applicable.
func (v *Valuator) Value(ctx context.Context, symbol string, a models.Assumptions) (*models.Valuation, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrInvalidModelInput)
	}
	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("%w: assumption %s failed on '%s'", models.ErrInvalidModelInput, verrs[0].Field(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidModelInput, err)
	}

	start := time.Now()
	defer func() { v.metrics.RecordLatency("valuation", time.Since(start).Seconds()) }()

	f, _, err := v.data.Fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	f = f.Clone()
	if !f.Has(models.FigPrice) {
		if s, _, err := v.data.Series(ctx, symbol); err == nil {
			if last, ok := s.Last(); ok {
				f.Set(models.FigPrice, last.Close)
			}
		}
	}

	out := valuation.Evaluate(f, a)
	v.l.Debug("valuation computed",
		applogger.String("symbol", symbol),
		applogger.Bool("consensus_defined", out.ConsensusDefined),
		applogger.Float64("consensus", out.Consensus),
	)
	return &out, nil
}
