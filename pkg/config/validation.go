package config

import (
	"fmt"
	"strings"
)

// Validator checks a configuration before a run
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports every problem found, joined into one error
func (v *Validator) Validate(cfg *Config) error {
	var problems []string
	add := func(err error) {
		if err != nil {
			problems = append(problems, err.Error())
		}
	}

	add(cfg.Indicators.Validate())
	add(cfg.Divergence.Validate())
	add(v.validateSignals(cfg))
	add(v.validateBacktest(cfg))
	add(v.validateData(cfg))

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func (v *Validator) validateSignals(cfg *Config) error {
	s := cfg.Signals
	if s.RSIOversold <= 0 || s.RSIOverbought >= 100 || s.RSIOversold >= s.RSIOverbought {
		return fmt.Errorf("RSI thresholds must satisfy 0 < oversold (%.1f) < overbought (%.1f) < 100",
			s.RSIOversold, s.RSIOverbought)
	}
	for _, p := range []int{s.FastMA, s.MidMA, s.SlowMA} {
		if !containsInt(cfg.Indicators.MAPeriods, p) {
			return fmt.Errorf("signal moving average %d is not in indicator MA periods %v", p, cfg.Indicators.MAPeriods)
		}
	}
	if !(s.FastMA < s.MidMA && s.MidMA < s.SlowMA) {
		return fmt.Errorf("MA stack periods must be increasing, got %d/%d/%d", s.FastMA, s.MidMA, s.SlowMA)
	}
	return nil
}

func (v *Validator) validateBacktest(cfg *Config) error {
	b := cfg.Backtest
	if err := b.Config.Validate(); err != nil {
		return err
	}
	switch b.Profile {
	case ProfilePriceThreshold:
		if b.EntryPrice <= 0 {
			return fmt.Errorf("profile %s needs a positive entry price", ProfilePriceThreshold)
		}
	case ProfileComposite:
	default:
		return unknownProfile(b.Profile)
	}
	for _, sl := range b.Sweep.StopLossPct {
		if sl <= 0 || sl >= 1 {
			return fmt.Errorf("sweep stop loss %.4f outside (0, 1)", sl)
		}
	}
	for _, tp := range b.Sweep.TakeProfitPct {
		if tp <= 0 || tp >= 1 {
			return fmt.Errorf("sweep take profit %.4f outside (0, 1)", tp)
		}
	}
	for _, size := range b.Sweep.OrderSize {
		if size <= 0 {
			return fmt.Errorf("sweep order size must be positive, got %.4f", size)
		}
	}
	return nil
}

func (v *Validator) validateData(cfg *Config) error {
	start, end, err := cfg.Data.Range()
	if err != nil {
		return err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", cfg.Data.EndDate, cfg.Data.StartDate)
	}
	return nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func unknownProfile(name string) error {
	return fmt.Errorf("unknown profile %q (want %s or %s)", name, ProfilePriceThreshold, ProfileComposite)
}
