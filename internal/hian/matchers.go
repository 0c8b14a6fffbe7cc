package hian

import (
	"fmt"
	"math"
	"strings"

	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// floatSlack absorbs float noise on the one-sided ge/le bounds.
const floatSlack = 1e-9

// NumMatcher is a reusable numeric predicate. Each bound is independently
// optional; all present predicates must hold.
type NumMatcher struct {
	Eq  *float64 `json:"eq,omitempty" yaml:"eq"`
	Tol *float64 `json:"tol,omitempty" yaml:"tol"`
	Ge  *float64 `json:"ge,omitempty" yaml:"ge"`
	Le  *float64 `json:"le,omitempty" yaml:"le"`
}

// MatchesAmount checks a transfer amount. The eq tolerance falls back to the
// run's absolute amount tolerance.
func (m *NumMatcher) MatchesAmount(actual float64, settings Settings) error {
	return m.matches(actual, func(target float64) float64 {
		return settings.AmountTol
	})
}

// MatchesSize checks an order size. The eq tolerance falls back to
// |target| x szTolPct/100.
func (m *NumMatcher) MatchesSize(actual float64, settings Settings) error {
	return m.matches(actual, func(target float64) float64 {
		return math.Abs(target) * settings.SzTolPct / 100.0
	})
}

func (m *NumMatcher) matches(actual float64, defaultTol func(target float64) float64) error {
	if m.Ge != nil && actual+floatSlack < *m.Ge {
		return fmt.Errorf("value %.4f < ge %.4f", actual, *m.Ge)
	}
	if m.Le != nil && actual-floatSlack > *m.Le {
		return fmt.Errorf("value %.4f > le %.4f", actual, *m.Le)
	}
	if m.Eq != nil {
		tol := defaultTol(*m.Eq)
		if m.Tol != nil {
			tol = *m.Tol
		}
		if math.Abs(actual-*m.Eq) > tol {
			return fmt.Errorf("value %.4f not within ±%.4f of %.4f", actual, tol, *m.Eq)
		}
	}
	return nil
}

// Price matcher modes.
const (
	PxModeIgnore = "ignore"
	PxModeAbs    = "abs"
)

// PxMatcher checks a realized price. Mode "ignore" always passes; mode
// "abs" applies a relative-percent tolerance against the target value.
type PxMatcher struct {
	Mode string   `json:"mode,omitempty" yaml:"mode"`
	Val  *float64 `json:"val,omitempty" yaml:"val"`
}

func (m *PxMatcher) mode() string {
	if m.Mode == "" {
		return PxModeIgnore
	}
	return strings.ToLower(m.Mode)
}

func (m *PxMatcher) validateMode() error {
	switch m.mode() {
	case PxModeIgnore, PxModeAbs:
		return nil
	default:
		return types.NewErrorf(types.GROUND_TRUTH_INVALID, "unsupported px matcher mode %q", m.Mode)
	}
}

// Matches checks the realized price. Mode "abs" requires both a target value
// and a non-nil realized price.
func (m *PxMatcher) Matches(actual *float64, settings Settings) error {
	switch m.mode() {
	case PxModeIgnore:
		return nil
	case PxModeAbs:
		if m.Val == nil {
			return fmt.Errorf("px matcher requires val when mode=abs")
		}
		if actual == nil {
			return fmt.Errorf("no price observed")
		}
		tol := math.Abs(*m.Val) * settings.PxTolPct / 100.0
		if math.Abs(*actual-*m.Val) > tol {
			return fmt.Errorf("price %.4f not within ±%.4f of %.4f", *actual, tol, *m.Val)
		}
		return nil
	default:
		return fmt.Errorf("unsupported px matcher mode '%s'", m.Mode)
	}
}
