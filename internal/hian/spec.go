// Package hian validates a Haystack-in-a-Needle ground-truth scenario
// against runner artifacts: an ordered list of expected abstract effects is
// aligned, forward-only, against the action log, with the websocket
// event-stream log as a fallback source for realized transfers and fills.
package hian

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// Default matcher settings; CLI override > ground-truth file value >
// built-in default.
const (
	DefaultWithinMs  = int64(2000)
	DefaultWindowMs  = int64(200)
	DefaultAmountTol = 0.01
	DefaultPxTolPct  = 0.2
	DefaultSzTolPct  = 0.5
)

// GroundTruth is one scenario spec: an ordered list of expected steps with
// optional timing overrides.
type GroundTruth struct {
	CaseID   string         `json:"caseId,omitempty" yaml:"caseId"`
	WithinMs *int64         `json:"withinMs,omitempty" yaml:"withinMs"`
	WindowMs *int64         `json:"windowMs,omitempty" yaml:"windowMs"`
	Steps    []ExpectedStep `json:"steps" yaml:"steps"`
}

// ExpectedStep is a tagged union: exactly one of the step kinds is set.
type ExpectedStep struct {
	UsdClassTransfer *ExpectedTransfer  `json:"usdClassTransfer,omitempty" yaml:"usdClassTransfer"`
	PerpOrder        *ExpectedPerpOrder `json:"perpOrder,omitempty" yaml:"perpOrder"`
}

// Describe renders a short human-readable form of the step for reports and
// diffs.
func (s ExpectedStep) Describe() string {
	switch {
	case s.UsdClassTransfer != nil:
		t := s.UsdClassTransfer
		return fmt.Sprintf("usd_class_transfer { toPerp: %t, usdc: %s }", t.ToPerp, t.Usdc.describe())
	case s.PerpOrder != nil:
		p := s.PerpOrder
		return fmt.Sprintf("perp_order { coin: %s, side: %s, tif: %s, reduceOnly: %s }",
			describeString(p.Coin), describeString(p.Side), describeString(p.Tif), describeBool(p.ReduceOnly))
	default:
		return "unsupported step"
	}
}

// ExpectedTransfer matches a usd_class_transfer action.
type ExpectedTransfer struct {
	ToPerp bool        `json:"toPerp" yaml:"toPerp"`
	Usdc   *NumMatcher `json:"usdc,omitempty" yaml:"usdc"`
}

// ExpectedPerpOrder matches one order inside a perp_orders action. Nil
// filters are unconstrained.
type ExpectedPerpOrder struct {
	Coin        *string     `json:"coin,omitempty" yaml:"coin"`
	Side        *string     `json:"side,omitempty" yaml:"side"`
	Tif         *string     `json:"tif,omitempty" yaml:"tif"`
	ReduceOnly  *bool       `json:"reduceOnly,omitempty" yaml:"reduceOnly"`
	Sz          *NumMatcher `json:"sz,omitempty" yaml:"sz"`
	Px          *PxMatcher  `json:"px,omitempty" yaml:"px"`
	RequireFill bool        `json:"requireFill,omitempty" yaml:"requireFill"`
}

// LoadGroundTruth reads and validates a ground-truth spec. JSON is the
// native format; .yaml/.yml files parse as YAML.
func LoadGroundTruth(path string) (*GroundTruth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.INPUT_OPEN_FAILED, fmt.Sprintf("open ground truth %s", path), err)
	}
	var ground GroundTruth
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &ground); err != nil {
			return nil, types.WrapError(types.GROUND_TRUTH_INVALID, fmt.Sprintf("parse ground truth %s", path), err)
		}
	default:
		if err := json.Unmarshal(data, &ground); err != nil {
			return nil, types.WrapError(types.GROUND_TRUTH_INVALID, fmt.Sprintf("parse ground truth %s", path), err)
		}
	}
	if err := ground.Validate(); err != nil {
		return nil, err
	}
	return &ground, nil
}

// Validate applies the configuration-error checks that must fail before
// processing starts.
func (g *GroundTruth) Validate() error {
	if len(g.Steps) == 0 {
		return types.NewError(types.GROUND_TRUTH_INVALID, "ground truth declares no steps")
	}
	if g.WithinMs != nil && *g.WithinMs <= 0 {
		return types.NewErrorf(types.GROUND_TRUTH_INVALID, "withinMs must be positive, got %d", *g.WithinMs)
	}
	if g.WindowMs != nil && *g.WindowMs <= 0 {
		return types.NewErrorf(types.GROUND_TRUTH_INVALID, "windowMs must be positive, got %d", *g.WindowMs)
	}
	for i, step := range g.Steps {
		set := 0
		if step.UsdClassTransfer != nil {
			set++
		}
		if step.PerpOrder != nil {
			set++
		}
		if set != 1 {
			return types.NewErrorf(types.GROUND_TRUTH_INVALID, "step %d must declare exactly one kind", i)
		}
		if p := step.PerpOrder; p != nil && p.Px != nil {
			if err := p.Px.validateMode(); err != nil {
				return types.WrapError(types.GROUND_TRUTH_INVALID, fmt.Sprintf("step %d", i), err)
			}
		}
	}
	return nil
}

// Settings are the resolved matcher tolerances and timing bounds for one
// run.
type Settings struct {
	WithinMs  int64   `json:"withinMs"`
	WindowMs  int64   `json:"windowMs"`
	AmountTol float64 `json:"amountTolerance"`
	PxTolPct  float64 `json:"pxTolerancePct"`
	SzTolPct  float64 `json:"szTolerancePct"`
}

// Overrides carries optional CLI-level settings; nil fields fall through to
// the ground-truth file values and then to built-in defaults.
type Overrides struct {
	WithinMs  *int64
	WindowMs  *int64
	AmountTol *float64
	PxTolPct  *float64
	SzTolPct  *float64
}

// ResolveSettings applies the precedence CLI override > file value >
// built-in default.
func ResolveSettings(ground *GroundTruth, overrides Overrides) Settings {
	s := Settings{
		WithinMs:  DefaultWithinMs,
		WindowMs:  DefaultWindowMs,
		AmountTol: DefaultAmountTol,
		PxTolPct:  DefaultPxTolPct,
		SzTolPct:  DefaultSzTolPct,
	}
	if ground != nil {
		if ground.WithinMs != nil {
			s.WithinMs = *ground.WithinMs
		}
		if ground.WindowMs != nil {
			s.WindowMs = *ground.WindowMs
		}
	}
	if overrides.WithinMs != nil {
		s.WithinMs = *overrides.WithinMs
	}
	if overrides.WindowMs != nil {
		s.WindowMs = *overrides.WindowMs
	}
	if overrides.AmountTol != nil {
		s.AmountTol = *overrides.AmountTol
	}
	if overrides.PxTolPct != nil {
		s.PxTolPct = *overrides.PxTolPct
	}
	if overrides.SzTolPct != nil {
		s.SzTolPct = *overrides.SzTolPct
	}
	return s
}

func describeString(s *string) string {
	if s == nil {
		return "any"
	}
	return *s
}

func describeBool(b *bool) string {
	if b == nil {
		return "any"
	}
	return fmt.Sprintf("%t", *b)
}

func (m *NumMatcher) describe() string {
	if m == nil {
		return "any"
	}
	var parts []string
	if m.Eq != nil {
		parts = append(parts, fmt.Sprintf("eq %.4f", *m.Eq))
	}
	if m.Tol != nil {
		parts = append(parts, fmt.Sprintf("tol %.4f", *m.Tol))
	}
	if m.Ge != nil {
		parts = append(parts, fmt.Sprintf("ge %.4f", *m.Ge))
	}
	if m.Le != nil {
		parts = append(parts, fmt.Sprintf("le %.4f", *m.Le))
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, ", ")
}
