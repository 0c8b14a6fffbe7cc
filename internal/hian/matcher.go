package hian

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sigridjineth/HyperLiquidBench/internal/artifact"
)

// Matcher aligns ground-truth steps against an action log. One matcher
// instance owns one run.
type Matcher struct {
	settings Settings
	events   []artifact.StreamEvent
	logger   *slog.Logger
}

// NewMatcher builds a matcher over resolved settings and the (possibly
// empty) event-stream log.
func NewMatcher(settings Settings, events []artifact.StreamEvent, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{settings: settings, events: events, logger: logger}
}

// Report is the alignment verdict. Pass is true iff no step is missing.
type Report struct {
	Pass     bool          `json:"pass"`
	CaseID   string        `json:"caseId,omitempty"`
	Matched  []MatchedStep `json:"matched"`
	Missing  []MissingStep `json:"missing"`
	Extra    []any         `json:"extra"`
	Metrics  Metrics       `json:"metrics"`
	Settings Settings      `json:"settings"`
}

// Metrics carries per-step latency (expected-step index -> ms, null when the
// step did not match) and the window size used.
type Metrics struct {
	LatencyMs map[string]*int64 `json:"latencyMs"`
	WindowMs  int64             `json:"windowMs"`
}

// MatchedStep records where one expected step landed in the action log.
type MatchedStep struct {
	ExpectIdx int           `json:"expectIdx"`
	MatchedAt int           `json:"matchedAt"`
	Kind      string        `json:"kind"`
	TsMs      int64         `json:"tsMs"`
	Oid       *artifact.Oid `json:"oid,omitempty"`
	Fill      *FillInfo     `json:"fill,omitempty"`
}

// MissingStep records one expected step that found no candidate, with the
// last failure reason observed while scanning.
type MissingStep struct {
	ExpectIdx   int    `json:"expectIdx"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// FillInfo is the realized fill attached to a matched order step.
type FillInfo struct {
	Px string `json:"px,omitempty"`
	Sz string `json:"sz,omitempty"`
}

// matchDetail is the internal outcome of matching one step to one action.
type matchDetail struct {
	kind      string
	tsMs      int64
	oid       *artifact.Oid
	fill      *FillInfo
	latencyMs *int64
}

// Run aligns the ground-truth steps against the action log. The cursor is
// monotonic: once step i matches log index k, step i+1 only searches
// indices > k. A missing step neither consumes nor skips log entries.
func (m *Matcher) Run(ground *GroundTruth, actions []artifact.ActionLogRecord) *Report {
	report := &Report{
		CaseID:  ground.CaseID,
		Matched: []MatchedStep{},
		Missing: []MissingStep{},
		Extra:   []any{},
		Metrics: Metrics{
			LatencyMs: make(map[string]*int64),
			WindowMs:  m.settings.WindowMs,
		},
		Settings: m.settings,
	}

	cursor := -1
	var lastTs *int64

	for expectIdx, step := range ground.Steps {
		foundAt := -1
		var detail matchDetail
		failureReason := "not found"

		for idx := cursor + 1; idx < len(actions); idx++ {
			action := &actions[idx]
			// The gap constraint never applies before the first match.
			if lastTs != nil && action.SubmitTsMs-*lastTs > m.settings.WithinMs {
				failureReason = fmt.Sprintf("no matching action within %d ms after previous step", m.settings.WithinMs)
				break
			}
			d, err := m.matchStep(step, action)
			if err != nil {
				failureReason = err.Error()
				continue
			}
			foundAt = idx
			detail = d
			break
		}

		key := strconv.Itoa(expectIdx)
		if foundAt >= 0 {
			cursor = foundAt
			ts := actions[foundAt].SubmitTsMs
			lastTs = &ts
			report.Metrics.LatencyMs[key] = detail.latencyMs
			report.Matched = append(report.Matched, MatchedStep{
				ExpectIdx: expectIdx,
				MatchedAt: foundAt,
				Kind:      detail.kind,
				TsMs:      detail.tsMs,
				Oid:       detail.oid,
				Fill:      detail.fill,
			})
			m.logger.Debug("step matched",
				"expectIdx", expectIdx, "matchedAt", foundAt, "kind", detail.kind)
		} else {
			report.Metrics.LatencyMs[key] = nil
			report.Missing = append(report.Missing, MissingStep{
				ExpectIdx:   expectIdx,
				Description: step.Describe(),
				Reason:      failureReason,
			})
			m.logger.Debug("step missing", "expectIdx", expectIdx, "reason", failureReason)
		}
	}

	report.Pass = len(report.Missing) == 0
	return report
}

func (m *Matcher) matchStep(step ExpectedStep, action *artifact.ActionLogRecord) (matchDetail, error) {
	switch {
	case step.UsdClassTransfer != nil:
		return m.matchTransfer(step.UsdClassTransfer, action)
	case step.PerpOrder != nil:
		return m.matchPerpOrder(step.PerpOrder, action)
	default:
		return matchDetail{}, fmt.Errorf("unsupported step kind")
	}
}

func (m *Matcher) matchTransfer(expected *ExpectedTransfer, action *artifact.ActionLogRecord) (matchDetail, error) {
	if action.Kind() != artifact.ActionUsdClassTransfer {
		return matchDetail{}, fmt.Errorf("action kind mismatch")
	}

	req := action.Request.UsdClassTransfer
	if req == nil || req.ToPerp == nil {
		return matchDetail{}, fmt.Errorf("missing toPerp in request")
	}
	if *req.ToPerp != expected.ToPerp {
		return matchDetail{}, fmt.Errorf("toPerp mismatch (expected %t, got %t)", expected.ToPerp, *req.ToPerp)
	}

	// Realized transfer: the record's own observed payloads first, then the
	// event-stream log within the within_ms radius.
	event := transferFromObserved(action)
	if event == nil {
		event = m.transferFromStream(action)
	}
	if event == nil {
		return matchDetail{}, fmt.Errorf("no observed transfer event")
	}

	if expected.Usdc != nil {
		if event.usdc == nil {
			return matchDetail{}, fmt.Errorf("transfer amount missing in observed event")
		}
		if err := expected.Usdc.MatchesAmount(*event.usdc, m.settings); err != nil {
			return matchDetail{}, err
		}
	}

	return matchDetail{
		kind:      string(artifact.ActionUsdClassTransfer),
		tsMs:      action.SubmitTsMs,
		latencyMs: latencyFrom(event.timeMs, action.SubmitTsMs),
	}, nil
}

func (m *Matcher) matchPerpOrder(expected *ExpectedPerpOrder, action *artifact.ActionLogRecord) (matchDetail, error) {
	if action.Kind() != artifact.ActionPerpOrders {
		return matchDetail{}, fmt.Errorf("action kind mismatch")
	}

	req := action.Request.PerpOrders
	if req == nil || len(req.Orders) == 0 {
		return matchDetail{}, fmt.Errorf("perp_orders step missing orders")
	}
	statuses := action.Ack.Statuses()

	// Order-position-first: the first order passing every filter commits
	// this candidate. A later failure (missing fill, price out of
	// tolerance) rejects the whole action, not just this position.
	for idx := range req.Orders {
		order := &req.Orders[idx]
		if expected.Coin != nil && !strings.EqualFold(order.Coin, *expected.Coin) {
			continue
		}
		if expected.Side != nil && !strings.EqualFold(order.Side, *expected.Side) {
			continue
		}
		if expected.Tif != nil && !strings.EqualFold(order.Tif, *expected.Tif) {
			continue
		}
		if expected.ReduceOnly != nil && order.ReduceOnly != *expected.ReduceOnly {
			continue
		}
		if expected.Sz != nil {
			if !order.Sz.Valid() {
				return matchDetail{}, fmt.Errorf("order size missing")
			}
			if err := expected.Sz.MatchesSize(order.Sz.Float64(), m.settings); err != nil {
				return matchDetail{}, err
			}
		}

		if idx >= len(statuses) {
			continue
		}
		status := &statuses[idx]
		if status.IsError() {
			continue
		}

		fill := fillFromStatus(status)
		if expected.RequireFill && fill == nil {
			fill = fillFromObserved(action)
			if fill == nil {
				fill = fillFromStream(m.events, status.Oid)
			}
			if fill == nil {
				return matchDetail{}, fmt.Errorf("order required fill but none observed")
			}
		}

		if expected.Px != nil {
			price := fillPrice(fill)
			if price == nil {
				if parsed, ok := artifact.ParseNumber(status.AvgPx); ok {
					price = &parsed
				}
			}
			if err := expected.Px.Matches(price, m.settings); err != nil {
				return matchDetail{}, err
			}
		}

		var fillInfo *FillInfo
		var latency *int64
		if fill != nil {
			fillInfo = &FillInfo{Px: fill.px, Sz: fill.sz}
			latency = latencyFrom(fill.timeMs, action.SubmitTsMs)
		}

		return matchDetail{
			kind:      "perp_order",
			tsMs:      action.SubmitTsMs,
			oid:       status.Oid,
			fill:      fillInfo,
			latencyMs: latency,
		}, nil
	}

	return matchDetail{}, fmt.Errorf("no matching order in step")
}

// latencyFrom computes realized latency clamped at zero, or nil when the
// realized event carries no timestamp.
func latencyFrom(eventTime *int64, submitTs int64) *int64 {
	if eventTime == nil {
		return nil
	}
	latency := *eventTime - submitTs
	if latency < 0 {
		latency = 0
	}
	return &latency
}

func fillPrice(fill *fillDetail) *float64 {
	if fill == nil {
		return nil
	}
	if parsed, ok := artifact.ParseNumber(fill.px); ok {
		return &parsed
	}
	return nil
}
