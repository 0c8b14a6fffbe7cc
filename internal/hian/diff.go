package hian

import (
	"fmt"
	"strings"

	"github.com/sigridjineth/HyperLiquidBench/internal/artifact"
)

// contextRadius is how many of the most recent actions the diff shows for
// debugging a missing step.
const contextRadius = 3

// BuildDiff renders the human-readable failure diff: case id, each missing
// step's description and reason, and a short window of the most recent
// actions.
func BuildDiff(ground *GroundTruth, actions []artifact.ActionLogRecord, missing []MissingStep) string {
	var out strings.Builder

	caseID := ground.CaseID
	if caseID == "" {
		caseID = "unknown-case"
	}
	fmt.Fprintf(&out, "HiaN FAIL (case %s)\n", caseID)

	for _, miss := range missing {
		fmt.Fprintf(&out, "\nStep %d expected: %s\n  ✗ %s\n", miss.ExpectIdx, miss.Description, miss.Reason)
		for _, summary := range contextActions(actions, contextRadius) {
			fmt.Fprintf(&out, "    %s\n", summary)
		}
	}
	return out.String()
}

// contextActions summarizes the last radius actions with their log indices.
func contextActions(actions []artifact.ActionLogRecord, radius int) []string {
	start := len(actions) - radius
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, len(actions)-start)
	for idx := start; idx < len(actions); idx++ {
		out = append(out, fmt.Sprintf("#%d %s @%d", idx, actionSummary(&actions[idx]), actions[idx].SubmitTsMs))
	}
	return out
}

func actionSummary(action *artifact.ActionLogRecord) string {
	switch action.Kind() {
	case artifact.ActionUsdClassTransfer:
		toPerp := false
		usdc := 0.0
		if req := action.Request.UsdClassTransfer; req != nil {
			if req.ToPerp != nil {
				toPerp = *req.ToPerp
			}
			usdc = req.Usdc.Float64()
		}
		return fmt.Sprintf("usd_class_transfer { toPerp: %t, usdc: %.4f }", toPerp, usdc)
	case artifact.ActionPerpOrders:
		coin, side := "?", "?"
		if req := action.Request.PerpOrders; req != nil && len(req.Orders) > 0 {
			if req.Orders[0].Coin != "" {
				coin = req.Orders[0].Coin
			}
			if req.Orders[0].Side != "" {
				side = req.Orders[0].Side
			}
		}
		return fmt.Sprintf("perp_orders { coin: %s, side: %s }", coin, side)
	default:
		return action.Action
	}
}
