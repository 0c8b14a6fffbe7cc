package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sigridjineth/HyperLiquidBench/cmd/hl-eval/internal"
	"github.com/sigridjineth/HyperLiquidBench/internal/artifact"
	"github.com/sigridjineth/HyperLiquidBench/internal/hian"
	"github.com/sigridjineth/HyperLiquidBench/internal/history"
	"github.com/sigridjineth/HyperLiquidBench/internal/observability"
	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

var (
	hianGround    string
	hianPerAction string
	hianWsStream  string
	hianOutDir    string
	hianWithinMs  int64
	hianWindowMs  int64
	hianAmountTol float64
	hianPxTolPct  float64
	hianSzTolPct  float64
)

var hianCmd = &cobra.Command{
	Use:   "hian",
	Short: "Match a recorded session against an ordered ground-truth case",
	Long: `HiaN aligns the expected steps of a ground-truth case against the
per-action log in order: each step must match an action at or after the
previous step's match, within the configured time budget. The verdict,
per-step matches, and latency metrics are written as a JSON report; a
human-readable diff is written when the case fails.

The command exits 0 whether the case passes or fails; a non-zero exit
means the evaluation itself could not run.`,
	RunE: runHiaN,
}

func runHiaN(cmd *cobra.Command, args []string) error {
	ctx, span := observability.StartSpan(cmd.Context(), "hian.run")
	defer span.End()

	ground, err := hian.LoadGroundTruth(hianGround)
	if err != nil {
		return err
	}

	actions, err := artifact.LoadActionLog(hianPerAction)
	if err != nil {
		return err
	}

	wsPath := hianWsStream
	if wsPath == "" {
		wsPath = filepath.Join(filepath.Dir(hianPerAction), "ws_stream.jsonl")
	}
	events, err := artifact.LoadStreamEvents(wsPath)
	if err != nil {
		return err
	}
	slog.Info("loaded session artifacts",
		"case", ground.CaseID,
		"actions", len(actions),
		"streamEvents", len(events))

	settings := hian.ResolveSettings(ground, hianOverrides(cmd))
	matcher := hian.NewMatcher(settings, events, slog.Default())
	report := matcher.Run(ground, actions)

	outDir := hianOutDir
	if outDir == "" {
		outDir = filepath.Dir(hianPerAction)
	}
	reportOut := filepath.Join(outDir, "eval_hian.json")
	if err := artifact.WriteJSONFile(reportOut, report); err != nil {
		return err
	}

	if !report.Pass {
		diff := hian.BuildDiff(ground, actions, report.Missing)
		diffOut := filepath.Join(outDir, "eval_hian_diff.txt")
		if err := artifact.WriteTextFile(diffOut, diff); err != nil {
			return err
		}
		slog.Info("wrote failure diff", "path", diffOut)
	}

	verdict := color.New(color.FgGreen, color.Bold).Sprint("HIAN=PASS")
	if !report.Pass {
		verdict = color.New(color.FgRed, color.Bold).Sprint("HIAN=FAIL")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s case=%s matched=%d missing=%d\n",
		verdict, report.CaseID, len(report.Matched), len(report.Missing))

	pass := report.Pass
	recordHistory(ctx, history.RunRecord{
		ID:          types.NewRunID(),
		Mode:        history.ModeHiaN,
		CaseID:      report.CaseID,
		Pass:        &pass,
		Matched:     len(report.Matched),
		Missing:     len(report.Missing),
		ArtifactDir: outDir,
	})

	return nil
}

// hianOverrides collects only the tolerance flags the user actually set, so
// that unset flags fall through to the ground-truth file and defaults.
func hianOverrides(cmd *cobra.Command) hian.Overrides {
	var o hian.Overrides
	if cmd.Flags().Changed("within-ms") {
		o.WithinMs = &hianWithinMs
	}
	if cmd.Flags().Changed("window-ms") {
		o.WindowMs = &hianWindowMs
	}
	if cmd.Flags().Changed("amount-tol") {
		o.AmountTol = &hianAmountTol
	}
	if cmd.Flags().Changed("px-tol-pct") {
		o.PxTolPct = &hianPxTolPct
	}
	if cmd.Flags().Changed("sz-tol-pct") {
		o.SzTolPct = &hianSzTolPct
	}
	return o
}

func init() {
	hianCmd.Flags().StringVar(&hianGround, "ground", "", "Ground-truth case file, JSON or YAML (required)")
	hianCmd.Flags().StringVar(&hianPerAction, "per-action", "", "Path to the per-action JSONL log (required)")
	hianCmd.Flags().StringVar(&hianWsStream, "ws-stream", "", "Websocket event log (defaults to ws_stream.jsonl beside the action log)")
	hianCmd.Flags().StringVar(&hianOutDir, "out-dir", "", "Report output directory (defaults to the log's directory)")
	hianCmd.Flags().Int64Var(&hianWithinMs, "within-ms", hian.DefaultWithinMs, "Max gap in ms between consecutive matched steps")
	hianCmd.Flags().Int64Var(&hianWindowMs, "window-ms", hian.DefaultWindowMs, "Event correlation window in ms")
	hianCmd.Flags().Float64Var(&hianAmountTol, "amount-tol", hian.DefaultAmountTol, "Absolute tolerance for transfer amounts")
	hianCmd.Flags().Float64Var(&hianPxTolPct, "px-tol-pct", hian.DefaultPxTolPct, "Relative price tolerance in percent")
	hianCmd.Flags().Float64Var(&hianSzTolPct, "sz-tol-pct", hian.DefaultSzTolPct, "Relative size tolerance in percent")

	for _, name := range []string{"ground", "per-action"} {
		if err := hianCmd.MarkFlagRequired(name); err != nil {
			panic(internal.WrapError(internal.ExitError, "register hian flags", err))
		}
	}
}
