package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sigridjineth/HyperLiquidBench/cmd/hl-eval/internal"
	"github.com/sigridjineth/HyperLiquidBench/internal/artifact"
	"github.com/sigridjineth/HyperLiquidBench/internal/config"
	"github.com/sigridjineth/HyperLiquidBench/internal/coverage"
	"github.com/sigridjineth/HyperLiquidBench/internal/history"
	"github.com/sigridjineth/HyperLiquidBench/internal/observability"
	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

var (
	coveragePerAction string
	coverageDomains   string
	coverageOutDir    string
	coverageWindowMs  int64
	coverageCap       int
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Score behavioral diversity of a recorded session",
	Long: `Coverage normalizes every acknowledged action in the per-action log
into a canonical signature, groups signatures into weighted capability
domains, and reports an anti-gamed diversity score: repeating one
signature past the cap is penalized, distinct signatures inside one
submission window earn a bonus.`,
	RunE: runCoverage,
}

func runCoverage(cmd *cobra.Command, args []string) error {
	ctx, span := observability.StartSpan(cmd.Context(), "coverage.run")
	defer span.End()

	cfg, err := config.LoadCoverageConfig(coverageDomains)
	if err != nil {
		return err
	}
	if coverageWindowMs > 0 {
		cfg.PerActionWindowMs = coverageWindowMs
	}
	if coverageCap > 0 {
		cfg.PerSignatureCap = coverageCap
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	records, err := artifact.LoadActionLog(coveragePerAction)
	if err != nil {
		return err
	}
	slog.Info("loaded action log", "path", coveragePerAction, "actions", len(records))

	normalized := coverage.NormalizeAll(records)

	outDir := coverageOutDir
	if outDir == "" {
		outDir = filepath.Dir(coveragePerAction)
	}
	perActionOut := filepath.Join(outDir, "eval_per_action.jsonl")
	if err := artifact.WriteJSONLFile(perActionOut, normalized); err != nil {
		return err
	}

	scorer, err := coverage.NewScorer(registry, cfg.Settings())
	if err != nil {
		return err
	}
	scorer.ObserveAll(normalized)

	report, err := scorer.Finalize()
	if err != nil {
		return err
	}

	reportOut := filepath.Join(outDir, "eval_coverage.json")
	if err := artifact.WriteJSONFile(reportOut, report); err != nil {
		return err
	}
	slog.Info("wrote coverage report",
		"report", reportOut,
		"perAction", perActionOut,
		"domains", len(report.Domains),
		"unmapped", len(report.Unmapped))

	for _, w := range report.Warnings {
		slog.Warn("signature matched multiple domains",
			"signature", w.Signature, "domains", w.Domains)
	}

	scoreColor := color.New(color.FgGreen, color.Bold)
	if report.FinalScore <= 0 {
		scoreColor = color.New(color.FgRed, color.Bold)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", scoreColor.Sprintf("FINAL_SCORE=%.3f", report.FinalScore))

	score := report.FinalScore
	recordHistory(ctx, history.RunRecord{
		ID:          types.NewRunID(),
		Mode:        history.ModeCoverage,
		FinalScore:  &score,
		ArtifactDir: outDir,
	})

	return nil
}

func init() {
	coverageCmd.Flags().StringVar(&coveragePerAction, "per-action", "", "Path to the per-action JSONL log (required)")
	coverageCmd.Flags().StringVar(&coverageDomains, "domains", "", "Domain registry YAML (built-in registry when omitted)")
	coverageCmd.Flags().StringVar(&coverageOutDir, "out-dir", "", "Report output directory (defaults to the log's directory)")
	coverageCmd.Flags().Int64Var(&coverageWindowMs, "window-ms", 0, "Override the submission window size in ms")
	coverageCmd.Flags().IntVar(&coverageCap, "cap", 0, "Override the per-signature credit cap")

	if err := coverageCmd.MarkFlagRequired("per-action"); err != nil {
		panic(internal.WrapError(internal.ExitError, "register coverage flags", err))
	}
}
