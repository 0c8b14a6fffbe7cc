package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sigridjineth/HyperLiquidBench/cmd/hl-eval/internal"
	"github.com/sigridjineth/HyperLiquidBench/internal/history"
	"github.com/sigridjineth/HyperLiquidBench/internal/observability"
)

// Global flag values shared by all subcommands.
var (
	logLevel      string
	logFormat     string
	verboseFlag   bool
	historyDBPath string
)

var rootCmd = &cobra.Command{
	Use:   "hl-eval",
	Short: "hl-eval - offline evaluation harness for exchange trading agents",
	Long: `hl-eval scores recorded trading-agent sessions offline.

It reads the per-action JSONL log (and optionally the websocket event
stream log) produced during a session and evaluates it in one of two
modes: "coverage" computes a weighted behavioral diversity score, and
"hian" aligns the session against an ordered ground-truth case.`,
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// setupLogging installs the process-wide slog logger before any
// subcommand runs.
func setupLogging(cmd *cobra.Command, args []string) error {
	internal.SetVerbose(verboseFlag)

	level := logLevel
	if verboseFlag {
		level = "debug"
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), level, logFormat)
	slog.SetDefault(logger)
	return nil
}

// openHistory opens the run journal when a path is configured. Errors are
// logged and swallowed: history is best-effort and must never fail a run.
func openHistory() *history.Store {
	path := historyDBPath
	if path == "" {
		path = os.Getenv("HL_EVAL_HISTORY_DB")
	}
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("run history unavailable", "path", path, "error", err)
		return nil
	}
	return store
}

// recordHistory appends one run to the journal when it is configured.
func recordHistory(ctx context.Context, rec history.RunRecord) {
	store := openHistory()
	if store == nil {
		return
	}
	defer store.Close()

	if err := store.Record(ctx, rec); err != nil {
		slog.Warn("failed to record run history", "error", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", observability.FormatText, "Log format (text or json)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose diagnostics")
	rootCmd.PersistentFlags().StringVar(&historyDBPath, "history-db", "", "SQLite run-history database path (or HL_EVAL_HISTORY_DB)")

	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(hianCmd)
	rootCmd.AddCommand(historyCmd)
}
