package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sigridjineth/HyperLiquidBench/cmd/hl-eval/internal"
	"github.com/sigridjineth/HyperLiquidBench/internal/history"
)

var (
	historyMode  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the local run journal",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded evaluation runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store := openHistory()
	if store == nil {
		return internal.NewCLIError(internal.ExitDatabaseError,
			"no run history configured (set --history-db or HL_EVAL_HISTORY_DB)")
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), historyMode, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tMODE\tCASE\tRESULT\tARTIFACTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Mode,
			orDash(run.CaseID),
			formatResult(run),
			run.ArtifactDir)
	}
	return w.Flush()
}

func formatResult(run history.RunRecord) string {
	switch {
	case run.FinalScore != nil:
		return fmt.Sprintf("score=%.3f", *run.FinalScore)
	case run.Pass != nil && *run.Pass:
		return "PASS"
	case run.Pass != nil:
		return fmt.Sprintf("FAIL (%d/%d)", run.Matched, run.Matched+run.Missing)
	default:
		return "-"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyMode, "mode", "", "Filter by run mode (coverage or hian)")
	historyCmd.PersistentFlags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.AddCommand(historyListCmd)
}
