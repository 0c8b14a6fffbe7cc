package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigridjineth/HyperLiquidBench/internal/coverage"
	"github.com/sigridjineth/HyperLiquidBench/internal/hian"
)

// executeCommand runs the root command with the given args, capturing
// stdout. Global flag state is reset afterwards so tests stay independent.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		coverageDomains = ""
		coverageOutDir = ""
		coverageWindowMs = 0
		coverageCap = 0
		hianOutDir = ""
		hianWsStream = ""
		historyDBPath = ""
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleActionLog = `{"stepIdx":0,"action":"usd_class_transfer","submitTsMs":1000,"windowKeyMs":1000,"request":{"usd_class_transfer":{"toPerp":true,"usdc":"25"}},"ack":{"status":"ok"},"observed":{"channel":"accountClassTransfer","toPerp":true,"usdc":"25","time":1010}}
{"stepIdx":1,"action":"perp_orders","submitTsMs":1500,"windowKeyMs":1400,"request":{"perp_orders":{"orders":[{"coin":"ETH","side":"buy","tif":"GTC","sz":"0.5","px":"2000"}]}},"ack":{"status":"ok","data":{"statuses":[{"kind":"resting","oid":77}]}}}
{"stepIdx":2,"action":"cancel_all","submitTsMs":2200,"windowKeyMs":2200,"request":{"cancel_all":{}},"ack":{"status":"ok"}}
`

func TestCoverageCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	perAction := writeFile(t, dir, "per_action.jsonl", sampleActionLog)

	out, err := executeCommand(t, "coverage", "--per-action", perAction)
	require.NoError(t, err)
	assert.Contains(t, out, "FINAL_SCORE=")

	raw, err := os.ReadFile(filepath.Join(dir, "eval_coverage.json"))
	require.NoError(t, err)

	var report coverage.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	// Three distinct signatures across three default domains, weight 1 each.
	assert.InDelta(t, 3.0, report.FinalScore, 1e-9)
	assert.Len(t, report.UniqueSignatures, 3)
	assert.Contains(t, report.UniqueSignatures, "perp.order.GTC:false:none")
	assert.Contains(t, report.UniqueSignatures, "perp.cancel.all")
	assert.Contains(t, report.UniqueSignatures, "account.usdClassTransfer.toPerp")

	// Per-action artifact is written beside the log by default.
	_, err = os.Stat(filepath.Join(dir, "eval_per_action.jsonl"))
	require.NoError(t, err)
}

func TestCoverageCommandCustomDomains(t *testing.T) {
	dir := t.TempDir()
	perAction := writeFile(t, dir, "per_action.jsonl", sampleActionLog)
	domains := writeFile(t, dir, "domains.yaml", `
per_action_window_ms: 200
per_signature_cap: 3
domains:
  perp_only:
    weight: 2.0
    allow:
      - "perp.*"
  _other:
    weight: 0
    allow:
      - "*"
`)

	out, err := executeCommand(t, "coverage", "--per-action", perAction, "--domains", domains)
	require.NoError(t, err)
	assert.Contains(t, out, "FINAL_SCORE=4.000")
}

func TestCoverageCommandMissingLog(t *testing.T) {
	_, err := executeCommand(t, "coverage", "--per-action", filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
}

func TestHiaNCommandPass(t *testing.T) {
	dir := t.TempDir()
	perAction := writeFile(t, dir, "per_action.jsonl", sampleActionLog)
	ground := writeFile(t, dir, "case.json", `{
  "caseId": "transfer-then-order",
  "steps": [
    {"usdClassTransfer": {"toPerp": true, "usdc": {"eq": 25}}},
    {"perpOrder": {"coin": "ETH", "side": "buy", "tif": "GTC", "sz": {"eq": 0.5}}}
  ]
}`)

	out, err := executeCommand(t, "hian", "--ground", ground, "--per-action", perAction)
	require.NoError(t, err)
	assert.Contains(t, out, "HIAN=PASS")
	assert.Contains(t, out, "case=transfer-then-order")

	raw, err := os.ReadFile(filepath.Join(dir, "eval_hian.json"))
	require.NoError(t, err)

	var report hian.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.True(t, report.Pass)
	assert.Len(t, report.Matched, 2)
	assert.Empty(t, report.Missing)

	// No diff artifact on pass.
	_, err = os.Stat(filepath.Join(dir, "eval_hian_diff.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestHiaNCommandFailWritesDiff(t *testing.T) {
	dir := t.TempDir()
	perAction := writeFile(t, dir, "per_action.jsonl", sampleActionLog)
	ground := writeFile(t, dir, "case.json", `{
  "caseId": "wants-sol",
  "steps": [
    {"perpOrder": {"coin": "SOL", "side": "buy"}}
  ]
}`)

	out, err := executeCommand(t, "hian", "--ground", ground, "--per-action", perAction)
	require.NoError(t, err)
	assert.Contains(t, out, "HIAN=FAIL")

	diff, err := os.ReadFile(filepath.Join(dir, "eval_hian_diff.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(diff), "HiaN FAIL (case wants-sol)")
	assert.Contains(t, string(diff), "Step 0 expected:")
}

func TestHiaNCommandToleranceOverride(t *testing.T) {
	dir := t.TempDir()
	perAction := writeFile(t, dir, "per_action.jsonl", sampleActionLog)
	ground := writeFile(t, dir, "case.json", `{
  "caseId": "loose-amount",
  "steps": [
    {"usdClassTransfer": {"toPerp": true, "usdc": {"eq": 24}}}
  ]
}`)

	out, err := executeCommand(t, "hian", "--ground", ground, "--per-action", perAction)
	require.NoError(t, err)
	assert.Contains(t, out, "HIAN=FAIL")

	out, err = executeCommand(t, "hian",
		"--ground", ground, "--per-action", perAction, "--amount-tol", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "HIAN=PASS")
}

func TestHiaNCommandInvalidGround(t *testing.T) {
	dir := t.TempDir()
	perAction := writeFile(t, dir, "per_action.jsonl", sampleActionLog)
	ground := writeFile(t, dir, "case.json", `{"caseId": "empty", "steps": []}`)

	_, err := executeCommand(t, "hian", "--ground", ground, "--per-action", perAction)
	require.Error(t, err)
}

func TestHistoryListAfterCoverageRun(t *testing.T) {
	dir := t.TempDir()
	perAction := writeFile(t, dir, "per_action.jsonl", sampleActionLog)
	db := filepath.Join(dir, "runs.db")

	_, err := executeCommand(t, "coverage", "--per-action", perAction, "--history-db", db)
	require.NoError(t, err)

	out, err := executeCommand(t, "history", "list", "--history-db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "coverage")
	assert.Contains(t, out, "score=3.000")
	assert.Contains(t, out, dir)
}

func TestHistoryListUnconfigured(t *testing.T) {
	t.Setenv("HL_EVAL_HISTORY_DB", "")
	_, err := executeCommand(t, "history", "list")
	require.Error(t, err)
}
