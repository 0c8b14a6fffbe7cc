package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadActionLogSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "per_action.jsonl", `
{"stepIdx":0,"action":"cancel_all","submitTsMs":1000,"windowKeyMs":1000,"request":{"cancel_all":{}},"ack":{"status":"ok"}}

{"stepIdx":1,"action":"cancel_last","submitTsMs":1100,"windowKeyMs":1100,"request":{"cancel_last":{}},"ack":{"status":"ok"}}
`)

	records, err := LoadActionLog(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ActionCancelAll, records[0].Kind())
	assert.Equal(t, 1, records[1].StepIdx)
}

func TestLoadActionLogReportsLineNumber(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "per_action.jsonl",
		`{"stepIdx":0,"action":"cancel_all","submitTsMs":1000,"windowKeyMs":1000,"request":{"cancel_all":{}}}
{not json`)

	_, err := LoadActionLog(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.INPUT_PARSE_FAILED, "")))
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadActionLogMissingFile(t *testing.T) {
	_, err := LoadActionLog(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.INPUT_OPEN_FAILED, "")))
}

func TestLoadStreamEventsMissingFileIsEmpty(t *testing.T) {
	events, err := LoadStreamEvents(filepath.Join(t.TempDir(), "ws_stream.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = LoadStreamEvents("")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLoadStreamEvents(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ws_stream.jsonl",
		`{"channel":"accountClassTransfer","toPerp":true,"usdc":25.0,"time":1010}
{"channel":"userFills","fills":[{"px":"3875.1","sz":"0.01","time":1210,"oid":1}]}`)

	events, err := LoadStreamEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ChannelAccountClassTransfer, events[0].Channel)
	require.NotNil(t, events[0].ToPerp)
	assert.True(t, *events[0].ToPerp)
	require.Len(t, events[1].Fills, 1)
	assert.Equal(t, "0.01", events[1].Fills[0].Sz)
}

func TestWriteJSONFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "report.json")

	require.NoError(t, WriteJSONFile(path, map[string]any{"pass": true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pass": true`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteJSONLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.jsonl")

	type row struct {
		Idx int `json:"idx"`
	}
	require.NoError(t, WriteJSONLFile(path, []row{{0}, {1}, {2}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"idx\":0}\n{\"idx\":1}\n{\"idx\":2}\n", string(data))
}
