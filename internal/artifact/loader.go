package artifact

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// maxLineBytes bounds a single artifact line; observed payloads can carry
// full userFills snapshots.
const maxLineBytes = 4 * 1024 * 1024

// LoadActionLog reads a per_action.jsonl file into memory. Blank lines are
// skipped; any unparseable line is fatal with its line number.
func LoadActionLog(path string) ([]ActionLogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.WrapError(types.INPUT_OPEN_FAILED, fmt.Sprintf("open action log %s", path), err)
	}
	defer f.Close()

	var records []ActionLogRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec ActionLogRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, types.WrapError(types.INPUT_PARSE_FAILED,
				fmt.Sprintf("parse action log %s line %d", path, lineNo), err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, types.WrapError(types.INPUT_PARSE_FAILED,
			fmt.Sprintf("read action log %s line %d", path, lineNo+1), err)
	}
	return records, nil
}

// LoadStreamEvents reads a ws_stream.jsonl file. A missing file yields an
// empty event list, not an error: the event-stream log is auxiliary.
func LoadStreamEvents(path string) ([]StreamEvent, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, types.WrapError(types.INPUT_OPEN_FAILED, fmt.Sprintf("open event stream %s", path), err)
	}
	defer f.Close()

	var events []StreamEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev StreamEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, types.WrapError(types.INPUT_PARSE_FAILED,
				fmt.Sprintf("parse event stream %s line %d", path, lineNo), err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, types.WrapError(types.INPUT_PARSE_FAILED,
			fmt.Sprintf("read event stream %s line %d", path, lineNo+1), err)
	}
	return events, nil
}
