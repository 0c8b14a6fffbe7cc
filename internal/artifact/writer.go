package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// WriteJSONFile writes v as indented JSON using the atomic write pattern
// (temp file in the target directory, then rename).
func WriteJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return types.WrapError(types.REPORT_WRITE_FAILED, fmt.Sprintf("encode %s", path), err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// WriteJSONLFile writes items as newline-delimited JSON, one object per
// line, atomically.
func WriteJSONLFile[T any](path string, items []T) error {
	tmp, cleanup, err := createTemp(path)
	if err != nil {
		return err
	}
	defer cleanup()

	encoder := json.NewEncoder(tmp)
	for i, item := range items {
		if err := encoder.Encode(item); err != nil {
			return types.WrapError(types.REPORT_WRITE_FAILED,
				fmt.Sprintf("encode %s entry %d", path, i), err)
		}
	}
	return commitTemp(tmp, path)
}

// WriteTextFile writes text atomically.
func WriteTextFile(path, text string) error {
	return writeAtomic(path, []byte(text))
}

func writeAtomic(path string, data []byte) error {
	tmp, cleanup, err := createTemp(path)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := tmp.Write(data); err != nil {
		return types.WrapError(types.REPORT_WRITE_FAILED, fmt.Sprintf("write %s", path), err)
	}
	return commitTemp(tmp, path)
}

func createTemp(path string) (*os.File, func(), error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, types.WrapError(types.REPORT_WRITE_FAILED, fmt.Sprintf("create directory %s", dir), err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp")
	if err != nil {
		return nil, nil, types.WrapError(types.REPORT_WRITE_FAILED, fmt.Sprintf("create temp file for %s", path), err)
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}
	return tmp, cleanup, nil
}

func commitTemp(tmp *os.File, path string) error {
	if err := tmp.Close(); err != nil {
		return types.WrapError(types.REPORT_WRITE_FAILED, fmt.Sprintf("close temp file for %s", path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return types.WrapError(types.REPORT_WRITE_FAILED, fmt.Sprintf("rename into %s", path), err)
	}
	return nil
}
