package types

import (
	"fmt"

	"github.com/google/uuid"
)

// RunID identifies a single evaluation run.
// It wraps a UUID string for type-safe generation and validation.
type RunID string

// NewRunID generates a new UUID v4 and returns it as a RunID.
func NewRunID() RunID {
	return RunID(uuid.New().String())
}

// ParseRunID parses and validates a string as a UUID, returning a RunID.
func ParseRunID(s string) (RunID, error) {
	if s == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid run ID format: %w", err)
	}
	return RunID(parsed.String()), nil
}

// String returns the string representation of the RunID.
func (id RunID) String() string {
	return string(id)
}

// IsZero checks if the RunID is empty.
func (id RunID) IsZero() bool {
	return id == ""
}
