package coverage

import (
	"strings"

	"github.com/sigridjineth/HyperLiquidBench/internal/sig"
	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// wildcardSegment matches exactly one signature segment.
const wildcardSegment = "*"

// Pattern is a parsed allow-pattern: an ordered list of segments, each a
// case-insensitive literal or a single-segment wildcard, plus a
// tail-wildcard flag that matches any suffix.
type Pattern struct {
	raw          string
	segments     []string
	tailWildcard bool
}

// ParsePattern parses an allow-pattern string. A trailing "*" segment sets
// the tail wildcard; an empty segment is a configuration error.
func ParsePattern(raw string) (Pattern, error) {
	segments := strings.Split(raw, ".")
	tail := false
	if n := len(segments); n > 0 && segments[n-1] == wildcardSegment {
		tail = true
		segments = segments[:n-1]
	}
	for _, seg := range segments {
		if seg == "" {
			return Pattern{}, types.NewErrorf(types.PATTERN_INVALID, "pattern %q contains an empty segment", raw)
		}
	}
	lowered := make([]string, len(segments))
	for i, seg := range segments {
		lowered[i] = strings.ToLower(seg)
	}
	return Pattern{raw: raw, segments: lowered, tailWildcard: tail}, nil
}

// MustParsePattern parses a pattern or panics. For tests and built-in
// defaults only.
func MustParsePattern(raw string) Pattern {
	p, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original pattern text.
func (p Pattern) String() string {
	return p.raw
}

// Matches reports whether the signature satisfies the pattern. Without the
// tail wildcard, segment counts must match exactly; with it, the signature
// must carry at least the prefix segments. Literals compare
// case-insensitively; "*" segments match anything.
func (p Pattern) Matches(s sig.Signature) bool {
	sigSegments := s.Segments()
	if p.tailWildcard {
		if len(sigSegments) < len(p.segments) {
			return false
		}
	} else if len(sigSegments) != len(p.segments) {
		return false
	}
	for i, want := range p.segments {
		if want == wildcardSegment {
			continue
		}
		if !strings.EqualFold(want, sigSegments[i]) {
			return false
		}
	}
	return true
}
