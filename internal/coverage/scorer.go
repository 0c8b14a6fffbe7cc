package coverage

import (
	"sort"

	"github.com/sigridjineth/HyperLiquidBench/internal/artifact"
	"github.com/sigridjineth/HyperLiquidBench/internal/sig"
	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// Default scoring settings.
const (
	DefaultWindowMs        = int64(200)
	DefaultCapPerSignature = 3
	DefaultBonusPerExtra   = 0.25
	DefaultPenaltyPerExtra = 0.1
)

// Settings are the scoring knobs, threaded explicitly through the run.
type Settings struct {
	WindowMs        int64   `json:"windowMs"`
	CapPerSignature int     `json:"capPerSignature"`
	BonusPerExtra   float64 `json:"bonusPerExtra"`
	PenaltyPerExtra float64 `json:"penaltyPerExtra"`
}

// DefaultSettings returns the built-in scoring settings.
func DefaultSettings() Settings {
	return Settings{
		WindowMs:        DefaultWindowMs,
		CapPerSignature: DefaultCapPerSignature,
		BonusPerExtra:   DefaultBonusPerExtra,
		PenaltyPerExtra: DefaultPenaltyPerExtra,
	}
}

// Scorer accumulates coverage over evaluated action records. One scorer
// instance owns one run; it is not safe for concurrent use and must be
// finalized exactly once.
type Scorer struct {
	registry *Registry
	settings Settings

	counts   map[sig.Signature]int
	credited map[string]map[sig.Signature]struct{}
	windows  map[int64]map[sig.Signature]struct{}
	unique   map[sig.Signature]struct{}
	unmapped map[sig.Signature]struct{}
	penalty  float64

	finalized bool
}

// NewScorer builds a scorer over a registry. Non-positive window or cap is a
// configuration error.
func NewScorer(registry *Registry, settings Settings) (*Scorer, error) {
	if settings.WindowMs <= 0 {
		return nil, types.NewErrorf(types.CONFIG_VALIDATION_FAILED, "window must be positive, got %d", settings.WindowMs)
	}
	if settings.CapPerSignature <= 0 {
		return nil, types.NewErrorf(types.CONFIG_VALIDATION_FAILED, "signature cap must be positive, got %d", settings.CapPerSignature)
	}
	return &Scorer{
		registry: registry,
		settings: settings,
		counts:   make(map[sig.Signature]int),
		credited: make(map[string]map[sig.Signature]struct{}),
		windows:  make(map[int64]map[sig.Signature]struct{}),
		unique:   make(map[sig.Signature]struct{}),
		unmapped: make(map[sig.Signature]struct{}),
	}, nil
}

// Observe folds one evaluated record into the running state. Ignored
// records contribute nothing.
func (s *Scorer) Observe(rec EvalActionRecord) {
	if rec.Ignored {
		return
	}
	windowKey := artifact.WindowStart(rec.SubmitTsMs, s.settings.WindowMs)
	for _, signature := range rec.Signatures {
		bucket, ok := s.windows[windowKey]
		if !ok {
			bucket = make(map[sig.Signature]struct{})
			s.windows[windowKey] = bucket
		}
		bucket[signature] = struct{}{}
		s.unique[signature] = struct{}{}

		s.counts[signature]++
		if s.counts[signature] > s.settings.CapPerSignature {
			// Past the cap there is no credit, only spam penalty.
			s.penalty += s.settings.PenaltyPerExtra
			continue
		}

		domain, ok := s.registry.DomainFor(signature)
		if !ok || domain == OtherDomain {
			s.unmapped[signature] = struct{}{}
			continue
		}
		set, ok := s.credited[domain]
		if !ok {
			set = make(map[sig.Signature]struct{})
			s.credited[domain] = set
		}
		// Idempotent: repeat crediting of a signature has no extra effect,
		// which is what makes this a diversity score rather than a volume
		// score.
		set[signature] = struct{}{}
	}
}

// ObserveAll folds a full evaluation log.
func (s *Scorer) ObserveAll(records []EvalActionRecord) {
	for _, rec := range records {
		s.Observe(rec)
	}
}

// DomainScore is the per-domain breakdown in a finalized report.
type DomainScore struct {
	Signatures   []string `json:"signatures"`
	Count        int      `json:"count"`
	Weight       float64  `json:"weight"`
	Contribution float64  `json:"contribution"`
}

// Report is the finalized coverage score. It is never mutated after
// Finalize returns it.
type Report struct {
	FinalScore       float64                `json:"finalScore"`
	Base             float64                `json:"base"`
	Bonus            float64                `json:"bonus"`
	Penalty          float64                `json:"penalty"`
	Domains          map[string]DomainScore `json:"domains"`
	UniqueSignatures []string               `json:"uniqueSignatures"`
	Unmapped         []string               `json:"unmapped"`
	Warnings         []AmbiguousMatch       `json:"warnings,omitempty"`
	Settings         Settings               `json:"settings"`
}

// Finalize computes the score report. Calling it a second time is an error;
// the accumulator is append-only and the report immutable.
func (s *Scorer) Finalize() (*Report, error) {
	if s.finalized {
		return nil, types.NewError(types.SCORER_FINALIZED, "scorer already finalized")
	}
	s.finalized = true

	report := &Report{
		Domains:          make(map[string]DomainScore),
		UniqueSignatures: sortedSignatures(s.unique),
		Unmapped:         sortedSignatures(s.unmapped),
		Warnings:         s.registry.Warnings(),
		Settings:         s.settings,
		Penalty:          s.penalty,
	}

	for domain, set := range s.credited {
		weight := s.registry.Weight(domain)
		score := DomainScore{
			Signatures:   sortedSignatures(set),
			Count:        len(set),
			Weight:       weight,
			Contribution: weight * float64(len(set)),
		}
		report.Domains[domain] = score
		report.Base += score.Contribution
	}

	// Distinct signatures sharing one submit-time bucket signal compound
	// actions; each extra distinct signature earns the window bonus.
	for _, bucket := range s.windows {
		if extra := len(bucket) - 1; extra > 0 {
			report.Bonus += s.settings.BonusPerExtra * float64(extra)
		}
	}

	report.FinalScore = report.Base + report.Bonus - report.Penalty
	return report, nil
}

func sortedSignatures(set map[sig.Signature]struct{}) []string {
	out := make([]string, 0, len(set))
	for signature := range set {
		out = append(out, signature.String())
	}
	sort.Strings(out)
	return out
}
