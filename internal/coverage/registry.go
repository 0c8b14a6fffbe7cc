package coverage

import (
	"github.com/sigridjineth/HyperLiquidBench/internal/sig"
	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// OtherDomain is the unscored catch-all domain name. Signatures resolving
// only to it count as unmapped.
const OtherDomain = "_other"

// DomainSpec is the registry construction input for one domain.
type DomainSpec struct {
	Name   string
	Weight float64
	Allow  []string
}

// Domain is a named, weighted capability bucket backed by allow-patterns.
type Domain struct {
	Name     string
	Weight   float64
	Patterns []Pattern
}

// AmbiguousMatch is the structured warning emitted when a signature matches
// more than one domain.
type AmbiguousMatch struct {
	Signature sig.Signature `json:"signature"`
	Domains   []string      `json:"domains"`
}

// Registry resolves signatures to at most one credited domain. Resolution is
// a pure function of the registry contents; ambiguity warnings accumulate as
// collectible data rather than console output.
type Registry struct {
	domains  []Domain
	warnings []AmbiguousMatch
	warned   map[sig.Signature]struct{}
}

// NewRegistry builds a registry from domain specs, preserving their order
// for first-match resolution. A domain with no allow patterns or a negative
// weight is a configuration error.
func NewRegistry(specs []DomainSpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, types.NewError(types.REGISTRY_INVALID, "registry declares no domains")
	}
	domains := make([]Domain, 0, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, types.NewError(types.REGISTRY_INVALID, "registry contains a domain with no name")
		}
		if len(spec.Allow) == 0 {
			return nil, types.NewErrorf(types.REGISTRY_INVALID, "domain %q declares no allow patterns", spec.Name)
		}
		if spec.Weight < 0 {
			return nil, types.NewErrorf(types.REGISTRY_INVALID, "domain %q has negative weight %v", spec.Name, spec.Weight)
		}
		patterns := make([]Pattern, 0, len(spec.Allow))
		for _, raw := range spec.Allow {
			p, err := ParsePattern(raw)
			if err != nil {
				return nil, types.WrapError(types.REGISTRY_INVALID, "domain "+spec.Name, err)
			}
			patterns = append(patterns, p)
		}
		domains = append(domains, Domain{Name: spec.Name, Weight: spec.Weight, Patterns: patterns})
	}
	return &Registry{domains: domains, warned: make(map[sig.Signature]struct{})}, nil
}

// Domains returns the registry's domains in resolution order.
func (r *Registry) Domains() []Domain {
	return r.domains
}

// Weight returns the configured weight of a domain, or 0 when unknown.
func (r *Registry) Weight(name string) float64 {
	for _, d := range r.domains {
		if d.Name == name {
			return d.Weight
		}
	}
	return 0
}

// DomainFor resolves a signature to its credited domain. When several
// domains match, a structured warning is recorded and the first
// non-_other match wins; ok is false when nothing matches.
func (r *Registry) DomainFor(s sig.Signature) (name string, ok bool) {
	var matches []string
	for _, d := range r.domains {
		for _, p := range d.Patterns {
			if p.Matches(s) {
				matches = append(matches, d.Name)
				break
			}
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	if len(matches) > 1 {
		// One warning per signature, however often it resolves.
		if _, seen := r.warned[s]; !seen {
			r.warned[s] = struct{}{}
			r.warnings = append(r.warnings, AmbiguousMatch{Signature: s, Domains: matches})
		}
	}
	for _, m := range matches {
		if m != OtherDomain {
			return m, true
		}
	}
	return matches[0], true
}

// Warnings returns the ambiguity warnings recorded so far.
func (r *Registry) Warnings() []AmbiguousMatch {
	return r.warnings
}
