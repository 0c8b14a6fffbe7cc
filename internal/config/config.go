// Package config loads and validates the coverage-mode configuration: the
// domain registry plus scoring settings. Ground-truth specs load in
// internal/hian; this package only covers the coverage side.
package config

import (
	"sort"

	"github.com/sigridjineth/HyperLiquidBench/internal/coverage"
)

// DomainConfig is one capability domain in the config file.
type DomainConfig struct {
	Weight float64  `mapstructure:"weight" yaml:"weight"`
	Allow  []string `mapstructure:"allow" yaml:"allow"`
}

// CoverageConfig is the coverage-mode configuration file contents.
type CoverageConfig struct {
	PerActionWindowMs int64                   `mapstructure:"per_action_window_ms" yaml:"per_action_window_ms"`
	PerSignatureCap   int                     `mapstructure:"per_signature_cap" yaml:"per_signature_cap"`
	BonusPerExtra     float64                 `mapstructure:"bonus_per_extra" yaml:"bonus_per_extra"`
	PenaltyPerExtra   float64                 `mapstructure:"penalty_per_extra" yaml:"penalty_per_extra"`
	Domains           map[string]DomainConfig `mapstructure:"domains" yaml:"domains"`
}

// Settings converts the file values into scorer settings.
func (c *CoverageConfig) Settings() coverage.Settings {
	return coverage.Settings{
		WindowMs:        c.PerActionWindowMs,
		CapPerSignature: c.PerSignatureCap,
		BonusPerExtra:   c.BonusPerExtra,
		PenaltyPerExtra: c.PenaltyPerExtra,
	}
}

// Registry builds the domain registry. Config files carry domains as a map,
// so resolution order is fixed by sorting names ascending with the _other
// catch-all last; ambiguity between domains is already surfaced as a
// warning, so ordering only breaks ties.
func (c *CoverageConfig) Registry() (*coverage.Registry, error) {
	names := make([]string, 0, len(c.Domains))
	for name := range c.Domains {
		if name == coverage.OtherDomain {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if _, ok := c.Domains[coverage.OtherDomain]; ok {
		names = append(names, coverage.OtherDomain)
	}

	specs := make([]coverage.DomainSpec, 0, len(names))
	for _, name := range names {
		d := c.Domains[name]
		specs = append(specs, coverage.DomainSpec{Name: name, Weight: d.Weight, Allow: d.Allow})
	}
	return coverage.NewRegistry(specs)
}
