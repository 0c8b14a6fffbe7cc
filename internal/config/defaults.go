package config

import "github.com/sigridjineth/HyperLiquidBench/internal/coverage"

// DefaultCoverageConfig returns the built-in registry and scoring settings
// used when no config file is given: one domain per signature namespace
// plus the unscored catch-all.
func DefaultCoverageConfig() *CoverageConfig {
	return &CoverageConfig{
		PerActionWindowMs: coverage.DefaultWindowMs,
		PerSignatureCap:   coverage.DefaultCapPerSignature,
		BonusPerExtra:     coverage.DefaultBonusPerExtra,
		PenaltyPerExtra:   coverage.DefaultPenaltyPerExtra,
		Domains: map[string]DomainConfig{
			"perp_core": {Weight: 1.0, Allow: []string{"perp.order.*", "perp.cancel.*"}},
			"account":   {Weight: 1.0, Allow: []string{"account.*"}},
			"risk":      {Weight: 1.0, Allow: []string{"risk.*"}},
			coverage.OtherDomain: {Weight: 0, Allow: []string{"*"}},
		},
	}
}
