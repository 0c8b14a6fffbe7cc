package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/sigridjineth/HyperLiquidBench/internal/types"
)

// LoadCoverageConfig reads a coverage config file (YAML or JSON). Absent
// fields fall back to the built-in defaults; an empty path returns the
// defaults untouched.
func LoadCoverageConfig(path string) (*CoverageConfig, error) {
	cfg := DefaultCoverageConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, fmt.Sprintf("read coverage config %s", path), err)
	}

	loaded := &CoverageConfig{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, fmt.Sprintf("unmarshal coverage config %s", path), err)
	}

	// Presence, not value, decides the merge: an explicit zero (disabling
	// the bonus or the penalty) must stick.
	if v.IsSet("per_action_window_ms") {
		cfg.PerActionWindowMs = loaded.PerActionWindowMs
	}
	if v.IsSet("per_signature_cap") {
		cfg.PerSignatureCap = loaded.PerSignatureCap
	}
	if v.IsSet("bonus_per_extra") {
		cfg.BonusPerExtra = loaded.BonusPerExtra
	}
	if v.IsSet("penalty_per_extra") {
		cfg.PenaltyPerExtra = loaded.PenaltyPerExtra
	}
	if len(loaded.Domains) > 0 {
		cfg.Domains = loaded.Domains
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate applies the configuration-error checks that must fail before
// processing starts: positive window and cap, at least one domain, every
// domain with parseable patterns.
func Validate(cfg *CoverageConfig) error {
	if cfg.PerActionWindowMs <= 0 {
		return types.NewErrorf(types.CONFIG_VALIDATION_FAILED,
			"per_action_window_ms must be positive, got %d", cfg.PerActionWindowMs)
	}
	if cfg.PerSignatureCap <= 0 {
		return types.NewErrorf(types.CONFIG_VALIDATION_FAILED,
			"per_signature_cap must be positive, got %d", cfg.PerSignatureCap)
	}
	if len(cfg.Domains) == 0 {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "no domains configured")
	}
	// Registry construction performs the per-domain checks (empty allow
	// lists, malformed patterns, negative weights).
	if _, err := cfg.Registry(); err != nil {
		return err
	}
	return nil
}
