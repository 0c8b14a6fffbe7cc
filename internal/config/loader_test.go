package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigridjineth/HyperLiquidBench/internal/coverage"
	"github.com/sigridjineth/HyperLiquidBench/internal/sig"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultCoverageConfig(t *testing.T) {
	cfg := DefaultCoverageConfig()
	require.NoError(t, Validate(cfg))

	reg, err := cfg.Registry()
	require.NoError(t, err)

	domain, ok := reg.DomainFor(sig.Signature("perp.order.GTC:false:none"))
	require.True(t, ok)
	assert.Equal(t, "perp_core", domain)

	domain, ok = reg.DomainFor(sig.Signature("account.usdClassTransfer.toPerp"))
	require.True(t, ok)
	assert.Equal(t, "account", domain)

	assert.Equal(t, coverage.DefaultSettings(), cfg.Settings())
}

func TestLoadCoverageConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadCoverageConfig("")
	require.NoError(t, err)
	assert.Equal(t, int64(coverage.DefaultWindowMs), cfg.PerActionWindowMs)
}

func TestLoadCoverageConfigYAML(t *testing.T) {
	path := writeConfig(t, "domains.yaml", `
per_action_window_ms: 500
per_signature_cap: 2
domains:
  perp:
    weight: 2.0
    allow: ["perp.*"]
  _other:
    weight: 0
    allow: ["*"]
`)

	cfg, err := LoadCoverageConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(500), cfg.PerActionWindowMs)
	assert.Equal(t, 2, cfg.PerSignatureCap)
	// Untouched knobs keep their defaults.
	assert.Equal(t, coverage.DefaultBonusPerExtra, cfg.BonusPerExtra)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	domain, ok := reg.DomainFor(sig.Signature("perp.cancel.all"))
	require.True(t, ok)
	assert.Equal(t, "perp", domain)
}

func TestLoadCoverageConfigExplicitZeroSticks(t *testing.T) {
	path := writeConfig(t, "domains.yaml", `
bonus_per_extra: 0
penalty_per_extra: 0
domains:
  perp:
    weight: 1.0
    allow: ["perp.*"]
`)

	cfg, err := LoadCoverageConfig(path)
	require.NoError(t, err)
	// An explicit zero disables the knob; it must not snap back to the
	// default.
	assert.Zero(t, cfg.BonusPerExtra)
	assert.Zero(t, cfg.PenaltyPerExtra)
	assert.Equal(t, int64(coverage.DefaultWindowMs), cfg.PerActionWindowMs)
	assert.Equal(t, coverage.DefaultCapPerSignature, cfg.PerSignatureCap)
}

func TestLoadCoverageConfigRejectsEmptyDomain(t *testing.T) {
	path := writeConfig(t, "domains.yaml", `
domains:
  broken:
    weight: 1.0
    allow: []
`)
	_, err := LoadCoverageConfig(path)
	assert.Error(t, err)
}

func TestLoadCoverageConfigRejectsBadPattern(t *testing.T) {
	path := writeConfig(t, "domains.yaml", `
domains:
  broken:
    weight: 1.0
    allow: ["a..b"]
`)
	_, err := LoadCoverageConfig(path)
	assert.Error(t, err)
}

func TestLoadCoverageConfigMissingFile(t *testing.T) {
	_, err := LoadCoverageConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsNonPositiveKnobs(t *testing.T) {
	cfg := DefaultCoverageConfig()
	cfg.PerActionWindowMs = 0
	assert.Error(t, Validate(cfg))

	cfg = DefaultCoverageConfig()
	cfg.PerSignatureCap = -1
	assert.Error(t, Validate(cfg))

	cfg = DefaultCoverageConfig()
	cfg.Domains = nil
	assert.Error(t, Validate(cfg))
}

func TestRegistryOrderIsDeterministic(t *testing.T) {
	cfg := DefaultCoverageConfig()
	first, err := cfg.Registry()
	require.NoError(t, err)
	second, err := cfg.Registry()
	require.NoError(t, err)

	firstNames := make([]string, 0)
	for _, d := range first.Domains() {
		firstNames = append(firstNames, d.Name)
	}
	secondNames := make([]string, 0)
	for _, d := range second.Domains() {
		secondNames = append(secondNames, d.Name)
	}
	assert.Equal(t, firstNames, secondNames)
	assert.Equal(t, coverage.OtherDomain, firstNames[len(firstNames)-1])
}
