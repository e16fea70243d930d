// Package scrollconfig loads and merges per-user ScrollConfig with
// hard-coded defaults. The external store that persists
// user overrides is a collaborator (ConfigStore below); this package only
// knows how to merge and validate.
package scrollconfig

import (
	"context"
	"fmt"

	"scrollfeed/internal/feeditem"
)

// TierConfig is the per-tier allocation/eligibility/display block of
// ScrollConfig.
type TierConfig struct {
	Allocation     int
	EnabledSources map[string]bool
	Color          string
}

// SourceConfig is the per-source block of ScrollConfig.Sources: adapter
// parameters plus any source-level toggle.
type SourceConfig struct {
	Enabled bool
	Params  map[string]any
}

// QueryConfig is one named, parameterized adapter invocation addressable
// via filter as a "named query".
type QueryConfig struct {
	SourceType string
	Params     map[string]any
}

// ScrollConfig is the merged, immutable per-user configuration.
// Callers must not mutate a ScrollConfig after Load returns it.
type ScrollConfig struct {
	BatchSize        int
	Tiers            map[feeditem.Tier]TierConfig
	WireDecayBatches int
	Sources          map[string]SourceConfig
	Aliases          map[string]string
	QueryConfigs     map[string]QueryConfig

	// Unknown holds fields the external schema carried that this version
	// of the loader does not interpret. FileStore neither reads nor writes
	// it: fields outside the known schema are dropped when an override is
	// loaded and are not written back on save.
	Unknown map[string]any
}

// ConfigStore is the external collaborator that persists per-user
// overrides: on-disk YAML or any other store. Load returns
// (nil, nil) if the user has no stored override.
type ConfigStore interface {
	Load(ctx context.Context, user string) (*ScrollConfig, error)
	Save(ctx context.Context, user string, cfg *ScrollConfig) error
}

// Defaults returns the hard-coded defaults:
// batchSize=10, wireDecayBatches=10, wire=4/library=3/scrapbook=2/compass=1,
// empty aliases.
func Defaults() ScrollConfig {
	return ScrollConfig{
		BatchSize:        10,
		WireDecayBatches: 10,
		Tiers: map[feeditem.Tier]TierConfig{
			feeditem.TierWire:      {Allocation: 4, EnabledSources: map[string]bool{}, Color: "#4f7cff"},
			feeditem.TierLibrary:   {Allocation: 3, EnabledSources: map[string]bool{}, Color: "#2fa86a"},
			feeditem.TierScrapbook: {Allocation: 2, EnabledSources: map[string]bool{}, Color: "#d98f3f"},
			feeditem.TierCompass:   {Allocation: 1, EnabledSources: map[string]bool{}, Color: "#8a5fd6"},
		},
		Sources:      map[string]SourceConfig{},
		Aliases:      map[string]string{},
		QueryConfigs: map[string]QueryConfig{},
		Unknown:      map[string]any{},
	}
}

// Validate enforces: integer allocations ≥ 0, wireDecayBatches ≥ 1,
// tier names restricted to the four canonical values.
func (c *ScrollConfig) Validate() error {
	if c.WireDecayBatches < 1 {
		return fmt.Errorf("scrollconfig: wireDecayBatches must be >= 1, got %d", c.WireDecayBatches)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("scrollconfig: batchSize must be >= 0, got %d", c.BatchSize)
	}
	for t, tc := range c.Tiers {
		if !t.Valid() {
			return fmt.Errorf("scrollconfig: invalid tier name %q", t)
		}
		if tc.Allocation < 0 {
			return fmt.Errorf("scrollconfig: tier %q allocation must be >= 0, got %d", t, tc.Allocation)
		}
	}
	return nil
}

// ColorPalette is the client-facing display hint extracted from a
// ScrollConfig.
type ColorPalette map[feeditem.Tier]string

// ExtractColors returns the per-tier color palette for the client
//.
func ExtractColors(cfg ScrollConfig) ColorPalette {
	out := make(ColorPalette, len(cfg.Tiers))
	for t, tc := range cfg.Tiers {
		out[t] = tc.Color
	}
	return out
}
