package scrollconfig_test

import (
	"context"
	"errors"
	"testing"

	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/scrollconfig"
)

type stubStore struct {
	override *scrollconfig.ScrollConfig
	loadErr  error
}

func (s *stubStore) Load(ctx context.Context, user string) (*scrollconfig.ScrollConfig, error) {
	return s.override, s.loadErr
}

func (s *stubStore) Save(ctx context.Context, user string, cfg *scrollconfig.ScrollConfig) error {
	return nil
}

func TestLoader_NoOverrideReturnsDefaults(t *testing.T) {
	t.Parallel()

	loader := scrollconfig.NewLoader(&stubStore{}, nil)
	got, err := loader.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := scrollconfig.Defaults()
	if got.BatchSize != want.BatchSize || got.WireDecayBatches != want.WireDecayBatches {
		t.Errorf("Load() with no override = %+v, want defaults %+v", got, want)
	}
}

func TestLoader_OverrideFieldsTakePrecedence(t *testing.T) {
	t.Parallel()

	override := scrollconfig.Defaults()
	override.BatchSize = 99

	loader := scrollconfig.NewLoader(&stubStore{override: &override}, nil)
	got, err := loader.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.BatchSize != 99 {
		t.Errorf("BatchSize = %d, want 99 (override should take precedence)", got.BatchSize)
	}
}

func TestLoader_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	loader := scrollconfig.NewLoader(&stubStore{loadErr: errors.New("disk on fire")}, nil)
	_, err := loader.Load(context.Background(), "alice")
	if err == nil {
		t.Error("Load() with a failing store = nil error, want an error")
	}
}

func TestLoader_InvalidMergedConfigFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	// BatchSize is non-zero (so mergo.WithOverride applies it) but invalid.
	override := scrollconfig.ScrollConfig{BatchSize: -1}
	loader := scrollconfig.NewLoader(&stubStore{override: &override}, nil)

	got, err := loader.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Load() with an invalid override = %v error, want nil (fall back instead of failing)", err)
	}

	want := scrollconfig.Defaults()
	if got.BatchSize != want.BatchSize {
		t.Errorf("BatchSize = %d, want the default %d after falling back", got.BatchSize, want.BatchSize)
	}
}

func TestLoader_OverrideMergesTierAllocationsByKey(t *testing.T) {
	t.Parallel()

	override := scrollconfig.Defaults()
	override.Tiers[feeditem.TierWire] = scrollconfig.TierConfig{Allocation: 8, EnabledSources: map[string]bool{}, Color: "#000000"}

	loader := scrollconfig.NewLoader(&stubStore{override: &override}, nil)
	got, err := loader.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Tiers[feeditem.TierWire].Allocation != 8 {
		t.Errorf("Tiers[wire].Allocation = %d, want 8", got.Tiers[feeditem.TierWire].Allocation)
	}
}
