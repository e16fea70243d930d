package scrollconfig_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/scrollconfig"
)

func TestFileStore_LoadWithNoStoredOverrideReturnsNil(t *testing.T) {
	t.Parallel()

	store, err := scrollconfig.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	got, err := store.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() for a user with no override = %+v, want nil", got)
	}
}

func TestFileStore_SaveThenLoadRoundTrips(t *testing.T) {
	t.Parallel()

	store, err := scrollconfig.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	cfg := scrollconfig.Defaults()
	cfg.BatchSize = 25
	cfg.Tiers[feeditem.TierWire] = scrollconfig.TierConfig{
		Allocation:     6,
		EnabledSources: map[string]bool{"hn": true},
		Color:          "#123456",
	}
	cfg.Aliases = map[string]string{"rd": "reddit"}

	ctx := context.Background()
	if err := store.Save(ctx, "alice", &cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() after Save() = nil, want the saved override")
	}
	if got.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", got.BatchSize)
	}
	if got.Tiers[feeditem.TierWire].Allocation != 6 {
		t.Errorf("Tiers[wire].Allocation = %d, want 6", got.Tiers[feeditem.TierWire].Allocation)
	}
	if !got.Tiers[feeditem.TierWire].EnabledSources["hn"] {
		t.Errorf("Tiers[wire].EnabledSources = %v, want hn enabled", got.Tiers[feeditem.TierWire].EnabledSources)
	}
	if got.Aliases["rd"] != "reddit" {
		t.Errorf("Aliases[rd] = %q, want %q", got.Aliases["rd"], "reddit")
	}
}

func TestFileStore_PathSanitizesUserWithPathSeparators(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := scrollconfig.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	cfg := scrollconfig.Defaults()
	ctx := context.Background()
	if err := store.Save(ctx, "../../etc/passwd", &cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// filepath.Base strips any directory components, so the file must
	// land inside dir rather than escaping it.
	if _, statErr := os.Stat(filepath.Join(dir, "passwd.yaml")); statErr != nil {
		t.Errorf("expected override written inside dir as passwd.yaml: %v", statErr)
	}
}

func TestFileStore_SaveOverwritesExistingOverride(t *testing.T) {
	t.Parallel()

	store, err := scrollconfig.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	ctx := context.Background()
	first := scrollconfig.Defaults()
	first.BatchSize = 5
	if err := store.Save(ctx, "alice", &first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := scrollconfig.Defaults()
	second.BatchSize = 50
	if err := store.Save(ctx, "alice", &second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.BatchSize != 50 {
		t.Errorf("BatchSize after overwrite = %d, want 50", got.BatchSize)
	}
}
