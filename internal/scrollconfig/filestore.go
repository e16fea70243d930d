package scrollconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"scrollfeed/internal/feeditem"
)

// FileStore is the on-disk YAML ConfigStore: one file per user under
// dir. It is a real implementation of the ConfigStore interface, not a
// stub: callers
// that need a different backing store (a database, a remote config
// service) implement ConfigStore themselves and never touch this type.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore constructs a FileStore rooted at dir, creating it if
// necessary.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scrollconfig: create config dir %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// yamlScrollConfig is ScrollConfig's on-disk shape: tiers keyed by plain
// string (feeditem.Tier marshals fine as a string, but yaml.v3 needs the
// map key type to round-trip predictably across blank lines and quoting).
type yamlScrollConfig struct {
	BatchSize        int                       `yaml:"batchSize"`
	Tiers            map[string]yamlTierConfig `yaml:"tiers"`
	WireDecayBatches int                       `yaml:"wireDecayBatches"`
	Sources          map[string]SourceConfig   `yaml:"sources"`
	Aliases          map[string]string         `yaml:"aliases"`
	QueryConfigs     map[string]QueryConfig    `yaml:"queryConfigs"`
}

type yamlTierConfig struct {
	Allocation     int             `yaml:"allocation"`
	EnabledSources map[string]bool `yaml:"enabledSources"`
	Color          string          `yaml:"color"`
}

func (s *FileStore) path(user string) string {
	return filepath.Join(s.dir, filepath.Base(user)+".yaml")
}

// Load implements ConfigStore. It returns (nil, nil) if user has no
// stored override, matching the interface's documented "no override"
// sentinel.
func (s *FileStore) Load(ctx context.Context, user string) (*ScrollConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(user))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scrollconfig: read override for %q: %w", user, err)
	}

	var y yamlScrollConfig
	if err := yaml.Unmarshal(raw, &y); err != nil {
		return nil, fmt.Errorf("scrollconfig: parse override for %q: %w", user, err)
	}
	cfg := fromYAML(y)
	return &cfg, nil
}

// Save implements ConfigStore, writing cfg as YAML, overwriting any
// existing override.
func (s *FileStore) Save(ctx context.Context, user string, cfg *ScrollConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := yaml.Marshal(toYAML(*cfg))
	if err != nil {
		return fmt.Errorf("scrollconfig: marshal override for %q: %w", user, err)
	}
	if err := os.WriteFile(s.path(user), out, 0o644); err != nil {
		return fmt.Errorf("scrollconfig: write override for %q: %w", user, err)
	}
	return nil
}

func toYAML(cfg ScrollConfig) yamlScrollConfig {
	y := yamlScrollConfig{
		BatchSize:        cfg.BatchSize,
		WireDecayBatches: cfg.WireDecayBatches,
		Sources:          cfg.Sources,
		Aliases:          cfg.Aliases,
		QueryConfigs:     cfg.QueryConfigs,
		Tiers:            make(map[string]yamlTierConfig, len(cfg.Tiers)),
	}
	for t, tc := range cfg.Tiers {
		y.Tiers[string(t)] = yamlTierConfig{Allocation: tc.Allocation, EnabledSources: tc.EnabledSources, Color: tc.Color}
	}
	return y
}

func fromYAML(y yamlScrollConfig) ScrollConfig {
	cfg := ScrollConfig{
		BatchSize:        y.BatchSize,
		WireDecayBatches: y.WireDecayBatches,
		Sources:          y.Sources,
		Aliases:          y.Aliases,
		QueryConfigs:     y.QueryConfigs,
		Tiers:            make(map[feeditem.Tier]TierConfig, len(y.Tiers)),
	}
	for t, tc := range y.Tiers {
		cfg.Tiers[feeditem.Tier(t)] = TierConfig{Allocation: tc.Allocation, EnabledSources: tc.EnabledSources, Color: tc.Color}
	}
	return cfg
}
