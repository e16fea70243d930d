package scrollconfig

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/imdario/mergo"
)

// Loader merges a user's stored ScrollConfig override onto Defaults()
// and validates the result. ScrollConfig nests tiers/sources/aliases
// deeply enough that hand-written field-by-field merging would drift
// from the schema as it grows, so the merge itself is delegated to
// mergo.
type Loader struct {
	store  ConfigStore
	logger *slog.Logger
}

// NewLoader constructs a Loader backed by store. A nil logger falls back
// to slog.Default().
func NewLoader(store ConfigStore, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, logger: logger}
}

// Load returns the merged, validated ScrollConfig for user: the stored
// override (if any) merged onto Defaults(), with the override's non-zero
// fields taking precedence. A user with no stored override gets the
// defaults unchanged.
func (l *Loader) Load(ctx context.Context, user string) (ScrollConfig, error) {
	merged := Defaults()

	override, err := l.store.Load(ctx, user)
	if err != nil {
		return ScrollConfig{}, fmt.Errorf("scrollconfig: load override for %q: %w", user, err)
	}
	if override != nil {
		if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
			return ScrollConfig{}, fmt.Errorf("scrollconfig: merge override for %q: %w", user, err)
		}
	}

	if err := merged.Validate(); err != nil {
		l.logger.Error("scrollconfig validation failed, falling back to defaults",
			slog.String("user", user), slog.Any("error", err))
		return Defaults(), nil
	}

	return merged, nil
}
