package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"scrollfeed/internal/feeditem"
	"scrollfeed/internal/handler/http/requestid"
	"scrollfeed/internal/scrollconfig"
)

type tierConfigDTO struct {
	Allocation     int             `json:"allocation"`
	EnabledSources map[string]bool `json:"enabledSources,omitempty"`
	Color          string          `json:"color,omitempty"`
}

type sourceConfigDTO struct {
	Enabled bool           `json:"enabled"`
	Params  map[string]any `json:"params,omitempty"`
}

type queryConfigDTO struct {
	SourceType string         `json:"sourceType"`
	Params     map[string]any `json:"params,omitempty"`
}

type configDTO struct {
	BatchSize        int                        `json:"batchSize"`
	Tiers            map[string]tierConfigDTO   `json:"tiers"`
	WireDecayBatches int                        `json:"wireDecayBatches"`
	Sources          map[string]sourceConfigDTO `json:"sources,omitempty"`
	Aliases          map[string]string          `json:"aliases,omitempty"`
	QueryConfigs     map[string]queryConfigDTO  `json:"queryConfigs,omitempty"`
}

func toConfigDTO(cfg scrollconfig.ScrollConfig) configDTO {
	dto := configDTO{
		BatchSize:        cfg.BatchSize,
		WireDecayBatches: cfg.WireDecayBatches,
		Tiers:            make(map[string]tierConfigDTO, len(cfg.Tiers)),
		Aliases:          cfg.Aliases,
	}
	for t, tc := range cfg.Tiers {
		dto.Tiers[string(t)] = tierConfigDTO{Allocation: tc.Allocation, EnabledSources: tc.EnabledSources, Color: tc.Color}
	}
	if len(cfg.Sources) > 0 {
		dto.Sources = make(map[string]sourceConfigDTO, len(cfg.Sources))
		for name, sc := range cfg.Sources {
			dto.Sources[name] = sourceConfigDTO{Enabled: sc.Enabled, Params: sc.Params}
		}
	}
	if len(cfg.QueryConfigs) > 0 {
		dto.QueryConfigs = make(map[string]queryConfigDTO, len(cfg.QueryConfigs))
		for name, qc := range cfg.QueryConfigs {
			dto.QueryConfigs[name] = queryConfigDTO{SourceType: qc.SourceType, Params: qc.Params}
		}
	}
	return dto
}

func fromConfigDTO(dto configDTO) scrollconfig.ScrollConfig {
	cfg := scrollconfig.ScrollConfig{
		BatchSize:        dto.BatchSize,
		WireDecayBatches: dto.WireDecayBatches,
		Aliases:          dto.Aliases,
		Tiers:            make(map[feeditem.Tier]scrollconfig.TierConfig, len(dto.Tiers)),
	}
	for t, tc := range dto.Tiers {
		cfg.Tiers[feeditem.Tier(t)] = scrollconfig.TierConfig{Allocation: tc.Allocation, EnabledSources: tc.EnabledSources, Color: tc.Color}
	}
	if len(dto.Sources) > 0 {
		cfg.Sources = make(map[string]scrollconfig.SourceConfig, len(dto.Sources))
		for name, sc := range dto.Sources {
			cfg.Sources[name] = scrollconfig.SourceConfig{Enabled: sc.Enabled, Params: sc.Params}
		}
	}
	if len(dto.QueryConfigs) > 0 {
		cfg.QueryConfigs = make(map[string]scrollconfig.QueryConfig, len(dto.QueryConfigs))
		for name, qc := range dto.QueryConfigs {
			cfg.QueryConfigs[name] = scrollconfig.QueryConfig{SourceType: qc.SourceType, Params: qc.Params}
		}
	}
	return cfg
}

// ConfigHandler serves both GET and PUT /feed/config.
type ConfigHandler struct {
	Loader *scrollconfig.Loader
	Store  scrollconfig.ConfigStore
	Logger *slog.Logger
}

func (h ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		writeError(w, h.Logger, r, errBadItemID)
	}
}

func (h ConfigHandler) get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Loader.Load(r.Context(), userOf(r))
	if err != nil {
		writeError(w, h.Logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigDTO(cfg))
}

func (h ConfigHandler) put(w http.ResponseWriter, r *http.Request) {
	var dto configDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, h.Logger, r, errBadItemID)
		return
	}

	cfg := fromConfigDTO(dto)
	if err := cfg.Validate(); err != nil {
		writeError(w, h.Logger, r, errBadItemID)
		return
	}

	user := userOf(r)
	if err := h.Store.Save(r.Context(), user, &cfg); err != nil {
		writeError(w, h.Logger, r, err)
		return
	}

	h.Logger.Info("feed config updated",
		slog.String("request_id", requestid.FromContext(r.Context())),
		slog.String("user", user))

	writeJSON(w, http.StatusOK, toConfigDTO(cfg))
}
