// Package catalog implements the model catalog backing the comparison
// service. Descriptors are sourced from an externally generated JSON
// configuration file with lazy mtime-based reloading, and a built-in
// fallback descriptor set serves reads whenever the file is missing or
// invalid. Read methods never fail.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// fileConfig is the on-disk configuration shape. The file is generated
// by the external benchmark pipeline.
type fileConfig struct {
	Metadata     fileMetadata                         `json:"metadata" validate:"required"`
	DefaultModel string                               `json:"default_model" validate:"required"`
	Models       map[string]fileModel                 `json:"models" validate:"required,min=1,dive"`
	Providers    map[string]domain.ProviderDescriptor `json:"providers" validate:"required,min=1"`
}

type fileMetadata struct {
	GeneratedAt string `json:"generated_at" validate:"required"`
	TestVersion string `json:"test_version" validate:"required"`
	TotalTested int    `json:"total_models_tested"`
}

type fileModel struct {
	ID          string                   `json:"id" validate:"required"`
	DisplayName string                   `json:"display_name" validate:"required"`
	Provider    string                   `json:"provider" validate:"required"`
	Route       string                   `json:"route"`
	IsDefault   bool                     `json:"is_default"`
	Status      domain.ModelStatus       `json:"status" validate:"required,oneof=active inactive deprecated"`
	Performance domain.ModelPerformance  `json:"performance"`
	Capability  domain.ModelCapabilities `json:"capabilities"`
}

// snapshot is an immutable view of the catalog. Readers load the
// current snapshot atomically; reloads build a new one and swap it in.
type snapshot struct {
	models       map[string]domain.ModelDescriptor
	providers    map[string]domain.ProviderDescriptor
	defaultModel string
	active       []string
	configLoaded bool
}

// Catalog implements ports.ModelCatalog over a JSON configuration file.
type Catalog struct {
	path     string
	logger   *slog.Logger
	validate *validator.Validate

	current atomic.Pointer[snapshot]
	// modNanos holds the mtime of the last successful load as Unix
	// nanoseconds, read lock-free on the hot path.
	modNanos atomic.Int64

	mu sync.Mutex
}

var _ ports.ModelCatalog = (*Catalog)(nil)

// New creates a catalog backed by the configuration file at path. A
// missing or invalid file downgrades to the built-in fallback set; New
// never fails.
func New(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Catalog{
		path:     path,
		logger:   logger,
		validate: validator.New(),
	}

	snap, modTime, err := c.loadFromFile()
	if err != nil {
		logger.Warn("model configuration unavailable, serving fallback set",
			"path", path, "error", err)
		snap = fallbackSnapshot()
	} else {
		c.modNanos.Store(modTime.UnixNano())
		logger.Info("model configuration loaded",
			"path", path,
			"models", len(snap.models),
			"default_model", snap.defaultModel)
	}
	c.current.Store(snap)
	return c
}

// ActiveModels returns the identifiers of all active models, sorted
// for stable listings.
func (c *Catalog) ActiveModels() []string {
	snap := c.read()
	out := make([]string, len(snap.active))
	copy(out, snap.active)
	return out
}

// Model returns the descriptor for the given identifier.
func (c *Catalog) Model(id string) (domain.ModelDescriptor, bool) {
	m, ok := c.read().models[id]
	return m, ok
}

// Provider returns the descriptor for the given provider id.
func (c *Catalog) Provider(id string) (domain.ProviderDescriptor, bool) {
	p, ok := c.read().providers[id]
	return p, ok
}

// DefaultModel returns the identifier of the default judge model.
func (c *Catalog) DefaultModel() string {
	return c.read().defaultModel
}

// Refresh forces a reload of the configuration file and reports whether
// it succeeded. On failure the previous snapshot keeps serving reads.
func (c *Catalog) Refresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloadLocked(true)
}

// Health reports the catalog's current condition. Status is "healthy"
// when the dynamic configuration is active and "degraded" when the
// fallback set is serving reads.
func (c *Catalog) Health() ports.CatalogHealth {
	snap := c.read()

	status := "healthy"
	if !snap.configLoaded {
		status = "degraded"
	}

	return ports.CatalogHealth{
		Status:       status,
		ConfigLoaded: snap.configLoaded,
		TotalModels:  len(snap.models),
		ActiveModels: len(snap.active),
		Providers:    len(snap.providers),
		DefaultModel: snap.defaultModel,
	}
}

// read returns the current snapshot, reloading first when the backing
// file's mtime has changed since the last load.
func (c *Catalog) read() *snapshot {
	if c.staleCheck() {
		c.mu.Lock()
		if c.staleCheck() {
			c.reloadLocked(false)
		}
		c.mu.Unlock()
	}
	return c.current.Load()
}

// staleCheck reports whether the backing file changed since the last
// successful load. A missing file is not stale: the current snapshot
// (or fallback) keeps serving.
func (c *Catalog) staleCheck() bool {
	info, err := os.Stat(c.path)
	if err != nil {
		return false
	}
	return info.ModTime().UnixNano() != c.modNanos.Load()
}

// reloadLocked reloads the configuration file, swapping in a new
// snapshot on success. The caller must hold c.mu.
func (c *Catalog) reloadLocked(forced bool) bool {
	snap, modTime, err := c.loadFromFile()
	if err != nil {
		c.logger.Error("model configuration reload failed", "path", c.path, "error", err)
		if forced && c.current.Load() == nil {
			c.current.Store(fallbackSnapshot())
		}
		return false
	}

	c.modNanos.Store(modTime.UnixNano())
	c.current.Store(snap)
	c.logger.Info("model configuration reloaded",
		"path", c.path,
		"models", len(snap.models),
		"default_model", snap.defaultModel)
	return true
}

// loadFromFile reads, validates, and indexes the configuration file.
func (c *Catalog) loadFromFile() (*snapshot, time.Time, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("stat config: %w", err)
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read config: %w", err)
	}

	var config fileConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.validate.Struct(&config); err != nil {
		return nil, time.Time{}, fmt.Errorf("validate config: %w", err)
	}
	if err := checkReferences(&config); err != nil {
		return nil, time.Time{}, err
	}

	return buildSnapshot(&config), info.ModTime(), nil
}

// checkReferences enforces the cross-field rules struct validation
// cannot express: the default model exists and every model references a
// known provider.
func checkReferences(config *fileConfig) error {
	if _, ok := config.Models[config.DefaultModel]; !ok {
		return fmt.Errorf("default model %q not present in models", config.DefaultModel)
	}
	for id, m := range config.Models {
		if _, ok := config.Providers[m.Provider]; !ok {
			return fmt.Errorf("model %q references unknown provider %q", id, m.Provider)
		}
	}
	return nil
}

func buildSnapshot(config *fileConfig) *snapshot {
	snap := &snapshot{
		models:       make(map[string]domain.ModelDescriptor, len(config.Models)),
		providers:    make(map[string]domain.ProviderDescriptor, len(config.Providers)),
		defaultModel: config.DefaultModel,
		configLoaded: true,
	}

	for id, m := range config.Models {
		desc := domain.ModelDescriptor{
			ID:          m.ID,
			DisplayName: m.DisplayName,
			Provider:    m.Provider,
			Route:       m.Route,
			IsDefault:   m.IsDefault,
			Status:      m.Status,
			Performance: m.Performance,
			Capability:  m.Capability,
		}
		snap.models[id] = desc
		if desc.Active() {
			snap.active = append(snap.active, id)
		}
	}
	sort.Strings(snap.active)

	for id, p := range config.Providers {
		p.ID = id
		snap.providers[id] = normalizeProvider(p)
	}

	return snap
}

// normalizeProvider maps legacy api_type spellings onto the supported
// families. "openrouter" configurations predate the gateway naming.
func normalizeProvider(p domain.ProviderDescriptor) domain.ProviderDescriptor {
	if p.Family == "openrouter" {
		p.Family = domain.FamilyGateway
	}
	return p
}
