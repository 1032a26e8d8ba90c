// Package prompts implements the prompt store. Templates ship embedded
// in the binary and can be overridden by an external YAML file, so
// prompt tuning never requires a rebuild.
package prompts

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arbiterhq/arbiter/internal/ports"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type promptFile struct {
	Prompts map[string]string `yaml:"prompts"`
}

// Store implements ports.PromptStore. Templates from an override file
// shadow the embedded defaults name by name.
type Store struct {
	templates map[string]string
}

var _ ports.PromptStore = (*Store)(nil)

// New creates a store from the embedded defaults, optionally overlaid
// with the YAML file at path. A missing or unreadable override file is
// logged and ignored; New never fails on it.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	templates := map[string]string{}

	var defaults promptFile
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// The embedded file is fixed at build time; failing to parse it
		// is a programming error.
		panic(fmt.Sprintf("prompts: embedded defaults invalid: %v", err))
	}
	for name, body := range defaults.Prompts {
		templates[name] = strings.TrimSpace(body)
	}

	if path != "" {
		overlay, err := loadFile(path)
		if err != nil {
			logger.Warn("prompt override file unavailable, using embedded defaults",
				"path", path, "error", err)
		} else {
			for name, body := range overlay {
				templates[name] = strings.TrimSpace(body)
			}
			logger.Info("prompt overrides loaded", "path", path, "count", len(overlay))
		}
	}

	return &Store{templates: templates}
}

// Get returns the template body registered under name.
func (s *Store) Get(name string) (string, error) {
	body, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ports.ErrPromptNotFound, name)
	}
	return body, nil
}

// Names returns the registered template names.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	return names
}

func loadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode prompt file: %w", err)
	}
	if len(file.Prompts) == 0 {
		return nil, fmt.Errorf("prompt file has no prompts section")
	}
	return file.Prompts, nil
}
