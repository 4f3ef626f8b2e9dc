// Package config loads rv settings from layered YAML files.
//
// Layers are applied in order, each overriding only the keys it sets:
// built-in defaults, the user file ($XDG_CONFIG_HOME/rv/config.yaml),
// the project file (.rv/config.yaml in the nearest enclosing project) and
// finally a file named on the command line.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/rv/pkg/tree"
)

// Config holds the viewer settings
type Config struct {
	// Sync enables cross-tree selection synchronization (default: true)
	Sync bool `yaml:"sync" json:"sync"`

	// Watch reloads both reports when either file changes (default: true)
	Watch bool `yaml:"watch" json:"watch"`

	// DecodeBase64 shows Base64 encoded messages decoded (default: false)
	DecodeBase64 bool `yaml:"decode_base64" json:"decode_base64"`

	Labels LabelConfig  `yaml:"labels" json:"labels"`
	Detail DetailConfig `yaml:"detail" json:"detail"`
}

// LabelConfig controls id prefixes on tree labels
type LabelConfig struct {
	ShowStorageID       bool `yaml:"show_storage_id" json:"show_storage_id"`
	ShowCheckpointIndex bool `yaml:"show_checkpoint_index" json:"show_checkpoint_index"`
}

// DetailConfig controls the comparison pane
type DetailConfig struct {
	// WordWrap wraps long messages to the pane width (default: true)
	WordWrap bool `yaml:"word_wrap" json:"word_wrap"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	return Config{
		Sync:   true,
		Watch:  true,
		Detail: DetailConfig{WordWrap: true},
	}
}

// LabelOptions converts the label settings for the tree builder
func (c Config) LabelOptions() tree.LabelOptions {
	return tree.LabelOptions{
		ShowStorageID:       c.Labels.ShowStorageID,
		ShowCheckpointIndex: c.Labels.ShowCheckpointIndex,
	}
}

// Load resolves the configuration for the current directory.
// explicit may name an additional file; it must exist when given.
func Load(explicit string) (Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFrom(UserConfigPath(), wd, explicit)
}

// LoadFrom applies the user file, the project file found from workDir and
// the explicit file on top of the defaults. Missing user and project files
// are skipped.
func LoadFrom(userPath, workDir, explicit string) (Config, error) {
	cfg := DefaultConfig()

	if userPath != "" {
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return cfg, err
		}
	}
	if path, ok := ProjectConfigPath(workDir); ok {
		if err := mergeFile(&cfg, path, false); err != nil {
			return cfg, err
		}
	}
	if explicit != "" {
		if err := mergeFile(&cfg, expandHome(explicit), true); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// mergeFile decodes path over cfg. Keys absent from the file keep their
// current values.
func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
