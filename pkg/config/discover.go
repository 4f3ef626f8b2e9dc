package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ProjectDir is the per-project settings directory
const ProjectDir = ".rv"

// UserConfigPath returns the per-user config file, or "" when the user
// config directory cannot be determined.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rv", "config.yaml")
}

// ProjectConfigPath returns .rv/config.yaml of the nearest project
// enclosing dir, if that file exists.
func ProjectConfigPath(dir string) (string, bool) {
	root, ok := findProjectRoot(dir)
	if !ok {
		return "", false
	}
	path := filepath.Join(root, ProjectDir, "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// findProjectRoot walks up from dir looking for a .rv/ directory.
func findProjectRoot(dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	home, _ := os.UserHomeDir()

	for {
		rvDir := filepath.Join(dir, ProjectDir)
		if info, err := os.Stat(rvDir); err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
