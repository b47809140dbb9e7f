// Package config holds the indexer's project-level settings, seeded once
// via Initialize (spec.md §6 Ingress).
package config

import (
	"path/filepath"
	"strings"
)

// Config is the pure filter/settings surface handed to Initialize. File
// discovery, watch mode and ignore-rule sourcing are out of scope (spec.md
// §1); Config only holds the already-resolved settings.
type Config struct {
	ProjectRoot       string   `yaml:"projectRoot"`
	ExcludedPatterns  []string `yaml:"excludedPatterns,omitempty"`
	IncludeUnexported bool     `yaml:"includeUnexported"`
}

// IsExcluded reports whether path matches one of the configured patterns:
// as a glob against the full path or the base name, or as a plain
// substring of the full path.
func (c Config) IsExcluded(path string) bool {
	for _, pattern := range c.ExcludedPatterns {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
