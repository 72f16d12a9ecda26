package dev

import (
	"path/filepath"

	"github.com/vango-dev/routegen/internal/config"
)

// WatchConfig derives the watcher configuration for a project. The pages root
// is watched recursively; the generated module and manifest are ignored so a
// pass never retriggers itself when they live under the pages root. Excluded
// pages still trigger a pass; it leaves the output unchanged.
func WatchConfig(cfg *config.Config) WatcherConfig {
	ignoreFiles := []string{cfg.OutputPath()}
	if manifest := cfg.ManifestPath(); manifest != "" {
		ignoreFiles = append(ignoreFiles, manifest)
	}

	return WatcherConfig{
		Root:        filepath.Clean(cfg.PagesPath()),
		Ignore:      DefaultIgnore,
		IgnoreFiles: ignoreFiles,
	}
}
