// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"
)

// cacheDirFromConfig resolves the directory holding analysis cache entries,
// with precedence: DEPSCAN_DATA_DIR env > cfg.Analysis.CacheDir > the
// depgraph default of "<root>/.depscan/cache".
func cacheDirFromConfig(cfg *Config, root string) (string, error) {
	if envDir := os.Getenv("DEPSCAN_DATA_DIR"); envDir != "" {
		return absPath(envDir)
	}

	if cfg != nil && cfg.Analysis.CacheDir != "" {
		custom := cfg.Analysis.CacheDir
		if filepath.IsAbs(custom) {
			return filepath.Clean(custom), nil
		}
		return absPath(filepath.Join(root, custom))
	}

	return absPath(filepath.Join(root, ".depscan", "cache"))
}

func absPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
