// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package depgraph

import "log/slog"

// AnalysisLevel names one of the five graph levels that analysis can be
// restricted to.
type AnalysisLevel string

const (
	LevelPackage AnalysisLevel = "package"
	LevelModule  AnalysisLevel = "module"
	LevelClass   AnalysisLevel = "class"
	LevelMethod  AnalysisLevel = "method"
	LevelField   AnalysisLevel = "field"
)

// Options controls Analyse's behavior. Zero-value Options is valid input to
// ApplyDefaults, mirroring the teacher's DefaultConfig idiom of filling in a
// struct rather than requiring every caller to specify every field.
type Options struct {
	// MaxDepth bounds traversal depth for a secondary module-graph source;
	// 0 means unlimited. Analyse uses no secondary source, so the value has
	// no effect on its result.
	MaxDepth int

	// ExcludePatterns are gitignore-style patterns consulted by the Pattern
	// Matcher (C3) during discovery.
	ExcludePatterns []string

	// IncludeStdlib is folded into CacheID only. Imports that name no
	// project module, standard-library ones included, never become import
	// edges whether or not it is set.
	IncludeStdlib bool

	// AnalysisLevels lists the graph levels a caller asks for; an empty
	// slice means all levels. It is folded into CacheID, but Analyse
	// populates every level regardless of its contents.
	AnalysisLevels []AnalysisLevel

	// EnableTypeInference is not read by Analyse: textual annotations are
	// always recorded, and no runtime inference is ever performed.
	EnableTypeInference bool

	// MaxWorkers bounds the extraction worker pool; 1 forces sequential
	// extraction. 0 selects the default formula (see orchestrator.go).
	MaxWorkers int

	// EnableCaching turns on the File Fingerprint Cache (C7).
	EnableCaching bool

	// CacheDir is the directory holding cache entries and the index file.
	// Defaults to ".depscan/cache" under the project root.
	CacheDir string

	// EnableQualityMetrics is not read by Analyse: per-method cyclomatic
	// complexity is always computed, and no further complexity or coupling
	// aggregation is performed.
	EnableQualityMetrics bool

	// EnablePerformanceOptimization turns on the Large-Tree Streamer (C8):
	// only when it is set does Analyse take the streamed path for trees
	// over LargeTreeFileThreshold or LargeTreeByteThreshold.
	EnablePerformanceOptimization bool

	// MaxMemoryMB is the soft memory ceiling observed by the streamer.
	MaxMemoryMB int

	// MaxFileSizeBytes is the per-file byte cap; larger files are skipped
	// with a warning and counted in the report.
	MaxFileSizeBytes int64

	// LargeTreeFileThreshold triggers the streamed path when the discovered
	// file count exceeds it.
	LargeTreeFileThreshold int

	// LargeTreeByteThreshold triggers the streamed path when the estimated
	// total input-byte count exceeds it.
	LargeTreeByteThreshold int64

	// SkipOptionalPassesThreshold is the second, larger threshold above
	// which the orchestrator may skip optional passes (quality-metric
	// aggregation, detailed call-cycle detection) to keep runtime bounded.
	// Import-cycle detection at module level is always performed.
	SkipOptionalPassesThreshold int

	// BatchSize is the streamer's fixed batch size.
	BatchSize int

	// SourceExtension is the file extension considered a candidate source
	// file (including the leading dot).
	SourceExtension string

	// PackageInitMarker names the package-marker file (e.g. "__init__.py").
	// It is folded into CacheID only: module names are built from the full
	// root-relative path, and a file whose base name is "__init__" stands
	// for its directory whatever this value is.
	PackageInitMarker string

	// Logger receives structured progress/diagnostic events. Defaults to
	// slog.Default() when nil.
	Logger *slog.Logger
}

// ApplyDefaults returns a copy of o with zero-valued fields filled in with
// sensible defaults, mirroring the teacher's DefaultConfig field-by-field
// style.
func (o Options) ApplyDefaults() Options {
	if o.MaxWorkers == 0 {
		o.MaxWorkers = defaultMaxWorkers()
	}
	if o.CacheDir == "" {
		o.CacheDir = ".depscan/cache"
	}
	if o.MaxMemoryMB == 0 {
		o.MaxMemoryMB = 512
	}
	if o.MaxFileSizeBytes == 0 {
		o.MaxFileSizeBytes = 1048576 // 1MB
	}
	if o.LargeTreeFileThreshold == 0 {
		o.LargeTreeFileThreshold = 1000
	}
	if o.LargeTreeByteThreshold == 0 {
		o.LargeTreeByteThreshold = 200 * 1024 * 1024 // 200MB
	}
	if o.SkipOptionalPassesThreshold == 0 {
		o.SkipOptionalPassesThreshold = 5000
	}
	if o.BatchSize == 0 {
		o.BatchSize = 100
	}
	if o.SourceExtension == "" {
		o.SourceExtension = ".py"
	}
	if o.PackageInitMarker == "" {
		o.PackageInitMarker = "__init__.py"
	}
	if len(o.ExcludePatterns) == 0 {
		o.ExcludePatterns = DefaultExcludePatterns()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// DefaultExcludePatterns returns the default gitignore-style exclusions:
// __pycache__, cache directories, version-control directories, common
// virtual-environment directory names, and test directories (spec.md §4.1).
func DefaultExcludePatterns() []string {
	return []string{
		"__pycache__/**",
		".git/**",
		".hg/**",
		".svn/**",
		".cache/**",
		"*.pyc",
		"*.pyo",
		".venv/**",
		"venv/**",
		"env/**",
		".tox/**",
		"node_modules/**",
		"dist/**",
		"build/**",
		"*.egg-info/**",
		".pytest_cache/**",
		".mypy_cache/**",
		".ruff_cache/**",
		"tests/**",
		"test/**",
	}
}

// levelEnabled reports whether lvl is included in the requested analysis
// levels (an empty list means every level is enabled).
func (o Options) levelEnabled(lvl AnalysisLevel) bool {
	if len(o.AnalysisLevels) == 0 {
		return true
	}
	for _, l := range o.AnalysisLevels {
		if l == lvl {
			return true
		}
	}
	return false
}
