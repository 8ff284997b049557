// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/kraklabs/depscan/internal/errors"
	"github.com/kraklabs/depscan/pkg/depgraph"
)

const lastRunFileName = "last-run.json"

// runSummary is the record written to the cache directory after each
// 'depscan analyze', so 'depscan status' can report on the most recent run
// without re-running analysis or keeping a separate database open.
type runSummary struct {
	ProjectID  string    `json:"project_id"`
	RootPath   string    `json:"root_path"`
	Timestamp  time.Time `json:"timestamp"`
	AnalysisID string    `json:"analysis_id"`

	Packages      int `json:"packages"`
	Modules       int `json:"modules"`
	Classes       int `json:"classes"`
	Methods       int `json:"methods"`
	Fields        int `json:"fields"`
	Relationships int `json:"relationships"`
	Cycles        int `json:"cycles"`

	FilesDiscovered int   `json:"files_discovered"`
	FilesAnalysed   int   `json:"files_analysed"`
	FilesReused     int   `json:"files_reused"`
	FilesSkipped    int   `json:"files_skipped"`
	ParseErrors     int   `json:"parse_errors"`
	CacheHit        bool  `json:"cache_hit"`
	DurationMillis  int64 `json:"duration_millis"`
}

func newRunSummary(projectID string, result *depgraph.AnalysisResult) *runSummary {
	g := result.DependencyGraph
	return &runSummary{
		ProjectID:  projectID,
		RootPath:   result.ProjectInfo.RootPath,
		AnalysisID: result.AnalysisID,

		Packages:      len(g.Packages),
		Modules:       len(g.Modules),
		Classes:       len(g.Classes),
		Methods:       len(g.Methods),
		Fields:        len(g.Fields),
		Relationships: len(result.Relationships),
		Cycles:        len(result.Cycles),

		FilesDiscovered: result.Metrics.FilesDiscovered,
		FilesAnalysed:   result.Metrics.FilesAnalysed,
		FilesReused:     result.Metrics.FilesReused,
		FilesSkipped:    result.Metrics.FilesSkipped,
		ParseErrors:     result.Metrics.ParseErrors,
		CacheHit:        result.Metrics.CacheHit,
		DurationMillis:  result.Metrics.DurationMillis,
	}
}

// saveRunSummary stamps the summary's timestamp and writes it to
// <cacheDir>/last-run.json via the standard write-to-temp-then-rename
// pattern.
func saveRunSummary(cacheDir string, s *runSummary, now time.Time) error {
	s.Timestamp = now

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode run summary",
			"JSON marshaling failed unexpectedly",
			"This is a bug. Please report it",
			err,
		)
	}

	if err := os.MkdirAll(cacheDir, 0750); err != nil {
		return errors.NewPermissionError(
			"Cannot create cache directory",
			"Permission denied creating "+cacheDir,
			"Check directory permissions",
			err,
		)
	}

	path := filepath.Join(cacheDir, lastRunFileName)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return errors.NewPermissionError(
			"Cannot write run summary",
			"Permission denied writing to "+path,
			"Check file permissions and available disk space",
			err,
		)
	}
	return os.Rename(tmpPath, path)
}

// loadRunSummary reads the summary left by the last 'depscan analyze' run,
// or returns (nil, false) if none exists yet.
func loadRunSummary(cacheDir string) (*runSummary, bool) {
	data, err := os.ReadFile(filepath.Join(cacheDir, lastRunFileName))
	if err != nil {
		return nil, false
	}
	var s runSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false
	}
	return &s, true
}
