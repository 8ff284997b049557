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

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// defaultMaxWorkers bounds the extraction worker pool the way the rest of
// this codebase's parallel file processing always has: a small constant
// headroom over available cores, capped so a huge machine doesn't spin up an
// unreasonable number of goroutines for a modest tree.
func defaultMaxWorkers() int {
	n := runtime.NumCPU() + 4
	if n > 32 {
		return 32
	}
	return n
}

// Analyse is the sole entry point into the static-analysis core (C9). It
// runs discovery, the optional incremental cache check, AST extraction
// (parallel or sequential, batched for large trees when
// EnablePerformanceOptimization is set), graph integration, and
// cycle detection over both the import graph and the call graph, reporting
// progress through sink at each stage. sink may be nil.
func Analyse(ctx context.Context, root string, opts Options, sink ProgressSink) (*AnalysisResult, error) {
	start := time.Now()
	if opts.CacheDir == "" {
		opts.CacheDir = filepath.Join(root, ".depscan", "cache")
	}
	opts = opts.ApplyDefaults()

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		report(sink, opts.Logger, Progress{Stage: StageFailed, Message: "project root is not a readable directory"})
		return nil, newFailure(FailureInput, "project root is not a readable directory: "+root, err)
	}

	report(sink, opts.Logger, Progress{Stage: StageDiscovering, Message: "discovering source files"})
	discovery, err := Discover(root, opts)
	if err != nil {
		report(sink, opts.Logger, Progress{Stage: StageFailed, Message: err.Error()})
		return nil, err
	}
	if len(discovery.Files) == 0 {
		f := newFailure(FailureInput, "no candidate source files found under "+root, nil)
		report(sink, opts.Logger, Progress{Stage: StageFailed, Message: f.Error()})
		return nil, f
	}

	report(sink, opts.Logger, Progress{Stage: StageEstimating, TotalFiles: len(discovery.Files)})
	largeTree := opts.EnablePerformanceOptimization && isLargeTree(opts, len(discovery.Files), discovery.TotalBytes)
	skipOptional := skipOptionalPasses(opts, len(discovery.Files))

	var cache *Cache
	var plan IncrementalPlan
	if opts.EnableCaching {
		report(sink, opts.Logger, Progress{Stage: StageCheckingCache})
		cache = OpenCache(opts.CacheDir, CacheID(root, opts))
		plan = cache.PlanLogged(discovery.Files, opts.Logger)
		cache.Drop(plan.Dropped)
	} else {
		plan = IncrementalPlan{New: discovery.Files}
	}
	cacheHit := opts.EnableCaching && !plan.FullFallback && len(plan.Reuse) > 0

	toExtract := make([]DiscoveredFile, 0, len(plan.New)+len(plan.Reanalyse))
	toExtract = append(toExtract, plan.New...)
	toExtract = append(toExtract, plan.Reanalyse...)

	var processedCount int
	var processedMu sync.Mutex
	progressEach := func(df DiscoveredFile) {
		if sink == nil {
			return
		}
		processedMu.Lock()
		processedCount++
		n := processedCount
		processedMu.Unlock()
		report(sink, opts.Logger, Progress{
			Stage:          StageExtracting,
			CurrentFile:    df.RelPath,
			FilesProcessed: n,
			TotalFiles:     len(toExtract),
			Fraction:       fraction(n, len(toExtract)),
		})
	}

	report(sink, opts.Logger, Progress{Stage: StageExtracting, TotalFiles: len(toExtract)})

	var fresh []*FileAnalysis
	extractBatch := func(batch []DiscoveredFile) []*FileAnalysis {
		results := parseFilesParallel(ctx, batch, opts, progressEach)
		if cache != nil {
			for i, df := range batch {
				if results[i] != nil {
					cache.Put(df, *results[i])
				}
			}
		}
		return results
	}

	if largeTree {
		fresh = StreamBatches(toExtract, opts, extractBatch, nil)
	} else {
		fresh = extractBatch(toExtract)
	}

	select {
	case <-ctx.Done():
		f := newFailure(FailureCancelled, "analysis cancelled", ctx.Err())
		report(sink, opts.Logger, Progress{Stage: StageFailed, Message: f.Error()})
		return nil, f
	default:
	}

	all := make([]*FileAnalysis, 0, len(fresh)+len(plan.Reuse))
	all = append(all, fresh...)
	var parseErrors int
	for _, fa := range fresh {
		if fa != nil && fa.ParseError != "" {
			parseErrors++
		}
	}
	if cache != nil {
		for _, df := range plan.Reuse {
			if cached, ok := cache.Get(df.RelPath); ok {
				all = append(all, cached)
				if cached.ParseError != "" {
					parseErrors++
				}
			}
		}
	}

	report(sink, opts.Logger, Progress{Stage: StageIntegrating})
	graph, relationships := Integrate(all, nil)

	report(sink, opts.Logger, Progress{Stage: StageDetectingCycles})
	importCycles := DetectCyclesLogged(relationships, RelImport, opts.Logger)
	var callCycles []CyclicDependency
	if !skipOptional {
		callCycles = DetectCyclesLogged(relationships, RelCall, opts.Logger)
	}
	cycles := append(importCycles, callCycles...)

	report(sink, opts.Logger, Progress{Stage: StageAssembling})
	result := &AnalysisResult{
		AnalysisID: CacheID(root, opts),
		ProjectInfo: ProjectInfo{
			RootPath:    root,
			FileCount:   len(discovery.Files),
			ModuleCount: len(graph.Modules),
		},
		DependencyGraph: *graph,
		Relationships:   relationships,
		Cycles:          cycles,
		Metrics: AnalysisMetrics{
			FilesDiscovered: len(discovery.Files),
			FilesAnalysed:   len(fresh),
			FilesReused:     len(plan.Reuse),
			FilesSkipped:    len(discovery.SkippedOversized),
			ParseErrors:     parseErrors,
			CacheHit:        cacheHit,
			DurationMillis:  time.Since(start).Milliseconds(),
		},
	}

	if cache != nil {
		report(sink, opts.Logger, Progress{Stage: StageCaching})
		if err := cache.Save(); err != nil {
			report(sink, opts.Logger, Progress{Stage: StageFailed, Message: err.Error()})
			return result, err
		}
	}

	report(sink, opts.Logger, Progress{Stage: StageDone, Fraction: 1})
	return result, nil
}

func fraction(done, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(done) / float64(total)
}

// parseFilesParallel runs ExtractFile over files using a bounded worker
// pool, collecting results back into the caller's original order. A single
// worker (or a batch of one file) runs inline without spinning up goroutines
// at all.
func parseFilesParallel(ctx context.Context, files []DiscoveredFile, opts Options, onEach func(DiscoveredFile)) []*FileAnalysis {
	results := make([]*FileAnalysis, len(files))
	if len(files) == 0 {
		return results
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = defaultMaxWorkers()
	}
	if workers > len(files) {
		workers = len(files)
	}
	if workers <= 1 {
		for i, df := range files {
			results[i] = extractOne(df, opts)
			if onEach != nil {
				onEach(df)
			}
		}
		return results
	}

	type job struct {
		index int
		file   DiscoveredFile
	}
	jobs := make(chan job)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results[j.index] = extractOne(j.file, opts)
				if onEach != nil {
					onEach(j.file)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, df := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{index: i, file: df}:
			}
		}
	}()

	wg.Wait()
	return results
}

func extractOne(df DiscoveredFile, opts Options) *FileAnalysis {
	src, err := os.ReadFile(df.AbsPath)
	if err != nil {
		return &FileAnalysis{
			Module:     Module{ID: GenerateModuleID(df.DottedModule), Name: df.DottedModule, FilePath: df.RelPath},
			ParseError: newFailure(FailureInput, "failed reading "+df.RelPath, err).Error(),
		}
	}
	return ExtractFile(df, src, opts)
}
