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

import "runtime"

// BatchResult is one fixed-size slice of a large tree's extraction output,
// yielded as soon as it's ready rather than after the whole tree completes.
type BatchResult struct {
	Analyses   []*FileAnalysis
	BatchIndex int
}

// BatchProcessor extracts one batch of discovered files, in whatever order
// (parallel or sequential) the caller's orchestration picks.
type BatchProcessor func(batch []DiscoveredFile) []*FileAnalysis

// isLargeTree reports whether the Large-Tree Streamer (C8) should be used
// for this run rather than a single unbatched pass.
func isLargeTree(opts Options, fileCount int, totalBytes int64) bool {
	return fileCount > opts.LargeTreeFileThreshold || totalBytes > opts.LargeTreeByteThreshold
}

// skipOptionalPasses reports whether a tree is large enough that optional
// passes (quality-metric aggregation, call-cycle detection) should be
// skipped to keep runtime bounded. Import-cycle detection always runs
// regardless of tree size.
func skipOptionalPasses(opts Options, fileCount int) bool {
	return fileCount > opts.SkipOptionalPassesThreshold
}

// StreamBatches splits files into opts.BatchSize chunks, invokes process on
// each in turn, reports every batch's result via onBatch (when non-nil) as
// soon as it's available, and returns all batches' results in input order.
// Analyse passes a nil onBatch and hands the returned results to the Graph
// Integrator only after the last batch; integration is not incremental. Between
// batches it checks heap usage against the 80% mark of opts.MaxMemoryMB and
// forces a GC pass if the ceiling is being approached.
func StreamBatches(files []DiscoveredFile, opts Options, process BatchProcessor, onBatch func(BatchResult)) []*FileAnalysis {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	var all []*FileAnalysis
	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}
		results := process(files[i:end])
		all = append(all, results...)
		if onBatch != nil {
			onBatch(BatchResult{Analyses: results, BatchIndex: i / batchSize})
		}
		reclaimIfNearCeiling(opts)
	}
	return all
}

func reclaimIfNearCeiling(opts Options) {
	if opts.MaxMemoryMB <= 0 {
		return
	}
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	usedMB := float64(stats.Alloc) / (1024 * 1024)
	if usedMB > 0.8*float64(opts.MaxMemoryMB) {
		runtime.GC()
	}
}
