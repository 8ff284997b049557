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

import "testing"

func TestIsLargeTreeFileCountThreshold(t *testing.T) {
	opts := Options{LargeTreeFileThreshold: 1000, LargeTreeByteThreshold: 200 * 1024 * 1024}
	if isLargeTree(opts, 500, 0) {
		t.Errorf("expected 500 files to stay under the threshold")
	}
	if !isLargeTree(opts, 1001, 0) {
		t.Errorf("expected 1001 files to trip the large-tree path")
	}
}

func TestIsLargeTreeByteThreshold(t *testing.T) {
	opts := Options{LargeTreeFileThreshold: 1000, LargeTreeByteThreshold: 1024}
	if isLargeTree(opts, 1, 1023) {
		t.Errorf("expected 1023 bytes to stay under the threshold")
	}
	if !isLargeTree(opts, 1, 1025) {
		t.Errorf("expected 1025 bytes to trip the large-tree path")
	}
}

func TestSkipOptionalPassesThreshold(t *testing.T) {
	opts := Options{SkipOptionalPassesThreshold: 5000}
	if skipOptionalPasses(opts, 4999) {
		t.Errorf("expected 4999 files to keep optional passes enabled")
	}
	if !skipOptionalPasses(opts, 5001) {
		t.Errorf("expected 5001 files to skip optional passes")
	}
}

func TestStreamBatchesSplitsIntoFixedSizeChunks(t *testing.T) {
	files := make([]DiscoveredFile, 25)
	for i := range files {
		files[i] = DiscoveredFile{RelPath: string(rune('a' + i%26))}
	}
	opts := Options{BatchSize: 10}

	var batchSizes []int
	process := func(batch []DiscoveredFile) []*FileAnalysis {
		out := make([]*FileAnalysis, len(batch))
		for i := range batch {
			out[i] = &FileAnalysis{}
		}
		return out
	}
	onBatch := func(b BatchResult) { batchSizes = append(batchSizes, len(b.Analyses)) }

	results := StreamBatches(files, opts, process, onBatch)

	if len(results) != 25 {
		t.Fatalf("expected 25 total analyses, got %d", len(results))
	}
	if got := []int{10, 10, 5}; !equalInts(batchSizes, got) {
		t.Errorf("expected batch sizes %v, got %v", got, batchSizes)
	}
}

func TestStreamBatchesDefaultsBatchSizeWhenUnset(t *testing.T) {
	files := make([]DiscoveredFile, 3)
	opts := Options{} // BatchSize left at zero

	var calls int
	process := func(batch []DiscoveredFile) []*FileAnalysis {
		calls++
		return make([]*FileAnalysis, len(batch))
	}
	results := StreamBatches(files, opts, process, nil)

	if calls != 1 {
		t.Errorf("expected a single batch covering all 3 files, got %d calls", calls)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestReclaimIfNearCeilingNoopWhenMemoryLimitUnset(t *testing.T) {
	// MaxMemoryMB <= 0 disables the check; this must not panic or block.
	reclaimIfNearCeiling(Options{MaxMemoryMB: 0})
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
