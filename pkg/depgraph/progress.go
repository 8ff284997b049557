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

// Stage names the orchestrator's deterministic run sequence, in order.
type Stage string

const (
	StageDiscovering    Stage = "discovering"
	StageEstimating     Stage = "estimating"
	StageCheckingCache  Stage = "checking-cache"
	StageExtracting     Stage = "extracting"
	StageIntegrating    Stage = "integrating"
	StageDetectingCycles Stage = "detecting-cycles"
	StageAssembling     Stage = "assembling"
	StageCaching        Stage = "caching"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// Progress is one update emitted from the orchestrator's thread.
type Progress struct {
	Stage          Stage
	Fraction       float64 // in [0,1]
	Message        string
	CurrentFile    string
	FilesProcessed int
	TotalFiles     int
}

// ProgressSink receives Progress updates. A nil sink is valid: callers that
// don't care about progress may pass nil and Analyse skips reporting.
type ProgressSink func(Progress)

// report is a nil-safe helper used throughout the orchestrator. It forwards
// every update to sink and, for stage-level updates (anything that isn't a
// per-file extraction tick), logs depscan.orchestrator.stage so the run's
// sequence is visible without a progress sink attached.
func report(sink ProgressSink, logger *slog.Logger, p Progress) {
	if logger != nil && p.CurrentFile == "" {
		logger.Info("depscan.orchestrator.stage", "stage", string(p.Stage), "message", p.Message, "total_files", p.TotalFiles)
	}
	if sink != nil {
		sink(p)
	}
}
