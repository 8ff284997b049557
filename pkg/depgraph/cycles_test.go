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

func rel(from, to string, variant RelationshipVariant) Relationship {
	return Relationship{ID: GenerateRelationshipID(from, to, variant), FromID: from, ToID: to, Variant: variant, Strength: 1.0}
}

func TestDetectCyclesTwoNodeImportCycle(t *testing.T) {
	edges := []Relationship{
		rel("mod:a", "mod:b", RelImport),
		rel("mod:b", "mod:a", RelImport),
	}
	cycles := DetectCycles(edges, RelImport)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d: %+v", len(cycles), cycles)
	}
	if cycles[0].Metrics.Length != 2 {
		t.Errorf("expected length 2, got %d", cycles[0].Metrics.Length)
	}
	if cycles[0].Severity != SeverityMedium {
		t.Errorf("expected medium severity for length-2 import cycle, got %s", cycles[0].Severity)
	}
}

func TestDetectCyclesFourNodeImportCycleIsHigh(t *testing.T) {
	edges := []Relationship{
		rel("mod:a", "mod:b", RelImport),
		rel("mod:b", "mod:c", RelImport),
		rel("mod:c", "mod:d", RelImport),
		rel("mod:d", "mod:a", RelImport),
	}
	cycles := DetectCycles(edges, RelImport)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if cycles[0].Severity != SeverityHigh {
		t.Errorf("expected high severity for length-4 import cycle, got %s", cycles[0].Severity)
	}
}

func TestDetectCyclesSelfImportIsACycle(t *testing.T) {
	edges := []Relationship{rel("mod:a", "mod:a", RelImport)}
	cycles := DetectCycles(edges, RelImport)
	if len(cycles) != 1 {
		t.Fatalf("expected self-import to be reported as a cycle, got %d", len(cycles))
	}
	if cycles[0].Metrics.Length != 1 {
		t.Errorf("expected length 1 for self-loop, got %d", cycles[0].Metrics.Length)
	}
}

func TestDetectCyclesCallCycleSeverity(t *testing.T) {
	twoNode := []Relationship{
		rel("func:a:1", "func:b:2", RelCall),
		rel("func:b:2", "func:a:1", RelCall),
	}
	cycles := DetectCycles(twoNode, RelCall)
	if len(cycles) != 1 || cycles[0].Severity != SeverityLow {
		t.Fatalf("expected low severity for 2-node call cycle, got %+v", cycles)
	}

	threeNode := []Relationship{
		rel("func:a:1", "func:b:2", RelCall),
		rel("func:b:2", "func:c:3", RelCall),
		rel("func:c:3", "func:a:1", RelCall),
	}
	cycles = DetectCycles(threeNode, RelCall)
	if len(cycles) != 1 || cycles[0].Severity != SeverityMedium {
		t.Fatalf("expected medium severity for 3-node call cycle, got %+v", cycles)
	}
}

func TestDetectCyclesNoFalsePositiveOnAcyclicGraph(t *testing.T) {
	edges := []Relationship{
		rel("mod:a", "mod:b", RelImport),
		rel("mod:b", "mod:c", RelImport),
	}
	cycles := DetectCycles(edges, RelImport)
	if len(cycles) != 0 {
		t.Fatalf("expected no cycles in a DAG, got %+v", cycles)
	}
}

func TestDetectCyclesIgnoresUnresolvedEdges(t *testing.T) {
	edges := []Relationship{rel("mod:a", unresolvedPrefix+"ghost", RelImport)}
	cycles := DetectCycles(edges, RelImport)
	if len(cycles) != 0 {
		t.Fatalf("expected unresolved edges to be excluded from cycle detection, got %+v", cycles)
	}
}
