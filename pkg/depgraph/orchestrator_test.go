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
	"testing"
)

func TestAnalyseSimpleProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "myapp/__init__.py")
	writeFile(t, root, "myapp/models.py")

	var stages []Stage
	sink := func(p Progress) { stages = append(stages, p.Stage) }

	result, err := Analyse(context.Background(), root, Options{}, sink)
	if err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	if result.Metrics.FilesDiscovered != 2 {
		t.Errorf("expected 2 discovered files, got %d", result.Metrics.FilesDiscovered)
	}
	if len(stages) == 0 || stages[len(stages)-1] != StageDone {
		t.Errorf("expected final stage to be done, got %v", stages)
	}
}

func TestAnalyseRejectsMissingRoot(t *testing.T) {
	_, err := Analyse(context.Background(), "/no/such/path/depscan-test", Options{}, nil)
	if err == nil {
		t.Fatalf("expected an error for a missing project root")
	}
}

func TestAnalyseDetectsImportCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/a.py")
	writeFile(t, root, "pkg/b.py")
	writeFile(t, root, "pkg/__init__.py")

	aPath := root + "/pkg/a.py"
	bPath := root + "/pkg/b.py"
	writeRaw(t, aPath, "from pkg import b\n")
	writeRaw(t, bPath, "from pkg import a\n")

	result, err := Analyse(context.Background(), root, Options{}, nil)
	if err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	found := false
	for _, c := range result.Cycles {
		if c.Variant == CycleImport {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an import cycle to be detected, got %+v", result.Cycles)
	}
}

func TestAnalyseIncrementalReuseOnSecondRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "myapp/models.py")

	opts := Options{EnableCaching: true, CacheDir: t.TempDir()}

	if _, err := Analyse(context.Background(), root, opts, nil); err != nil {
		t.Fatalf("first Analyse: %v", err)
	}
	result, err := Analyse(context.Background(), root, opts, nil)
	if err != nil {
		t.Fatalf("second Analyse: %v", err)
	}
	if result.Metrics.FilesReused != 1 {
		t.Errorf("expected second run to reuse the unchanged file, got %+v", result.Metrics)
	}
}

func writeRaw(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
