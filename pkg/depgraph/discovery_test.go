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
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDiscoverBasic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "myapp/__init__.py")
	writeFile(t, root, "myapp/services/__init__.py")
	writeFile(t, root, "myapp/services/billing.py")
	writeFile(t, root, "myapp/__pycache__/billing.cpython-311.pyc")

	opts := Options{}.ApplyDefaults()
	res, err := Discover(root, opts)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 candidate files, got %d: %+v", len(res.Files), res.Files)
	}

	byModule := map[string]DiscoveredFile{}
	for _, f := range res.Files {
		byModule[f.DottedModule] = f
	}
	billing, ok := byModule["myapp.services.billing"]
	if !ok {
		t.Fatalf("expected module myapp.services.billing, got %+v", byModule)
	}
	if billing.DottedPackage != "myapp.services" {
		t.Errorf("expected package myapp.services, got %q", billing.DottedPackage)
	}

	initMod, ok := byModule["myapp.services"]
	if !ok {
		t.Fatalf("expected __init__.py to resolve to module myapp.services, got %+v", byModule)
	}
	if initMod.DottedPackage != "myapp" {
		t.Errorf("expected package myapp for services __init__, got %q", initMod.DottedPackage)
	}
}

func TestDiscoverSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.py")

	opts := Options{MaxFileSizeBytes: 1}.ApplyDefaults()
	res, err := Discover(root, opts)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected oversized file to be skipped, got %+v", res.Files)
	}
	if len(res.SkippedOversized) != 1 {
		t.Fatalf("expected 1 skipped file recorded, got %d", len(res.SkippedOversized))
	}
}
