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

func TestIntegratePackageHierarchy(t *testing.T) {
	opts := Options{}.ApplyDefaults()
	a := extract(t, "class A:\n    pass\n")
	a.Module = Module{ID: GenerateModuleID("myapp.services.billing"), Name: "myapp.services.billing", PackageID: GeneratePackageID("myapp.services")}
	b := extract(t, "class B:\n    pass\n")
	b.Module = Module{ID: GenerateModuleID("myapp.services.tax"), Name: "myapp.services.tax", PackageID: GeneratePackageID("myapp.services")}
	_ = opts

	graph, _ := Integrate([]*FileAnalysis{a, b}, nil)

	var servicesPkg, appPkg *Package
	for i := range graph.Packages {
		switch graph.Packages[i].ID {
		case GeneratePackageID("myapp.services"):
			servicesPkg = &graph.Packages[i]
		case GeneratePackageID("myapp"):
			appPkg = &graph.Packages[i]
		}
	}
	if servicesPkg == nil {
		t.Fatalf("expected myapp.services package, got %+v", graph.Packages)
	}
	if len(servicesPkg.ModuleIDs) != 2 {
		t.Errorf("expected 2 modules directly under myapp.services, got %d", len(servicesPkg.ModuleIDs))
	}
	if appPkg == nil {
		t.Fatalf("expected ancestor package myapp to be synthesized")
	}
	if appPkg.ModuleCount != 2 {
		t.Errorf("expected myapp.ModuleCount to include transitive modules, got %d", appPkg.ModuleCount)
	}
}

func TestIntegrateResolvesCrossFileCall(t *testing.T) {
	caller := extract(t, "def caller():\n    helper()\n")
	callee := extract(t, "def helper():\n    pass\n")
	callee.Module = Module{ID: GenerateModuleID("myapp.util")}

	_, relationships := Integrate([]*FileAnalysis{caller, callee}, nil)

	resolved := false
	for _, r := range relationships {
		if r.Variant == RelCall && r.ToID == GenerateFunctionID("helper", 1) {
			resolved = true
		}
	}
	if !resolved {
		t.Errorf("expected cross-file call to resolve to helper's id, got %+v", relationships)
	}
}
