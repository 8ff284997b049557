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
	"sort"
	"strings"
)

// Integrate merges independently-extracted FileAnalysis values into one
// DependencyGraph (C5), in four steps: (1) derive the package set from
// modules' dotted names, including every ancestor package; (2) concatenate
// classes, methods, and fields; (3) concatenate relationships, attempting
// cross-file resolution of edges pass 2 could not resolve within a single
// file, while never dropping an edge that stays unresolved (I4); (4)
// optionally fold in a secondary graph, de-duplicating by id.
func Integrate(files []*FileAnalysis, secondary *DependencyGraph) (*DependencyGraph, []Relationship) {
	graph := &DependencyGraph{}

	classByName := make(map[string][]string)   // simple name -> candidate ids
	funcByName := make(map[string][]string)     // simple name -> candidate ids (functions and methods)
	packages := make(map[string]*Package)

	for _, fa := range files {
		if fa == nil || fa.ParseError != "" && fa.Module.ID == "" {
			continue
		}
		graph.Modules = append(graph.Modules, fa.Module)
		for _, c := range fa.Classes {
			graph.Classes = append(graph.Classes, c)
			classByName[c.Name] = append(classByName[c.Name], c.ID)
		}
		for _, m := range fa.Methods {
			graph.Methods = append(graph.Methods, m)
			funcByName[m.Name] = append(funcByName[m.Name], m.ID)
		}
		graph.Fields = append(graph.Fields, fa.Fields...)

		registerPackageChain(packages, fa.Module.PackageID, fa.Module.ID, dottedOf(fa.Module.PackageID))
	}

	graph.Packages = finalizePackages(packages)

	moduleByName := make(map[string]string, len(graph.Modules))
	for _, m := range graph.Modules {
		moduleByName[m.Name] = m.ID
	}

	var relationships []Relationship
	for _, fa := range files {
		if fa == nil {
			continue
		}
		for _, rel := range fa.Relationships {
			relationships = append(relationships, resolveRelationship(rel, classByName, funcByName))
		}
		relationships = append(relationships, importRelationships(fa.Module, moduleByName)...)
	}

	if secondary != nil {
		graph.Packages = mergePackages(graph.Packages, secondary.Packages)
		graph.Modules = mergeModules(graph.Modules, secondary.Modules)
		graph.Classes = mergeClasses(graph.Classes, secondary.Classes)
		graph.Methods = mergeMethods(graph.Methods, secondary.Methods)
		graph.Fields = mergeFields(graph.Fields, secondary.Fields)
	}

	return graph, relationships
}

// resolveRelationship attempts to bind an unresolved edge's target to a
// globally-known class or function/method id. Ambiguous names (matched in
// more than one file) are left unresolved rather than guessed.
func resolveRelationship(rel Relationship, classByName, funcByName map[string][]string) Relationship {
	if !strings.HasPrefix(rel.ToID, unresolvedPrefix) {
		return rel
	}
	name := strings.TrimPrefix(rel.ToID, unresolvedPrefix)
	if strings.HasPrefix(name, "field:") {
		return rel // fields are scoped to a class; cross-file guessing is unsound
	}

	var candidates []string
	switch rel.Variant {
	case RelInheritance:
		candidates = classByName[name]
	case RelCall:
		candidates = funcByName[name]
	default:
		return rel
	}
	if len(candidates) != 1 {
		return rel
	}
	resolved := rel
	resolved.ToID = candidates[0]
	resolved.ID = GenerateRelationshipID(rel.FromID, resolved.ToID, rel.Variant)
	return resolved
}

// importRelationships converts a module's recorded import statements into
// RelImport edges, resolving against the set of modules known to this
// project. Imports of third-party or standard-library modules never resolve
// to a project module id and are intentionally not emitted: they would add
// unresolved leaf nodes to every module's edge list without being useful
// inputs to cycle detection.
func importRelationships(m Module, moduleByName map[string]string) []Relationship {
	var rels []Relationship
	for _, imp := range m.Imports {
		base := imp.TargetModule
		if imp.Relative {
			pkg := dottedOf(m.PackageID)
			switch {
			case imp.TargetModule != "" && pkg != "":
				base = pkg + "." + imp.TargetModule
			case imp.TargetModule == "":
				base = pkg
			}
		}
		// Try the more specific submodule form first: `from pkg import b`
		// should resolve to module pkg.b, not to package pkg's own
		// __init__ module, when b is in fact a submodule.
		var candidates []string
		if imp.ImportedName != "" && imp.ImportedName != "*" {
			candidates = append(candidates, base+"."+imp.ImportedName)
		}
		candidates = append(candidates, base)
		for _, candidate := range candidates {
			targetID, ok := moduleByName[candidate]
			if !ok || targetID == m.ID {
				continue
			}
			rels = append(rels, Relationship{
				ID:       GenerateRelationshipID(m.ID, targetID, RelImport),
				FromID:   m.ID,
				ToID:     targetID,
				Variant:  RelImport,
				Line:     imp.Line,
				FilePath: m.FilePath,
				Strength: 1.0,
			})
			break
		}
	}
	return rels
}

func dottedOf(packageID string) string {
	return strings.TrimPrefix(packageID, "pkg:")
}

// registerPackageChain ensures a Package record exists for packageDotted and
// every ancestor, recording moduleID against the most specific one.
func registerPackageChain(packages map[string]*Package, packageID, moduleID, packageDotted string) {
	if packageDotted == "" {
		return
	}
	segments := strings.Split(packageDotted, ".")
	for depth := len(segments); depth >= 1; depth-- {
		dotted := strings.Join(segments[:depth], ".")
		id := GeneratePackageID(dotted)
		p, ok := packages[id]
		if !ok {
			p = &Package{
				ID:   id,
				Name: segments[depth-1],
				Path: strings.ReplaceAll(dotted, ".", "/"),
			}
			packages[id] = p
		}
		if depth == len(segments) {
			p.ModuleIDs = appendUnique(p.ModuleIDs, moduleID)
		}
		if depth > 1 {
			parentDotted := strings.Join(segments[:depth-1], ".")
			parentID := GeneratePackageID(parentDotted)
			parent, ok := packages[parentID]
			if !ok {
				parent = &Package{ID: parentID, Name: segments[depth-2], Path: strings.ReplaceAll(parentDotted, ".", "/")}
				packages[parentID] = parent
			}
			parent.SubPackageIDs = appendUnique(parent.SubPackageIDs, id)
		}
	}
}

func appendUnique(s []string, v string) []string {
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	return append(s, v)
}

// finalizePackages computes each package's transitive ModuleCount bottom-up
// (deepest dotted names first, so a parent's count always includes its
// already-finalized children) and returns a deterministically ordered slice.
func finalizePackages(packages map[string]*Package) []Package {
	ids := make([]string, 0, len(packages))
	for id := range packages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return strings.Count(ids[i], ".") > strings.Count(ids[j], ".")
	})
	for _, id := range ids {
		p := packages[id]
		count := len(p.ModuleIDs)
		for _, subID := range p.SubPackageIDs {
			count += packages[subID].ModuleCount
		}
		p.ModuleCount = count
	}

	sort.Strings(ids)
	result := make([]Package, 0, len(ids))
	for _, id := range ids {
		result = append(result, *packages[id])
	}
	return result
}

func mergePackages(a, b []Package) []Package {
	seen := make(map[string]bool, len(a))
	for _, p := range a {
		seen[p.ID] = true
	}
	for _, p := range b {
		if !seen[p.ID] {
			a = append(a, p)
			seen[p.ID] = true
		}
	}
	return a
}

func mergeModules(a, b []Module) []Module {
	seen := make(map[string]bool, len(a))
	for _, m := range a {
		seen[m.ID] = true
	}
	for _, m := range b {
		if !seen[m.ID] {
			a = append(a, m)
			seen[m.ID] = true
		}
	}
	return a
}

func mergeClasses(a, b []Class) []Class {
	seen := make(map[string]bool, len(a))
	for _, c := range a {
		seen[c.ID] = true
	}
	for _, c := range b {
		if !seen[c.ID] {
			a = append(a, c)
			seen[c.ID] = true
		}
	}
	return a
}

func mergeMethods(a, b []Method) []Method {
	seen := make(map[string]bool, len(a))
	for _, m := range a {
		seen[m.ID] = true
	}
	for _, m := range b {
		if !seen[m.ID] {
			a = append(a, m)
			seen[m.ID] = true
		}
	}
	return a
}

func mergeFields(a, b []Field) []Field {
	seen := make(map[string]bool, len(a))
	for _, f := range a {
		seen[f.ID] = true
	}
	for _, f := range b {
		if !seen[f.ID] {
			a = append(a, f)
			seen[f.ID] = true
		}
	}
	return a
}
