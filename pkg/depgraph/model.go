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

// Package depgraph implements the static-analysis core: it parses a tree of
// Python source files into a five-level dependency graph (package, module,
// class, method, field) with import, inheritance, call and attribute-access
// relationships, and detects cycles over the import and call graphs.
package depgraph

// Package is the grouping entity for one dotted package path; every
// ancestor of a module's package path also gets its own Package, linked
// through SubPackageIDs.
type Package struct {
	ID           string
	Name         string
	Path         string
	ModuleIDs    []string
	SubPackageIDs []string
	ModuleCount  int // direct + transitive modules, computed once at integration
}

// Module corresponds to one source file.
type Module struct {
	ID          string
	Name        string // dotted name
	FilePath    string
	PackageID   string
	ClassIDs    []string
	FunctionIDs []string // module-level functions (no owning class)
	Imports     []ImportRecord
	LinesOfCode int
	DocSummary  string // first line of module docstring, if any
}

// Class represents a Python class definition.
type Class struct {
	ID         string
	Name       string
	ModuleID   string
	Line       int
	BaseNames  []string // unresolved textual base-class renderings
	Decorators []string
	MethodIDs  []string
	FieldIDs   []string
	Abstract   bool
	Docstring  string
}

// Method represents a function or method definition. A Method with an empty
// ClassID is a module-level function.
type Method struct {
	ID          string
	Name        string
	Line        int
	ClassID     string // empty for module-level functions
	Params      []string
	ReturnType  string // textual rendering of the return annotation, if any
	Decorators  []string
	IsMethod    bool
	IsStatic    bool
	IsClassMethod bool
	IsProperty  bool
	Complexity  int
	Docstring   string
}

// Field represents a class attribute assigned in a class body or in
// `self.name = ...` form.
type Field struct {
	ID              string
	Name            string
	ClassID         string
	Line            int
	TypeAnnotation  string
	DefaultValue    string
	IsClassVariable bool
}

// ImportVariant distinguishes `import x` from `from x import y`.
type ImportVariant string

const (
	ImportPlain ImportVariant = "plain_import"
	ImportFrom  ImportVariant = "from_import"
)

// ImportRecord captures one import statement inside a module.
type ImportRecord struct {
	TargetModule string
	ImportedName string // optional, only for from_import
	Alias        string // optional local alias
	Line         int
	Variant      ImportVariant
	Relative     bool
}

// RelationshipVariant enumerates the relationship kinds the extractor and
// integrator can produce.
type RelationshipVariant string

const (
	RelImport      RelationshipVariant = "import"
	RelInheritance RelationshipVariant = "inheritance"
	RelCall        RelationshipVariant = "call"
	RelAttribute   RelationshipVariant = "attribute_access"
	RelReference   RelationshipVariant = "reference"
	RelComposition RelationshipVariant = "composition"
)

// Relationship is a directed, tagged edge between two entities. ToID may be
// an unresolved textual name when the Integrator could not bind it to an
// existing entity id (invariant I4): such edges are preserved, not dropped.
type Relationship struct {
	ID       string
	FromID   string
	ToID     string
	Variant  RelationshipVariant
	Line     int
	FilePath string
	Strength float64
}

// CyclicDependencySeverity enumerates the severity classes a cycle report
// may carry.
type CyclicDependencySeverity string

const (
	SeverityLow    CyclicDependencySeverity = "low"
	SeverityMedium CyclicDependencySeverity = "medium"
	SeverityHigh   CyclicDependencySeverity = "high"
)

// CyclicDependencyVariant mirrors the two relation types the Cycle Detector
// runs over.
type CyclicDependencyVariant string

const (
	CycleImport CyclicDependencyVariant = "import"
	CycleCall   CyclicDependencyVariant = "call"
)

// CycleEdge is one intra-SCC edge reported as part of a cycle's path.
type CycleEdge struct {
	From     string
	To       string
	Variant  RelationshipVariant
	Strength float64
	FilePath string
	Line     int
}

// CycleMetrics summarizes a cycle's shape.
type CycleMetrics struct {
	Length          int
	EdgeCount       int
	AverageStrength float64
}

// CyclicDependency is emitted once per SCC of size >= 2 (or a self-loop).
type CyclicDependency struct {
	ID          string
	Entities    []string // SCC members, in first-discovery order of the second DFS
	Paths       []CycleEdge
	Variant     CyclicDependencyVariant
	Severity    CyclicDependencySeverity
	Metrics     CycleMetrics
	Description string
}

// FileAnalysis is the per-file output of the AST Extractor (C4): one value
// per source file, produced independently of every other file.
type FileAnalysis struct {
	Module        Module
	Classes       []Class
	Methods       []Method
	Fields        []Field
	Relationships []Relationship
	ParseError    string // non-empty marks the file as failed to parse
}

// DependencyGraph is the integrated five-level graph produced by the Graph
// Integrator (C5).
type DependencyGraph struct {
	Packages []Package
	Modules  []Module
	Classes  []Class
	Methods  []Method
	Fields   []Field
}

// ProjectInfo captures the metadata describing the analysed tree.
type ProjectInfo struct {
	RootPath   string
	FileCount  int
	ModuleCount int
}

// AnalysisMetrics carries run-level counters surfaced in the result payload.
type AnalysisMetrics struct {
	FilesDiscovered  int
	FilesAnalysed    int
	FilesReused      int
	FilesSkipped     int
	ParseErrors      int
	CacheHit         bool
	DurationMillis   int64
}

// AnalysisResult is the payload returned by Analyse.
type AnalysisResult struct {
	AnalysisID    string
	ProjectInfo   ProjectInfo
	DependencyGraph DependencyGraph
	Relationships []Relationship
	Cycles        []CyclicDependency
	Metrics       AnalysisMetrics
}
