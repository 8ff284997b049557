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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// unresolvedPrefix marks a relationship target that pass 2 could not resolve
// within the file being extracted. The Graph Integrator (C5) attempts
// resolution against the full cross-module symbol table; edges that remain
// unresolved after integration are kept, never dropped (I4).
const unresolvedPrefix = "unresolved:"

// pyExtractor holds the two-pass state for one file. Pass 1 builds the
// symbol table (classes, methods, fields, imports); pass 2 re-walks the same
// tree to resolve inheritance, call, and attribute-access relationships
// against that table.
type pyExtractor struct {
	df  DiscoveredFile
	src []byte
	opts Options

	module *Module

	classes []*Class
	methods []*Method
	fields  []*Field

	classByID   map[string]*Class
	methodByID  map[string]*Method
	nameToID    map[string]string // module-level function/class simple name -> id
	fieldsByCls map[string]map[string]string // classID -> field name -> field id

	relationships []Relationship
}

// ExtractFile runs the two-pass extraction contract (C4) over one discovered
// Python source file. A syntax error does not fail the run: it is recorded
// on FileAnalysis.ParseError and extraction proceeds over whatever the
// parser could recover.
func ExtractFile(df DiscoveredFile, src []byte, opts Options) *FileAnalysis {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		failure := newFailure(FailureInternal, "tree-sitter parse failed for "+df.RelPath, err)
		opts.Logger.Warn("depscan.extract.file_error", "path", df.RelPath, "err", failure.Error())
		return &FileAnalysis{ParseError: failure.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()

	ex := &pyExtractor{
		df:  df,
		src: src,
		opts: opts,
		module: &Module{
			ID:        GenerateModuleID(df.DottedModule),
			Name:      df.DottedModule,
			FilePath:  df.RelPath,
			PackageID: "",
		},
		classByID:   make(map[string]*Class),
		methodByID:  make(map[string]*Method),
		nameToID:    make(map[string]string),
		fieldsByCls: make(map[string]map[string]string),
	}
	if df.DottedPackage != "" {
		ex.module.PackageID = GeneratePackageID(df.DottedPackage)
	}
	ex.module.LinesOfCode = strings.Count(string(src), "\n") + 1
	doc := firstDocstring(root, src)
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		doc = strings.TrimSpace(doc[:i])
	}
	ex.module.DocSummary = doc

	ex.walkSymbols(root, nil)
	ex.walkReferences(root, nil, "")

	classes := make([]Class, len(ex.classes))
	for i, c := range ex.classes {
		classes[i] = *c
	}
	methods := make([]Method, len(ex.methods))
	for i, m := range ex.methods {
		methods[i] = *m
	}
	fields := make([]Field, len(ex.fields))
	for i, f := range ex.fields {
		fields[i] = *f
	}

	analysis := &FileAnalysis{
		Module:        *ex.module,
		Classes:       classes,
		Methods:       methods,
		Fields:        fields,
		Relationships: ex.relationships,
	}
	if root.HasError() {
		analysis.ParseError = "syntax error recovered by parser in " + df.RelPath
		opts.Logger.Warn("depscan.extract.file_error", "path", df.RelPath, "err", analysis.ParseError)
	}
	return analysis
}

// ---- Pass 1: symbol table -------------------------------------------------

func (ex *pyExtractor) walkSymbols(node *sitter.Node, classCtx *Class) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		ex.visitSymbol(node.Child(i), classCtx)
	}
}

func (ex *pyExtractor) visitSymbol(n *sitter.Node, classCtx *Class) {
	switch n.Type() {
	case "decorated_definition":
		decorators := ex.collectDecorators(n)
		def := n.ChildByFieldName("definition")
		if def != nil {
			ex.visitDefinition(def, classCtx, decorators)
		}
	case "class_definition", "function_definition", "async_function_definition":
		ex.visitDefinition(n, classCtx, nil)
	case "import_statement", "import_from_statement":
		if classCtx == nil {
			ex.module.Imports = append(ex.module.Imports, ex.extractImport(n)...)
		}
	case "expression_statement":
		if classCtx != nil {
			ex.handleClassLevelAssignment(n, classCtx)
		}
	default:
		ex.walkSymbols(n, classCtx)
	}
}

func (ex *pyExtractor) visitDefinition(n *sitter.Node, classCtx *Class, decorators []string) {
	switch n.Type() {
	case "class_definition":
		cls := ex.handleClass(n, classCtx, decorators)
		body := n.ChildByFieldName("body")
		ex.walkSymbols(body, cls)
	case "function_definition":
		ex.handleFunction(n, classCtx, decorators)
	case "async_function_definition":
		if inner := unwrapAsyncFunction(n); inner != nil {
			ex.handleFunction(inner, classCtx, decorators)
		}
	}
}

// unwrapAsyncFunction returns the inner function_definition node an
// async_function_definition wraps (the grammar exposes it as a plain
// positional child, not a named field), or nil if the shape is unexpected.
func unwrapAsyncFunction(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == "function_definition" {
			return child
		}
	}
	return nil
}

func (ex *pyExtractor) collectDecorators(n *sitter.Node) []string {
	var decorators []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "decorator" {
			decorators = append(decorators, nodeText(child, ex.src))
		}
	}
	return decorators
}

func (ex *pyExtractor) handleClass(n *sitter.Node, parent *Class, decorators []string) *Class {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, ex.src)
	line := int(n.StartPoint().Row) + 1
	id := GenerateClassID(ex.module.ID, name)

	bases := ex.extractBases(n)
	abstract := false
	for _, b := range bases {
		if strings.Contains(b, "ABC") {
			abstract = true
		}
	}

	cls := &Class{
		ID:         id,
		Name:       name,
		ModuleID:   ex.module.ID,
		Line:       line,
		BaseNames:  bases,
		Decorators: decorators,
		Abstract:   abstract,
		Docstring:  firstDocstring(n.ChildByFieldName("body"), ex.src),
	}
	ex.classes = append(ex.classes, cls)
	ex.classByID[id] = cls
	ex.nameToID[name] = id
	ex.module.ClassIDs = append(ex.module.ClassIDs, id)
	ex.fieldsByCls[id] = make(map[string]string)
	return cls
}

func (ex *pyExtractor) extractBases(n *sitter.Node) []string {
	argList := n.ChildByFieldName("superclasses")
	if argList == nil {
		return nil
	}
	var bases []string
	for i := 0; i < int(argList.ChildCount()); i++ {
		child := argList.Child(i)
		switch child.Type() {
		case "identifier", "attribute":
			bases = append(bases, nodeText(child, ex.src))
		}
	}
	return bases
}

func (ex *pyExtractor) handleFunction(n *sitter.Node, classCtx *Class, decorators []string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, ex.src)
	line := int(n.StartPoint().Row) + 1

	var id, classID string
	if classCtx != nil {
		classID = classCtx.ID
		id = GenerateMethodID(classID, name, line)
	} else {
		id = GenerateFunctionID(name, line)
	}

	paramsNode := n.ChildByFieldName("parameters")
	params := extractParamNames(paramsNode, ex.src)

	returnType := ""
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		returnType = nodeText(rt, ex.src)
	}

	isStatic, isClassMethod, isProperty := false, false, false
	for _, d := range decorators {
		switch {
		case strings.Contains(d, "staticmethod"):
			isStatic = true
		case strings.Contains(d, "classmethod"):
			isClassMethod = true
		case strings.Contains(d, "property"):
			isProperty = true
		case strings.Contains(d, "abstractmethod") && classCtx != nil:
			classCtx.Abstract = true
		}
	}

	body := n.ChildByFieldName("body")
	method := &Method{
		ID:            id,
		Name:          name,
		Line:          line,
		ClassID:       classID,
		Params:        params,
		ReturnType:    returnType,
		Decorators:    decorators,
		IsMethod:      classCtx != nil,
		IsStatic:      isStatic,
		IsClassMethod: isClassMethod,
		IsProperty:    isProperty,
		Complexity:    cyclomaticComplexity(body, ex.src),
		Docstring:     firstDocstring(body, ex.src),
	}
	ex.methods = append(ex.methods, method)
	ex.methodByID[id] = method

	if classCtx != nil {
		classCtx.MethodIDs = append(classCtx.MethodIDs, id)
		if !isStatic && len(params) > 0 {
			ex.collectSelfAssignments(body, classCtx, params[0])
		}
	} else {
		ex.module.FunctionIDs = append(ex.module.FunctionIDs, id)
		ex.nameToID[name] = id
	}
}

func (ex *pyExtractor) handleClassLevelAssignment(n *sitter.Node, classCtx *Class) {
	if n.ChildCount() == 0 {
		return
	}
	assign := n.Child(0)
	if assign.Type() != "assignment" {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := nodeText(left, ex.src)
	typeAnn := ""
	if t := assign.ChildByFieldName("type"); t != nil {
		typeAnn = nodeText(t, ex.src)
	}
	defaultVal := ""
	if r := assign.ChildByFieldName("right"); r != nil {
		defaultVal = truncateText(nodeText(r, ex.src), 120)
	}
	ex.addField(classCtx, name, int(n.StartPoint().Row)+1, typeAnn, defaultVal, true)
}

// collectSelfAssignments scans a method body for `self.attr = ...` style
// assignments and records them as instance fields of the owning class.
// selfName is whatever the method's first parameter is actually named.
func (ex *pyExtractor) collectSelfAssignments(body *sitter.Node, classCtx *Class, selfName string) {
	if body == nil {
		return
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "assignment" {
			left := n.ChildByFieldName("left")
			if left != nil && left.Type() == "attribute" {
				obj := left.ChildByFieldName("object")
				attr := left.ChildByFieldName("attribute")
				if obj != nil && attr != nil && nodeText(obj, ex.src) == selfName {
					name := nodeText(attr, ex.src)
					defaultVal := ""
					if r := n.ChildByFieldName("right"); r != nil {
						defaultVal = truncateText(nodeText(r, ex.src), 120)
					}
					ex.addField(classCtx, name, int(n.StartPoint().Row)+1, "", defaultVal, false)
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
}

func (ex *pyExtractor) addField(classCtx *Class, name string, line int, typeAnn, defaultVal string, isClassVar bool) {
	seen := ex.fieldsByCls[classCtx.ID]
	if _, ok := seen[name]; ok {
		return
	}
	id := GenerateFieldID(classCtx.ID, name)
	seen[name] = id
	field := &Field{
		ID:              id,
		Name:            name,
		ClassID:         classCtx.ID,
		Line:            line,
		TypeAnnotation:  typeAnn,
		DefaultValue:    defaultVal,
		IsClassVariable: isClassVar,
	}
	ex.fields = append(ex.fields, field)
	classCtx.FieldIDs = append(classCtx.FieldIDs, id)
}

func (ex *pyExtractor) extractImport(n *sitter.Node) []ImportRecord {
	line := int(n.StartPoint().Row) + 1
	var records []ImportRecord

	if n.Type() == "import_statement" {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "dotted_name":
				records = append(records, ImportRecord{TargetModule: nodeText(child, ex.src), Line: line, Variant: ImportPlain})
			case "aliased_import":
				nameNode := child.ChildByFieldName("name")
				aliasNode := child.ChildByFieldName("alias")
				if nameNode != nil {
					rec := ImportRecord{TargetModule: nodeText(nameNode, ex.src), Line: line, Variant: ImportPlain}
					if aliasNode != nil {
						rec.Alias = nodeText(aliasNode, ex.src)
					}
					records = append(records, rec)
				}
			}
		}
		return records
	}

	// import_from_statement: `from X import a, b as c` / `from .pkg import x`
	moduleNode := n.ChildByFieldName("module_name")
	target := ""
	relative := false
	if moduleNode != nil {
		if moduleNode.Type() == "relative_import" {
			relative = true
			target = strings.TrimLeft(nodeText(moduleNode, ex.src), ".")
		} else {
			target = nodeText(moduleNode, ex.src)
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "dotted_name":
			if child == moduleNode {
				continue
			}
			records = append(records, ImportRecord{TargetModule: target, ImportedName: nodeText(child, ex.src), Line: line, Variant: ImportFrom, Relative: relative})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode != nil {
				rec := ImportRecord{TargetModule: target, ImportedName: nodeText(nameNode, ex.src), Line: line, Variant: ImportFrom, Relative: relative}
				if aliasNode != nil {
					rec.Alias = nodeText(aliasNode, ex.src)
				}
				records = append(records, rec)
			}
		case "wildcard_import":
			records = append(records, ImportRecord{TargetModule: target, ImportedName: "*", Line: line, Variant: ImportFrom, Relative: relative})
		}
	}
	if len(records) == 0 && target != "" {
		records = append(records, ImportRecord{TargetModule: target, Line: line, Variant: ImportFrom, Relative: relative})
	}
	return records
}

// ---- Pass 2: reference extraction -----------------------------------------

// walkReferences re-walks the tree looking for inheritance, call, and
// attribute-access relationships. currentOwnerID identifies the enclosing
// method/function for call and attribute edges; classCtx identifies the
// enclosing class for inheritance edges and self-attribute resolution.
func (ex *pyExtractor) walkReferences(node *sitter.Node, classCtx *Class, currentOwnerID string) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorated_definition":
			def := child.ChildByFieldName("definition")
			if def != nil {
				ex.dispatchDefinitionRef(def, classCtx, currentOwnerID)
			}
		case "class_definition", "function_definition", "async_function_definition":
			ex.dispatchDefinitionRef(child, classCtx, currentOwnerID)
		case "call":
			ex.handleCall(child, currentOwnerID)
			ex.walkReferences(child, classCtx, currentOwnerID)
		case "attribute":
			ex.handleAttribute(child, classCtx, currentOwnerID)
			ex.walkReferences(child, classCtx, currentOwnerID)
		default:
			ex.walkReferences(child, classCtx, currentOwnerID)
		}
	}
}

func (ex *pyExtractor) dispatchDefinitionRef(n *sitter.Node, classCtx *Class, ownerID string) {
	if n.Type() == "async_function_definition" {
		inner := unwrapAsyncFunction(n)
		if inner == nil {
			return
		}
		n = inner
	}
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, ex.src)

	switch n.Type() {
	case "class_definition":
		cls := ex.classByID[ex.nameToID[name]]
		if cls == nil {
			// disambiguate by line if names collide; fall back to linear scan
			line := int(n.StartPoint().Row) + 1
			for _, c := range ex.classes {
				if c.Name == name && c.Line == line {
					cls = c
					break
				}
			}
		}
		ex.emitInheritance(cls)
		ex.walkReferences(n.ChildByFieldName("body"), cls, ownerID)
	case "function_definition":
		line := int(n.StartPoint().Row) + 1
		var id string
		if classCtx != nil {
			id = GenerateMethodID(classCtx.ID, name, line)
		} else {
			id = GenerateFunctionID(name, line)
		}
		ex.walkReferences(n.ChildByFieldName("body"), classCtx, id)
	}
}

func (ex *pyExtractor) emitInheritance(cls *Class) {
	if cls == nil {
		return
	}
	for _, base := range cls.BaseNames {
		if base == "object" || strings.Contains(base, "ABC") {
			continue
		}
		targetID, ok := ex.nameToID[base]
		if !ok {
			targetID = unresolvedPrefix + base
		}
		ex.relationships = append(ex.relationships, Relationship{
			ID:       GenerateRelationshipID(cls.ID, targetID, RelInheritance),
			FromID:   cls.ID,
			ToID:     targetID,
			Variant:  RelInheritance,
			Line:     cls.Line,
			FilePath: ex.df.RelPath,
			Strength: 1.0,
		})
	}
}

func (ex *pyExtractor) handleCall(call *sitter.Node, ownerID string) {
	if ownerID == "" {
		return
	}
	fnNode := call.ChildByFieldName("function")
	if fnNode == nil {
		return
	}
	calleeName := calleeName(fnNode, ex.src)
	if calleeName == "" {
		return
	}
	targetID, ok := ex.nameToID[calleeName]
	if !ok {
		targetID = unresolvedPrefix + calleeName
	}
	ex.relationships = append(ex.relationships, Relationship{
		ID:       GenerateRelationshipID(ownerID, targetID, RelCall),
		FromID:   ownerID,
		ToID:     targetID,
		Variant:  RelCall,
		Line:     int(call.StartPoint().Row) + 1,
		FilePath: ex.df.RelPath,
		Strength: 1.0,
	})
}

// handleAttribute emits an attribute_access relationship for any load-context
// `obj.attr` expression, not only `self.attr`: self is resolved against the
// owning class's known fields (fieldsByCls), and any other identifier object
// is resolved against the module-level symbol table the same way a call's
// callee is, falling back to an unresolved "obj.attr" target. The Integrator
// keeps attribute_access edges as emitted and does not rebind such targets.
func (ex *pyExtractor) handleAttribute(attr *sitter.Node, classCtx *Class, ownerID string) {
	if ownerID == "" {
		return
	}
	// Skip attribute nodes that are themselves the function of a call
	// expression; handleCall already accounts for those.
	if parent := attr.Parent(); parent != nil && parent.Type() == "call" {
		if fn := parent.ChildByFieldName("function"); fn == attr {
			return
		}
	}
	obj := attr.ChildByFieldName("object")
	attrName := attr.ChildByFieldName("attribute")
	if obj == nil || attrName == nil || obj.Type() != "identifier" {
		return
	}
	objName := nodeText(obj, ex.src)
	name := nodeText(attrName, ex.src)

	var targetID string
	if classCtx != nil && objName == "self" {
		fieldID, ok := ex.fieldsByCls[classCtx.ID][name]
		if !ok {
			fieldID = unresolvedPrefix + "field:" + name
		}
		targetID = fieldID
	} else if resolvedID, ok := ex.nameToID[objName]; ok {
		targetID = resolvedID
	} else {
		targetID = unresolvedPrefix + objName + "." + name
	}

	ex.relationships = append(ex.relationships, Relationship{
		ID:       GenerateRelationshipID(ownerID, targetID, RelAttribute),
		FromID:   ownerID,
		ToID:     targetID,
		Variant:  RelAttribute,
		Line:     int(attr.StartPoint().Row) + 1,
		FilePath: ex.df.RelPath,
		Strength: 0.5,
	})
}

// ---- shared node helpers ----------------------------------------------------

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// calleeName renders a call's function expression as the full attribute
// chain or bare name, e.g. "self.bar" or "pkg.mod.Class", matching how
// extractBases renders base-class expressions. When the object side isn't
// itself a plain identifier or attribute chain (e.g. a call result), only
// the trailing attribute name is kept, same as before.
func calleeName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier":
		return nodeText(n, src)
	case "attribute":
		attr := n.ChildByFieldName("attribute")
		if attr == nil {
			return ""
		}
		if obj := n.ChildByFieldName("object"); obj != nil {
			if objName := calleeName(obj, src); objName != "" {
				return objName + "." + nodeText(attr, src)
			}
		}
		return nodeText(attr, src)
	}
	return ""
}

func extractParamNames(paramsNode *sitter.Node, src []byte) []string {
	if paramsNode == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		p := paramsNode.Child(i)
		switch p.Type() {
		case "identifier":
			names = append(names, nodeText(p, src))
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				names = append(names, nodeText(nameNode, src))
			} else if p.ChildCount() > 0 && p.Child(0).Type() == "identifier" {
				names = append(names, nodeText(p.Child(0), src))
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			if p.ChildCount() > 0 {
				names = append(names, "*"+nodeText(p.Child(p.ChildCount()-1), src))
			}
		}
	}
	return names
}

// firstDocstring returns the text of the first statement in block if it is a
// bare string expression, stripped of quote characters.
func firstDocstring(block *sitter.Node, src []byte) string {
	if block == nil {
		return ""
	}
	for i := 0; i < int(block.ChildCount()); i++ {
		child := block.Child(i)
		if child.Type() == "expression_statement" && child.ChildCount() > 0 {
			expr := child.Child(0)
			if expr.Type() == "string" {
				return stripStringQuotes(nodeText(expr, src))
			}
		}
		// module/class bodies may start with a comment node tree-sitter
		// still surfaces as part of the block; skip past it.
		if child.Type() == "comment" {
			continue
		}
		break
	}
	return ""
}

func stripStringQuotes(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return s
}
