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

const simpleClassSource = `"""billing module."""


class Invoice(Base):
    """An invoice."""

    currency = "USD"

    def __init__(self, total):
        self.total = total

    def apply_discount(self, pct):
        if pct > 0:
            self.total = self.total * (1 - pct)
        return self.total


def compute_total(items):
    total = 0
    for item in items:
        total += item.price
    return total
`

func extract(t *testing.T, src string) *FileAnalysis {
	t.Helper()
	df := DiscoveredFile{
		AbsPath:       "billing.py",
		RelPath:       "myapp/billing.py",
		DottedModule:  "myapp.billing",
		DottedPackage: "myapp",
	}
	opts := Options{}.ApplyDefaults()
	return ExtractFile(df, []byte(src), opts)
}

func TestExtractFileSimpleClassAndMethod(t *testing.T) {
	fa := extract(t, simpleClassSource)
	if fa.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", fa.ParseError)
	}
	if fa.Module.DocSummary != "billing module." {
		t.Errorf("expected module docstring, got %q", fa.Module.DocSummary)
	}
	if len(fa.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(fa.Classes))
	}
	cls := fa.Classes[0]
	if cls.Name != "Invoice" {
		t.Errorf("expected class Invoice, got %q", cls.Name)
	}
	if len(cls.BaseNames) != 1 || cls.BaseNames[0] != "Base" {
		t.Errorf("expected base Base, got %v", cls.BaseNames)
	}
	if len(cls.MethodIDs) != 2 {
		t.Errorf("expected 2 methods on Invoice, got %d", len(cls.MethodIDs))
	}

	var applyDiscount Method
	var found bool
	for _, m := range fa.Methods {
		if m.Name == "apply_discount" {
			applyDiscount = m
			found = true
		}
	}
	if !found {
		t.Fatalf("expected method apply_discount")
	}
	if applyDiscount.Complexity != 2 {
		t.Errorf("expected complexity 2 (base 1 + if), got %d", applyDiscount.Complexity)
	}

	var currencyField, totalField *Field
	for i := range fa.Fields {
		switch fa.Fields[i].Name {
		case "currency":
			currencyField = &fa.Fields[i]
		case "total":
			totalField = &fa.Fields[i]
		}
	}
	if currencyField == nil || !currencyField.IsClassVariable {
		t.Errorf("expected class-level field currency, got %+v", currencyField)
	}
	if totalField == nil || totalField.IsClassVariable {
		t.Errorf("expected instance field total, got %+v", totalField)
	}

	foundFunc := false
	for _, id := range fa.Module.FunctionIDs {
		if id == GenerateFunctionID("compute_total", 18) {
			foundFunc = true
		}
	}
	if !foundFunc {
		t.Errorf("expected module-level function compute_total, got ids %v", fa.Module.FunctionIDs)
	}
}

func TestExtractFileInheritanceRelationship(t *testing.T) {
	src := `
class Base:
    pass


class Child(Base):
    pass
`
	fa := extract(t, src)
	found := false
	for _, r := range fa.Relationships {
		if r.Variant == RelInheritance {
			found = true
			if r.ToID == "" {
				t.Errorf("expected resolved target for same-file base class")
			}
		}
	}
	if !found {
		t.Errorf("expected an inheritance relationship, got %+v", fa.Relationships)
	}
}

func TestExtractFileUnresolvedCallPreserved(t *testing.T) {
	src := `
def caller():
    mystery_function()
`
	fa := extract(t, src)
	found := false
	for _, r := range fa.Relationships {
		if r.Variant == RelCall && r.ToID == unresolvedPrefix+"mystery_function" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unresolved call edge to be preserved, got %+v", fa.Relationships)
	}
}

func TestExtractFileSyntaxErrorRecorded(t *testing.T) {
	fa := extract(t, "def broken(:\n    pass\n")
	if fa.ParseError == "" {
		t.Errorf("expected ParseError to be set for malformed source")
	}
}

func TestExtractFileNonSelfAttributeAccess(t *testing.T) {
	src := `
class Settings:
    pass


def use_config(config):
    return config.value


def use_settings():
    return Settings.value
`
	fa := extract(t, src)

	wantUnresolved := unresolvedPrefix + "config.value"
	foundUnresolved := false
	foundResolved := false
	for _, r := range fa.Relationships {
		if r.Variant != RelAttribute {
			continue
		}
		switch r.ToID {
		case wantUnresolved:
			foundUnresolved = true
		case GenerateClassID(fa.Module.ID, "Settings"):
			foundResolved = true
		}
	}
	if !foundUnresolved {
		t.Errorf("expected unresolved attribute edge %q for non-self object, got %+v", wantUnresolved, fa.Relationships)
	}
	if !foundResolved {
		t.Errorf("expected attribute edge resolved against module scope for Settings.value, got %+v", fa.Relationships)
	}
}

func TestExtractFileSelfRecursiveCallPreserved(t *testing.T) {
	src := `
def recurse(n):
    if n <= 0:
        return n
    return recurse(n - 1)
`
	fa := extract(t, src)
	recurseID := GenerateFunctionID("recurse", 2)

	found := false
	for _, r := range fa.Relationships {
		if r.Variant == RelCall && r.FromID == recurseID && r.ToID == recurseID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected self-recursive call edge to be preserved, got %+v", fa.Relationships)
	}
}

func TestExtractFileAsyncFunctionAndMethod(t *testing.T) {
	src := `
async def fetch_data():
    return 1


class Worker:
    async def run(self):
        value = await fetch_data()
        return value

    @staticmethod
    async def cleanup():
        pass
`
	fa := extract(t, src)
	if fa.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", fa.ParseError)
	}

	foundFunc := false
	for _, id := range fa.Module.FunctionIDs {
		if id == GenerateFunctionID("fetch_data", 2) {
			foundFunc = true
		}
	}
	if !foundFunc {
		t.Errorf("expected async module-level function fetch_data, got ids %v", fa.Module.FunctionIDs)
	}

	var run, cleanup *Method
	for i := range fa.Methods {
		switch fa.Methods[i].Name {
		case "run":
			run = &fa.Methods[i]
		case "cleanup":
			cleanup = &fa.Methods[i]
		}
	}
	if run == nil {
		t.Fatalf("expected async method run to be extracted")
	}
	if !run.IsMethod {
		t.Errorf("expected run to be recorded as a method")
	}
	if cleanup == nil {
		t.Fatalf("expected decorated async method cleanup to be extracted")
	}
	if !cleanup.IsStatic {
		t.Errorf("expected cleanup to carry its staticmethod decorator")
	}

	foundCall := false
	for _, r := range fa.Relationships {
		if r.Variant == RelCall && r.ToID == GenerateFunctionID("fetch_data", 2) {
			foundCall = true
		}
	}
	if !foundCall {
		t.Errorf("expected call edge from async method run to fetch_data, got %+v", fa.Relationships)
	}
}
