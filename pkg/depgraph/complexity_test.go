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

func methodComplexity(t *testing.T, src, name string) int {
	t.Helper()
	fa := extract(t, src)
	for _, m := range fa.Methods {
		if m.Name == name {
			return m.Complexity
		}
	}
	t.Fatalf("no method/function %q found in:\n%s", name, src)
	return -1
}

func TestCyclomaticComplexityBaseCase(t *testing.T) {
	src := `
def plain():
    return 1
`
	if got := methodComplexity(t, src, "plain"); got != 1 {
		t.Errorf("expected base complexity 1, got %d", got)
	}
}

func TestCyclomaticComplexityIfElifFor(t *testing.T) {
	src := `
def branchy(items):
    if len(items) == 0:
        return 0
    elif len(items) == 1:
        return items[0]
    total = 0
    for item in items:
        total += item
    return total
`
	// base 1 + if + elif + for = 4
	if got := methodComplexity(t, src, "branchy"); got != 4 {
		t.Errorf("expected complexity 4, got %d", got)
	}
}

func TestCyclomaticComplexityWhileAndExcept(t *testing.T) {
	src := `
def retrying(n):
    while n > 0:
        try:
            n -= 1
        except ValueError:
            break
        except TypeError:
            break
    return n
`
	// base 1 + while + 2 except clauses = 4
	if got := methodComplexity(t, src, "retrying"); got != 4 {
		t.Errorf("expected complexity 4, got %d", got)
	}
}

func TestCyclomaticComplexityBooleanOperatorChain(t *testing.T) {
	src := `
def guard(a, b, c):
    if a and b and c:
        return True
    return False
`
	// base 1 + if + two boolean_operator nodes (a-and-b, (a-and-b)-and-c) = 4
	if got := methodComplexity(t, src, "guard"); got != 4 {
		t.Errorf("expected complexity 4, got %d", got)
	}
}

func TestCyclomaticComplexityComprehensionClauses(t *testing.T) {
	src := `
def evens(items):
    return [x for x in items if x % 2 == 0]
`
	// base 1 + comprehension for-clause + comprehension if-clause = 3
	if got := methodComplexity(t, src, "evens"); got != 3 {
		t.Errorf("expected complexity 3, got %d", got)
	}
}

func TestCyclomaticComplexityPlainForIsNotDoubleCountedAsComprehension(t *testing.T) {
	src := `
def looped(items):
    out = []
    for x in items:
        out.append(x)
    return out
`
	// base 1 + plain for_statement = 2 (no comprehension clause involved)
	if got := methodComplexity(t, src, "looped"); got != 2 {
		t.Errorf("expected complexity 2, got %d", got)
	}
}
