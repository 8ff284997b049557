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

import sitter "github.com/smacker/go-tree-sitter"

// cyclomaticComplexity computes a method or function body's cyclomatic
// complexity: base 1, +1 per if/elif/for/while, +1 per except clause
// (matching the number of handlers, since each except_clause is one
// handler), +(len(values)-1) per boolean operator (each `and`/`or` chain
// node contributes one extra path), and +1 per comprehension generator
// clause plus +1 per comprehension if-clause.
func cyclomaticComplexity(body *sitter.Node, src []byte) int {
	complexity := 1
	if body == nil {
		return complexity
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "if_statement", "elif_clause", "for_statement", "while_statement":
			complexity++
		case "except_clause", "except_group_clause":
			complexity++
		case "boolean_operator":
			// Each boolean_operator node is a single binary and/or; a
			// chain `a and b and c` nests as boolean_operator(boolean_operator(a,b),c),
			// so counting every node in the chain reproduces
			// len(values)-1 extra paths for the whole chain.
			complexity++
		case "for_in_clause", "if_clause":
			if isWithinComprehension(n) {
				complexity++
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return complexity
}

// isWithinComprehension reports whether n is a for_in_clause or if_clause
// belonging to a comprehension (as opposed to a plain for/if statement,
// which tree-sitter never types this way, but the check keeps the switch
// above self-documenting and safe if the grammar ever reuses the node type).
func isWithinComprehension(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		return true
	}
	return false
}
