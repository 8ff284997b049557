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
	"fmt"
	"sort"
	"strings"
)

// GeneratePackageID builds the id for a package from its dotted path.
// Grammar: pkg:<dotted_path>
func GeneratePackageID(dottedPath string) string {
	return "pkg:" + dottedPath
}

// GenerateModuleID builds the id for a module from its dotted name.
// Grammar: mod:<dotted_path>
func GenerateModuleID(dottedName string) string {
	return "mod:" + dottedName
}

// GenerateClassID builds the id for a class given its owning module id and
// name. Grammar: cls:<module_id>:<class_name>
func GenerateClassID(moduleID, className string) string {
	return fmt.Sprintf("cls:%s:%s", moduleID, className)
}

// GenerateMethodID builds the id for a method owned by a class.
// Grammar: meth:<class_id>:<method_name>:<line>
func GenerateMethodID(classID, methodName string, line int) string {
	return fmt.Sprintf("meth:%s:%s:%d", classID, methodName, line)
}

// GenerateFunctionID builds the id for a module-level function (no owning
// class). Grammar: func:<name>:<line>
func GenerateFunctionID(name string, line int) string {
	return fmt.Sprintf("func:%s:%d", name, line)
}

// GenerateFieldID builds the id for a field owned by a class.
// Grammar: field:<class_id>:<field_name>
func GenerateFieldID(classID, fieldName string) string {
	return fmt.Sprintf("field:%s:%s", classID, fieldName)
}

// GenerateRelationshipID builds the id for a relationship edge.
// Grammar: rel:<from_id>-><to_id>:<variant>
func GenerateRelationshipID(fromID, toID string, variant RelationshipVariant) string {
	return fmt.Sprintf("rel:%s->%s:%s", fromID, toID, variant)
}

// GenerateCyclicDependencyID builds the id for a reported cycle from its
// variant and member entity ids. Grammar: cycle:<variant>:<sorted_entities>
func GenerateCyclicDependencyID(variant CyclicDependencyVariant, entities []string) string {
	sorted := append([]string(nil), entities...)
	sort.Strings(sorted)
	return fmt.Sprintf("cycle:%s:%s", variant, strings.Join(sorted, ","))
}
