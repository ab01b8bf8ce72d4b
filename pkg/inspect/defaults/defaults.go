// Copyright 2026 Chainguard, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This subpackage keeps the default inspection lists importable without
// pulling in the inspections themselves.

package defaults

import (
	"slices"
)

type Class int

const (
	// ClassSingle inspections run against a single build.
	ClassSingle Class = 1 << iota
	// ClassComparison inspections run when a before build is given.
	ClassComparison

	ClassBoth = ClassSingle | ClassComparison
)

func (c Class) String() string {
	switch c {
	case ClassSingle:
		return "single"
	case ClassComparison:
		return "comparison"
	case ClassBoth:
		return "both"
	default:
		return "none"
	}
}

// Inspections run when neither -T nor -E says otherwise.
var defaultInspections = []string{
	"addedfiles",
	"annocheck",
	"badfuncs",
	"debuginfo",
	"disttag",
	"emptyrpm",
	"filesize",
	"license",
	"ownership",
	"patches",
	"pathmigration",
	"permissions",
	"rpmdeps",
	"upstream",
	"virus",
}

// GetDefaultInspections returns the default inspection names, sorted.
func GetDefaultInspections() []string {
	return slices.Clone(defaultInspections)
}
