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

package rpm

import (
	"errors"
	"regexp"
	"strings"

	rpmutils "github.com/sassoftware/go-rpmutils"
)

// Comparison pairs an earlier build with a later one.
type Comparison struct {
	Before *Build
	After  *Build
	// Rebase is true when the upstream version changed between builds.
	Rebase        bool
	BeforeVersion string
	AfterVersion  string
}

// Pair is a package present in at least one build of a comparison. Before
// is nil for added packages and After is nil for removed ones.
type Pair struct {
	Before *Package
	After  *Package
}

// NewComparison decides whether the builds form a rebase. With noRebase set
// the comparison is always treated as a maintenance update.
func NewComparison(before, after *Build, noRebase bool) *Comparison {
	c := &Comparison{
		Before:        before,
		After:         after,
		BeforeVersion: buildVersion(before),
		AfterVersion:  buildVersion(after),
	}
	if !noRebase && c.BeforeVersion != "" && c.AfterVersion != "" {
		c.Rebase = rpmutils.Vercmp(c.BeforeVersion, c.AfterVersion) != 0
	}
	return c
}

func buildVersion(b *Build) string {
	if b == nil || len(b.Packages) == 0 {
		return ""
	}
	if src := b.SourcePackage(); src != nil {
		return src.Version
	}
	return b.Packages[0].Version
}

// Pairs matches packages of both builds by name and arch, in after-build
// order followed by removed packages.
func (c *Comparison) Pairs() []Pair {
	var out []Pair
	seen := map[string]bool{}
	key := func(p *Package) string { return p.Name + "." + p.Arch }

	for _, a := range c.After.Packages {
		seen[key(a)] = true
		out = append(out, Pair{Before: c.Before.Lookup(a.Name, a.Arch), After: a})
	}
	for _, b := range c.Before.Packages {
		if !seen[key(b)] {
			out = append(out, Pair{Before: b})
		}
	}
	return out
}

var (
	ErrNoDistTag = errors.New("release has no dist tag")

	distTagRE = regexp.MustCompile(`^[a-z]+[0-9][0-9a-z_]*$`)
)

// DistTag extracts the distribution tag from a release string, such as
// "fc40" from "1.fc40" or "el9_2" from "3.el9_2".
func DistTag(release string) (string, error) {
	fields := strings.Split(release, ".")
	for i := len(fields) - 1; i > 0; i-- {
		if distTagRE.MatchString(fields[i]) {
			return fields[i], nil
		}
	}
	return "", ErrNoDistTag
}

// ProductRelease is the dist tag shared by the build, or "" when the build
// has none.
func ProductRelease(b *Build) string {
	if b == nil {
		return ""
	}
	for _, p := range b.Packages {
		if tag, err := DistTag(p.Release); err == nil {
			return tag
		}
	}
	return ""
}
