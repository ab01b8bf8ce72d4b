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

// Package inspect holds the inspection registry and the runner that turns a
// set of inspections into a results.Report.
package inspect

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/config"
	"github.com/rpminspect/rpminspect-sub001/pkg/inspect/defaults"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

// Context is everything an inspection may look at. It is shared by all
// inspections of a run and must be treated as read-only.
type Context struct {
	Config *config.Configuration
	// Build is the build under inspection; the after build of a comparison.
	Build *rpm.Build
	// Comparison is nil when a single build is inspected.
	Comparison *rpm.Comparison
	// Release is the product release (dist tag) the build targets.
	Release string
}

// IsComparison reports whether a before build is available.
func (c *Context) IsComparison() bool {
	return c.Comparison != nil
}

// IsRebase reports whether the comparison changes the upstream version.
func (c *Context) IsRebase() bool {
	return c.Comparison != nil && c.Comparison.Rebase
}

// Regression is the verdict and waiver for a change that makes things worse
// than the before build: it needs verifying on a maintenance update and is
// informational on a rebase.
func (c *Context) Regression() (results.Verdict, results.Waiver) {
	if c.IsRebase() {
		return results.Info, results.NotWaivable
	}
	return results.Verify, results.Anyone
}

// Func is the body of an inspection. Returning an error records a BAD
// result for the inspection; the rest of the run continues.
type Func func(ctx context.Context, ictx *Context, rec *Recorder) error

type Inspection struct {
	Name        string
	Description string
	Class       defaults.Class
	// Remedy is attached to every non-OK record that does not carry its own.
	Remedy string
	Func   Func
	// Waiver decides the waiver of records that do not pin one. Nil means
	// the severity fallback.
	Waiver results.WaiverResolver
}

// Applies reports whether the inspection can run in the given mode.
func (i Inspection) Applies(comparison bool) bool {
	if comparison {
		return i.Class&defaults.ClassComparison != 0
	}
	return i.Class&defaults.ClassSingle != 0
}

// Registry is a named set of inspections.
type Registry struct {
	inspections map[string]Inspection
	policy      *results.Policy
}

func NewRegistry(inspections ...Inspection) *Registry {
	r := &Registry{inspections: map[string]Inspection{}, policy: results.NewPolicy()}
	for _, i := range inspections {
		r.inspections[i.Name] = i
		if i.Waiver != nil {
			r.policy.Register(i.Name, i.Waiver)
		}
	}
	return r
}

// Lookup returns the named inspection.
func (r *Registry) Lookup(name string) (Inspection, bool) {
	i, ok := r.inspections[name]
	return i, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.inspections))
	for n := range r.inspections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every inspection, sorted by name.
func (r *Registry) All() []Inspection {
	out := make([]Inspection, 0, len(r.inspections))
	for _, n := range r.Names() {
		out = append(out, r.inspections[n])
	}
	return out
}

// Policy is the waiver policy built from the registered resolvers.
func (r *Registry) Policy() *results.Policy {
	return r.policy
}

// CheckValid returns the names that are not registered.
func (r *Registry) CheckValid(names []string) []string {
	var bad []string
	for _, n := range names {
		if _, ok := r.inspections[n]; !ok {
			bad = append(bad, n)
		}
	}
	return bad
}

// Select resolves -T and -E style lists to the inspections to run, in
// registry order. An empty include list, or "ALL", means every default
// inspection.
func (r *Registry) Select(include, exclude []string) ([]string, error) {
	include = cleanList(include)
	exclude = cleanList(exclude)

	if bad := r.CheckValid(slices.DeleteFunc(slices.Clone(include), isAll)); len(bad) > 0 {
		return nil, fmt.Errorf("unknown inspection(s): %s", strings.Join(bad, ", "))
	}
	if bad := r.CheckValid(exclude); len(bad) > 0 {
		return nil, fmt.Errorf("unknown inspection(s): %s", strings.Join(bad, ", "))
	}

	set := map[string]struct{}{}
	if len(include) == 0 || slices.ContainsFunc(include, isAll) {
		for _, n := range defaults.GetDefaultInspections() {
			set[n] = struct{}{}
		}
	}
	for _, n := range include {
		if !isAll(n) {
			set[n] = struct{}{}
		}
	}
	for _, n := range exclude {
		delete(set, n)
	}

	var out []string
	for _, n := range r.Names() {
		if _, ok := set[n]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func isAll(s string) bool {
	return strings.EqualFold(s, "ALL")
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}
