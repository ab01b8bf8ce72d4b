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

package inspections

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

// Requires that rpmbuild adds on its own and that are not worth reporting.
func isAutomaticDep(dep string) bool {
	return strings.HasPrefix(dep, "rpmlib(") || strings.HasPrefix(dep, "config(")
}

func deps(list []string) []string {
	out := slices.DeleteFunc(slices.Clone(list), isAutomaticDep)
	slices.Sort(out)
	return slices.Compact(out)
}

// diff returns the members of b missing from a.
func diff(a, b []string) []string {
	var out []string
	for _, s := range b {
		if !slices.Contains(a, s) {
			out = append(out, s)
		}
	}
	return out
}

func rpmDeps(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	if !ictx.IsComparison() {
		for _, p := range binaryPackages(ictx.Build) {
			if err := ctx.Err(); err != nil {
				return err
			}
			req := deps(p.Requires)
			if len(req) == 0 {
				continue
			}
			if err := rec.Add(results.Info,
				results.WithNoun(p.Name),
				results.WithArch(p.Arch),
				results.WithMessage(fmt.Sprintf("%s requires %s", p.NEVRA, strings.Join(req, ", "))),
				results.WithDetails(req),
				results.WithWaiver(results.NotWaivable),
			); err != nil {
				return err
			}
		}
		return nil
	}

	for _, pair := range ictx.Comparison.Pairs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pair.Before == nil || pair.After == nil || pair.After.Source {
			continue
		}
		name := pair.After.Name
		opts := []results.Option{results.WithNoun(name), results.WithArch(pair.After.Arch)}

		beforeReq, afterReq := deps(pair.Before.Requires), deps(pair.After.Requires)
		beforeProv, afterProv := deps(pair.Before.Provides), deps(pair.After.Provides)

		if gained := diff(beforeReq, afterReq); len(gained) > 0 {
			if err := rec.Regression(ictx, append(opts,
				results.WithVerb("gained"),
				results.WithMessage(fmt.Sprintf("%s gained Requires: %s", name, strings.Join(gained, ", "))))...); err != nil {
				return err
			}
		}
		if lost := diff(afterProv, beforeProv); len(lost) > 0 {
			if err := rec.Regression(ictx, append(opts,
				results.WithVerb("lost"),
				results.WithMessage(fmt.Sprintf("%s lost Provides: %s", name, strings.Join(lost, ", "))))...); err != nil {
				return err
			}
		}
		if lost := diff(afterReq, beforeReq); len(lost) > 0 {
			if err := rec.Add(results.Info, append(opts,
				results.WithVerb("lost"),
				results.WithWaiver(results.NotWaivable),
				results.WithMessage(fmt.Sprintf("%s lost Requires: %s", name, strings.Join(lost, ", "))))...); err != nil {
				return err
			}
		}
		if gained := diff(beforeProv, afterProv); len(gained) > 0 {
			if err := rec.Add(results.Info, append(opts,
				results.WithVerb("gained"),
				results.WithWaiver(results.NotWaivable),
				results.WithMessage(fmt.Sprintf("%s gained Provides: %s", name, strings.Join(gained, ", "))))...); err != nil {
				return err
			}
		}
	}
	return nil
}
