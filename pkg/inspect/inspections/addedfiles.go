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
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

// Build artifacts that are never expected in a package.
var forbiddenAddedPrefixes = []string{"/tmp/", "/var/tmp/", "/usr/local/"}

func addedFiles(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	for _, pair := range ictx.Comparison.Pairs() {
		if pair.After == nil || pair.After.Source {
			continue
		}
		for _, f := range pair.After.Files {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Every file of a package new to the build is added.
			if pair.Before != nil {
				if _, ok := pair.Before.Lookup(f.Path); ok {
					continue
				}
			}
			opts := []results.Option{
				results.WithFile(f.Path),
				results.WithArch(pair.After.Arch),
				results.WithNoun(pair.After.Name),
				results.WithVerb("added"),
			}

			if hasAnyPrefix(f.Path, forbiddenAddedPrefixes) {
				msg := fmt.Sprintf("%s added to %s in a location packages must not use", f.Path, pair.After.Name)
				if err := rec.Add(results.Bad, append(opts, results.WithMessage(msg))...); err != nil {
					return err
				}
				continue
			}

			if ictx.Config.IsSecurityPath(f.Path) && !ictx.IsRebase() {
				msg := fmt.Sprintf("%s added to %s on %s in a security sensitive location", f.Path, pair.After.Name, pair.After.Arch)
				opts = append(opts, results.WithMessage(msg), results.WithWaiver(results.Security))
				if err := rec.Add(results.Verify, opts...); err != nil {
					return err
				}
				continue
			}

			msg := fmt.Sprintf("%s added to %s on %s", f.Path, pair.After.Name, pair.After.Arch)
			if err := rec.Add(results.Info, append(opts, results.WithMessage(msg))...); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
