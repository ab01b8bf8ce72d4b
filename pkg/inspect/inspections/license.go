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

	"github.com/github/go-spdx/v2/spdxexp"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

func license(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	seen := map[string]bool{}

	for _, p := range ictx.Build.Packages {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Subpackages usually share the main package's tag.
		key := p.Name + "\x00" + p.License
		if seen[key] {
			continue
		}
		seen[key] = true

		tag := strings.TrimSpace(p.License)
		opts := []results.Option{results.WithNoun(p.Name), results.WithArch(p.Arch), results.WithWaiver(results.NotWaivable)}

		if tag == "" {
			if err := rec.Add(results.Bad, append(opts, results.WithMessage(fmt.Sprintf("Empty License Tag in %s", p.NEVRA)))...); err != nil {
				return err
			}
			continue
		}
		if slices.Contains(ictx.Config.License.Allowed, tag) {
			continue
		}
		if valid, bad := spdxexp.ValidateLicenses([]string{tag}); !valid {
			msg := fmt.Sprintf("Invalid License Tag in %s: %s", p.NEVRA, tag)
			if len(bad) > 0 && bad[0] != tag {
				msg += fmt.Sprintf(" (unknown: %s)", strings.Join(bad, ", "))
			}
			if err := rec.Add(results.Bad, append(opts, results.WithMessage(msg))...); err != nil {
				return err
			}
		}
	}
	return nil
}
