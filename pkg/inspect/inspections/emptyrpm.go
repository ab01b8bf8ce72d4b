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

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

func emptyRPM(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	for _, p := range binaryPackages(ictx.Build) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(p.Files) > 0 {
			continue
		}

		opts := []results.Option{results.WithNoun(p.Name), results.WithArch(p.Arch)}

		if ictx.IsComparison() {
			before := ictx.Comparison.Before.Lookup(p.Name, p.Arch)
			switch {
			case before == nil:
				opts = append(opts, results.WithMessage(fmt.Sprintf("New package %s is empty", p.Name)))
			case len(before.Files) > 0:
				if err := rec.Regression(ictx, append(opts, results.WithMessage(fmt.Sprintf("Package %s became empty", p.Name)))...); err != nil {
					return err
				}
				continue
			default:
				opts = append(opts, results.WithMessage(fmt.Sprintf("Package %s continues to be empty", p.Name)))
			}
		} else {
			opts = append(opts, results.WithMessage(fmt.Sprintf("Package %s is empty", p.Name)))
		}

		if err := rec.Add(results.Info, append(opts, results.WithWaiver(results.NotWaivable))...); err != nil {
			return err
		}
	}
	return nil
}
