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
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

func distTag(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	pkgs := ictx.Build.Packages
	if src := ictx.Build.SourcePackage(); src != nil {
		pkgs = []*rpm.Package{src}
	}

	for _, p := range pkgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts := []results.Option{results.WithNoun(p.Name), results.WithArch(p.Arch)}

		tag, err := rpm.DistTag(p.Release)
		if err != nil {
			if err := rec.Add(results.Bad, append(opts,
				results.WithMessage(fmt.Sprintf("Release %q of %s has no dist tag", p.Release, p.Name)),
				results.WithWaiver(results.NotWaivable))...); err != nil {
				return err
			}
			continue
		}
		if ictx.Release != "" && tag != ictx.Release {
			if err := rec.Add(results.Verify, append(opts,
				results.WithMessage(fmt.Sprintf("Dist tag %s of %s does not match product release %s", tag, p.NEVRA, ictx.Release)),
				results.WithWaiver(results.Anyone))...); err != nil {
				return err
			}
		}
	}
	return nil
}
