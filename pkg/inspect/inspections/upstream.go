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
	"path"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

// Upstream sources are everything in the source package except the spec
// file and patches.
func upstreamSources(p *rpm.Package) map[string]rpm.File {
	out := map[string]rpm.File{}
	for _, f := range p.Files {
		name := path.Base(f.Path)
		if !f.IsRegular() || strings.HasSuffix(name, ".spec") || isPatch(name) {
			continue
		}
		out[name] = f
	}
	return out
}

func upstream(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	before := ictx.Comparison.Before.SourcePackage()
	after := ictx.Comparison.After.SourcePackage()
	if before == nil || after == nil {
		return nil
	}
	bs, as := upstreamSources(before), upstreamSources(after)

	for _, f := range after.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := path.Base(f.Path)
		af, ok := as[name]
		if !ok {
			continue
		}
		bf, existed := bs[name]

		var verb, msg string
		switch {
		case !existed:
			verb, msg = "added", fmt.Sprintf("New source file %s", name)
		case bf.Digest != af.Digest || bf.Size != af.Size:
			verb, msg = "changed", fmt.Sprintf("Source file %s changed", name)
		default:
			continue
		}
		if ictx.IsRebase() {
			msg += fmt.Sprintf(" (rebase from %s to %s)", ictx.Comparison.BeforeVersion, ictx.Comparison.AfterVersion)
		}
		if err := rec.Regression(ictx, fileResult(name, after, verb, msg)...); err != nil {
			return err
		}
	}

	for _, f := range before.Files {
		name := path.Base(f.Path)
		if _, ok := bs[name]; !ok {
			continue
		}
		if _, ok := as[name]; ok {
			continue
		}
		if err := rec.Regression(ictx, fileResult(name, after, "removed", fmt.Sprintf("Source file %s removed", name))...); err != nil {
			return err
		}
	}
	return nil
}

func fileResult(file string, p *rpm.Package, verb, msg string) []results.Option {
	return []results.Option{
		results.WithFile(file),
		results.WithNoun(p.Name),
		results.WithArch(p.Arch),
		results.WithVerb(verb),
		results.WithMessage(msg),
	}
}
