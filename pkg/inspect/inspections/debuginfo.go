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
	"debug/elf"
	"fmt"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

func hasDebugSections(sections []*elf.Section) bool {
	for _, s := range sections {
		if strings.HasPrefix(s.Name, ".debug_") || strings.HasPrefix(s.Name, ".zdebug_") {
			return true
		}
	}
	return false
}

// Source packages and ordinary binary packages have nothing to check here
// and end up with an OK result.
func debugInfo(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	for _, p := range binaryPackages(ictx.Build) {
		if !strings.HasSuffix(p.Name, "-debuginfo") {
			continue
		}
		fsys, err := p.Payload(ctx)
		if err != nil {
			return err
		}

		for _, f := range p.Files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !f.IsRegular() || !strings.HasPrefix(f.Path, "/usr/lib/debug/") || !strings.HasSuffix(f.Path, ".debug") {
				continue
			}
			ef, err := openELF(fsys, f.Path)
			if err != nil {
				return err
			}
			if ef == nil {
				continue
			}
			ok := hasDebugSections(ef.Sections)
			ef.Close()
			if ok {
				continue
			}
			if err := rec.Add(results.Verify,
				results.WithFile(f.Path),
				results.WithArch(p.Arch),
				results.WithNoun(p.Name),
				results.WithMessage(fmt.Sprintf("%s in %s carries no debugging symbols", f.Path, p.NEVRA)),
				results.WithWaiver(results.Anyone),
			); err != nil {
				return err
			}
		}
	}
	return nil
}
