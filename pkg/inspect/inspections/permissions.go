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
	"io/fs"
	"slices"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

// specialBits names the setuid, setgid and sticky bits of mode.
func specialBits(mode fs.FileMode) []string {
	var parts []string
	if mode&fs.ModeSetuid != 0 {
		parts = append(parts, "setuid")
	}
	if mode&fs.ModeSetgid != 0 {
		parts = append(parts, "setgid")
	}
	if mode&fs.ModeSticky != 0 {
		parts = append(parts, "sticky")
	}
	return parts
}

func permissions(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	allowed := ictx.Config.Permissions.Allowed

	for _, p := range binaryPackages(ictx.Build) {
		var before *rpm.Package
		if ictx.IsComparison() {
			before = ictx.Comparison.Before.Lookup(p.Name, p.Arch)
		}

		for _, f := range p.Files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if f.Mode&fs.ModeSymlink != 0 {
				continue
			}
			opts := []results.Option{results.WithFile(f.Path), results.WithArch(p.Arch), results.WithNoun(p.Name)}

			if f.IsRegular() && f.Mode&(fs.ModeSetuid|fs.ModeSetgid) != 0 && !slices.Contains(allowed, f.Path) {
				msg := fmt.Sprintf("%s is %s (%s) on %s", f.Path, strings.Join(specialBits(f.Mode), " and "), modeToOctal(f.Mode), p.Arch)
				if err := rec.Add(results.Verify, append(opts, results.WithMessage(msg), results.WithWaiver(results.Security))...); err != nil {
					return err
				}
			}

			// World-writable directories are fine with the sticky bit, as /tmp is.
			if f.Mode&0o002 != 0 && !(f.Mode.IsDir() && f.Mode&fs.ModeSticky != 0) {
				msg := fmt.Sprintf("%s is world-writable (%s) on %s", f.Path, modeToOctal(f.Mode), p.Arch)
				if err := rec.Add(results.Bad, append(opts, results.WithMessage(msg), results.WithWaiver(results.Security))...); err != nil {
					return err
				}
			}

			if before == nil {
				continue
			}
			bf, ok := before.Lookup(f.Path)
			if !ok || bf.Mode == f.Mode {
				continue
			}
			msg := fmt.Sprintf("%s changed mode from %s to %s on %s", f.Path, modeToOctal(bf.Mode), modeToOctal(f.Mode), p.Arch)
			if err := rec.Add(results.Info, append(opts, results.WithMessage(msg), results.WithVerb("changed"))...); err != nil {
				return err
			}
		}
	}
	return nil
}
