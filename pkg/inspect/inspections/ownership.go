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

func ownership(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	cfg := ictx.Config.Ownership

	for _, p := range binaryPackages(ictx.Build) {
		for _, f := range p.Files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if f.Mode.IsDir() || !inBinPath(f.Path, cfg.BinPaths) {
				continue
			}
			if f.Owner == cfg.BinOwner && f.Group == cfg.BinGroup {
				continue
			}
			msg := fmt.Sprintf("%s has owner %s:%s on %s, expected %s:%s", f.Path, f.Owner, f.Group, p.Arch, cfg.BinOwner, cfg.BinGroup)
			if err := rec.Add(results.Verify,
				results.WithFile(f.Path),
				results.WithArch(p.Arch),
				results.WithNoun(p.Name),
				results.WithMessage(msg),
				results.WithWaiver(results.Anyone),
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func inBinPath(p string, dirs []string) bool {
	for _, d := range dirs {
		if p != d && underDir(p, d) {
			return true
		}
	}
	return false
}
