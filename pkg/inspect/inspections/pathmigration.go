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
	"slices"
	"sort"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

// migratedPath returns where p belongs if it lies below a migrated
// directory.
func migratedPath(p string, migrated map[string]string, excluded []string) (string, bool) {
	if slices.ContainsFunc(excluded, func(e string) bool { return underDir(p, e) }) {
		return "", false
	}

	// Longest prefix first so /usr/sbin wins over a hypothetical /usr.
	olds := make([]string, 0, len(migrated))
	for old := range migrated {
		olds = append(olds, old)
	}
	sort.Slice(olds, func(i, j int) bool { return len(olds[i]) > len(olds[j]) })

	for _, old := range olds {
		if p != old && underDir(p, old) {
			return path.Join(migrated[old], strings.TrimPrefix(p, strings.TrimSuffix(old, "/")+"/")), true
		}
	}
	return "", false
}

func pathMigration(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	cfg := ictx.Config.PathMigration

	for _, p := range binaryPackages(ictx.Build) {
		for _, f := range p.Files {
			if err := ctx.Err(); err != nil {
				return err
			}
			want, ok := migratedPath(f.Path, cfg.MigratedPaths, cfg.ExcludedPaths)
			if !ok {
				continue
			}
			if err := rec.Add(results.Verify,
				results.WithFile(f.Path),
				results.WithArch(p.Arch),
				results.WithNoun(p.Name),
				results.WithMessage(fmt.Sprintf("%s should be %s on %s", f.Path, want, p.Arch)),
				results.WithWaiver(results.Anyone),
			); err != nil {
				return err
			}
		}
	}
	return nil
}
