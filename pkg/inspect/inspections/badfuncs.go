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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

// findBadFuncs returns the forbidden functions among symbols that are not
// allowed, sorted and without duplicates.
func findBadFuncs(symbols, forbidden, allowed []string) []string {
	var bad []string
	for _, s := range symbols {
		// Versioned imports look like inet_aton@GLIBC_2.2.5.
		name, _, _ := strings.Cut(s, "@")
		if slices.Contains(forbidden, name) && !slices.Contains(allowed, name) {
			bad = append(bad, name)
		}
	}
	slices.Sort(bad)
	return slices.Compact(bad)
}

func importedNames(ef *elf.File) ([]string, error) {
	syms, err := ef.ImportedSymbols()
	if err != nil {
		// Static objects have no dynamic symbol table.
		if errors.Is(err, elf.ErrNoSymbols) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(syms))
	for _, s := range syms {
		names = append(names, s.Name)
	}
	return names, nil
}

func badFuncs(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	cfg := ictx.Config.Badfuncs

	for _, p := range binaryPackages(ictx.Build) {
		if p.IsDebuginfo() || len(p.Files) == 0 {
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
			if !f.IsRegular() {
				continue
			}
			ef, err := openELF(fsys, f.Path)
			if err != nil {
				return err
			}
			if ef == nil {
				continue
			}
			names, err := importedNames(ef)
			ef.Close()
			if err != nil {
				return fmt.Errorf("reading symbols of %s: %w", f.Path, err)
			}

			bad := findBadFuncs(names, cfg.Forbidden, cfg.Allowed[f.Path])
			if len(bad) == 0 {
				continue
			}
			msg := fmt.Sprintf("%s on %s uses forbidden %s %s", f.Path, p.Arch, plural(len(bad), "function"), strings.Join(bad, ", "))
			if err := rec.Add(results.Verify,
				results.WithFile(f.Path),
				results.WithArch(p.Arch),
				results.WithNoun(p.Name),
				results.WithMessage(msg),
				results.WithDetails(bad),
				results.WithWaiver(results.Anyone),
			); err != nil {
				return err
			}
		}
	}
	return nil
}
