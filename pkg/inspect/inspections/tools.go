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
	"sort"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/internal/exttool"
	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

// defaultAnnocheckJobs is used when annocheck.jobs is not configured.
var defaultAnnocheckJobs = map[string]string{
	"hardened": "--ignore-unknown --verbose",
}

// scannable returns the packages an external tool can be pointed at.
func scannable(b *rpm.Build, includeSource bool) []*rpm.Package {
	var out []*rpm.Package
	for _, p := range b.Packages {
		if p.Location == "" || (p.Source && !includeSource) || p.IsDebuginfo() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func annocheck(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	jobs := ictx.Config.Annocheck.Jobs
	if len(jobs) == 0 {
		jobs = defaultAnnocheckJobs
	}
	names := make([]string, 0, len(jobs))
	for n := range jobs {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, job := range names {
		tool, err := exttool.New(ictx.Config.Commands.Annocheck, jobs[job], ictx.Config.CommandTimeout())
		if err != nil {
			return err
		}
		for _, p := range scannable(ictx.Build, false) {
			res, err := tool.Run(ctx, p.Location)
			if err != nil {
				return err
			}
			if res.ExitCode == 0 {
				continue
			}
			if err := rec.Add(results.Verify,
				results.WithNoun(p.Name),
				results.WithArch(p.Arch),
				results.WithMessage(fmt.Sprintf("annocheck %s job failed for %s", job, p.NEVRA)),
				results.WithScreendump(strings.TrimSpace(res.Output)),
				results.WithWaiver(results.Anyone),
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// clamscan exits 1 when it found something and 2 on errors.
const clamscanInfected = 1

func virus(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	tool, err := exttool.New(ictx.Config.Commands.Clamscan, "--stdout --no-summary --infected", ictx.Config.CommandTimeout())
	if err != nil {
		return err
	}

	for _, p := range scannable(ictx.Build, true) {
		res, err := tool.Run(ctx, p.Location)
		if err != nil {
			return err
		}
		switch res.ExitCode {
		case 0:
		case clamscanInfected:
			if err := rec.Add(results.Bad,
				results.WithNoun(p.Name),
				results.WithArch(p.Arch),
				results.WithMessage(fmt.Sprintf("Virus detected in %s", p.NEVRA)),
				results.WithScreendump(strings.TrimSpace(res.Output)),
				results.WithWaiver(results.Anyone),
			); err != nil {
				return err
			}
		default:
			return fmt.Errorf("clamscan failed on %s with exit code %d: %s", p.NEVRA, res.ExitCode, strings.TrimSpace(res.Output))
		}
	}
	return nil
}
