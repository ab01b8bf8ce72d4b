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

	"github.com/dustin/go-humanize"

	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

// exceedsThreshold reports whether the change from before to after is at
// least threshold percent of before. Integer arithmetic keeps the boundary
// exact: 5 -> 6 bytes is exactly 20%.
func exceedsThreshold(before, after int64, threshold int) bool {
	change := after - before
	if change < 0 {
		change = -change
	}
	return change*100 >= int64(threshold)*before
}

func fileSize(ctx context.Context, ictx *inspect.Context, rec *inspect.Recorder) error {
	threshold := ictx.Config.Filesize.SizeThreshold

	for _, pair := range ictx.Comparison.Pairs() {
		if pair.Before == nil || pair.After == nil || pair.After.Source {
			continue
		}
		for _, af := range pair.After.Files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !af.IsRegular() {
				continue
			}
			bf, ok := pair.Before.Lookup(af.Path)
			if !ok || !bf.IsRegular() || bf.Size == af.Size {
				continue
			}
			if err := recordSizeChange(ictx, rec, pair.After, bf, af, threshold); err != nil {
				return err
			}
		}
	}
	return nil
}

func recordSizeChange(ictx *inspect.Context, rec *inspect.Recorder, p *rpm.Package, bf, af rpm.File, threshold int) error {
	opts := []results.Option{
		results.WithFile(af.Path),
		results.WithArch(p.Arch),
		results.WithNoun(p.Name),
		results.WithDetails(map[string]int64{"before": bf.Size, "after": af.Size}),
	}

	switch {
	case af.Size == 0:
		return rec.Regression(ictx, append(opts, results.WithMessage(fmt.Sprintf("%s became an empty file on %s", af.Path, p.Arch)))...)
	case bf.Size == 0:
		return rec.Add(results.Info, append(opts,
			results.WithMessage(fmt.Sprintf("%s is no longer empty on %s (%s)", af.Path, p.Arch, humanize.Bytes(uint64(af.Size)))),
			results.WithWaiver(results.NotWaivable))...)
	}

	verb := "grew"
	if af.Size < bf.Size {
		verb = "shrank"
	}
	change := af.Size - bf.Size
	if change < 0 {
		change = -change
	}
	msg := fmt.Sprintf("%s %s by %d%% on %s (%s to %s)", af.Path, verb, change*100/bf.Size, p.Arch,
		humanize.Bytes(uint64(bf.Size)), humanize.Bytes(uint64(af.Size)))
	opts = append(opts, results.WithMessage(msg), results.WithVerb(verb))

	if exceedsThreshold(bf.Size, af.Size, threshold) {
		return rec.Regression(ictx, opts...)
	}
	return rec.Add(results.Info, append(opts, results.WithWaiver(results.NotWaivable))...)
}
