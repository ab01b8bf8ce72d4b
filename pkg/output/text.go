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

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

type painter struct {
	colors map[results.Verdict]*color.Color
}

func newPainter(on bool) painter {
	p := painter{colors: map[results.Verdict]*color.Color{
		results.OK:     color.New(color.FgGreen),
		results.Info:   color.New(color.FgCyan),
		results.Verify: color.New(color.FgYellow, color.Bold),
		results.Bad:    color.New(color.FgRed, color.Bold),
	}}
	for _, c := range p.colors {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p painter) verdict(v results.Verdict) string {
	return p.colors[v].Sprint(v.String())
}

func renderText(w io.Writer, r *results.Report, o options) error {
	paint := newPainter(o.color)
	var b strings.Builder

	for name, recs := range r.All() {
		fmt.Fprintf(&b, "%s:\n%s\n", name, strings.Repeat("-", len(name)+1))

		if len(recs) == 0 {
			b.WriteString("(all results suppressed)\n\n")
			continue
		}
		for i, rec := range recs {
			msg := rec.Message
			if msg == "" {
				msg = "No problems found"
			}
			fmt.Fprintf(&b, "%d) %s\n\n", i+1, msg)
			fmt.Fprintf(&b, "   Result: %s\n", paint.verdict(rec.Verdict))
			if rec.Verdict != results.OK {
				fmt.Fprintf(&b, "   Waiver Authorization: %s\n", rec.Waiver)
			}
			if rec.Screendump != "" {
				b.WriteString("\n   Details:\n")
				for _, line := range strings.Split(rec.Screendump, "\n") {
					fmt.Fprintf(&b, "   %s\n", line)
				}
			}
			if rec.Remedy != "" {
				fmt.Fprintf(&b, "\n   Suggested Remedy: %s\n", rec.Remedy)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "%s %s from %s %s; overall result: %s\n",
		humanize.Comma(int64(r.Len())), plural(r.Len(), "result"),
		humanize.Comma(int64(len(r.Inspections()))), plural(len(r.Inspections()), "inspection"),
		paint.verdict(r.Worst()))
	if r.Partial() {
		b.WriteString("WARNING: the run was aborted; results are incomplete\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderSummary(w io.Writer, r *results.Report, o options) error {
	paint := newPainter(o.color)
	var b strings.Builder

	width := 0
	for _, name := range r.Inspections() {
		width = max(width, len(name))
	}
	for name, recs := range r.All() {
		worst := results.OK
		for _, rec := range recs {
			worst = max(worst, rec.Verdict)
		}
		fmt.Fprintf(&b, "%-*s  %s\n", width, name, paint.verdict(worst))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
