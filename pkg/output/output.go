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

// Package output renders inspection reports.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
	FormatHTML    Format = "html"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatSummary, FormatHTML}
}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// ErrNotFrozen is returned when asked to render a report that inspections
// may still be writing to.
var ErrNotFrozen = errors.New("report is still being written")

type Option func(*options)

type options struct {
	suppress results.Verdict
	color    bool
	title    string
}

// WithSuppress hides records below v. It does not affect exit codes.
func WithSuppress(v results.Verdict) Option {
	return func(o *options) {
		o.suppress = v
	}
}

// WithColor turns on colored verdicts in text output.
func WithColor(on bool) Option {
	return func(o *options) {
		o.color = on
	}
}

// WithTitle sets the heading of HTML output.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// Render writes the report to w in the given format.
func Render(w io.Writer, format Format, r *results.Report, opts ...Option) error {
	if !r.Frozen() {
		return ErrNotFrozen
	}
	o := options{title: "rpminspect report"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.suppress > results.OK {
		r = r.Filter(o.suppress)
	}

	switch format {
	case FormatText:
		return renderText(w, r, o)
	case FormatJSON:
		return renderJSON(w, r)
	case FormatSummary:
		return renderSummary(w, r, o)
	case FormatHTML:
		return renderHTML(w, r, o)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderJSON(w io.Writer, r *results.Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// Save writes the rendered report to path, creating parent directories.
func Save(ctx context.Context, path string, format Format, r *results.Report, opts ...Option) error {
	log := clog.FromContext(ctx)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := Render(&buf, format, r, opts...); err != nil {
		return err
	}

	// #nosec G306 - reports are meant to be shared
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing results to %s: %w", path, err)
	}

	log.Infof("saved %s results to %s", format, path)
	return nil
}
