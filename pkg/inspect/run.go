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

package inspect

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/rpminspect/rpminspect-sub001/internal/exttool"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

type RunOption func(*runOptions)

type runOptions struct {
	jobs int
}

// WithJobs bounds how many inspections run at once. Values below one mean
// one job per CPU.
func WithJobs(n int) RunOption {
	return func(o *runOptions) {
		o.jobs = n
	}
}

// Run executes the named inspections concurrently and returns the frozen
// report. Inspections that do not apply to the run's mode, or that the
// configuration turns off, are left out of the report. If ctx is cancelled
// the report is marked partial and the context error is returned with it.
func (r *Registry) Run(ctx context.Context, ictx *Context, names []string, opts ...RunOption) (*results.Report, error) {
	ctx, span := otel.Tracer("rpminspect").Start(ctx, "inspect")
	defer span.End()
	log := clog.FromContext(ctx)

	o := runOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.jobs < 1 {
		o.jobs = runtime.NumCPU()
	}

	if bad := r.CheckValid(names); len(bad) > 0 {
		return nil, fmt.Errorf("unknown inspection(s): %s", strings.Join(bad, ", "))
	}

	report := results.NewReport(results.WithPolicy(r.policy))

	var g errgroup.Group
	g.SetLimit(o.jobs)

	for _, name := range names {
		ins := r.inspections[name]
		if !ins.Applies(ictx.IsComparison()) {
			log.Debugf("skipping %s: does not apply to this run", name)
			continue
		}
		if ictx.Config != nil && !ictx.Config.Enabled(name) {
			log.Debugf("skipping %s: disabled by configuration", name)
			continue
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			r.runOne(ctx, ins, ictx, report)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		report.MarkPartial()
		report.Freeze()
		span.SetStatus(codes.Error, "aborted")
		return report, fmt.Errorf("inspection run aborted: %w", err)
	}

	report.Freeze()
	return report, nil
}

func (r *Registry) runOne(ctx context.Context, ins Inspection, ictx *Context, report *results.Report) {
	ctx, span := otel.Tracer("rpminspect").Start(ctx, ins.Name)
	defer span.End()
	log := clog.FromContext(ctx).With("inspection", ins.Name)

	rec := newRecorder(ins, report, r.policy, ictx)

	fail := func(msg string) {
		span.SetStatus(codes.Error, msg)
		if err := rec.Add(results.Bad, results.WithMessage(msg), results.WithWaiver(results.NotWaivable)); err != nil {
			log.Errorf("recording failure: %v", err)
		}
	}

	defer func() {
		if p := recover(); p != nil {
			fail(fmt.Sprintf("%s inspection crashed: %v", ins.Name, p))
		}
	}()

	log.Debugf("running %s", ins.Name)
	err := ins.Func(ctx, ictx, rec)

	switch {
	case err == nil:
		if err := report.Ensure(ins.Name); err != nil {
			log.Errorf("recording result: %v", err)
		}
	case errors.Is(err, exttool.ErrUnavailable):
		log.Warnf("skipping %s: environment not capable: %v", ins.Name, err)
		span.SetAttributes(attribute.Bool("skipped", true))
	case errors.Is(err, exttool.ErrTimeout):
		fail(fmt.Sprintf("%s timed out: %v", ins.Name, err))
	case ctx.Err() != nil:
		log.Debugf("%s interrupted: %v", ins.Name, err)
	default:
		fail(err.Error())
	}
}
