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
	"testing"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpminspect/rpminspect-sub001/internal/exttool"
	"github.com/rpminspect/rpminspect-sub001/pkg/config"
	"github.com/rpminspect/rpminspect-sub001/pkg/inspect/defaults"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

func testRegistry() *Registry {
	return NewRegistry(
		Inspection{
			Name:  "quiet",
			Class: defaults.ClassBoth,
			Func:  func(context.Context, *Context, *Recorder) error { return nil },
		},
		Inspection{
			Name:   "noisy",
			Class:  defaults.ClassBoth,
			Remedy: "Fix the package",
			Func: func(_ context.Context, _ *Context, rec *Recorder) error {
				if err := rec.Add(results.Info, results.WithMessage("first")); err != nil {
					return err
				}
				return rec.Add(results.Verify, results.WithMessage("second"), results.WithFile("/etc/pam.d/login"))
			},
			Waiver: func(_ string, v results.Verdict, rc results.ResolveContext) results.Waiver {
				if rc.File == "/etc/pam.d/login" {
					return results.Security
				}
				return results.DefaultWaiver(v)
			},
		},
		Inspection{
			Name:  "broken",
			Class: defaults.ClassBoth,
			Func: func(context.Context, *Context, *Recorder) error {
				return errors.New("cannot read payload")
			},
		},
		Inspection{
			Name:  "crashy",
			Class: defaults.ClassBoth,
			Func: func(context.Context, *Context, *Recorder) error {
				var m map[string]int
				m["boom"]++
				return nil
			},
		},
		Inspection{
			Name:  "notool",
			Class: defaults.ClassBoth,
			Func: func(context.Context, *Context, *Recorder) error {
				return fmt.Errorf("clamscan: %w", exttool.ErrUnavailable)
			},
		},
		Inspection{
			Name:  "slow",
			Class: defaults.ClassBoth,
			Func: func(context.Context, *Context, *Recorder) error {
				return fmt.Errorf("annocheck: %w", exttool.ErrTimeout)
			},
		},
		Inspection{
			Name:  "compareonly",
			Class: defaults.ClassComparison,
			Func: func(_ context.Context, ictx *Context, rec *Recorder) error {
				return rec.Regression(ictx, results.WithMessage("changed"))
			},
		},
	)
}

func single() *Context {
	return &Context{Config: config.Default(), Build: &rpm.Build{}}
}

func comparison(rebase bool) *Context {
	return &Context{
		Config:     config.Default(),
		Build:      &rpm.Build{},
		Comparison: &rpm.Comparison{Before: &rpm.Build{}, After: &rpm.Build{}, Rebase: rebase},
	}
}

func TestRunSingle(t *testing.T) {
	ctx := slogtest.Context(t)
	reg := testRegistry()

	report, err := reg.Run(ctx, single(), reg.Names(), WithJobs(2))
	require.NoError(t, err)
	assert.True(t, report.Frozen())
	assert.False(t, report.Partial())

	quiet, err := report.Get("quiet")
	require.NoError(t, err)
	assert.Equal(t, []results.Record{{Verdict: results.OK, Waiver: results.NotWaivable}}, quiet)

	noisy, err := report.Get("noisy")
	require.NoError(t, err)
	require.Len(t, noisy, 2)
	assert.Equal(t, "first", noisy[0].Message)
	assert.Equal(t, results.NotWaivable, noisy[0].Waiver)
	assert.Equal(t, "Fix the package", noisy[0].Remedy)
	assert.Equal(t, results.Security, noisy[1].Waiver)

	broken, err := report.Get("broken")
	require.NoError(t, err)
	assert.Equal(t, results.Bad, broken[0].Verdict)
	assert.Equal(t, "cannot read payload", broken[0].Message)

	crashy, err := report.Get("crashy")
	require.NoError(t, err)
	assert.Equal(t, results.Bad, crashy[0].Verdict)
	assert.Contains(t, crashy[0].Message, "crashed")

	slow, err := report.Get("slow")
	require.NoError(t, err)
	assert.Equal(t, results.Bad, slow[0].Verdict)
	assert.Contains(t, slow[0].Message, "timed out")

	_, err = report.Get("notool")
	assert.ErrorIs(t, err, results.ErrNotFound)
	_, err = report.Get("compareonly")
	assert.ErrorIs(t, err, results.ErrNotFound)

	assert.Equal(t, results.ExitFailure, results.ExitCode(report))
}

func TestRunComparisonModes(t *testing.T) {
	ctx := slogtest.Context(t)
	reg := testRegistry()

	for _, c := range []struct {
		rebase  bool
		verdict results.Verdict
		waiver  results.Waiver
	}{
		{false, results.Verify, results.Anyone},
		{true, results.Info, results.NotWaivable},
	} {
		report, err := reg.Run(ctx, comparison(c.rebase), []string{"compareonly"})
		require.NoError(t, err)
		recs, err := report.Get("compareonly")
		require.NoError(t, err)
		assert.Equal(t, c.verdict, recs[0].Verdict, "rebase=%v", c.rebase)
		assert.Equal(t, c.waiver, recs[0].Waiver, "rebase=%v", c.rebase)
	}
}

func TestRunDisabledByConfig(t *testing.T) {
	ctx := slogtest.Context(t)
	reg := testRegistry()
	ictx := single()
	ictx.Config.Inspections = map[string]bool{"noisy": false}

	report, err := reg.Run(ctx, ictx, []string{"noisy", "quiet"})
	require.NoError(t, err)
	assert.Equal(t, []string{"quiet"}, report.Inspections())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(slogtest.Context(t))
	reg := NewRegistry(Inspection{
		Name:  "stops",
		Class: defaults.ClassBoth,
		Func: func(ctx context.Context, _ *Context, rec *Recorder) error {
			_ = rec.Add(results.Info, results.WithMessage("before abort"))
			cancel()
			return ctx.Err()
		},
	})

	report, err := reg.Run(ctx, single(), []string{"stops"})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.True(t, report.Partial())
	assert.True(t, report.Frozen())
}

func TestRunUnknown(t *testing.T) {
	ctx := slogtest.Context(t)
	_, err := testRegistry().Run(ctx, single(), []string{"nope"})
	assert.ErrorContains(t, err, "nope")
}

func TestSelect(t *testing.T) {
	reg := NewRegistry(
		Inspection{Name: "license", Class: defaults.ClassBoth},
		Inspection{Name: "emptyrpm", Class: defaults.ClassBoth},
		Inspection{Name: "virus", Class: defaults.ClassBoth},
		Inspection{Name: "extra", Class: defaults.ClassBoth},
	)

	got, err := reg.Select(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"emptyrpm", "license", "virus"}, got)

	got, err = reg.Select([]string{"ALL,extra"}, []string{"virus"})
	require.NoError(t, err)
	assert.Equal(t, []string{"emptyrpm", "extra", "license"}, got)

	got, err = reg.Select([]string{"license"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"license"}, got)

	_, err = reg.Select([]string{"bogus"}, nil)
	assert.ErrorContains(t, err, "bogus")
	_, err = reg.Select(nil, []string{"bogus"})
	assert.Error(t, err)

	assert.Equal(t, []string{"bogus"}, reg.CheckValid([]string{"license", "bogus"}))
}

func TestRegression(t *testing.T) {
	v, w := single().Regression()
	assert.Equal(t, results.Verify, v)
	assert.Equal(t, results.Anyone, w)

	v, w = comparison(true).Regression()
	assert.Equal(t, results.Info, v)
	assert.Equal(t, results.NotWaivable, w)
}

func TestClass(t *testing.T) {
	assert.True(t, Inspection{Class: defaults.ClassBoth}.Applies(false))
	assert.False(t, Inspection{Class: defaults.ClassComparison}.Applies(false))
	assert.True(t, Inspection{Class: defaults.ClassComparison}.Applies(true))
	assert.Equal(t, "comparison", defaults.ClassComparison.String())
	assert.Contains(t, defaults.GetDefaultInspections(), "license")
}
