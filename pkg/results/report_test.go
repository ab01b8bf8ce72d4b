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

package results

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictOrder(t *testing.T) {
	vs := Verdicts()
	for i := 1; i < len(vs); i++ {
		assert.True(t, vs[i].AtLeast(vs[i-1]), "%s should be at least %s", vs[i], vs[i-1])
		assert.False(t, vs[i-1].AtLeast(vs[i]), "%s should be below %s", vs[i-1], vs[i])
	}

	for _, name := range []string{"ok", "Info", "VERIFY", " bad "} {
		_, err := ParseVerdict(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseVerdict("FATAL")
	assert.Error(t, err)
}

func TestWaiverNames(t *testing.T) {
	b, err := json.Marshal(NotWaivable)
	require.NoError(t, err)
	assert.Equal(t, `"Not Waivable"`, string(b))

	for in, want := range map[string]Waiver{
		"Not Waivable": NotWaivable,
		"NotWaivable":  NotWaivable,
		"anyone":       Anyone,
		"Security":     Security,
	} {
		got, err := ParseWaiver(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestReportOrderAndGet(t *testing.T) {
	r := NewReport()
	require.NoError(t, r.Record("license", Bad, WithMessage("bad license")))
	require.NoError(t, r.Record("emptyrpm", Info, WithMessage("empty")))
	require.NoError(t, r.Record("license", Verify, WithMessage("second")))

	assert.Equal(t, []string{"license", "emptyrpm"}, r.Inspections())

	recs, err := r.Get("license")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "bad license", recs[0].Message)
	assert.Equal(t, "second", recs[1].Message)

	_, err = r.Get("upstream")
	assert.ErrorIs(t, err, ErrNotFound)

	// All is restartable and reflects current state.
	var names []string
	for name := range r.All() {
		names = append(names, name)
	}
	require.NoError(t, r.Record("filesize", OK))
	var again []string
	for name := range r.All() {
		again = append(again, name)
	}
	assert.Equal(t, []string{"license", "emptyrpm"}, names)
	assert.Equal(t, []string{"license", "emptyrpm", "filesize"}, again)
}

func TestReportFreeze(t *testing.T) {
	r := NewReport()
	require.NoError(t, r.Record("a", OK))
	r.Freeze()
	assert.ErrorIs(t, r.Record("a", Bad), ErrFrozen)
	assert.ErrorIs(t, r.Ensure("b"), ErrFrozen)
	assert.Equal(t, 1, r.Len())
}

func TestReportEnsure(t *testing.T) {
	r := NewReport()
	require.NoError(t, r.Record("a", Info))
	require.NoError(t, r.Ensure("a"))
	require.NoError(t, r.Ensure("debuginfo"))

	recs, err := r.Get("a")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = r.Get("debuginfo")
	require.NoError(t, err)
	assert.Equal(t, []Record{{Verdict: OK, Waiver: NotWaivable}}, recs)
}

func TestReportConcurrentWriters(t *testing.T) {
	r := NewReport()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("inspection-%d", i)
			for j := range 50 {
				assert.NoError(t, r.Record(name, Info, WithMessage(fmt.Sprint(j))))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8*50, r.Len())
	for name, recs := range r.All() {
		for j, rec := range recs {
			assert.Equal(t, fmt.Sprint(j), rec.Message, "%s record %d out of order", name, j)
		}
	}
}

func TestWaiverPolicy(t *testing.T) {
	p := NewPolicy()
	p.Register("virus", func(_ string, v Verdict, _ ResolveContext) Waiver {
		if v == Bad {
			return Anyone
		}
		return DefaultWaiver(v)
	})
	p.Register("addedfiles", func(_ string, v Verdict, rc ResolveContext) Waiver {
		if strings.HasPrefix(rc.File, "/etc/sudoers.d/") {
			return Security
		}
		return DefaultWaiver(v)
	})

	for _, c := range []struct {
		name       string
		inspection string
		verdict    Verdict
		rc         ResolveContext
		want       Waiver
	}{
		{"ok is never waivable", "virus", OK, ResolveContext{}, NotWaivable},
		{"info defaults", "license", Info, ResolveContext{}, NotWaivable},
		{"verify defaults", "license", Verify, ResolveContext{}, Anyone},
		{"bad defaults", "license", Bad, ResolveContext{}, NotWaivable},
		{"bad override", "virus", Bad, ResolveContext{}, Anyone},
		{"info escalated by path", "addedfiles", Info, ResolveContext{File: "/etc/sudoers.d/foo"}, Security},
		{"info on ordinary path", "addedfiles", Info, ResolveContext{File: "/usr/bin/foo"}, NotWaivable},
	} {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, p.Resolve(c.inspection, c.verdict, c.rc))
		})
	}

	// A pinned waiver wins over the policy.
	rec := p.Apply("virus", NewRecord(Bad, WithWaiver(Security)), ResolveContext{})
	assert.Equal(t, Security, rec.Waiver)

	// The record's file feeds the resolver.
	rec = p.Apply("addedfiles", NewRecord(Info, WithFile("/etc/sudoers.d/x")), ResolveContext{})
	assert.Equal(t, Security, rec.Waiver)
}

func TestExitCode(t *testing.T) {
	for _, c := range []struct {
		name     string
		verdicts []Verdict
		opts     []ExitOption
		want     int
	}{
		{"empty", nil, nil, ExitSuccess},
		{"ok and info", []Verdict{OK, Info, Info}, nil, ExitSuccess},
		{"verify fails", []Verdict{OK, Verify}, nil, ExitFailure},
		{"bad fails", []Verdict{Bad}, nil, ExitFailure},
		{"custom code", []Verdict{Bad}, []ExitOption{WithFailureCode(7)}, 7},
		{"raised threshold", []Verdict{Verify}, []ExitOption{WithThreshold(Bad)}, ExitSuccess},
		{"lowered threshold", []Verdict{Info}, []ExitOption{WithThreshold(Info)}, ExitFailure},
	} {
		t.Run(c.name, func(t *testing.T) {
			r := NewReport()
			for i, v := range c.verdicts {
				require.NoError(t, r.Record(fmt.Sprintf("i%d", i), v))
			}
			assert.Equal(t, c.want, ExitCode(r, c.opts...))
		})
	}
}

func TestReportJSON(t *testing.T) {
	r := NewReport()
	require.NoError(t, r.Record("emptyrpm", Info, WithMessage("Package hello-world is empty")))
	require.NoError(t, r.Record("license", Bad,
		WithMessage(`Unapproved license in hello-world: Apache Software License 2.0`),
		WithRemedy("Use an SPDX license expression")))
	require.NoError(t, r.Ensure("debuginfo"))
	r.Freeze()

	b, err := json.Marshal(r)
	require.NoError(t, err)

	want := `{"emptyrpm":[{"result":"INFO","waiver authorization":"Not Waivable","message":"Package hello-world is empty"}],` +
		`"license":[{"result":"BAD","waiver authorization":"Not Waivable","message":"Unapproved license in hello-world: Apache Software License 2.0","remedy":"Use an SPDX license expression"}],` +
		`"debuginfo":[{"result":"OK","waiver authorization":"Not Waivable"}]}`
	assert.Equal(t, want, string(b))

	// Same report twice gives the same bytes.
	b2, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, b, b2)

	got, err := ReadJSON(strings.NewReader(string(b)))
	require.NoError(t, err)
	assert.Equal(t, r.Inspections(), got.Inspections())
	for name, recs := range r.All() {
		other, err := got.Get(name)
		require.NoError(t, err)
		if diff := cmp.Diff(recs, other, cmp.Comparer(func(a, b Record) bool {
			return a.Verdict == b.Verdict && a.Waiver == b.Waiver && a.Message == b.Message && a.Remedy == b.Remedy
		})); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestFilter(t *testing.T) {
	r := NewReport()
	require.NoError(t, r.Record("a", OK))
	require.NoError(t, r.Record("a", Verify))
	require.NoError(t, r.Record("b", Info))

	f := r.Filter(Verify)
	assert.True(t, f.Frozen())
	assert.Equal(t, []string{"a", "b"}, f.Inspections())
	recs, err := f.Get("b")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, Verify, f.Worst())
}
