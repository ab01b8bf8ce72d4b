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
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

// Recorder adds records for one inspection. It fills in the inspection's
// remedy and resolves waivers through the run's policy.
type Recorder struct {
	name   string
	remedy string
	report *results.Report
	policy *results.Policy
	rc     results.ResolveContext
}

func newRecorder(i Inspection, report *results.Report, policy *results.Policy, ictx *Context) *Recorder {
	return &Recorder{
		name:   i.Name,
		remedy: i.Remedy,
		report: report,
		policy: policy,
		rc: results.ResolveContext{
			Comparison: ictx.IsComparison(),
			Rebase:     ictx.IsRebase(),
		},
	}
}

// Name is the inspection the recorder writes for.
func (r *Recorder) Name() string {
	return r.name
}

// Add records a result.
func (r *Recorder) Add(v results.Verdict, opts ...results.Option) error {
	if v != results.OK && r.remedy != "" {
		opts = append([]results.Option{results.WithRemedy(r.remedy)}, opts...)
	}
	rec := r.policy.Apply(r.name, results.NewRecord(v, opts...), r.rc)
	return r.report.Add(r.name, rec)
}

// Regression records a change that makes the after build worse, with the
// verdict and waiver that fit the comparison.
func (r *Recorder) Regression(ictx *Context, opts ...results.Option) error {
	v, w := ictx.Regression()
	return r.Add(v, append(opts, results.WithWaiver(w))...)
}
