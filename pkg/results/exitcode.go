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

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitProgramError = 2
)

type exitOptions struct {
	threshold   Verdict
	failureCode int
}

// ExitOption configures ExitCode.
type ExitOption func(*exitOptions)

// WithThreshold sets the lowest verdict that fails the run. The default is
// VERIFY, so OK and INFO pass.
func WithThreshold(v Verdict) ExitOption {
	return func(o *exitOptions) { o.threshold = v }
}

// WithFailureCode changes the non-zero code returned on failure. Zero is
// ignored.
func WithFailureCode(code int) ExitOption {
	return func(o *exitOptions) {
		if code != 0 {
			o.failureCode = code
		}
	}
}

// ExitCode reduces a report to a process exit code.
func ExitCode(r *Report, opts ...ExitOption) int {
	o := exitOptions{threshold: Verify, failureCode: ExitFailure}
	for _, opt := range opts {
		opt(&o)
	}

	for _, recs := range r.All() {
		for _, rec := range recs {
			if rec.Verdict.AtLeast(o.threshold) {
				return o.failureCode
			}
		}
	}
	return ExitSuccess
}
