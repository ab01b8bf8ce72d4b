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

// Record is one verdict emitted by one inspection for one package (or one
// before/after pair of packages).
type Record struct {
	Verdict Verdict `json:"result"`
	Waiver  Waiver  `json:"waiver authorization"`
	Message string  `json:"message,omitempty"`
	Remedy  string  `json:"remedy,omitempty"`

	// Context for consumers. All optional.
	Noun string `json:"noun,omitempty"`
	Verb string `json:"verb,omitempty"`
	Arch string `json:"arch,omitempty"`
	File string `json:"file,omitempty"`

	// Screendump is free-form diagnostic output, e.g. a diff or tool output.
	Screendump string `json:"screendump,omitempty"`
	// Details is a structured payload specific to the inspection.
	Details any `json:"details,omitempty"`

	// waiverSet records whether the producer chose the waiver explicitly.
	waiverSet bool
}

// Option modifies a Record being built.
type Option func(*Record)

// WithMessage sets the human readable explanation.
func WithMessage(msg string) Option {
	return func(r *Record) { r.Message = msg }
}

// WithRemedy sets the suggested remediation.
func WithRemedy(remedy string) Option {
	return func(r *Record) { r.Remedy = remedy }
}

// WithWaiver pins the waiver authorization, bypassing the policy.
func WithWaiver(w Waiver) Option {
	return func(r *Record) {
		r.Waiver = w
		r.waiverSet = true
	}
}

func WithFile(path string) Option {
	return func(r *Record) { r.File = path }
}

func WithArch(arch string) Option {
	return func(r *Record) { r.Arch = arch }
}

func WithNoun(noun string) Option {
	return func(r *Record) { r.Noun = noun }
}

func WithVerb(verb string) Option {
	return func(r *Record) { r.Verb = verb }
}

func WithScreendump(s string) Option {
	return func(r *Record) { r.Screendump = s }
}

func WithDetails(d any) Option {
	return func(r *Record) { r.Details = d }
}

// NewRecord builds a Record from a verdict and options.
func NewRecord(v Verdict, opts ...Option) Record {
	r := Record{Verdict: v}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// WaiverSet reports whether the waiver was chosen explicitly by the producer.
func (r Record) WaiverSet() bool {
	return r.waiverSet
}
