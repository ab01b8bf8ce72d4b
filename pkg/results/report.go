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
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
)

var (
	// ErrNotFound is returned by Get for an inspection that never recorded
	// anything, i.e. it was skipped or not requested.
	ErrNotFound = errors.New("inspection not found in report")
	// ErrFrozen is returned when adding to a report that was handed off.
	ErrFrozen = errors.New("report is frozen")
)

// Report collects records grouped by inspection name. Inspection order is
// the order in which each inspection first recorded something. A Report is
// safe for concurrent use.
type Report struct {
	mu      sync.RWMutex
	order   []string
	records map[string][]Record
	frozen  bool
	partial bool
	policy  *Policy
}

// ReportOption configures a Report.
type ReportOption func(*Report)

// WithPolicy makes Report.Record resolve waivers through p.
func WithPolicy(p *Policy) ReportOption {
	return func(r *Report) { r.policy = p }
}

// NewReport returns an empty, writable report.
func NewReport(opts ...ReportOption) *Report {
	r := &Report{records: map[string][]Record{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends rec to the inspection's sequence as is.
func (r *Report) Add(inspection string, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("adding %s result: %w", inspection, ErrFrozen)
	}
	r.addLocked(inspection, rec)
	return nil
}

func (r *Report) addLocked(inspection string, rec Record) {
	if _, ok := r.records[inspection]; !ok {
		r.order = append(r.order, inspection)
	}
	r.records[inspection] = append(r.records[inspection], rec)
}

// Record builds a record and appends it, resolving the waiver through the
// report's policy unless one of opts pins it.
func (r *Report) Record(inspection string, v Verdict, opts ...Option) error {
	rec := r.policy.Apply(inspection, NewRecord(v, opts...), ResolveContext{})
	return r.Add(inspection, rec)
}

// Ensure gives an inspection that ran without recording anything a single OK
// record, so that "ran, nothing to report" stays distinct from "skipped".
func (r *Report) Ensure(inspection string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[inspection]; ok {
		return nil
	}
	if r.frozen {
		return fmt.Errorf("adding %s result: %w", inspection, ErrFrozen)
	}
	r.addLocked(inspection, Record{Verdict: OK, Waiver: NotWaivable})
	return nil
}

// Get returns a copy of the inspection's records in insertion order.
func (r *Report) Get(inspection string) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs, ok := r.records[inspection]
	if !ok {
		return nil, fmt.Errorf("%s: %w", inspection, ErrNotFound)
	}
	return slices.Clone(recs), nil
}

// Has reports whether the inspection has a key in the report.
func (r *Report) Has(inspection string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.records[inspection]
	return ok
}

// All yields (inspection, records) pairs in first-recorded order. Each
// iteration observes the report's state at the time it starts.
func (r *Report) All() iter.Seq2[string, []Record] {
	return func(yield func(string, []Record) bool) {
		r.mu.RLock()
		order := slices.Clone(r.order)
		snapshot := make(map[string][]Record, len(order))
		for _, name := range order {
			snapshot[name] = slices.Clone(r.records[name])
		}
		r.mu.RUnlock()

		for _, name := range order {
			if !yield(name, snapshot[name]) {
				return
			}
		}
	}
}

// Inspections returns the inspection names in report order.
func (r *Report) Inspections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len is the total number of records.
func (r *Report) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, recs := range r.records {
		n += len(recs)
	}
	return n
}

// Worst returns the most severe verdict in the report, OK when empty.
func (r *Report) Worst() Verdict {
	worst := OK
	for _, recs := range r.All() {
		for _, rec := range recs {
			worst = max(worst, rec.Verdict)
		}
	}
	return worst
}

// Freeze makes the report read-only.
func (r *Report) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze was called.
func (r *Report) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// MarkPartial flags the report as coming from an aborted run. A partial
// report is only fit for diagnostics.
func (r *Report) MarkPartial() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partial = true
}

// Partial reports whether the run that produced the report was aborted.
func (r *Report) Partial() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.partial
}

// Filter returns a new frozen report holding only records at or above min.
// Inspections left without records keep their key with no records so that
// consumers can still tell they ran.
func (r *Report) Filter(min Verdict) *Report {
	out := NewReport(WithPolicy(r.policy))
	for name, recs := range r.All() {
		out.order = append(out.order, name)
		kept := []Record{}
		for _, rec := range recs {
			if rec.Verdict.AtLeast(min) {
				kept = append(kept, rec)
			}
		}
		out.records[name] = kept
	}
	out.partial = r.Partial()
	out.frozen = true
	return out
}
