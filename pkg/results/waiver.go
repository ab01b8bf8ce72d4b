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

import "sync"

// ResolveContext is what a WaiverResolver may look at besides the verdict.
type ResolveContext struct {
	// File is the path the record is about, if any.
	File string
	// Comparison is true when a before and an after build are inspected.
	Comparison bool
	// Rebase is true for a comparison where the upstream version changed.
	Rebase bool
}

// WaiverResolver decides the waiver authorization for a verdict produced by
// a particular inspection.
type WaiverResolver func(inspection string, v Verdict, rc ResolveContext) Waiver

// DefaultWaiver is the severity-based fallback used when an inspection does
// not decide for itself.
func DefaultWaiver(v Verdict) Waiver {
	switch v {
	case Verify:
		return Anyone
	default:
		return NotWaivable
	}
}

// Policy maps inspection names to waiver resolvers.
type Policy struct {
	mu        sync.RWMutex
	resolvers map[string]WaiverResolver
}

// NewPolicy returns an empty policy; every lookup falls back to DefaultWaiver.
func NewPolicy() *Policy {
	return &Policy{resolvers: map[string]WaiverResolver{}}
}

// Register installs the resolver for an inspection, replacing any previous one.
func (p *Policy) Register(inspection string, fn WaiverResolver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fn == nil {
		delete(p.resolvers, inspection)
		return
	}
	p.resolvers[inspection] = fn
}

// Resolve returns the waiver authorization for a verdict. OK is never subject
// to waivers.
func (p *Policy) Resolve(inspection string, v Verdict, rc ResolveContext) Waiver {
	if v == OK {
		return NotWaivable
	}
	if p != nil {
		p.mu.RLock()
		fn, ok := p.resolvers[inspection]
		p.mu.RUnlock()
		if ok {
			return fn(inspection, v, rc)
		}
	}
	return DefaultWaiver(v)
}

// Apply fills in r.Waiver unless the producer pinned it.
func (p *Policy) Apply(inspection string, r Record, rc ResolveContext) Record {
	if r.Verdict == OK {
		r.Waiver = NotWaivable
		return r
	}
	if r.waiverSet {
		return r
	}
	if rc.File == "" {
		rc.File = r.File
	}
	r.Waiver = p.Resolve(inspection, r.Verdict, rc)
	return r
}
