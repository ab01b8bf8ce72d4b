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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON writes the report as an object keyed by inspection name, in
// report order. Inspections without records serialize as an empty array.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for name, recs := range r.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		if recs == nil {
			recs = []Record{}
		}
		v, err := json.Marshal(recs)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s results: %w", name, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a report written by MarshalJSON, keeping key order. The
// resulting report is frozen.
func (r *Report) UnmarshalJSON(b []byte) error {
	out, err := ReadJSON(bytes.NewReader(b))
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = out.order
	r.records = out.records
	r.frozen = true
	return nil
}

// ReadJSON decodes a JSON report from rd.
func ReadJSON(rd io.Reader) (*Report, error) {
	dec := json.NewDecoder(rd)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("reading report: expected object, got %v", tok)
	}

	r := NewReport()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading report: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("reading report: expected inspection name, got %v", tok)
		}

		var recs []Record
		if err := dec.Decode(&recs); err != nil {
			return nil, fmt.Errorf("reading %s results: %w", name, err)
		}
		if _, dup := r.records[name]; !dup {
			r.order = append(r.order, name)
		}
		for i := range recs {
			recs[i].waiverSet = true
		}
		r.records[name] = append(r.records[name], recs...)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	r.frozen = true
	return r, nil
}
