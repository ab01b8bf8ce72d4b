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
)

// Verdict is the outcome of a single check. Verdicts are totally ordered by
// severity: OK < INFO < VERIFY < BAD.
type Verdict int

const (
	OK Verdict = iota
	Info
	Verify
	Bad
)

var verdictNames = [...]string{
	OK:     "OK",
	Info:   "INFO",
	Verify: "VERIFY",
	Bad:    "BAD",
}

// Verdicts returns every verdict in ascending severity.
func Verdicts() []Verdict {
	return []Verdict{OK, Info, Verify, Bad}
}

func (v Verdict) String() string {
	if v < OK || v > Bad {
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
	return verdictNames[v]
}

// Valid reports whether v is one of the four known verdicts.
func (v Verdict) Valid() bool {
	return v >= OK && v <= Bad
}

// AtLeast reports whether v is as severe as, or more severe than, o.
func (v Verdict) AtLeast(o Verdict) bool {
	return v >= o
}

// ParseVerdict parses a verdict name, ignoring case.
func ParseVerdict(s string) (Verdict, error) {
	for i, n := range verdictNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Verdict(i), nil
		}
	}
	return OK, fmt.Errorf("unknown result %q (want one of OK, INFO, VERIFY, BAD)", s)
}

func (v Verdict) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid verdict %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(b []byte) error {
	p, err := ParseVerdict(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Set and Type let a Verdict be used directly as a pflag value.
func (v *Verdict) Set(s string) error {
	return v.UnmarshalText([]byte(s))
}

func (v *Verdict) Type() string {
	return "result"
}

// Waiver says who may override a non-OK verdict.
type Waiver int

const (
	NotWaivable Waiver = iota
	Anyone
	Security
)

var waiverNames = [...]string{
	NotWaivable: "Not Waivable",
	Anyone:      "Anyone",
	Security:    "Security",
}

func (w Waiver) String() string {
	if w < NotWaivable || w > Security {
		return fmt.Sprintf("Waiver(%d)", int(w))
	}
	return waiverNames[w]
}

// ParseWaiver accepts the serialized names as well as the compact
// "NotWaivable" spelling.
func ParseWaiver(s string) (Waiver, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	for i, n := range waiverNames {
		if strings.EqualFold(norm, strings.ReplaceAll(n, " ", "")) {
			return Waiver(i), nil
		}
	}
	return NotWaivable, fmt.Errorf("unknown waiver authorization %q", s)
}

func (w Waiver) MarshalJSON() ([]byte, error) {
	if w < NotWaivable || w > Security {
		return nil, fmt.Errorf("invalid waiver authorization %d", int(w))
	}
	return json.Marshal(w.String())
}

func (w *Waiver) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseWaiver(s)
	if err != nil {
		return err
	}
	*w = p
	return nil
}
