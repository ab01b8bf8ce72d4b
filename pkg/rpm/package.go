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

package rpm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// NEVRA identifies a package.
type NEVRA struct {
	Name    string `json:"name"`
	Epoch   string `json:"epoch,omitempty"`
	Version string `json:"version"`
	Release string `json:"release"`
	Arch    string `json:"arch"`
}

func (n NEVRA) String() string {
	evr := n.Version + "-" + n.Release
	if n.Epoch != "" && n.Epoch != "0" {
		evr = n.Epoch + ":" + evr
	}
	if n.Arch == "" {
		return n.Name + "-" + evr
	}
	return n.Name + "-" + evr + "." + n.Arch
}

// File is one entry of a package's file list.
type File struct {
	Path   string      `json:"path"`
	Size   int64       `json:"size"`
	Mode   fs.FileMode `json:"mode"`
	Owner  string      `json:"owner,omitempty"`
	Group  string      `json:"group,omitempty"`
	Digest string      `json:"digest,omitempty"`
	Link   string      `json:"link,omitempty"`
	Flags  int         `json:"flags,omitempty"`
}

// IsRegular reports whether the entry is a regular file.
func (f File) IsRegular() bool {
	return f.Mode.IsRegular()
}

// ErrNoPayload is returned by Payload for packages that were built without
// an on-disk location, such as synthetic test packages.
var ErrNoPayload = errors.New("package has no payload")

// Package is the metadata of one RPM or SRPM plus lazy access to its
// payload.
type Package struct {
	NEVRA

	License   string   `json:"license,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	SourceRPM string   `json:"sourcerpm,omitempty"`
	Requires  []string `json:"requires,omitempty"`
	Provides  []string `json:"provides,omitempty"`
	Files     []File   `json:"files,omitempty"`
	// Source is true for source packages.
	Source bool `json:"source"`
	// Location is the local path of the package file, if any.
	Location string `json:"-"`

	extract    func(ctx context.Context) (fs.FS, error)
	once       sync.Once
	payload    fs.FS
	payloadErr error
}

// SetPayload gives the package an already unpacked payload.
func (p *Package) SetPayload(fsys fs.FS) {
	p.once.Do(func() {})
	p.payload = fsys
	p.payloadErr = nil
}

// Payload returns the unpacked payload, extracting it on first use. Paths in
// the returned FS are the package paths without the leading slash.
func (p *Package) Payload(ctx context.Context) (fs.FS, error) {
	p.once.Do(func() {
		if p.extract == nil {
			p.payloadErr = fmt.Errorf("%s: %w", p.NEVRA, ErrNoPayload)
			return
		}
		p.payload, p.payloadErr = p.extract(ctx)
	})
	return p.payload, p.payloadErr
}

// IsDebuginfo reports whether this is a -debuginfo or -debugsource package.
func (p *Package) IsDebuginfo() bool {
	return strings.HasSuffix(p.Name, "-debuginfo") || strings.HasSuffix(p.Name, "-debugsource")
}

// Lookup finds a file by its absolute path.
func (p *Package) Lookup(filePath string) (File, bool) {
	for _, f := range p.Files {
		if f.Path == filePath {
			return f, true
		}
	}
	return File{}, false
}

// PayloadPath converts an absolute package path to an fs.FS path.
func PayloadPath(filePath string) string {
	p := strings.TrimPrefix(path.Clean(filePath), "/")
	if p == "" {
		return "."
	}
	return p
}

// Build is a set of packages produced together.
type Build struct {
	Location string     `json:"location"`
	Packages []*Package `json:"packages"`
}

// Sort orders packages by name then arch so runs are reproducible.
func (b *Build) Sort() {
	sort.SliceStable(b.Packages, func(i, j int) bool {
		if b.Packages[i].Name != b.Packages[j].Name {
			return b.Packages[i].Name < b.Packages[j].Name
		}
		return b.Packages[i].Arch < b.Packages[j].Arch
	})
}

// SourcePackage returns the build's source package, or nil.
func (b *Build) SourcePackage() *Package {
	for _, p := range b.Packages {
		if p.Source {
			return p
		}
	}
	return nil
}

// Lookup finds a package by name and arch.
func (b *Build) Lookup(name, arch string) *Package {
	for _, p := range b.Packages {
		if p.Name == name && p.Arch == arch {
			return p
		}
	}
	return nil
}

// OnlySource reports whether every package in the build is a source package.
func (b *Build) OnlySource() bool {
	for _, p := range b.Packages {
		if !p.Source {
			return false
		}
	}
	return len(b.Packages) > 0
}
