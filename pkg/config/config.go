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

package config

import (
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Common struct {
	// Directory used to unpack package payloads.
	Workdir string `json:"workdir" yaml:"workdir" toml:"workdir"`
}

type Commands struct {
	// Path or name of the annocheck executable.
	Annocheck string `json:"annocheck" yaml:"annocheck" toml:"annocheck"`
	// Path or name of the clamscan executable.
	Clamscan string `json:"clamscan" yaml:"clamscan" toml:"clamscan"`
	// Seconds an external command may run before its inspection is failed.
	Timeout int `json:"timeout" yaml:"timeout" toml:"timeout"`
}

type Security struct {
	// Path prefixes whose changes need a security review.
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty" toml:"paths,omitempty"`
}

type Filesize struct {
	// Percent change of a file's size at which the change needs verifying.
	SizeThreshold int `json:"size_threshold" yaml:"size_threshold" toml:"size_threshold"`
}

type Patches struct {
	// Number of files a single patch may touch before it is reported.
	FileCountThreshold int `json:"file_count_threshold" yaml:"file_count_threshold" toml:"file_count_threshold"`
	// Number of changed lines a single patch may carry before it is reported.
	LineCountThreshold int `json:"line_count_threshold" yaml:"line_count_threshold" toml:"line_count_threshold"`
	// Patch file names never reported.
	IgnoreList []string `json:"ignore_list,omitempty" yaml:"ignore_list,omitempty" toml:"ignore_list,omitempty"`
}

type Badfuncs struct {
	// Function names that should not be imported by ELF objects.
	Forbidden []string `json:"forbidden,omitempty" yaml:"forbidden,omitempty" toml:"forbidden,omitempty"`
	// Per-file exceptions: path -> allowed functions.
	Allowed map[string][]string `json:"allowed,omitempty" yaml:"allowed,omitempty" toml:"allowed,omitempty"`
}

type License struct {
	// License strings accepted in addition to valid SPDX expressions.
	Allowed []string `json:"allowed,omitempty" yaml:"allowed,omitempty" toml:"allowed,omitempty"`
}

type Ownership struct {
	BinPaths []string `json:"bin_paths,omitempty" yaml:"bin_paths,omitempty" toml:"bin_paths,omitempty"`
	BinOwner string   `json:"bin_owner" yaml:"bin_owner" toml:"bin_owner"`
	BinGroup string   `json:"bin_group" yaml:"bin_group" toml:"bin_group"`
}

type PathMigration struct {
	// Old directory -> directory that replaced it.
	MigratedPaths map[string]string `json:"migrated_paths,omitempty" yaml:"migrated_paths,omitempty" toml:"migrated_paths,omitempty"`
	// Paths that may remain under an old directory.
	ExcludedPaths []string `json:"excluded_paths,omitempty" yaml:"excluded_paths,omitempty" toml:"excluded_paths,omitempty"`
}

type Permissions struct {
	// Files allowed to carry setuid or setgid bits.
	Allowed []string `json:"allowed,omitempty" yaml:"allowed,omitempty" toml:"allowed,omitempty"`
}

type Annocheck struct {
	// Job name -> annocheck options, in shell word syntax.
	Jobs map[string]string `json:"jobs,omitempty" yaml:"jobs,omitempty" toml:"jobs,omitempty"`
}

// Configuration is the effective configuration handed, read-only, to every
// inspection.
type Configuration struct {
	Common   Common   `json:"common" yaml:"common" toml:"common"`
	Commands Commands `json:"commands" yaml:"commands" toml:"commands"`
	// Inspection name -> enabled. Inspections not listed are enabled.
	Inspections   map[string]bool `json:"inspections,omitempty" yaml:"inspections,omitempty" toml:"inspections,omitempty"`
	Security      Security        `json:"security" yaml:"security" toml:"security"`
	Filesize      Filesize        `json:"filesize" yaml:"filesize" toml:"filesize"`
	Patches       Patches         `json:"patches" yaml:"patches" toml:"patches"`
	Badfuncs      Badfuncs        `json:"badfuncs" yaml:"badfuncs" toml:"badfuncs"`
	License       License         `json:"license" yaml:"license" toml:"license"`
	Ownership     Ownership       `json:"ownership" yaml:"ownership" toml:"ownership"`
	PathMigration PathMigration   `json:"pathmigration" yaml:"pathmigration" toml:"pathmigration"`
	Permissions   Permissions     `json:"permissions" yaml:"permissions" toml:"permissions"`
	Annocheck     Annocheck       `json:"annocheck" yaml:"annocheck" toml:"annocheck"`
}

const (
	DefaultWorkdir            = "/var/tmp/rpminspect"
	DefaultTimeout            = 500
	DefaultSizeThreshold      = 20
	DefaultFileCountThreshold = 20
	DefaultLineCountThreshold = 5000
)

var (
	defaultBinPaths      = []string{"/bin", "/sbin", "/usr/bin", "/usr/sbin"}
	defaultSecurityPaths = []string{"/etc/pam.d/", "/etc/polkit-1/", "/etc/sudoers.d/", "/usr/share/polkit-1/"}
	defaultForbidden     = []string{"gethostbyaddr", "gethostbyname", "gethostbyname2", "inet_addr", "inet_aton", "inet_nsap", "inet_ntoa"}
	defaultMigrated      = map[string]string{
		"/bin":   "/usr/bin",
		"/lib":   "/usr/lib",
		"/lib64": "/usr/lib64",
		"/sbin":  "/usr/sbin",
	}
)

// Default returns the configuration used when no file sets a value.
func Default() *Configuration {
	cfg := withNumericDefaults(DefaultTimeout)
	cfg.applyDefaults()
	return cfg
}

// withNumericDefaults returns a configuration holding the default numbers.
// Files are decoded on top of it, so a number a file sets, zero included,
// replaces the default and a number it leaves out keeps it.
func withNumericDefaults(timeout int) *Configuration {
	cfg := &Configuration{}
	cfg.Commands.Timeout = timeout
	cfg.Filesize.SizeThreshold = DefaultSizeThreshold
	cfg.Patches.FileCountThreshold = DefaultFileCountThreshold
	cfg.Patches.LineCountThreshold = DefaultLineCountThreshold
	return cfg
}

// applyDefaults fills every unset string and list. Values that a file did
// set, even to an empty list, are kept only when non-empty, so all formats
// agree.
func (cfg *Configuration) applyDefaults() {
	setIfEmpty := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}

	setIfEmpty(&cfg.Common.Workdir, DefaultWorkdir)
	setIfEmpty(&cfg.Commands.Annocheck, "annocheck")
	setIfEmpty(&cfg.Commands.Clamscan, "clamscan")
	setIfEmpty(&cfg.Ownership.BinOwner, "root")
	setIfEmpty(&cfg.Ownership.BinGroup, "root")

	if len(cfg.Security.Paths) == 0 {
		cfg.Security.Paths = slices.Clone(defaultSecurityPaths)
	}
	if len(cfg.Badfuncs.Forbidden) == 0 {
		cfg.Badfuncs.Forbidden = slices.Clone(defaultForbidden)
	}
	if len(cfg.Ownership.BinPaths) == 0 {
		cfg.Ownership.BinPaths = slices.Clone(defaultBinPaths)
	}
	if len(cfg.PathMigration.MigratedPaths) == 0 {
		cfg.PathMigration.MigratedPaths = map[string]string{}
		for k, v := range defaultMigrated {
			cfg.PathMigration.MigratedPaths[k] = v
		}
	}

	// Normalize so equivalent inputs produce identical dumps.
	sort.Strings(cfg.Security.Paths)
	sort.Strings(cfg.Badfuncs.Forbidden)
	for k, v := range cfg.Badfuncs.Allowed {
		sort.Strings(v)
		cfg.Badfuncs.Allowed[k] = v
	}
}

type ErrInvalidConfiguration struct {
	Problem error
}

func (e ErrInvalidConfiguration) Error() string {
	return fmt.Sprintf("configuration is invalid: %v", e.Problem)
}

func (e ErrInvalidConfiguration) Unwrap() error {
	return e.Problem
}

// Validate checks values that would make inspections misbehave.
func (cfg *Configuration) Validate() error {
	if cfg.Commands.Timeout < 0 {
		return ErrInvalidConfiguration{Problem: errors.New("commands.timeout must not be negative")}
	}
	if cfg.Filesize.SizeThreshold < 0 {
		return ErrInvalidConfiguration{Problem: errors.New("filesize.size_threshold must not be negative")}
	}
	if cfg.Patches.FileCountThreshold < 0 || cfg.Patches.LineCountThreshold < 0 {
		return ErrInvalidConfiguration{Problem: errors.New("patches thresholds must not be negative")}
	}
	for p := range cfg.Badfuncs.Allowed {
		if !path.IsAbs(p) {
			return ErrInvalidConfiguration{Problem: fmt.Errorf("badfuncs.allowed path %q must be absolute", p)}
		}
	}
	for from, to := range cfg.PathMigration.MigratedPaths {
		if !path.IsAbs(from) || !path.IsAbs(to) {
			return ErrInvalidConfiguration{Problem: fmt.Errorf("pathmigration %q -> %q must use absolute paths", from, to)}
		}
	}
	return nil
}

// CommandTimeout is the per-command timeout as a duration.
func (cfg *Configuration) CommandTimeout() time.Duration {
	return time.Duration(cfg.Commands.Timeout) * time.Second
}

// Enabled reports whether the configuration leaves an inspection on.
func (cfg *Configuration) Enabled(inspection string) bool {
	on, ok := cfg.Inspections[inspection]
	return !ok || on
}

// IsSecurityPath reports whether p falls under a configured security path.
func (cfg *Configuration) IsSecurityPath(p string) bool {
	for _, prefix := range cfg.Security.Paths {
		if p == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Dump writes the effective configuration as YAML.
func (cfg *Configuration) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return enc.Close()
}
