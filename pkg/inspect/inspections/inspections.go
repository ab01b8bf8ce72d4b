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

// Package inspections contains the concrete package inspections.
package inspections

import (
	"io/fs"
	"strconv"
	"strings"

	"github.com/rpminspect/rpminspect-sub001/pkg/config"
	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/inspect/defaults"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

// New returns the registry of every inspection. cfg supplies the security
// paths used by waiver resolvers; nil means the defaults.
func New(cfg *config.Configuration) *inspect.Registry {
	if cfg == nil {
		cfg = config.Default()
	}
	security := securityWaiver(cfg)

	return inspect.NewRegistry(
		inspect.Inspection{
			Name:        "addedfiles",
			Description: "Report files added since the before build, flagging security sensitive locations.",
			Class:       defaults.ClassComparison,
			Remedy:      "Make sure new files are intended, in particular under security sensitive paths.",
			Func:        addedFiles,
			Waiver:      security,
		},
		inspect.Inspection{
			Name:        "annocheck",
			Description: "Run annocheck on binary packages to check hardening and build flags.",
			Class:       defaults.ClassBoth,
			Remedy:      "See the annocheck output and adjust the compiler and linker flags.",
			Func:        annocheck,
		},
		inspect.Inspection{
			Name:        "badfuncs",
			Description: "Check ELF objects for use of forbidden functions.",
			Class:       defaults.ClassBoth,
			Remedy:      "Replace the forbidden functions with their modern equivalents, or allow them in badfuncs.allowed.",
			Func:        badFuncs,
		},
		inspect.Inspection{
			Name:        "debuginfo",
			Description: "Check that debuginfo packages carry debugging symbols.",
			Class:       defaults.ClassBoth,
			Remedy:      "Make sure binaries are built with -g and are not stripped before debuginfo extraction.",
			Func:        debugInfo,
		},
		inspect.Inspection{
			Name:        "disttag",
			Description: "Check that release tags carry the distribution tag of the product release.",
			Class:       defaults.ClassBoth,
			Remedy:      "Use %{?dist} at the end of the Release tag in the spec file.",
			Func:        distTag,
		},
		inspect.Inspection{
			Name:        "emptyrpm",
			Description: "Report packages that contain no files.",
			Class:       defaults.ClassBoth,
			Remedy:      "Make sure the %files section of the package lists the intended files.",
			Func:        emptyRPM,
		},
		inspect.Inspection{
			Name:        "filesize",
			Description: "Report files whose size changed more than the configured threshold.",
			Class:       defaults.ClassComparison,
			Remedy:      "Make sure the size change is expected.",
			Func:        fileSize,
		},
		inspect.Inspection{
			Name:        "license",
			Description: "Check that the License tag is a valid SPDX expression.",
			Class:       defaults.ClassBoth,
			Remedy:      "Use an SPDX license expression",
			Func:        license,
		},
		inspect.Inspection{
			Name:        "ownership",
			Description: "Check owner and group of files in executable directories.",
			Class:       defaults.ClassBoth,
			Remedy:      "Set the owner and group with %attr in the %files section.",
			Func:        ownership,
		},
		inspect.Inspection{
			Name:        "pathmigration",
			Description: "Report files installed under directories that were migrated elsewhere.",
			Class:       defaults.ClassBoth,
			Remedy:      "Install the files in the migrated location, for example /usr/bin instead of /bin.",
			Func:        pathMigration,
		},
		inspect.Inspection{
			Name:        "patches",
			Description: "Inspect patches carried by the source package.",
			Class:       defaults.ClassBoth,
			Remedy:      "Review large or removed patches; list intended exceptions in patches.ignore_list.",
			Func:        patches,
		},
		inspect.Inspection{
			Name:        "permissions",
			Description: "Check for setuid, setgid and world-writable files and for changed modes.",
			Class:       defaults.ClassBoth,
			Remedy:      "Drop the special permission bits, or list the file in permissions.allowed after a security review.",
			Func:        permissions,
			Waiver:      security,
		},
		inspect.Inspection{
			Name:        "rpmdeps",
			Description: "Report package dependencies and their changes.",
			Class:       defaults.ClassBoth,
			Remedy:      "Make sure dependency changes are intended.",
			Func:        rpmDeps,
		},
		inspect.Inspection{
			Name:        "upstream",
			Description: "Report changes to upstream source archives between builds.",
			Class:       defaults.ClassComparison,
			Remedy:      "Source archives should only change on a rebase.",
			Func:        upstream,
		},
		inspect.Inspection{
			Name:        "virus",
			Description: "Scan packages with clamscan.",
			Class:       defaults.ClassBoth,
			Remedy:      "Remove the infected file from the package.",
			Func:        virus,
		},
	)
}

// securityWaiver escalates results about security sensitive paths to the
// security team, except on rebases where they are informational.
func securityWaiver(cfg *config.Configuration) results.WaiverResolver {
	return func(_ string, v results.Verdict, rc results.ResolveContext) results.Waiver {
		if rc.File != "" && cfg.IsSecurityPath(rc.File) && !rc.Rebase {
			return results.Security
		}
		return results.DefaultWaiver(v)
	}
}

func binaryPackages(b *rpm.Build) []*rpm.Package {
	var out []*rpm.Package
	for _, p := range b.Packages {
		if !p.Source {
			out = append(out, p)
		}
	}
	return out
}

// underDir reports whether p is dir or lies below it.
func underDir(p, dir string) bool {
	dir = strings.TrimSuffix(dir, "/")
	return p == dir || strings.HasPrefix(p, dir+"/")
}

func modeToOctal(mode fs.FileMode) string {
	perm := uint64(mode.Perm())

	if mode&fs.ModeSetuid != 0 {
		perm |= 0o4000
	}
	if mode&fs.ModeSetgid != 0 {
		perm |= 0o2000
	}
	if mode&fs.ModeSticky != 0 {
		perm |= 0o1000
	}

	return "0" + strconv.FormatUint(perm, 8)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
