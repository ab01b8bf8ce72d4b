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
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// INI files use one section per configuration block. List values are comma
// separated, and map-valued settings get their own "<block>.<setting>"
// section whose keys are the map keys:
//
//	[filesize]
//	size_threshold = 20
//
//	[badfuncs.allowed]
//	/usr/bin/hello-world = inet_aton
func decodeINI(data []byte, cfg *Configuration) error {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys: false,
		// Paths are used as keys; keep them verbatim.
		KeyValueDelimiters: "=",
	}, data)
	if err != nil {
		return err
	}

	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection {
			if len(sec.Keys()) > 0 {
				return fmt.Errorf("keys outside of a section: %s", strings.Join(sec.KeyStrings(), ", "))
			}
			continue
		}

		for _, key := range sec.Keys() {
			if err := setINIKey(cfg, name, key); err != nil {
				return fmt.Errorf("[%s] %s: %w", name, key.Name(), err)
			}
		}
	}
	return nil
}

func list(key *ini.Key) []string {
	out := []string{}
	for _, s := range key.Strings(",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func setINIKey(cfg *Configuration, section string, key *ini.Key) error {
	var err error
	name := key.Name()

	switch section + "." + name {
	case "common.workdir":
		cfg.Common.Workdir = key.String()
	case "commands.annocheck":
		cfg.Commands.Annocheck = key.String()
	case "commands.clamscan":
		cfg.Commands.Clamscan = key.String()
	case "commands.timeout":
		cfg.Commands.Timeout, err = key.Int()
	case "security.paths":
		cfg.Security.Paths = list(key)
	case "filesize.size_threshold":
		cfg.Filesize.SizeThreshold, err = key.Int()
	case "patches.file_count_threshold":
		cfg.Patches.FileCountThreshold, err = key.Int()
	case "patches.line_count_threshold":
		cfg.Patches.LineCountThreshold, err = key.Int()
	case "patches.ignore_list":
		cfg.Patches.IgnoreList = list(key)
	case "badfuncs.forbidden":
		cfg.Badfuncs.Forbidden = list(key)
	case "license.allowed":
		cfg.License.Allowed = list(key)
	case "ownership.bin_paths":
		cfg.Ownership.BinPaths = list(key)
	case "ownership.bin_owner":
		cfg.Ownership.BinOwner = key.String()
	case "ownership.bin_group":
		cfg.Ownership.BinGroup = key.String()
	case "pathmigration.excluded_paths":
		cfg.PathMigration.ExcludedPaths = list(key)
	case "permissions.allowed":
		cfg.Permissions.Allowed = list(key)
	default:
		return setINIMapKey(cfg, section, key)
	}
	return err
}

func setINIMapKey(cfg *Configuration, section string, key *ini.Key) error {
	switch section {
	case "inspections":
		on, err := key.Bool()
		if err != nil {
			return err
		}
		if cfg.Inspections == nil {
			cfg.Inspections = map[string]bool{}
		}
		cfg.Inspections[key.Name()] = on
	case "badfuncs.allowed":
		if cfg.Badfuncs.Allowed == nil {
			cfg.Badfuncs.Allowed = map[string][]string{}
		}
		cfg.Badfuncs.Allowed[key.Name()] = list(key)
	case "pathmigration.migrated_paths":
		if cfg.PathMigration.MigratedPaths == nil {
			cfg.PathMigration.MigratedPaths = map[string]string{}
		}
		cfg.PathMigration.MigratedPaths[key.Name()] = key.String()
	case "annocheck.jobs":
		if cfg.Annocheck.Jobs == nil {
			cfg.Annocheck.Jobs = map[string]string{}
		}
		cfg.Annocheck.Jobs[key.Name()] = key.String()
	default:
		return fmt.Errorf("unknown setting")
	}
	return nil
}
