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
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
commands:
  timeout: 60
filesize:
  size_threshold: 25
patches:
  file_count_threshold: 3
  line_count_threshold: 100
badfuncs:
  allowed:
    /usr/bin/hello-world:
      - inet_aton
inspections:
  virus: false
security:
  paths:
    - /etc/sudoers.d/
`

const jsonConfig = `{
  "commands": {"timeout": 60},
  "filesize": {"size_threshold": 25},
  "patches": {"file_count_threshold": 3, "line_count_threshold": 100},
  "badfuncs": {"allowed": {"/usr/bin/hello-world": ["inet_aton"]}},
  "inspections": {"virus": false},
  "security": {"paths": ["/etc/sudoers.d/"]}
}
`

const tomlConfig = `
[commands]
timeout = 60

[filesize]
size_threshold = 25

[patches]
file_count_threshold = 3
line_count_threshold = 100

[badfuncs.allowed]
"/usr/bin/hello-world" = ["inet_aton"]

[inspections]
virus = false

[security]
paths = ["/etc/sudoers.d/"]
`

const iniConfig = `
[commands]
timeout = 60

[filesize]
size_threshold = 25

[patches]
file_count_threshold = 3
line_count_threshold = 100

[badfuncs.allowed]
/usr/bin/hello-world = inet_aton

[inspections]
virus = false

[security]
paths = /etc/sudoers.d/
`

func TestFormatsAreEquivalent(t *testing.T) {
	ctx := slogtest.Context(t)

	fsys := fstest.MapFS{
		"rpminspect.yaml": {Data: []byte(yamlConfig)},
		"rpminspect.json": {Data: []byte(jsonConfig)},
		"rpminspect.toml": {Data: []byte(tomlConfig)},
		"rpminspect.ini":  {Data: []byte(iniConfig)},
	}

	var dumps []string
	for _, name := range []string{"rpminspect.yaml", "rpminspect.json", "rpminspect.toml", "rpminspect.ini"} {
		cfg, err := ParseConfiguration(ctx, name, WithFS(fsys))
		require.NoError(t, err, name)

		assert.Equal(t, 60, cfg.Commands.Timeout, name)
		assert.Equal(t, 25, cfg.Filesize.SizeThreshold, name)
		assert.Equal(t, []string{"inet_aton"}, cfg.Badfuncs.Allowed["/usr/bin/hello-world"], name)
		assert.False(t, cfg.Enabled("virus"), name)
		assert.True(t, cfg.Enabled("license"), name)

		var buf bytes.Buffer
		require.NoError(t, cfg.Dump(&buf))
		dumps = append(dumps, buf.String())
	}

	for i := 1; i < len(dumps); i++ {
		assert.Equal(t, dumps[0], dumps[i])
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultTimeout, cfg.Commands.Timeout)
	assert.Equal(t, DefaultSizeThreshold, cfg.Filesize.SizeThreshold)
	assert.Equal(t, "/usr/bin", cfg.PathMigration.MigratedPaths["/bin"])
	assert.Contains(t, cfg.Badfuncs.Forbidden, "inet_aton")
	assert.True(t, cfg.IsSecurityPath("/etc/sudoers.d/wheel"))
	assert.True(t, cfg.IsSecurityPath("/etc/sudoers.d"))
	assert.False(t, cfg.IsSecurityPath("/etc/sudoers"))
	assert.NoError(t, cfg.Validate())
}

func TestParseConfigurationFromDisk(t *testing.T) {
	ctx := slogtest.Context(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "generic.yaml")
	require.NoError(t, os.WriteFile(p, []byte(yamlConfig), 0o644))

	cfg, err := ParseConfiguration(ctx, p, WithDefaultWorkdir(dir))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Common.Workdir)
}

func TestParseConfigurationErrors(t *testing.T) {
	ctx := slogtest.Context(t)

	for _, c := range []struct {
		name string
		file string
		data string
	}{
		{"unknown yaml key", "c.yaml", "filesize:\n  size_treshold: 3\n"},
		{"unknown json key", "c.json", `{"nope": 1}`},
		{"unknown toml key", "c.toml", "[nope]\nx = 1\n"},
		{"unknown ini key", "c.ini", "[filesize]\nnope = 1\n"},
		{"ini key outside a section", "c.ini", "x = 1\n"},
		{"bad ini int", "c.ini", "[filesize]\nsize_threshold = lots\n"},
		{"negative threshold", "c.yaml", "filesize:\n  size_threshold: -1\n"},
		{"relative allowed path", "c.yaml", "badfuncs:\n  allowed:\n    usr/bin/x: [inet_aton]\n"},
		{"unknown extension", "c.xml", "<x/>"},
	} {
		t.Run(c.name, func(t *testing.T) {
			fsys := fstest.MapFS{c.file: {Data: []byte(c.data)}}
			_, err := ParseConfiguration(ctx, c.file, WithFS(fsys))
			assert.Error(t, err)
		})
	}

	_, err := ParseConfiguration(ctx, "")
	assert.Error(t, err)

	_, err = ParseConfiguration(ctx, "missing.yaml", WithFS(fstest.MapFS{}))
	assert.Error(t, err)
}

func TestInvalidConfigurationError(t *testing.T) {
	ctx := slogtest.Context(t)
	fsys := fstest.MapFS{"c.yaml": {Data: []byte("commands:\n  timeout: -5\n")}}
	_, err := ParseConfiguration(ctx, "c.yaml", WithFS(fsys))

	var invalid ErrInvalidConfiguration
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "commands.timeout")
}

func TestEmptyFileUsesDefaults(t *testing.T) {
	ctx := slogtest.Context(t)
	fsys := fstest.MapFS{"c.yaml": {Data: []byte("")}}
	cfg, err := ParseConfiguration(ctx, "c.yaml", WithFS(fsys), WithDefaultTimeout(42))
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Commands.Timeout)
	assert.Equal(t, Default().Filesize, cfg.Filesize)
}

func TestExplicitZeroSurvivesDefaults(t *testing.T) {
	ctx := slogtest.Context(t)
	fsys := fstest.MapFS{
		"c.yaml": {Data: []byte("commands:\n  timeout: 0\nfilesize:\n  size_threshold: 0\n")},
		"c.json": {Data: []byte(`{"commands": {"timeout": 0}, "filesize": {"size_threshold": 0}}`)},
		"c.toml": {Data: []byte("[commands]\ntimeout = 0\n\n[filesize]\nsize_threshold = 0\n")},
		"c.ini":  {Data: []byte("[commands]\ntimeout = 0\n\n[filesize]\nsize_threshold = 0\n")},
	}

	for _, name := range []string{"c.yaml", "c.json", "c.toml", "c.ini"} {
		cfg, err := ParseConfiguration(ctx, name, WithFS(fsys), WithDefaultTimeout(42))
		require.NoError(t, err, name)
		assert.Equal(t, 0, cfg.Commands.Timeout, name)
		assert.Zero(t, cfg.CommandTimeout(), name)
		assert.Equal(t, 0, cfg.Filesize.SizeThreshold, name)
		// Numbers the file leaves out keep their defaults.
		assert.Equal(t, DefaultFileCountThreshold, cfg.Patches.FileCountThreshold, name)
		assert.Equal(t, DefaultLineCountThreshold, cfg.Patches.LineCountThreshold, name)
	}
}

func TestDecodeAppliesNoDefaults(t *testing.T) {
	cfg, err := Decode(bytes.NewReader([]byte("filesize:\n  size_threshold: 5\n")), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Filesize.SizeThreshold)
	assert.Equal(t, 0, cfg.Commands.Timeout)
	assert.Empty(t, cfg.Common.Workdir)
}
