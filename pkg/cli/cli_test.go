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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(slogtest.Context(t), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHelp(t *testing.T) {
	code, out, _ := runCLI(t, "--help")
	assert.Equal(t, results.ExitSuccess, code)

	var usage, options int
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Usage:") {
			usage++
		}
		if strings.HasPrefix(line, "Options:") {
			options++
		}
	}
	assert.Equal(t, 1, usage, out)
	assert.Equal(t, 1, options, out)
	assert.Contains(t, out, "--threshold")
	assert.NotContains(t, out, "Global Flags:")
}

func TestList(t *testing.T) {
	code, out, _ := runCLI(t, "-l")
	assert.Equal(t, results.ExitSuccess, code)
	assert.Contains(t, out, "license\n    Check that the License tag is a valid SPDX expression. (Both)\n")
	assert.Contains(t, out, "(Comparison)")
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "-V")
	assert.Equal(t, results.ExitSuccess, code)
	assert.Contains(t, out, "GitVersion:")
	assert.Contains(t, out, "GoVersion:")
}

func TestDumpConfigIsFormatIndependent(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "rpminspect.yaml")
	iniPath := filepath.Join(dir, "rpminspect.ini")
	require.NoError(t, os.WriteFile(yamlPath, []byte("filesize:\n  size_threshold: 30\ninspections:\n  virus: false\n"), 0o644))
	require.NoError(t, os.WriteFile(iniPath, []byte("[filesize]\nsize_threshold = 30\n\n[inspections]\nvirus = false\n"), 0o644))

	code, fromYAML, stderr := runCLI(t, "-c", yamlPath, "-D")
	require.Equal(t, results.ExitSuccess, code, stderr)
	code, fromINI, stderr := runCLI(t, "-c", iniPath, "-D")
	require.Equal(t, results.ExitSuccess, code, stderr)

	assert.Equal(t, fromYAML, fromINI)
	assert.Contains(t, fromYAML, "size_threshold: 30")
}

func TestProgramErrors(t *testing.T) {
	missingConfig := filepath.Join(t.TempDir(), "missing.yaml")

	for _, c := range []struct {
		name string
		args []string
	}{
		{"no build", nil},
		{"unknown flag", []string{"--bogus"}},
		{"bad threshold", []string{"-t", "SEVERE", "x.rpm"}},
		{"bad format", []string{"-F", "xml", "x.rpm"}},
		{"missing config", []string{"-c", missingConfig, "x.rpm"}},
		{"unknown inspection", []string{"-T", "bogus", "x.rpm"}},
		{"missing build", []string{filepath.Join(t.TempDir(), "nope.rpm")}},
		{"too many builds", []string{"a", "b", "c"}},
	} {
		t.Run(c.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, c.args...)
			assert.Equal(t, results.ExitProgramError, code)
			assert.NotEmpty(t, stderr)
		})
	}
}

func TestJSON2HTML(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"license":[{"result":"BAD","waiver authorization":"Not Waivable","message":"Invalid License Tag"}],"upstream":[]}`), 0o644))

	var stdout, stderr bytes.Buffer
	code := ExecuteJSON2HTML(slogtest.Context(t), []string{in}, &stdout, &stderr)
	require.Equal(t, results.ExitSuccess, code, stderr.String())
	assert.Contains(t, stdout.String(), "<title>results.json</title>")
	assert.Contains(t, stdout.String(), `<td class="BAD">BAD</td>`)
	assert.Contains(t, stdout.String(), "No results.")

	require.NoError(t, os.WriteFile(in, []byte(`[]`), 0o644))
	code = ExecuteJSON2HTML(slogtest.Context(t), []string{in}, &stdout, &stderr)
	assert.Equal(t, results.ExitProgramError, code)
}

func TestTrace(t *testing.T) {
	ctx := slogtest.Context(t)
	p := filepath.Join(t.TempDir(), "trace.json")

	shutdown, err := setupTracing(p)
	require.NoError(t, err)
	_, span := otel.Tracer("rpminspect").Start(ctx, "load-build")
	span.End()
	require.NoError(t, shutdown(ctx))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "load-build")
}

func fixture(name string) string {
	return filepath.Join("..", "rpm", "testdata", name)
}

func TestInspectPackage(t *testing.T) {
	code, out, stderr := runCLI(t, "-F", "json", "-w", t.TempDir(), "-T", "emptyrpm,license", fixture("empty-0.1-1.x86_64.rpm"))
	// "Public Domain" is not an SPDX expression.
	require.Equal(t, results.ExitFailure, code, stderr)

	var got map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	require.Len(t, got, 2)

	require.Len(t, got["emptyrpm"], 1)
	assert.Equal(t, "INFO", got["emptyrpm"][0]["result"])
	assert.Equal(t, "Not Waivable", got["emptyrpm"][0]["waiver authorization"])
	assert.Equal(t, "Package empty is empty", got["emptyrpm"][0]["message"])

	require.Len(t, got["license"], 1)
	assert.Equal(t, "BAD", got["license"][0]["result"])
	assert.Contains(t, got["license"][0]["message"], "Public Domain")
}

func TestInspectThreshold(t *testing.T) {
	pkg := fixture("empty-0.1-1.x86_64.rpm")

	code, _, stderr := runCLI(t, "-w", t.TempDir(), "-T", "emptyrpm", pkg)
	assert.Equal(t, results.ExitSuccess, code, stderr)

	code, _, stderr = runCLI(t, "-w", t.TempDir(), "-T", "emptyrpm", "-t", "INFO", pkg)
	assert.Equal(t, results.ExitFailure, code, stderr)

	code, _, stderr = runCLI(t, "-w", t.TempDir(), "-T", "emptyrpm", "-t", "INFO", "--failure-code", "7", pkg)
	assert.Equal(t, 7, code, stderr)

	cfg := filepath.Join(t.TempDir(), "rpminspect.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("license:\n  allowed:\n    - Public Domain\n"), 0o644))
	code, _, stderr = runCLI(t, "-c", cfg, "-w", t.TempDir(), "-T", "license", pkg)
	assert.Equal(t, results.ExitSuccess, code, stderr)
}

func TestInspectComparison(t *testing.T) {
	code, out, stderr := runCLI(t, "-F", "json", "-w", t.TempDir(), "-T", "addedfiles,emptyrpm",
		fixture("payload-test-0.1-w9.gzdio.x86_64.rpm"), fixture("payload-test-0.1-w6.xzdio.x86_64.rpm"))
	require.Equal(t, results.ExitSuccess, code, stderr)

	var got map[string][]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, []map[string]any{{"result": "OK", "waiver authorization": "Not Waivable"}}, got["addedfiles"])
	assert.Equal(t, []map[string]any{{"result": "OK", "waiver authorization": "Not Waivable"}}, got["emptyrpm"])
}

func TestInspectAborted(t *testing.T) {
	ctx, cancel := context.WithCancel(slogtest.Context(t))
	cancel()
	pkg := fixture("empty-0.1-1.x86_64.rpm")

	var stdout, stderr bytes.Buffer
	code := Execute(ctx, []string{"-w", t.TempDir(), "-T", "emptyrpm", pkg}, &stdout, &stderr)
	assert.Equal(t, results.ExitProgramError, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "aborted")

	// With --debug the partial report is still rendered.
	stdout.Reset()
	stderr.Reset()
	code = Execute(ctx, []string{"-d", "-w", t.TempDir(), "-T", "emptyrpm", pkg}, &stdout, &stderr)
	assert.Equal(t, results.ExitProgramError, code)
	assert.Contains(t, stdout.String(), "results are incomplete")
}
