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

package exttool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

func TestUnavailable(t *testing.T) {
	_, err := New("rpminspect-no-such-tool", "", time.Second)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = New("", "", time.Second)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRun(t *testing.T) {
	ctx := slogtest.Context(t)

	tool, err := New(script(t, `echo "$@"; exit 3`), "--one 'two words'", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []string{"--one", "two words"}, tool.Options)

	res, err := tool.Run(ctx, "file")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "--one two words file\n", res.Output)
}

func TestRunTimeout(t *testing.T) {
	ctx := slogtest.Context(t)

	tool, err := New(script(t, "sleep 10"), "", 100*time.Millisecond)
	require.NoError(t, err)

	_, err = tool.Run(ctx)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestBadOptions(t *testing.T) {
	_, err := New(script(t, "true"), "'unterminated", time.Second)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}
