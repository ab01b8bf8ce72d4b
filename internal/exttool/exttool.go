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

// Package exttool runs the external programs some inspections depend on.
package exttool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/kballard/go-shellquote"
)

// ErrUnavailable means the tool is not installed. Inspections that get it
// are skipped rather than failed.
var ErrUnavailable = errors.New("tool not available")

// ErrTimeout means the tool ran longer than its allowed time.
var ErrTimeout = errors.New("tool timed out")

// Result is the outcome of a tool that ran to completion.
type Result struct {
	ExitCode int
	Output   string
}

// Tool is an external program with a fixed set of leading options.
type Tool struct {
	Name    string
	Path    string
	Options []string
	Timeout time.Duration
}

// New resolves command on $PATH. Extra options are given in shell word
// syntax, for example "--verbose --skip-lto".
func New(command, options string, timeout time.Duration) (*Tool, error) {
	if command == "" {
		return nil, fmt.Errorf("no command: %w", ErrUnavailable)
	}
	p, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, ErrUnavailable)
	}
	opts, err := shellquote.Split(options)
	if err != nil {
		return nil, fmt.Errorf("parsing options for %s: %w", command, err)
	}
	return &Tool{Name: command, Path: p, Options: opts, Timeout: timeout}, nil
}

// Run executes the tool with args appended to its options. A non-zero exit
// is not an error; the caller inspects Result.ExitCode.
func (t *Tool) Run(ctx context.Context, args ...string) (Result, error) {
	log := clog.FromContext(ctx)

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	argv := append(append([]string{}, t.Options...), args...)
	log.Debugf("running %s", shellquote.Join(append([]string{t.Path}, argv...)...))

	var out bytes.Buffer
	// #nosec G204 - command comes from the rpminspect configuration
	cmd := exec.CommandContext(ctx, t.Path, argv...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return Result{Output: out.String()}, fmt.Errorf("%s after %s: %w", t.Name, t.Timeout, ErrTimeout)
		}
		return Result{Output: out.String()}, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return Result{Output: out.String()}, nil
	case errors.As(err, &exitErr):
		return Result{ExitCode: exitErr.ExitCode(), Output: out.String()}, nil
	default:
		return Result{Output: out.String()}, fmt.Errorf("running %s: %w", t.Name, err)
	}
}
