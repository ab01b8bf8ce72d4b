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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/clog/slag"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"sigs.k8s.io/release-utils/version"

	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

// usageTemplate prints a single Options: section instead of cobra's
// Flags: and Global Flags: pair.
const usageTemplate = `Usage:
  {{.Use}}
{{if .HasExample}}
Examples:
{{.Example}}
{{end}}{{if .HasAvailableFlags}}
Options:
{{.Flags.FlagUsages | trimTrailingWhitespaces}}
{{end}}`

// ExitError carries a process exit code out of a command. Err may be nil
// when the code itself is the whole message.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func setupLogging(cmd *cobra.Command, level slag.Level, debug bool) {
	l := charmlog.Level(level)
	if debug {
		l = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(cmd.ErrOrStderr(), charmlog.Options{ReportTimestamp: true, Level: l})
	slog.SetDefault(slog.New(handler))
	cmd.SetContext(clog.WithLogger(cmd.Context(), clog.New(handler)))
}

type userAgentTransport struct{ t http.RoundTripper }

func (u userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", fmt.Sprintf("rpminspect/%s", version.GetVersionInfo().GitVersion))
	return u.t.RoundTrip(req)
}

// Execute runs the rpminspect command line and returns the process exit
// code: 0 when the builds pass, 1 (or --failure-code) when an inspection
// result reaches the threshold, 2 for usage and program errors.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, New(), args, stdout, stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) (code int) {
	defer func() {
		if p := recover(); p != nil {
			fmt.Fprintf(stderr, "*** internal error: %v\n", p)
			code = results.ExitProgramError
		}
	}()

	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return results.ExitSuccess
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		if exit.Err != nil {
			fmt.Fprintf(stderr, "*** %v\n", exit.Err)
		}
		return exit.Code
	}

	fmt.Fprintf(stderr, "*** %v\n", err)
	return results.ExitProgramError
}
