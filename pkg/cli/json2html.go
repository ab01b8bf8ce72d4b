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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpminspect/rpminspect-sub001/pkg/output"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
)

// JSON2HTML converts a JSON report written by rpminspect -F json to HTML.
func JSON2HTML() *cobra.Command {
	var outputPath, title string

	cmd := &cobra.Command{
		Use:               "report-json2html [options] [REPORT.json]",
		Short:             "Render an rpminspect JSON report as HTML",
		Long:              `Reads a JSON report from the named file, or from standard input, and writes it as a static HTML page.`,
		Example:           `  report-json2html -o results.html results.json`,
		Args:              cobra.MaximumNArgs(1),
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
				if title == "" {
					title = filepath.Base(args[0])
				}
			}

			report, err := results.ReadJSON(in)
			if err != nil {
				return err
			}
			if title == "" {
				title = "rpminspect report"
			}

			if outputPath != "" {
				return output.Save(cmd.Context(), outputPath, output.FormatHTML, report, output.WithTitle(title))
			}
			if err := output.Render(cmd.OutOrStdout(), output.FormatHTML, report, output.WithTitle(title)); err != nil {
				return fmt.Errorf("rendering %s: %w", title, err)
			}
			return nil
		},
	}
	cmd.SetUsageTemplate(usageTemplate)

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write HTML to this file instead of stdout")
	cmd.Flags().StringVarP(&title, "title", "t", "", "page title; the input file name when unset")

	return cmd
}

// ExecuteJSON2HTML runs report-json2html and returns the process exit code.
func ExecuteJSON2HTML(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, JSON2HTML(), args, stdout, stderr)
}
