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
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/clog/slag"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"sigs.k8s.io/release-utils/version"

	"github.com/rpminspect/rpminspect-sub001/pkg/config"
	"github.com/rpminspect/rpminspect-sub001/pkg/inspect"
	"github.com/rpminspect/rpminspect-sub001/pkg/inspect/inspections"
	"github.com/rpminspect/rpminspect-sub001/pkg/output"
	"github.com/rpminspect/rpminspect-sub001/pkg/results"
	"github.com/rpminspect/rpminspect-sub001/pkg/rpm"
)

type inspectOpts struct {
	configPath  string
	workdir     string
	format      string
	release     string
	include     []string
	exclude     []string
	threshold   results.Verdict
	suppress    results.Verdict
	outputPath  string
	jobs        int
	noRebase    bool
	list        bool
	dumpConfig  bool
	showVersion bool
	debug       bool
	failureCode int
	tracePath   string
}

// New returns the rpminspect root command.
func New() *cobra.Command {
	var level slag.Level
	o := &inspectOpts{threshold: results.Verify, suppress: results.OK}

	cmd := &cobra.Command{
		Use:   "rpminspect [options] BEFORE [AFTER]",
		Short: "Inspect RPM builds and compare them with a previous build",
		Long: `rpminspect runs a set of inspections against a build of RPM packages.
BEFORE and AFTER are .rpm files, directories of .rpm files, or http(s) URLs.
With AFTER given, the builds are compared and the upstream version change
decides whether the update is a rebase or a maintenance update.`,
		Example: `  rpminspect -c rpminspect.yaml hello-1.0-1.fc40.x86_64.rpm
  rpminspect -F json -o results.json ./before/ ./after/
  rpminspect -T license,emptyrpm -t BAD ./build/`,
		Args:              cobra.MaximumNArgs(2),
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := http.DefaultTransport.(userAgentTransport); !ok {
				http.DefaultTransport = userAgentTransport{http.DefaultTransport}
			}
			setupLogging(cmd, level, o.debug)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}
	cmd.SetUsageTemplate(usageTemplate)

	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "configuration file (.yaml, .json, .toml or .ini); built-in defaults when unset")
	f.StringVarP(&o.workdir, "workdir", "w", "", "directory for downloads and unpacked payloads")
	f.StringVarP(&o.format, "format", "F", string(output.FormatText), "output format: text, json, summary or html")
	f.StringVarP(&o.release, "release", "r", "", "product release the build targets, such as fc40; derived from the dist tag when unset")
	f.StringSliceVarP(&o.include, "tests", "T", nil, "inspections to run, comma separated, or ALL")
	f.StringSliceVarP(&o.exclude, "exclude", "E", nil, "inspections to skip, comma separated")
	f.VarP(&o.threshold, "threshold", "t", "lowest result that fails the run: OK, INFO, VERIFY or BAD")
	f.VarP(&o.suppress, "suppress", "s", "hide results below this level from the output")
	f.StringVarP(&o.outputPath, "output", "o", "", "write results to this file instead of stdout")
	f.IntVarP(&o.jobs, "jobs", "j", 0, "inspections to run at once; one per CPU when unset")
	f.BoolVarP(&o.noRebase, "no-rebase", "n", false, "treat a comparison as a maintenance update even if the version changed")
	f.BoolVarP(&o.list, "list", "l", false, "list available inspections and exit")
	f.BoolVarP(&o.dumpConfig, "dump-config", "D", false, "print the effective configuration as YAML and exit")
	f.BoolVarP(&o.showVersion, "version", "V", false, "print version information and exit")
	f.BoolVarP(&o.debug, "debug", "d", false, "debugging output, and render partial results of an aborted run")
	f.IntVar(&o.failureCode, "failure-code", results.ExitFailure, "exit code used when results reach the threshold")
	f.Var(&level, "log-level", "log level (e.g. debug, info, warn, error)")
	f.StringVar(&o.tracePath, "trace", "", "write OpenTelemetry spans of the run to this file")

	return cmd
}

func (o *inspectOpts) loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	var cfg *config.Configuration
	if o.configPath == "" {
		cfg = config.Default()
	} else {
		c, err := config.ParseConfiguration(cmd.Context(), o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if o.workdir != "" {
		cfg.Common.Workdir = o.workdir
	}
	return cfg, nil
}

func (o *inspectOpts) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := clog.FromContext(ctx)
	stdout := cmd.OutOrStdout()

	if o.showVersion {
		vi := version.GetVersionInfo()
		_, err := fmt.Fprintln(stdout, vi.String())
		return err
	}

	format, err := output.ParseFormat(o.format)
	if err != nil {
		return err
	}

	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}
	registry := inspections.New(cfg)

	if o.list {
		return listInspections(cmd, registry)
	}
	if o.dumpConfig {
		return cfg.Dump(stdout)
	}

	if len(args) == 0 {
		return fmt.Errorf("no build specified; see %s --help", cmd.Name())
	}

	if o.tracePath != "" {
		shutdown, err := setupTracing(o.tracePath)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warnf("writing trace: %v", err)
			}
		}()
	}

	names, err := registry.Select(o.include, o.exclude)
	if err != nil {
		return err
	}

	ictx := &inspect.Context{Config: cfg, Release: o.release}
	before, err := rpm.LoadBuild(ctx, args[0], cfg.Common.Workdir)
	if err != nil {
		return err
	}
	ictx.Build = before
	if len(args) == 2 {
		after, err := rpm.LoadBuild(ctx, args[1], cfg.Common.Workdir)
		if err != nil {
			return err
		}
		ictx.Build = after
		ictx.Comparison = rpm.NewComparison(before, after, o.noRebase)
		log.Infof("comparing %s with %s (rebase: %t)", args[0], args[1], ictx.Comparison.Rebase)
	}
	if ictx.Release == "" {
		ictx.Release = rpm.ProductRelease(ictx.Build)
	}

	report, runErr := registry.Run(ctx, ictx, names, inspect.WithJobs(o.jobs))
	if runErr != nil {
		if report != nil && report.Partial() && o.debug {
			_ = o.render(cmd, format, report)
		}
		return &ExitError{Code: results.ExitProgramError, Err: runErr}
	}

	if err := o.render(cmd, format, report); err != nil {
		return err
	}

	if code := results.ExitCode(report, results.WithThreshold(o.threshold), results.WithFailureCode(o.failureCode)); code != results.ExitSuccess {
		return &ExitError{Code: code}
	}
	return nil
}

func (o *inspectOpts) render(cmd *cobra.Command, format output.Format, report *results.Report) error {
	opts := []output.Option{
		output.WithSuppress(o.suppress),
		output.WithColor(o.outputPath == "" && !color.NoColor),
	}
	if o.outputPath != "" {
		return output.Save(cmd.Context(), o.outputPath, format, report, opts...)
	}
	return output.Render(cmd.OutOrStdout(), format, report, opts...)
}

func listInspections(cmd *cobra.Command, registry *inspect.Registry) error {
	title := cases.Title(language.English)
	w := cmd.OutOrStdout()
	for _, i := range registry.All() {
		if _, err := fmt.Fprintf(w, "%s\n    %s (%s)\n", i.Name, i.Description, title.String(i.Class.String())); err != nil {
			return err
		}
	}
	return nil
}
