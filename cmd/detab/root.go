// Copyright 2025 walteh LLC
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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/detab/pkg/batch"
	"github.com/walteh/detab/pkg/config"
	"github.com/walteh/detab/pkg/log"
	"github.com/walteh/detab/pkg/preview"
	"github.com/walteh/detab/pkg/rewrite"
	"github.com/walteh/detab/pkg/tabstop"
	"gitlab.com/tozd/go/errors"
)

const longHelp = `detab - Convert tabs to spaces

Arguments:
  INFILE   Input file pathname. Default or "-": stdin
  OUTFILE  Output file pathname. Default or "-": stdout
  N        Number of columns between tab stops. Default: 8

When INFILE and OUTFILE name the same file, it is modified in place through
a temporary file, so an interrupted run never leaves it half written.

Defaults may be set in .detabrc.yaml, .detabrc.yml, .detabrc.json or
.detabrc.hcl in the current directory.`

// 🎛️ handler holds the command line state of one detab invocation
type handler struct {
	appendFF   bool
	backup     bool
	same       bool
	sameTime   bool
	tabs       int
	verbose    bool
	version    bool
	debug      bool
	dryRun     bool
	configFile string
	globs      []string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// 🏭 newRootCmd builds the detab command around h
func newRootCmd(h *handler) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "detab [OPTIONS] [INFILE [OUTFILE|-= [N]]]",
		Short:         "Convert tabs to spaces",
		Long:          longHelp,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := setupLogging(h.debug, log.MessageStream(h.stdout, h.stderr))
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.run(cmd.Context(), cmd.Flags().Changed("tabs"), args)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&h.appendFF, "append", "a", false, "prefix the output with a form feed")
	flags.BoolVarP(&h.backup, "bak", "b", false, "create an *.bak backup file of existing output files")
	flags.BoolVar(&h.same, "same", false, "modify the input file in place (also -=)")
	flags.BoolVar(&h.sameTime, "st", false, "set the output file time to the same time as that of the input file")
	flags.IntVarP(&h.tabs, "tabs", "t", tabstop.DefaultWidth, "number of columns between tab stops")
	flags.BoolVarP(&h.verbose, "verbose", "v", false, "report the number of tabs removed")
	flags.BoolVarP(&h.version, "version", "V", false, "print version information and exit")
	flags.BoolVarP(&h.debug, "debug", "d", false, "output debug information")
	flags.StringVar(&h.configFile, "config", "", "defaults file (default: discovered in the current directory)")
	flags.BoolVar(&h.dryRun, "dry-run", false, "show what would change without writing anything")
	flags.StringArrayVar(&h.globs, "glob", nil, "convert every file matching the pattern in place (repeatable, ** allowed)")

	cmd.SetIn(h.stdin)
	cmd.SetOut(h.stdout)
	cmd.SetErr(h.stderr)

	return cmd
}

// setupLogging configures zerolog for the run. Only warnings show unless
// debugging was asked for.
func setupLogging(debug bool, w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor}).
		Level(level).
		With().Timestamp().Logger()
}

// 🏃 run merges the defaults file with the flags and dispatches
func (h *handler) run(ctx context.Context, tabsSet bool, args []string) error {
	if h.version {
		fmt.Fprint(h.stdout, FormatVersion(GetVersionInfo()))
		return nil
	}

	cfg, err := h.loadConfig(ctx)
	if err != nil {
		return err
	}

	req := rewrite.Request{
		SameFile: h.same,
		TabWidth: cfg.Width(tabstop.DefaultWidth),
		Append:   h.appendFF,
		Backup:   h.backup || cfg.Backup,
		SameTime: h.sameTime || cfg.SameTime,
		Verbose:  h.verbose || h.debug || cfg.Verbose,
	}
	if tabsSet {
		req.TabWidth = h.tabs
	}
	if len(args) > 0 {
		req.Source = args[0]
	}
	if len(args) > 1 {
		req.Destination = args[1]
	}

	if err := tabstop.ValidateWidth(req.TabWidth); err != nil {
		return &rewrite.Error{Op: "validate", Msg: err.Error(), Code: rewrite.ExitUsage}
	}

	zerolog.Ctx(ctx).Debug().
		Str("source", req.Source).
		Str("destination", req.Destination).
		Int("tabs", req.TabWidth).
		Str("config", cfg.Location()).
		Msg("request ready")

	messages := log.MessageStream(h.stdout, h.stderr)

	if len(h.globs) > 0 {
		if len(args) > 0 {
			return errors.New("--glob can't be combined with INFILE or OUTFILE")
		}
		return h.runBatch(ctx, cfg, req, messages)
	}

	if h.dryRun {
		return h.runPreview(ctx, req)
	}

	rw := rewrite.New(rewrite.Options{Stdin: h.stdin, Stdout: h.stdout, Messages: messages})
	_, err = rw.Run(ctx, req)
	return err
}

func (h *handler) loadConfig(ctx context.Context) (*config.Config, error) {
	if h.configFile != "" {
		return config.Load(ctx, h.configFile)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("getting working directory: %w", err)
	}
	return config.Discover(ctx, cwd)
}

// 🔍 runPreview prints the changes a conversion of the source would make
func (h *handler) runPreview(ctx context.Context, req rewrite.Request) error {
	var p *preview.Preview
	var err error
	if req.Source == "" || req.Source == rewrite.StdStream {
		data, rerr := io.ReadAll(h.stdin)
		if rerr != nil {
			return errors.Errorf("reading stdin: %w", rerr)
		}
		p, err = preview.Bytes(ctx, "<stdin>", data, req.TabWidth)
	} else {
		p, err = preview.File(ctx, req.Source, req.TabWidth)
	}
	if err != nil {
		return err
	}
	return p.Write(h.stdout)
}

// 📦 runBatch converts every file the --glob patterns match, in place
func (h *handler) runBatch(ctx context.Context, cfg *config.Config, req rewrite.Request, messages io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.Errorf("getting working directory: %w", err)
	}

	files, err := batch.Expand(ctx, cwd, h.globs, cfg.Ignore)
	if err != nil {
		return err
	}

	console := log.New(io.Discard, *zerolog.Ctx(ctx))
	if req.Verbose {
		console = log.New(messages, *zerolog.Ctx(ctx))
	}

	if len(files) == 0 {
		console.Warningf("no files match %s", strings.Join(h.globs, ", "))
		return nil
	}

	if h.dryRun {
		for _, file := range files {
			p, err := preview.File(ctx, file, req.TabWidth)
			if err != nil {
				return err
			}
			if !p.Result.Changed() {
				continue
			}
			if err := p.Write(h.stdout); err != nil {
				return err
			}
		}
		return nil
	}

	console.Header(fmt.Sprintf("converting %d files", len(files)))

	tmpl := req
	tmpl.Verbose = false
	rw := rewrite.New(rewrite.Options{Stdin: h.stdin, Stdout: h.stdout, Messages: messages})
	summary, err := batch.Run(log.NewContext(ctx, console), rw, files, tmpl)
	if err != nil {
		return err
	}

	if req.Verbose {
		console.LogNewline()
		if err := summary.Render(messages); err != nil {
			return err
		}
		console.Successf("%d tabs removed from %d files", summary.Tabs, summary.Changed())
	}
	return nil
}
