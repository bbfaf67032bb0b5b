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

// Package rewrite converts tabs to spaces without ever leaving a partially
// written file at the destination path.
//
// Output that replaces an existing file (an in-place edit, or any edit that
// keeps a backup) is written to a temporary file in the destination's
// directory first. Once the conversion succeeded the temporary file is
// published with a single rename:
//
//	source ──expand──▶ dtXXXXXX ──rename──▶ destination
//	                                 │
//	          destination ──rename──▶ destination.bak   (backup only)
//
// A crash before the publish rename leaves the destination untouched, plus at
// most an orphaned temporary file. An in-place edit that converted no tabs
// discards the temporary file and leaves the original, timestamps included,
// as it was.
package rewrite

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/detab/pkg/identity"
	"github.com/walteh/detab/pkg/tabstop"
	"gitlab.com/tozd/go/errors"
)

const (
	formFeed   = '\f'
	tempPrefix = "dt"
)

// 🔧 Options configures a Rewriter
type Options struct {
	Stdin    io.Reader         // Read when the source is "-"
	Stdout   io.Writer         // Written when the destination is "-"
	Messages io.Writer         // Verbose reports; nil discards them
	Platform identity.Platform // Defaults to identity.Native()
}

// ✍️ Rewriter runs conversion requests
type Rewriter struct {
	stdin    io.Reader
	stdout   io.Writer
	messages io.Writer
	platform identity.Platform
}

// 🏭 New creates a Rewriter bound to the given standard streams
func New(opts Options) *Rewriter {
	r := &Rewriter{
		stdin:    opts.Stdin,
		stdout:   opts.Stdout,
		messages: opts.Messages,
		platform: opts.Platform,
	}
	if r.stdin == nil {
		r.stdin = os.Stdin
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.messages == nil {
		r.messages = io.Discard
	}
	if r.platform == nil {
		r.platform = identity.Native()
	}
	return r
}

// 📊 Report describes what a Run did
type Report struct {
	Plan      *Plan
	Tabs      int64 // Tabs converted
	Published bool  // The temporary file replaced the destination
	Discarded bool  // In-place edit with nothing to change
	TimeKept  bool  // Destination timestamps were copied from the source
}

// Changed reports whether the output differs from the input.
func (r *Report) Changed() bool {
	return r.Tabs > 0
}

// 🏃 Run converts req.Source into req.Destination. Every failure is returned
// as an *Error carrying the exit status the process should use.
func (r *Rewriter) Run(ctx context.Context, req Request) (*Report, error) {
	logger := zerolog.Ctx(ctx)

	if err := tabstop.ValidateWidth(req.TabWidth); err != nil {
		return nil, &Error{Op: "validate", Msg: err.Error(), Code: ExitUsage}
	}

	// Open the source first, so a typo fails before any output is created
	var src io.Reader = r.stdin
	var srcFile *os.File
	var srcInfo os.FileInfo
	if req.Source != "" && req.Source != StdStream {
		f, err := os.Open(req.Source)
		if err != nil {
			return nil, fatal("open", req.Source, err, "Can't open file %s", req.Source)
		}
		srcFile = f
		defer func() {
			if srcFile != nil {
				srcFile.Close()
			}
		}()
		srcInfo, err = f.Stat()
		if err != nil {
			return nil, fatal("stat", req.Source, err, "Can't open file %s", req.Source)
		}
		src = f
	}

	plan, err := resolve(ctx, r.platform, req)
	if err != nil {
		return nil, err
	}
	report := &Report{Plan: plan}

	var dst io.WriteCloser
	var tmpPath string
	var dstInfo os.FileInfo
	switch {
	case plan.ToStdout():
		logger.Debug().Msg("writing to standard output")
		dst = nopCloser{r.stdout}
	case plan.Staged:
		if err := checkWritable(plan.Destination); err != nil {
			return nil, err
		}
		if dstInfo, err = os.Stat(plan.Destination); err != nil {
			return nil, fatal("stat", plan.Destination, err, "Can't write to file %s", plan.Destination)
		}
		logger.Debug().Bool("in_place", plan.InPlace).Msg("writing to a temp file")
		tmp, err := os.CreateTemp(filepath.Dir(plan.Destination), tempPrefix)
		if err != nil {
			pattern := filepath.Join(filepath.Dir(plan.Destination), tempPrefix+"*")
			return nil, fatal("temp", pattern, err, "Can't create temporary file %s", pattern)
		}
		tmpPath = tmp.Name()
		dst = tmp
	default:
		logger.Debug().Msg("writing directly to the out file")
		f, err := os.OpenFile(plan.Destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
		if err != nil {
			return nil, fatal("create", plan.Destination, err, "Can't write to file %s", plan.Destination)
		}
		dst = f
	}

	tabs, err := convert(dst, src, req)
	closeErr := dst.Close()
	if srcFile != nil {
		// Released before finalize, which may delete or rename the source
		srcFile.Close()
		srcFile = nil
	}
	if err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
		name := plan.Destination
		if name == "" {
			name = StdStream
		}
		return nil, fatal("write", name, err, "Can't write to file %s", name)
	}
	report.Tabs = tabs
	logger.Debug().Int64("tabs", tabs).Msg("writing done")

	if plan.Staged {
		if err := r.finalize(ctx, plan, tmpPath, report); err != nil {
			return nil, err
		}
	}

	switch {
	case report.Discarded || plan.ToStdout():
	case srcInfo != nil:
		if err := r.copyAttributes(ctx, plan.Destination, srcInfo, req.SameTime || !report.Changed(), report); err != nil {
			return nil, err
		}
	case report.Published && dstInfo != nil:
		// The temp file is private; give back the bits of the file it replaced
		if err := chmod(ctx, plan.Destination, dstInfo.Mode().Perm()); err != nil {
			return nil, err
		}
	}

	if req.Verbose {
		fmt.Fprintf(r.messages, "// Detab: %d tabs removed.\n", tabs)
	}

	return report, nil
}

func convert(dst io.Writer, src io.Reader, req Request) (int64, error) {
	bw := bufio.NewWriter(dst)
	if req.Append {
		if err := bw.WriteByte(formFeed); err != nil {
			return 0, err
		}
	}
	res, err := tabstop.Expand(bw, src, req.TabWidth)
	if err != nil {
		return res.Tabs, err
	}
	if err := bw.Flush(); err != nil {
		return res.Tabs, errors.Errorf("flushing output: %w", err)
	}
	return res.Tabs, nil
}

// 🔐 checkWritable opens path for reading and writing and closes it again,
// so a read-only destination fails before any conversion work is done.
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fatal("precheck", path, err, "Can't write to file %s", path)
	}
	return f.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
