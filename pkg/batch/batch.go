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

// Package batch converts many files in place, one after the other.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/detab/pkg/log"
	"github.com/walteh/detab/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// 🔎 Expand resolves glob patterns (with ** support) relative to base and
// returns the matching regular files, sorted and without duplicates. Files
// matching any ignore pattern are left out.
func Expand(ctx context.Context, base string, patterns, ignore []string) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	seen := map[string]bool{}
	var files []string

	for _, pattern := range patterns {
		root, pat := base, filepath.ToSlash(pattern)
		if filepath.IsAbs(pattern) {
			root, pat = doublestar.SplitPattern(pat)
			root = filepath.FromSlash(root)
		}
		if !doublestar.ValidatePattern(pat) {
			return nil, errors.Errorf("invalid pattern %q", pattern)
		}

		matches, err := doublestar.Glob(os.DirFS(root), pat)
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", pattern, err)
		}
		logger.Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("expanded pattern")

		for _, match := range matches {
			if ignored(ctx, match, ignore) {
				continue
			}
			full := filepath.Join(root, filepath.FromSlash(match))
			if seen[full] {
				continue
			}
			fi, err := os.Stat(full)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			seen[full] = true
			files = append(files, full)
		}
	}

	sort.Strings(files)
	return files, nil
}

func ignored(ctx context.Context, match string, ignore []string) bool {
	for _, pattern := range ignore {
		ok, err := doublestar.Match(pattern, match)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("path", match).Err(err).Msg("error matching pattern")
			continue
		}
		if !ok {
			// Bare names like "*.min.js" apply at any depth
			ok, _ = doublestar.Match(pattern, path.Base(match))
		}
		if ok {
			zerolog.Ctx(ctx).Debug().Str("file", match).Str("pattern", pattern).Msg("file ignored by pattern")
			return true
		}
	}
	return false
}

// 📄 FileResult is the outcome for one file
type FileResult struct {
	Path       string
	Tabs       int64
	BackupPath string
}

// 📊 Summary collects the results of a batch run
type Summary struct {
	Files []FileResult
	Tabs  int64
}

// Changed returns how many files had at least one tab.
func (s *Summary) Changed() int {
	n := 0
	for _, f := range s.Files {
		if f.Tabs > 0 {
			n++
		}
	}
	return n
}

// 🏃 Run converts every file in place with the settings of tmpl. It stops
// at the first failure; files already converted stay converted. Each file is
// reported to the console logger carried by ctx.
func Run(ctx context.Context, rw *rewrite.Rewriter, files []string, tmpl rewrite.Request) (*Summary, error) {
	console := log.FromContext(ctx)
	summary := &Summary{}

	for _, file := range files {
		req := tmpl
		req.Source = file
		req.Destination = ""
		req.SameFile = true

		report, err := rw.Run(ctx, req)
		if err != nil {
			console.LogFileOperation(ctx, log.FileOperation{
				Path:     file,
				Mode:     "in-place",
				Status:   "failed",
				IsFailed: true,
			})
			return summary, errors.Errorf("converting %s: %w", file, err)
		}

		result := FileResult{Path: file, Tabs: report.Tabs}
		status := "unchanged"
		if report.Changed() {
			status = fmt.Sprintf("%d tabs", report.Tabs)
			if report.Plan.Backup {
				result.BackupPath = report.Plan.BackupPath
			}
		}
		console.LogFileOperation(ctx, log.FileOperation{
			Path:     file,
			Mode:     "in-place",
			Status:   status,
			Tabs:     report.Tabs,
			IsBackup: result.BackupPath != "",
		})

		summary.Files = append(summary.Files, result)
		summary.Tabs += report.Tabs
	}

	return summary, nil
}

// 🖨️ Render writes the summary as a table
func (s *Summary) Render(w io.Writer) error {
	data := pterm.TableData{{"File", "Tabs", "Backup"}}
	for _, f := range s.Files {
		data = append(data, []string{f.Path, fmt.Sprint(f.Tabs), f.BackupPath})
	}
	data = append(data, []string{fmt.Sprintf("%d files, %d changed", len(s.Files), s.Changed()), fmt.Sprint(s.Tabs), ""})

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering summary: %w", err)
	}
	if _, err := fmt.Fprintln(w, table); err != nil {
		return errors.Errorf("writing summary: %w", err)
	}
	return nil
}
