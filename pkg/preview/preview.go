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

// Package preview shows what a tab conversion would change without writing
// anything.
package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/walteh/detab/pkg/tabstop"
	"gitlab.com/tozd/go/errors"
)

const (
	tabGlyph   = "→"
	spaceGlyph = "·"
)

// 📄 Line is one output line touched by the conversion
type Line struct {
	Number int    // 1-based line number in the converted output
	Text   string // Rendered line, deletions and insertions marked
}

// 🔍 Preview is the outcome of a dry run
type Preview struct {
	Path   string
	Result tabstop.Result
	Lines  []Line
}

// 🏭 File previews the conversion of the file at path
func File(ctx context.Context, path string, width int) (*Preview, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	return Bytes(ctx, path, content, width)
}

// Bytes previews the conversion of content, labelled with name.
func Bytes(ctx context.Context, name string, content []byte, width int) (*Preview, error) {
	expanded, res, err := tabstop.ExpandBytes(content, width)
	if err != nil {
		return nil, err
	}

	p := &Preview{Path: name, Result: res}
	if !res.Changed() {
		return p, nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(content), string(expanded), false)
	p.Lines = render(diffs)

	zerolog.Ctx(ctx).Debug().
		Str("path", name).
		Int64("tabs", res.Tabs).
		Int("diffs", len(diffs)).
		Int("lines", len(p.Lines)).
		Msg("computed preview")

	return p, nil
}

// render walks the diff and keeps only the lines holding a change. Tabs only
// ever turn into spaces, so inserted and deleted text never spans a newline.
func render(diffs []diffmatchpatch.Diff) []Line {
	var lines []Line
	var cur strings.Builder
	changed := false
	number := 1

	flush := func() {
		if changed {
			lines = append(lines, Line{Number: number, Text: cur.String()})
		}
		cur.Reset()
		changed = false
		number++
	}

	for _, d := range diffs {
		for _, piece := range strings.SplitAfter(d.Text, "\n") {
			if piece == "" {
				continue
			}
			text := strings.TrimSuffix(piece, "\n")
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				cur.WriteString(deleted(text))
				changed = true
			case diffmatchpatch.DiffInsert:
				cur.WriteString(inserted(text))
				changed = true
			default:
				cur.WriteString(text)
			}
			if strings.HasSuffix(piece, "\n") && d.Type != diffmatchpatch.DiffDelete {
				flush()
			}
		}
	}
	if cur.Len() > 0 || changed {
		flush()
	}
	return lines
}

func deleted(text string) string {
	s := "[-" + strings.ReplaceAll(text, "\t", tabGlyph) + "-]"
	return color.New(color.FgRed).Sprint(s)
}

func inserted(text string) string {
	s := "{+" + strings.ReplaceAll(text, " ", spaceGlyph) + "+}"
	return color.New(color.FgGreen).Sprint(s)
}

// 🖨️ Write prints the preview in a compact, word-diff like form
func (p *Preview) Write(w io.Writer) error {
	header := fmt.Sprintf("--- %s (%d tabs)", p.Path, p.Result.Tabs)
	if _, err := fmt.Fprintln(w, color.New(color.Bold).Sprint(header)); err != nil {
		return errors.Errorf("writing preview: %w", err)
	}
	for _, line := range p.Lines {
		if _, err := fmt.Fprintf(w, "%s %s\n", color.New(color.Faint).Sprintf("%5d", line.Number), line.Text); err != nil {
			return errors.Errorf("writing preview: %w", err)
		}
	}
	return nil
}
