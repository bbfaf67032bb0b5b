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

package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/detab/pkg/log"
	"github.com/walteh/detab/pkg/rewrite"
)

// 🧪 createTree writes files (relative path -> content) under a temp dir
func createTree(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return dir
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestExpand(t *testing.T) {
	dir := createTree(t, map[string]string{
		"main.c":            "\tint x;\n",
		"lib/util.c":        "\treturn;\n",
		"lib/util.h":        "#pragma once\n",
		"vendor/dep/dep.c":  "\tdep();\n",
		"web/app.min.js":    "x",
		"web/app.js":        "\tx",
		"docs/readme.txt":   "text",
		"lib/nested/deep.c": "\t\n",
	})
	ctx := testContext(t)

	tests := []struct {
		name     string
		patterns []string
		ignore   []string
		want     []string
	}{
		{
			name:     "recursive_pattern",
			patterns: []string{"**/*.c"},
			want:     []string{"lib/nested/deep.c", "lib/util.c", "main.c", "vendor/dep/dep.c"},
		},
		{
			name:     "ignore_directory",
			patterns: []string{"**/*.c"},
			ignore:   []string{"vendor/**"},
			want:     []string{"lib/nested/deep.c", "lib/util.c", "main.c"},
		},
		{
			name:     "ignore_base_name",
			patterns: []string{"web/*.js"},
			ignore:   []string{"*.min.js"},
			want:     []string{"web/app.js"},
		},
		{
			name:     "overlapping_patterns_deduplicated",
			patterns: []string{"lib/*", "lib/*.c"},
			want:     []string{"lib/util.c", "lib/util.h"},
		},
		{
			name:     "no_matches",
			patterns: []string{"**/*.rs"},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(ctx, dir, tt.patterns, tt.ignore)
			require.NoError(t, err)

			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.Join(dir, filepath.FromSlash(w)))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestExpandAbsolutePattern(t *testing.T) {
	dir := createTree(t, map[string]string{"a/x.txt": "\t", "a/y.md": "\t"})

	got, err := Expand(testContext(t), "/somewhere/else", []string{filepath.Join(dir, "a", "*.txt")}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a", "x.txt")}, got)
}

func TestExpandInvalidPattern(t *testing.T) {
	_, err := Expand(testContext(t), t.TempDir(), []string{"[oops"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestRun(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	dir := createTree(t, map[string]string{
		"a.c": "\tone\n",
		"b.c": "no tabs\n",
		"c.c": "\t\ttwo\n",
	})
	ctx := testContext(t)
	console := &bytes.Buffer{}
	logger := log.New(console, zerolog.Nop())
	rw := rewrite.New(rewrite.Options{Stdout: &bytes.Buffer{}})

	files, err := Expand(ctx, dir, []string{"*.c"}, nil)
	require.NoError(t, err)

	summary, err := Run(log.NewContext(ctx, logger), rw, files, rewrite.Request{TabWidth: 4, Backup: true})
	require.NoError(t, err)

	assert.Len(t, summary.Files, 3)
	assert.Equal(t, int64(3), summary.Tabs)
	assert.Equal(t, 2, summary.Changed())

	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "    one\n", read("a.c"))
	assert.Equal(t, "no tabs\n", read("b.c"))
	assert.Equal(t, "        two\n", read("c.c"))
	assert.Equal(t, "\tone\n", read("a.bak"))
	assert.Equal(t, "\t\ttwo\n", read("c.bak"))
	assert.NoFileExists(t, filepath.Join(dir, "b.bak"), "unchanged files keep no backup")

	assert.Len(t, logger.Operations(), 3)
	assert.Contains(t, console.String(), "1 tabs +bak")
	assert.Contains(t, console.String(), "unchanged")
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	dir := createTree(t, map[string]string{"a.c": "\tx\n", "z.c": "\ty\n"})
	ctx := testContext(t)
	logger := log.New(&bytes.Buffer{}, zerolog.Nop())
	rw := rewrite.New(rewrite.Options{})

	files := []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "missing.c"), filepath.Join(dir, "z.c")}
	summary, err := Run(log.NewContext(ctx, logger), rw, files, rewrite.Request{TabWidth: 8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.c")

	assert.Len(t, summary.Files, 1, "only the first file was converted")
	data, err := os.ReadFile(filepath.Join(dir, "z.c"))
	require.NoError(t, err)
	assert.Equal(t, "\ty\n", string(data))
}

func TestSummaryRender(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	summary := &Summary{
		Files: []FileResult{
			{Path: "a.c", Tabs: 2, BackupPath: "a.bak"},
			{Path: "b.c"},
		},
		Tabs: 2,
	}

	var out bytes.Buffer
	require.NoError(t, summary.Render(&out))
	assert.Contains(t, out.String(), "a.c")
	assert.Contains(t, out.String(), "a.bak")
	assert.Contains(t, out.String(), "2 files, 1 changed")
}
