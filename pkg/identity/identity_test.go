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

package identity

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func TestSameFile(t *testing.T) {
	ctx := testContext(t)

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) (string, string)
		want  bool
	}{
		{
			name: "identical_strings",
			setup: func(t *testing.T, dir string) (string, string) {
				return "whatever.txt", "whatever.txt"
			},
			want: true,
		},
		{
			name: "relative_and_absolute",
			setup: func(t *testing.T, dir string) (string, string) {
				path := filepath.Join(dir, "file.txt")
				require.NoError(t, os.WriteFile(path, []byte("x\ty\n"), 0644))
				wd, err := os.Getwd()
				require.NoError(t, err)
				rel, err := filepath.Rel(wd, path)
				require.NoError(t, err)
				return rel, path
			},
			want: true,
		},
		{
			name: "dot_segments",
			setup: func(t *testing.T, dir string) (string, string) {
				require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
				path := filepath.Join(dir, "file.txt")
				require.NoError(t, os.WriteFile(path, []byte("content"), 0644))
				return path, filepath.Join(dir, "sub", "..", "file.txt")
			},
			want: true,
		},
		{
			name: "different_content",
			setup: func(t *testing.T, dir string) (string, string) {
				a := filepath.Join(dir, "a.txt")
				b := filepath.Join(dir, "b.txt")
				require.NoError(t, os.WriteFile(a, []byte("short"), 0644))
				require.NoError(t, os.WriteFile(b, []byte("much longer"), 0644))
				return a, b
			},
			want: false,
		},
		{
			name: "identical_twins",
			setup: func(t *testing.T, dir string) (string, string) {
				a := filepath.Join(dir, "a.txt")
				b := filepath.Join(dir, "b.txt")
				require.NoError(t, os.WriteFile(a, []byte("same"), 0644))
				require.NoError(t, os.WriteFile(b, []byte("same"), 0644))
				stamp := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
				require.NoError(t, os.Chtimes(a, stamp, stamp))
				require.NoError(t, os.Chtimes(b, stamp, stamp))
				return a, b
			},
			want: false,
		},
		{
			name: "one_missing",
			setup: func(t *testing.T, dir string) (string, string) {
				a := filepath.Join(dir, "a.txt")
				require.NoError(t, os.WriteFile(a, []byte("here"), 0644))
				return a, filepath.Join(dir, "missing.txt")
			},
			want: false,
		},
		{
			name: "both_missing_different_names",
			setup: func(t *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "x.txt"), filepath.Join(dir, "y.txt")
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := tt.setup(t, t.TempDir())
			assert.Equal(t, tt.want, SameFile(ctx, a, b))
			assert.Equal(t, tt.want, SameFile(ctx, b, a), "comparison should be symmetric")
		})
	}
}

func TestSameFileSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated rights on windows")
	}
	ctx := testContext(t)
	dir := t.TempDir()

	target := filepath.Join(dir, "target.txt")
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.WriteFile(target, []byte("a\tb\n"), 0644))
	require.NoError(t, os.Symlink(target, link))

	assert.True(t, SameFile(ctx, link, target), "link should resolve to its target")
}

// foldingPlatform behaves like a case-insensitive file system
type foldingPlatform struct{ native }

func (foldingPlatform) SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

func TestSameFileOnPlatform(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()

	upper := filepath.Join(dir, "README.TXT")
	lowerName := filepath.Join(dir, "readme.txt")

	assert.True(t, SameFileOn(ctx, foldingPlatform{}, upper, lowerName), "missing files with folded names should match")
	if runtime.GOOS != "windows" {
		assert.False(t, SameFileOn(ctx, Native(), upper, lowerName), "missing files with different case should not match on unix")
	}
}

func TestRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.True(t, RegularFile(file))
	assert.False(t, RegularFile(dir), "directories are not regular files")
	assert.False(t, RegularFile(filepath.Join(dir, "nope")))
}

func TestAccessTime(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	atime := time.Date(2019, 5, 6, 7, 8, 9, 0, time.UTC)
	mtime := time.Date(2021, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, os.Chtimes(file, atime, mtime))

	fi, err := os.Stat(file)
	require.NoError(t, err)

	got := Native().AccessTime(fi)
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		assert.True(t, atime.Equal(got), "access time should be %v, got %v", atime, got)
	} else {
		assert.True(t, mtime.Equal(got))
	}
}
