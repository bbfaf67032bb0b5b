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

package tabstop

import (
	"bytes"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		width    int
		want     string
		wantTabs int64
	}{
		{
			name:     "tab_after_one_char",
			content:  "a\tb\n",
			width:    8,
			want:     "a       b\n",
			wantTabs: 1,
		},
		{
			name:     "width_four",
			content:  "ab\tc",
			width:    4,
			want:     "ab  c",
			wantTabs: 1,
		},
		{
			name:     "tab_on_stop_emits_full_width",
			content:  "abcd\tx",
			width:    4,
			want:     "abcd    x",
			wantTabs: 1,
		},
		{
			name:     "newline_resets_column",
			content:  "abc\n\tx",
			width:    4,
			want:     "abc\n    x",
			wantTabs: 1,
		},
		{
			name:     "consecutive_tabs",
			content:  "\t\tx",
			width:    3,
			want:     "      x",
			wantTabs: 2,
		},
		{
			name:     "width_one",
			content:  "a\tb\t\tc",
			width:    1,
			want:     "a b  c",
			wantTabs: 3,
		},
		{
			name:    "no_tabs",
			content: "plain text\nwith lines\n",
			width:   8,
			want:    "plain text\nwith lines\n",
		},
		{
			name:    "empty",
			content: "",
			width:   8,
			want:    "",
		},
		{
			name:     "carriage_return_is_a_column",
			content:  "a\r\tb\r\n",
			width:    4,
			want:     "a\r  b\r\n",
			wantTabs: 1,
		},
		{
			name:     "binary_bytes_pass_through",
			content:  "\x00\xff\t\x0c",
			width:    8,
			want:     "\x00\xff      \x0c",
			wantTabs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			res, err := Expand(&out, strings.NewReader(tt.content), tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, tt.wantTabs, res.Tabs)
			assert.Equal(t, int64(len(tt.content)), res.BytesIn)
			assert.Equal(t, int64(len(tt.want)), res.BytesOut)
			assert.Equal(t, tt.wantTabs > 0, res.Changed())
		})
	}
}

func TestExpandInvalidWidth(t *testing.T) {
	for _, width := range []int{-1, 0, 33, 100} {
		var out bytes.Buffer
		_, err := Expand(&out, strings.NewReader("a\tb"), width)
		require.Error(t, err, "width %d", width)
		assert.True(t, errors.Is(err, ErrInvalidWidth))
		assert.Equal(t, "Tabs < 1 or > 32", err.Error())
		assert.Zero(t, out.Len(), "nothing should be written for width %d", width)
	}
}

func TestTabStopProperty(t *testing.T) {
	// Every tab lands the next byte on a stop and never emits zero spaces.
	for width := MinWidth; width <= MaxWidth; width++ {
		for prefix := 0; prefix < 2*width+1; prefix++ {
			col := prefix + 1
			content := strings.Repeat("x", prefix) + "\t|"
			got, res, err := ExpandBytes([]byte(content), width)
			require.NoError(t, err)

			spaces := len(got) - prefix - 1
			assert.Equal(t, Spaces(col, width), spaces, "width=%d col=%d", width, col)
			assert.Greater(t, spaces, 0)
			assert.Equal(t, 0, (prefix+spaces)%width, "next column must follow a stop")
			assert.Equal(t, int64(1), res.Tabs)
		}
	}
}

func TestIdempotent(t *testing.T) {
	content := []byte("func main() {\n\tif x {\n\t\treturn\t// done\n\t}\n}\n")
	for width := MinWidth; width <= MaxWidth; width++ {
		once, first, err := ExpandBytes(content, width)
		require.NoError(t, err)
		twice, second, err := ExpandBytes(once, width)
		require.NoError(t, err)

		assert.Equal(t, once, twice, "width %d", width)
		assert.Equal(t, int64(5), first.Tabs)
		assert.Zero(t, second.Tabs)
		assert.NotContains(t, string(once), "\t")
	}
}

func TestWriterKeepsColumnAcrossWrites(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, 8)
	require.NoError(t, err)

	for _, chunk := range []string{"ab", "c", "\t", "d\n", "\t", "e"} {
		n, err := w.Write([]byte(chunk))
		require.NoError(t, err)
		assert.Equal(t, len(chunk), n)
	}

	assert.Equal(t, "abc     d\n        e", out.String())
	assert.Equal(t, 10, w.Column())
	assert.Equal(t, int64(2), w.Result().Tabs)
}

func TestExpandOneByteReader(t *testing.T) {
	var out bytes.Buffer
	content := "col1\tcol2\tcol3\nx\ty\n"
	res, err := Expand(&out, iotest.OneByteReader(strings.NewReader(content)), 8)
	require.NoError(t, err)
	assert.Equal(t, "col1    col2    col3\nx       y\n", out.String())
	assert.Equal(t, int64(3), res.Tabs)
}

func TestExpandReadError(t *testing.T) {
	var out bytes.Buffer
	_, err := Expand(&out, iotest.ErrReader(errors.New("disk on fire")), 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("no space left")
}

func TestExpandWriteError(t *testing.T) {
	_, err := Expand(failingWriter{}, strings.NewReader("a\tb"), 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no space left")
}
