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

// Package tabstop expands tab characters into spaces using fixed column stops.
package tabstop

import (
	"bufio"
	"bytes"
	"io"

	"gitlab.com/tozd/go/errors"
)

const (
	MinWidth     = 1
	MaxWidth     = 32
	DefaultWidth = 8
)

// ErrInvalidWidth is returned for tab widths outside [MinWidth, MaxWidth].
var ErrInvalidWidth = errors.Base("Tabs < 1 or > 32")

// 📏 ValidateWidth checks that n columns is a usable tab stop distance
func ValidateWidth(n int) error {
	if n < MinWidth || n > MaxWidth {
		return errors.WithStack(ErrInvalidWidth)
	}
	return nil
}

// 📐 Spaces returns how many spaces a tab found at the 1-based column col
// expands to.
func Spaces(col, width int) int {
	return width - ((col - 1) % width)
}

// 📊 Result summarizes an expansion
type Result struct {
	Tabs     int64 // Number of tab characters converted
	BytesIn  int64 // Bytes consumed from the source
	BytesOut int64 // Bytes handed to the destination
}

// Changed reports whether at least one tab was converted.
func (r Result) Changed() bool {
	return r.Tabs > 0
}

// 🔄 Writer converts tabs to spaces on the fly. The column counter survives
// across Write calls, so input may be split at any byte boundary.
type Writer struct {
	w     io.Writer
	width int
	col   int
	res   Result
	buf   []byte
}

// 🏭 NewWriter wraps w with a tab expander using the given stop width
func NewWriter(w io.Writer, width int) (*Writer, error) {
	if err := ValidateWidth(width); err != nil {
		return nil, err
	}
	return &Writer{
		w:     w,
		width: width,
		col:   1,
	}, nil
}

// Write expands p and writes the result to the underlying writer.
func (e *Writer) Write(p []byte) (int, error) {
	e.buf = e.buf[:0]
	for _, c := range p {
		switch c {
		case '\t':
			for {
				e.buf = append(e.buf, ' ')
				e.col++
				if (e.col-1)%e.width == 0 {
					break
				}
			}
			e.res.Tabs++
		case '\n':
			e.buf = append(e.buf, c)
			e.col = 1
		default:
			e.buf = append(e.buf, c)
			e.col++
		}
	}
	e.res.BytesIn += int64(len(p))

	n, err := e.w.Write(e.buf)
	e.res.BytesOut += int64(n)
	if err != nil {
		return 0, err
	}
	if n != len(e.buf) {
		return 0, io.ErrShortWrite
	}
	return len(p), nil
}

// Column returns the 1-based column the next byte will land in.
func (e *Writer) Column() int {
	return e.col
}

// Result returns the counters accumulated so far.
func (e *Writer) Result() Result {
	return e.res
}

// 📋 Expand copies src to dst, converting every tab along the way
func Expand(dst io.Writer, src io.Reader, width int) (Result, error) {
	bw := bufio.NewWriter(dst)
	ew, err := NewWriter(bw, width)
	if err != nil {
		return Result{}, err
	}

	if _, err := io.Copy(ew, src); err != nil {
		return ew.Result(), errors.Errorf("expanding tabs: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return ew.Result(), errors.Errorf("flushing output: %w", err)
	}
	return ew.Result(), nil
}

// ExpandBytes is Expand over an in-memory buffer.
func ExpandBytes(content []byte, width int) ([]byte, Result, error) {
	var out bytes.Buffer
	out.Grow(len(content))
	res, err := Expand(&out, bytes.NewReader(content), width)
	if err != nil {
		return nil, res, err
	}
	return out.Bytes(), res, nil
}
