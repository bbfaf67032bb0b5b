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

package rewrite

import (
	"fmt"
	"os"

	"gitlab.com/tozd/go/errors"
)

// Exit statuses used by fatal errors.
const (
	ExitUsage = 1 // Invalid configuration, nothing was touched
	ExitFatal = 2 // I/O failure
)

// ❌ Error is a fatal rewrite failure. Msg names the offending file; Err,
// when set, carries the system error whose text is appended to the message.
type Error struct {
	Op   string // Step that failed (open, precheck, temp, backup, unlink, publish, chmod, ...)
	Path string // File the step was working on
	Msg  string // Human readable message
	Err  error  // Underlying cause
	Code int    // Process exit status
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s. %s", e.Msg, systemText(e.Err))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status for this error.
func (e *Error) ExitCode() int {
	if e.Code == 0 {
		return ExitFatal
	}
	return e.Code
}

func fatal(op, path string, err error, format string, args ...any) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
		Code: ExitFatal,
	}
}

// systemText strips the operation and path that os errors prefix to the
// errno text, since our messages already name the file.
func systemText(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err.Error()
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return sysErr.Err.Error()
	}
	return err.Error()
}
