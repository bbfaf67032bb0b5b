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

	"github.com/walteh/detab/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one detab command line and returns the process exit status
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	h := &handler{stdin: stdin, stdout: stdout, stderr: stderr}
	cmd := newRootCmd(h)
	cmd.SetArgs(normalizeArgs(args, stderr))

	if err := cmd.ExecuteContext(ctx); err != nil {
		return reportError(stderr, err)
	}
	return 0
}

// 🚨 reportError prints err the way detab always has and picks the exit
// status. Anything that is not a rewrite usage error is fatal.
func reportError(w io.Writer, err error) int {
	var rerr *rewrite.Error
	if errors.As(err, &rerr) && rerr.ExitCode() == rewrite.ExitUsage {
		fmt.Fprintln(w, rerr.Error())
		return rewrite.ExitUsage
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	if rerr != nil {
		return rerr.ExitCode()
	}
	return rewrite.ExitFatal
}
