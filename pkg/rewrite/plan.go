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
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/detab/pkg/identity"
)

// StdStream is the path name that selects standard input or output.
const StdStream = "-"

// 📝 Request describes one tab conversion
type Request struct {
	Source      string // Input path; empty or "-" reads standard input
	Destination string // Output path; empty or "-" writes standard output
	SameFile    bool   // Modify Source in place
	TabWidth    int    // Columns between tab stops, 1 to 32
	Append      bool   // Write a form feed before the output
	Backup      bool   // Keep the previous output file as *.bak
	SameTime    bool   // Give the output the input's timestamps even if it changed
	Verbose     bool   // Report the number of tabs removed
}

// 🗺️ Plan is a Request with its output target resolved
type Plan struct {
	Source      string // Input path, empty for standard input
	Destination string // Output path, empty for standard output
	InPlace     bool   // Source and Destination are the same file
	Backup      bool   // The existing Destination is moved to BackupPath
	BackupPath  string
	Staged      bool // Output goes through a temporary file
}

// FromStdin reports whether the input is standard input.
func (p *Plan) FromStdin() bool {
	return p.Source == ""
}

// ToStdout reports whether the output is standard output.
func (p *Plan) ToStdout() bool {
	return p.Destination == ""
}

// 🧭 Resolve decides where the output of req goes. It does not touch the
// file system beyond stat calls.
func Resolve(ctx context.Context, req Request) (*Plan, error) {
	return resolve(ctx, identity.Native(), req)
}

func resolve(ctx context.Context, platform identity.Platform, req Request) (*Plan, error) {
	logger := zerolog.Ctx(ctx)

	plan := &Plan{
		Source:  req.Source,
		InPlace: req.SameFile,
		Backup:  req.Backup,
	}

	if plan.Source == StdStream {
		plan.Source = ""
	}
	if plan.Source == "" {
		// In place is meaningless for a pipe
		plan.InPlace = false
	}

	switch req.Destination {
	case StdStream:
		plan.InPlace = false
	case "":
		if plan.InPlace {
			plan.Destination = plan.Source
		}
	default:
		plan.Destination = req.Destination
		// The in-place flag is ignored, the names decide
		plan.InPlace = plan.Source != "" && identity.SameFileOn(ctx, platform, plan.Source, plan.Destination)
		if plan.Backup && !identity.RegularFile(plan.Destination) {
			logger.Debug().Str("destination", plan.Destination).Msg("nothing to back up")
			plan.Backup = false
		}
	}

	if plan.ToStdout() {
		plan.Backup = false
		return plan, nil
	}

	plan.Staged = plan.InPlace || plan.Backup
	if plan.Backup {
		bak, err := BackupPath(plan.Destination)
		if err != nil {
			return nil, err
		}
		plan.BackupPath = bak
	}

	logger.Debug().
		Str("source", plan.Source).
		Str("destination", plan.Destination).
		Bool("in_place", plan.InPlace).
		Bool("backup", plan.Backup).
		Bool("staged", plan.Staged).
		Msg("resolved output target")

	return plan, nil
}
