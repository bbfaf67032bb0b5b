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
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🏁 finalize moves the temporary output into place
func (r *Rewriter) finalize(ctx context.Context, plan *Plan, tmpPath string, report *Report) error {
	logger := zerolog.Ctx(ctx)

	if plan.InPlace && !report.Changed() {
		logger.Debug().Str("temp", tmpPath).Msg("nothing changed, removing temp file")
		if err := os.Remove(tmpPath); err != nil {
			return fatal("unlink", tmpPath, err, "Can't delete file %s", tmpPath)
		}
		report.Discarded = true
		return nil
	}

	if plan.Backup {
		logger.Debug().Str("path", plan.BackupPath).Msg("unlink")
		if err := os.Remove(plan.BackupPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fatal("unlink", plan.BackupPath, err, "Can't delete file %s", plan.BackupPath)
		}
		logger.Debug().Str("from", plan.Destination).Str("to", plan.BackupPath).Msg("rename")
		if err := os.Rename(plan.Destination, plan.BackupPath); err != nil {
			return fatal("backup", plan.Destination, err, "Can't backup %s", plan.Destination)
		}
	} else {
		// In place without a backup, the original goes away
		logger.Debug().Str("path", plan.Source).Msg("unlink")
		if err := os.Remove(plan.Source); err != nil {
			return fatal("unlink", plan.Source, err, "Can't delete file %s", plan.Source)
		}
	}

	logger.Debug().Str("from", tmpPath).Str("to", plan.Destination).Msg("rename")
	if err := os.Rename(tmpPath, plan.Destination); err != nil {
		return fatal("publish", plan.Destination, err, "Can't create %s", plan.Destination)
	}
	report.Published = true
	return nil
}

// 🕰️ copyAttributes gives path the permission bits of the source and,
// when keepTime is set, its access and modification times.
func (r *Rewriter) copyAttributes(ctx context.Context, path string, src os.FileInfo, keepTime bool, report *Report) error {
	logger := zerolog.Ctx(ctx)

	if err := chmod(ctx, path, src.Mode().Perm()); err != nil {
		return err
	}

	if !keepTime {
		return nil
	}

	atime := r.platform.AccessTime(src)
	logger.Debug().Str("path", path).Time("atime", atime).Time("mtime", src.ModTime()).Msg("utime")
	if err := os.Chtimes(path, atime, src.ModTime()); err != nil {
		return fatal("utime", path, err, "Can't set the time of %s", path)
	}
	report.TimeKept = true
	return nil
}

func chmod(ctx context.Context, path string, mode os.FileMode) error {
	zerolog.Ctx(ctx).Debug().Str("path", path).Stringer("mode", mode).Msg("chmod")
	if err := os.Chmod(path, mode); err != nil {
		return fatal("chmod", path, err, "Can't set the mode of %s", path)
	}
	return nil
}
