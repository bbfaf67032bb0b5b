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
	"path/filepath"
	"strings"
)

// BackupExt is the extension given to backups of replaced files.
const BackupExt = ".bak"

// 💾 BackupPath returns the backup name for path: the same directory and
// base name, with the last extension replaced by .bak. A path that already
// carries a .bak extension (in any letter case) cannot be backed up, since
// its backup would overwrite it.
func BackupPath(path string) (string, error) {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	if strings.EqualFold(ext, BackupExt) {
		return "", fatal("backup", path, nil, "Can't backup file %s", path)
	}
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+BackupExt), nil
}
