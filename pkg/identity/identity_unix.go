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

//go:build !windows

package identity

import (
	"os"
	"time"
)

// native compares names byte for byte.
type native struct{}

func (native) SameName(a, b string) bool {
	return a == b
}

func (native) Canonical(path string) (string, error) {
	return canonical(path)
}

func (native) AccessTime(fi os.FileInfo) time.Time {
	return accessTime(fi)
}
