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

// Package identity decides whether two path names refer to the same file.
//
// The checks are ordered from cheapest to most expensive so that the common
// cases never have to resolve symbolic links:
//
//  1. identical strings are the same file
//  2. one existing and one missing path are different files
//  3. two missing paths are the same when their names compare equal
//  4. existing paths with different size, mode or time are different files
//  5. otherwise the canonical (absolute, link-resolved) names are compared
//
// Name comparison is case-sensitive on Unix and case-insensitive on Windows;
// see [Platform].
package identity

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🖥️ Platform is the OS-specific part of path handling
type Platform interface {
	// SameName compares two path names the way the file system does
	SameName(a, b string) bool
	// Canonical returns the absolute, symlink-resolved form of path
	Canonical(path string) (string, error)
	// AccessTime returns the last access time recorded in fi
	AccessTime(fi os.FileInfo) time.Time
}

// Native returns the Platform for the running OS.
func Native() Platform {
	return native{}
}

// canonical is shared by every platform implementation.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolving absolute path of %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Errorf("resolving links of %s: %w", abs, err)
	}
	return resolved, nil
}

// 🔍 SameFile reports whether a and b name the same underlying file, using
// the native platform rules.
func SameFile(ctx context.Context, a, b string) bool {
	return SameFileOn(ctx, Native(), a, b)
}

// SameFileOn is SameFile with an explicit platform.
func SameFileOn(ctx context.Context, p Platform, a, b string) bool {
	same, reason := compare(p, a, b)
	zerolog.Ctx(ctx).Debug().
		Str("a", a).
		Str("b", b).
		Bool("same", same).
		Str("reason", reason).
		Msg("comparing file identity")
	return same
}

func compare(p Platform, a, b string) (bool, string) {
	if a == b {
		return true, "exact same pathnames"
	}

	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	existsA, existsB := errA == nil, errB == nil

	if existsA != existsB {
		return false, "one exists and the other does not"
	}
	if !existsA && p.SameName(a, b) {
		return true, "they will be the same"
	}
	if existsA && !sameAttributes(fa, fb) {
		return false, "different sizes, times or modes"
	}

	// Names differ but everything we can cheaply see matches
	ca, err := p.Canonical(a)
	if err != nil {
		return false, "cannot canonicalize first path"
	}
	cb, err := p.Canonical(b)
	if err != nil {
		return false, "cannot canonicalize second path"
	}
	if p.SameName(ca, cb) {
		return true, "same canonical name"
	}
	return false, "different canonical names"
}

func sameAttributes(a, b os.FileInfo) bool {
	return a.Size() == b.Size() &&
		a.Mode() == b.Mode() &&
		a.ModTime().Equal(b.ModTime())
}

// 📄 RegularFile reports whether path exists and, after following links,
// is a regular file.
func RegularFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}
