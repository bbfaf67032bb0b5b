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

package config

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/detab/pkg/tabstop"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte, filename string) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// DefaultNames are the defaults files looked for by Discover, in order.
var DefaultNames = []string{
	".detabrc.yaml",
	".detabrc.yml",
	".detabrc.json",
	".detabrc.hcl",
}

// 📚 Config holds defaults that flags may override. Zero values mean "not set".
type Config struct {
	TabWidth int      `json:"tab_width,omitempty" yaml:"tab_width,omitempty" hcl:"tab_width,optional"`
	Backup   bool     `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`
	SameTime bool     `json:"same_time,omitempty" yaml:"same_time,omitempty" hcl:"same_time,optional"`
	Verbose  bool     `json:"verbose,omitempty" yaml:"verbose,omitempty" hcl:"verbose,optional"`
	Ignore   []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`

	location string
}

// Location returns the file the config was loaded from, empty for defaults.
func (cfg *Config) Location() string {
	return cfg.location
}

// Width returns the configured tab width, or fallback when none is set.
func (cfg *Config) Width(fallback int) int {
	if cfg == nil || cfg.TabWidth == 0 {
		return fallback
	}
	return cfg.TabWidth
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.TabWidth != 0 {
		if err := tabstop.ValidateWidth(cfg.TabWidth); err != nil {
			return errors.Errorf("tab_width %d: %w", cfg.TabWidth, err)
		}
	}
	for i, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("ignore[%d]: invalid pattern %q", i, pattern)
		}
	}
	return nil
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	cfg, err := p.Parse(ctx, data, path)
	if err != nil {
		return nil, errors.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config %s: %w", path, err)
	}

	cfg.location = path
	return cfg, nil
}

// 🔎 Discover loads the first of DefaultNames found in dir. Without one it
// returns an empty Config.
func Discover(ctx context.Context, dir string) (*Config, error) {
	for _, name := range DefaultNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Errorf("checking %s: %w", path, err)
		}
		return Load(ctx, path)
	}

	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no defaults file found")
	return &Config{}, nil
}

func hasExt(filename string, exts ...string) bool {
	lower := strings.ToLower(strings.TrimSpace(filename))
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
