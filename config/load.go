/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/telemetry"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "ROLX_"

// File is the externally loadable part of the configuration.
type File struct {
	UnstableThreshold int     `koanf:"unstable_threshold" validate:"gte=1"`
	MapKind           string  `koanf:"map_kind" validate:"oneof=sync snapshot"`
	Log               LogFile `koanf:"log"`
}

// LogFile configures the logger Load builds.
type LogFile struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=text json"` // json, text
}

var validate = validator.New()

// Load reads the configuration from defaults, the YAML file at path (when
// path is not empty) and ROLX_* environment variables, in that order.
//
// ROLX_UNSTABLE_THRESHOLD maps to unstable_threshold and ROLX_LOG_LEVEL to
// log.level. The logger is written to stderr. No meter provider is set.
func Load(path string) (apis.Config, error) {
	f, err := LoadFile(path)
	if err != nil {
		return apis.Config{}, err
	}
	return f.Config()
}

// LoadFile is Load without the conversion to apis.Config.
func LoadFile(path string) (File, error) {
	k := koanf.New(".")

	// Defaults
	_ = k.Set("unstable_threshold", DefaultUnstableThreshold)
	_ = k.Set("map_kind", DefaultMapKind.String())
	_ = k.Set("log.level", "info")
	_ = k.Set("log.format", "text")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return File{}, fmt.Errorf("rolx: load config %s: %w", path, err)
		}
	}

	// 2. Load from ENV (ROLX_MAP_KIND -> map_kind, ROLX_LOG_LEVEL -> log.level)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return File{}, fmt.Errorf("rolx: load environment: %w", err)
	}

	var f File
	if err := k.Unmarshal("", &f); err != nil {
		return File{}, fmt.Errorf("rolx: decode config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// envKey maps an environment variable name to its koanf key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// Validate checks f's fields.
func (f File) Validate() error {
	f.MapKind = strings.ToLower(strings.TrimSpace(f.MapKind))
	f.Log.Level = strings.ToLower(strings.TrimSpace(f.Log.Level))
	f.Log.Format = strings.ToLower(strings.TrimSpace(f.Log.Format))
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("rolx: invalid config: %w", err)
	}
	return nil
}

// Config converts f to an apis.Config.
func (f File) Config() (apis.Config, error) {
	kind, err := apis.ParseMapKind(f.MapKind)
	if err != nil {
		return apis.Config{}, err
	}
	return NewConfig(
		WithUnstableThreshold(f.UnstableThreshold),
		WithMapKind(kind),
		WithLogger(telemetry.NewLogger(os.Stderr, f.Log.Level, f.Log.Format)),
	), nil
}
