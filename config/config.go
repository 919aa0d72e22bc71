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
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"dirpx.dev/rolx/apis"
)

const (
	// DefaultUnstableThreshold represents the default for UnstableThreshold.
	// A call site that saw more distinct decisions than this is megamorphic
	// in practice, and caching stops paying off.
	DefaultUnstableThreshold = 8
	// DefaultMapKind represents the default for MapKind.
	DefaultMapKind = apis.MapSync
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Normalize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		UnstableThreshold: DefaultUnstableThreshold,
		MapKind:           DefaultMapKind,
	}
}

// Normalize replaces out-of-range values of cfg with their defaults.
// A zero Config normalizes to DefaultConfig.
func Normalize(cfg apis.Config) apis.Config {
	if cfg.UnstableThreshold < 1 {
		cfg.UnstableThreshold = DefaultUnstableThreshold
	}
	switch cfg.MapKind {
	case apis.MapSync, apis.MapSnapshot:
	default:
		cfg.MapKind = DefaultMapKind
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithUnstableThreshold sets the UnstableThreshold option.
// A value below one resets to the default.
func WithUnstableThreshold(n int) Option {
	return func(c *apis.Config) {
		if n < 1 {
			c.UnstableThreshold = DefaultUnstableThreshold
			return
		}
		c.UnstableThreshold = n
	}
}

// WithMapKind sets the MapKind option.
func WithMapKind(kind apis.MapKind) Option {
	return func(c *apis.Config) {
		c.MapKind = kind
	}
}

// WithLogger sets the Logger option.
func WithLogger(l *slog.Logger) Option {
	return func(c *apis.Config) {
		c.Logger = l
	}
}

// WithMeterProvider sets the MeterProvider option.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *apis.Config) {
		c.MeterProvider = mp
	}
}
