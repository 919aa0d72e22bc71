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

package apis

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// Config carries the knobs of a binder and its resolver.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// UnstableThreshold is the number of decisions a call site may cache
	// before it gives up caching and resolves on every call.
	UnstableThreshold int

	// MapKind selects the binder's record map implementation.
	// Exposed for diagnostics and benchmarking only.
	MapKind MapKind

	// Logger receives structured logs. Nil means discard.
	Logger *slog.Logger

	// MeterProvider supplies instruments. Nil means the otel global provider.
	MeterProvider metric.MeterProvider
}
