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

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of every rolx instrument.
const MeterName = "dirpx.dev/rolx"

// Metrics holds the counters of a binder and its resolver.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	binds       metric.Int64Counter
	unbinds     metric.Int64Counter
	replaced    metric.Int64Counter
	resolutions metric.Int64Counter
	unstable    metric.Int64Counter
}

// NewMetrics creates the instruments on mp, or on the otel global provider
// when mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(MeterName)

	binds, err := meter.Int64Counter(
		"rolx.binder.binds",
		metric.WithDescription("Successful Bind calls"),
	)
	if err != nil {
		return nil, err
	}

	unbinds, err := meter.Int64Counter(
		"rolx.binder.unbinds",
		metric.WithDescription("Unbind calls that removed a role"),
	)
	if err != nil {
		return nil, err
	}

	replaced, err := meter.Int64Counter(
		"rolx.binder.tokens.replaced",
		metric.WithDescription("Invalidation tokens replaced by binding changes"),
	)
	if err != nil {
		return nil, err
	}

	resolutions, err := meter.Int64Counter(
		"rolx.resolver.resolutions",
		metric.WithDescription("Dispatch decisions computed by call sites, by decision kind"),
	)
	if err != nil {
		return nil, err
	}

	unstable, err := meter.Int64Counter(
		"rolx.resolver.sites.unstable",
		metric.WithDescription("Call sites that stopped caching decisions"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		binds:       binds,
		unbinds:     unbinds,
		replaced:    replaced,
		resolutions: resolutions,
		unstable:    unstable,
	}, nil
}

// MustMetrics is NewMetrics falling back to a nil (no-op) recorder on error.
func MustMetrics(mp metric.MeterProvider) *Metrics {
	m, err := NewMetrics(mp)
	if err != nil {
		return nil
	}
	return m
}

// RecordBind counts one bind and the tokens it replaced.
func (m *Metrics) RecordBind(binderID string, tokens int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("binder.id", binderID))
	m.binds.Add(context.Background(), 1, attrs)
	m.replaced.Add(context.Background(), int64(tokens), attrs)
}

// RecordUnbind counts one effective unbind and the tokens it replaced.
func (m *Metrics) RecordUnbind(binderID string, tokens int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("binder.id", binderID))
	m.unbinds.Add(context.Background(), 1, attrs)
	m.replaced.Add(context.Background(), int64(tokens), attrs)
}

// RecordResolution counts one computed decision.
func (m *Metrics) RecordResolution(op, decision string) {
	if m == nil {
		return
	}
	m.resolutions.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("decision", decision),
		),
	)
}

// RecordUnstable counts a call site that gave up caching.
func (m *Metrics) RecordUnstable(op string) {
	if m == nil {
		return
	}
	m.unstable.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("operation", op)),
	)
}
