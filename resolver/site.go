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

package resolver

import (
	"reflect"
	"sync/atomic"

	"dirpx.dev/rolx/apis"
)

// Site is one call site: a validated operation plus its cached decision.
type Site struct {
	op apis.Operation
	r  *Resolver
	fn reflect.Value

	cached      atomic.Pointer[apis.Decision]
	fills       atomic.Int64
	resolutions atomic.Int64
	unstable    atomic.Bool
}

// Ensure Site implements apis.CallSite.
var _ apis.CallSite = (*Site)(nil)

// Name returns the operation name.
func (s *Site) Name() string { return s.op.Name }

// Signature returns the request signature.
func (s *Site) Signature() reflect.Type { return s.op.Signature }

// Operation returns the validated operation.
func (s *Site) Operation() apis.Operation { return s.op }

// Func returns a callable of exactly Signature() that calls Invoke.
func (s *Site) Func() reflect.Value { return s.fn }

// Stable reports whether s still caches decisions.
func (s *Site) Stable() bool { return !s.unstable.Load() }

// Resolutions returns how many decisions s computed so far.
func (s *Site) Resolutions() int { return int(s.resolutions.Load()) }

// Invoke dispatches a call. args must match Signature(); the last one is
// the sender.
func (s *Site) Invoke(args []reflect.Value) []reflect.Value {
	recv := args[len(args)-1]
	if d := s.cached.Load(); d != nil && d.Guard(recv) {
		return d.Target(args)
	}
	d := s.resolve(recv)
	return d.Target(args)
}

// resolve computes a decision for recv and caches it while s is stable.
func (s *Site) resolve(recv reflect.Value) apis.Decision {
	d := s.r.decide(&s.op, recv)
	s.resolutions.Add(1)
	s.r.metrics.RecordResolution(s.op.Name, d.Kind.String())

	if d.Kind == apis.Uncached || d.Guard == nil || s.unstable.Load() {
		return d
	}
	if s.fills.Add(1) > int64(s.r.threshold) {
		if s.unstable.CompareAndSwap(false, true) {
			s.cached.Store(nil)
			s.r.metrics.RecordUnstable(s.op.Name)
			s.r.logger.Info("call site became unstable",
				"operation", s.op.Name,
				"signature", s.op.Signature.String(),
				"threshold", s.r.threshold,
			)
		}
		return d
	}
	s.cached.Store(&d)
	if s.unstable.Load() {
		s.cached.Store(nil)
	}
	return d
}
