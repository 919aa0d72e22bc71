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

package strategy

import (
	"reflect"

	"dirpx.dev/rolx/apis"
	uref "dirpx.dev/rolx/utils/reflect"
)

// NewDirectStrategy creates the strategy of the initial state.
//
// As long as the binder never bound anything, every call goes straight to
// the sender's own method. The decision is guarded by the sender type's
// token, which the first Bind of a matching player replaces.
func NewDirectStrategy(b apis.Binder) apis.Strategy {
	return &directStrategy{b: b}
}

type directStrategy struct {
	b apis.Binder
}

// Ensure directStrategy implements apis.Strategy.
var _ apis.Strategy = (*directStrategy)(nil)

// TryResolve returns a direct decision unless the binder is activated.
func (s *directStrategy) TryResolve(op *apis.Operation, _ reflect.Value) (apis.Decision, bool) {
	// Capture the token first. Bind flips the activated flag before it
	// replaces tokens, so a token captured before a false Activated() is
	// invalidated by every Bind that follows.
	tok := s.b.TypeToken(op.Receiver)
	if s.b.Activated() {
		return apis.Decision{}, false
	}
	return apis.Decision{
		Kind:   apis.Direct,
		Target: uref.Own(op),
		Guard:  func(reflect.Value) bool { return tok.Valid() },
	}, true
}
