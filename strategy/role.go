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
	"dirpx.dev/rolx/utils/identity"
	uref "dirpx.dev/rolx/utils/reflect"
)

// NewRoleStrategy creates the strategy that dispatches through the
// receiver's dispatch chain.
//
// The decision is valid for the very receiver it was built for, as long as
// that receiver's object token has not been replaced.
func NewRoleStrategy(b apis.Binder) apis.Strategy {
	return &roleStrategy{b: b}
}

type roleStrategy struct {
	b apis.Binder
}

// Ensure roleStrategy implements apis.Strategy.
var _ apis.Strategy = (*roleStrategy)(nil)

// TryResolve composes the receiver's current chain. Receivers without
// identity are not handled.
func (s *roleStrategy) TryResolve(op *apis.Operation, receiver reflect.Value) (apis.Decision, bool) {
	player := receiverOf(receiver)
	ref, err := identity.MakeRef(player)
	if err != nil {
		return apis.Decision{}, false
	}
	// Token before chain: a mutation that lands in between leaves the
	// captured token invalid, never a stale chain behind a valid token.
	tok := s.b.ObjectToken(player)
	ctx := s.b.DispatchContext(player)
	return apis.Decision{
		Kind:   apis.RoleAware,
		Target: Compose(op, ctx),
		Guard:  func(rv reflect.Value) bool { return ref.IsValue(rv) && tok.Valid() },
	}, true
}

// Compose builds the target that walks ctx for op.
//
// Every role declaring the override of op, in chain order, is called with a
// proceed function standing for the rest of the walk. Roles without the
// override are skipped. The last proceed calls the sender's own method.
func Compose(op *apis.Operation, ctx apis.DispatchContext) apis.Target {
	var overrides []reflect.Value
	for c := ctx; c != nil && !c.IsEnd(); c = c.Next() {
		if m := uref.OverrideOf(c.Target(), op); m.IsValid() {
			overrides = append(overrides, m)
		}
	}

	next := uref.Own(op)
	for i := len(overrides) - 1; i >= 0; i-- {
		m := overrides[i]
		proceed := reflect.MakeFunc(op.Signature, next)
		next = func(args []reflect.Value) []reflect.Value {
			in := make([]reflect.Value, 0, len(args)+1)
			in = append(in, proceed)
			in = append(in, args...)
			return m.Call(in)
		}
	}
	return next
}
