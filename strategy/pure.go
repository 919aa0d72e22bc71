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

// NewPureStrategy creates the strategy for receivers that have no roles.
// Its decisions stay valid for any receiver that is pure at call time.
func NewPureStrategy(b apis.Binder) apis.Strategy {
	return &pureStrategy{b: b}
}

type pureStrategy struct {
	b apis.Binder
}

// Ensure pureStrategy implements apis.Strategy.
var _ apis.Strategy = (*pureStrategy)(nil)

// TryResolve handles receiver if it currently has no roles.
func (s *pureStrategy) TryResolve(op *apis.Operation, receiver reflect.Value) (apis.Decision, bool) {
	if !s.b.IsPureObject(receiverOf(receiver)) {
		return apis.Decision{}, false
	}
	b := s.b
	return apis.Decision{
		Kind:   apis.Pure,
		Target: uref.Own(op),
		Guard:  func(rv reflect.Value) bool { return b.IsPureObject(receiverOf(rv)) },
	}, true
}
