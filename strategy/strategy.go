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

// Package strategy holds the resolution steps of the adaptive resolver.
//
// A resolver runs Defaults in order: Direct handles every call while the
// binder was never activated, Pure handles receivers without roles, Baseline
// handles operations that roles can never intercept, and RoleAware composes
// the receiver's dispatch chain. Each step returns a Decision whose Guard
// tells the call site when the cached decision has to be recomputed.
package strategy

import (
	"reflect"

	"dirpx.dev/rolx/apis"
)

// Defaults returns the standard strategy order for b.
func Defaults(b apis.Binder) []apis.Strategy {
	return []apis.Strategy{
		NewDirectStrategy(b),
		NewPureStrategy(b),
		NewBaselineStrategy(),
		NewRoleStrategy(b),
	}
}

// receiverOf returns the sender argument as an interface value.
// Nil interfaces and invalid values yield nil.
func receiverOf(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.CanInterface() {
		return nil
	}
	return rv.Interface()
}
