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

var (
	stringType = reflect.TypeFor[string]()
	uint64Type = reflect.TypeFor[uint64]()
	boolType   = reflect.TypeFor[bool]()
)

// NewBaselineStrategy creates the strategy for the operations roles cannot
// intercept: String() string, GoString() string, Hash() uint64 and
// Equal(x) bool. They always dispatch to the sender's own method.
func NewBaselineStrategy() apis.Strategy {
	return baselineStrategy{}
}

type baselineStrategy struct{}

// Ensure baselineStrategy implements apis.Strategy.
var _ apis.Strategy = baselineStrategy{}

// TryResolve handles op if it is a baseline operation.
func (baselineStrategy) TryResolve(op *apis.Operation, _ reflect.Value) (apis.Decision, bool) {
	if !IsBaseline(op) {
		return apis.Decision{}, false
	}
	return apis.Decision{
		Kind:   apis.Baseline,
		Target: uref.Own(op),
		Guard:  always,
	}, true
}

// IsBaseline reports whether op is one of the fixed baseline operations.
func IsBaseline(op *apis.Operation) bool {
	sig := op.Signature
	args := sig.NumIn() - 1
	if sig.NumOut() != 1 {
		return false
	}
	out := sig.Out(0)
	switch op.Name {
	case "String", "GoString":
		return args == 0 && out == stringType
	case "Hash":
		return args == 0 && out == uint64Type
	case "Equal":
		return args == 1 && out == boolType
	default:
		return false
	}
}

func always(reflect.Value) bool { return true }
