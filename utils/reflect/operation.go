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

package reflect

import (
	"reflect"

	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/errors"
)

// LookupOperation validates a call request and returns its Operation.
//
// sig must be a non-variadic func type whose last parameter (the sender)
// declares method name with sig's remaining parameters and sig's results.
// Any violation yields a *errors.NoSuchOperationError.
func LookupOperation(name string, sig reflect.Type) (apis.Operation, error) {
	if sig == nil || sig.Kind() != reflect.Func {
		return apis.Operation{}, errors.NoSuchOperation(name, sig, errors.ErrNotFunc)
	}
	if sig.IsVariadic() {
		return apis.Operation{}, errors.NoSuchOperation(name, sig, errors.ErrVariadicSignature)
	}
	n := sig.NumIn()
	if n == 0 {
		return apis.Operation{}, errors.NoSuchOperation(name, sig, errors.ErrNoSender)
	}

	recv := sig.In(n - 1)
	m, ok := recv.MethodByName(name)
	if !ok {
		return apis.Operation{}, errors.NoSuchOperation(name, sig, errors.ErrMissingMethod)
	}

	// Method types of concrete types carry the receiver as first parameter.
	mt := m.Type
	offset := 0
	if recv.Kind() != reflect.Interface {
		offset = 1
	}
	if mt.NumIn()-offset != n-1 || mt.NumOut() != sig.NumOut() {
		return apis.Operation{}, errors.NoSuchOperation(name, sig, errors.ErrSignatureMismatch)
	}
	for i := 0; i < n-1; i++ {
		if mt.In(i+offset) != sig.In(i) {
			return apis.Operation{}, errors.NoSuchOperation(name, sig, errors.ErrSignatureMismatch)
		}
	}
	for i := 0; i < sig.NumOut(); i++ {
		if mt.Out(i) != sig.Out(i) {
			return apis.Operation{}, errors.NoSuchOperation(name, sig, errors.ErrSignatureMismatch)
		}
	}

	return apis.Operation{
		Name:      name,
		Signature: sig,
		Receiver:  recv,
		Method:    m.Index,
		Variadic:  mt.IsVariadic(),
		Override:  OverrideType(sig),
	}, nil
}

// OverrideType returns the method type a role declares to override an
// operation of signature sig: func(proceed sig, <sig params>...) <sig results>.
func OverrideType(sig reflect.Type) reflect.Type {
	in := make([]reflect.Type, 0, sig.NumIn()+1)
	in = append(in, sig)
	for i := 0; i < sig.NumIn(); i++ {
		in = append(in, sig.In(i))
	}
	out := make([]reflect.Type, sig.NumOut())
	for i := range out {
		out[i] = sig.Out(i)
	}
	return reflect.FuncOf(in, out, false)
}

// Own returns the target invoking the sender's own method for op.
func Own(op *apis.Operation) apis.Target {
	idx, variadic := op.Method, op.Variadic
	return func(args []reflect.Value) []reflect.Value {
		last := len(args) - 1
		m := args[last].Method(idx)
		if variadic {
			return m.CallSlice(args[:last])
		}
		return m.Call(args[:last])
	}
}

// OverrideOf returns role's bound override method for op, or an invalid
// Value when role does not declare one with the exact override type.
func OverrideOf(role any, op *apis.Operation) reflect.Value {
	m := reflect.ValueOf(role).MethodByName(op.Name)
	if !m.IsValid() || m.Type() != op.Override {
		return reflect.Value{}
	}
	return m
}
