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

// Package identity provides identity keys and weak references for arbitrary
// pointer values.
//
// A Key is the (address, dynamic type) pair of a pointer. It does not keep
// the pointee alive and costs no allocation to compute, so it is used for
// lock-free lookups on hot paths. A Ref adds a weak pointer to the same
// object: it tells whether the object is still alive and can recover the
// original value while it is. Since the heap never moves objects, a live
// object's Key is stable; once the object was collected its address may be
// reused, which is why every lookup by Key must be confirmed with the Ref
// stored next to it.
//
// Values that can carry identity are non-nil pointers to heap objects of
// non-zero size that are not arrays. Zero-size allocations share a single
// address, so they have no identity of their own.
package identity

import (
	"reflect"
	"unsafe"
	"weak"

	"dirpx.dev/rolx/errors"
)

// Key identifies a live pointer by address and dynamic type.
type Key struct {
	addr uintptr
	typ  reflect.Type
}

// Type returns the dynamic pointer type of the key.
func (k Key) Type() reflect.Type { return k.typ }

// SameAddress reports whether k and o refer to the same memory address,
// regardless of type.
func (k Key) SameAddress(o Key) bool { return k.addr == o.addr }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.typ == nil }

// Check reports why v cannot carry identity, or nil if it can.
func Check(v any) error {
	if v == nil {
		return errors.ErrNilPlayer
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return errors.Shape("non-pointer value", v)
	}
	if rv.IsNil() {
		return errors.Shape("nil pointer", v)
	}
	elem := rv.Type().Elem()
	if elem.Kind() == reflect.Array {
		return errors.Shape("pointer to array", v)
	}
	if elem.Size() == 0 {
		return errors.Shape("pointer to zero-size value", v)
	}
	return nil
}

// KeyOf returns the Key of v. It reports false when v is not a non-nil pointer.
func KeyOf(v any) (Key, bool) {
	if v == nil {
		return Key{}, false
	}
	return KeyOfValue(reflect.ValueOf(v))
}

// KeyOfValue is KeyOf for a reflect.Value. Interface values are unwrapped.
func KeyOfValue(rv reflect.Value) (Key, bool) {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Key{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return Key{}, false
	}
	return Key{addr: uintptr(rv.UnsafePointer()), typ: rv.Type()}, true
}

// Ref is a weak reference to an identity-bearing value.
//
// Refs are comparable: two Refs made from the same live object are equal,
// a Ref made after the object was collected and its address reused is not.
type Ref struct {
	key Key
	wp  weak.Pointer[byte]
}

// MakeRef returns a weak reference to v. It fails with the reason of Check.
//
// v must point into the heap; pointers to global variables cannot be
// referenced weakly.
func MakeRef(v any) (Ref, error) {
	if err := Check(v); err != nil {
		return Ref{}, err
	}
	rv := reflect.ValueOf(v)
	p := rv.UnsafePointer()
	return Ref{
		key: Key{addr: uintptr(p), typ: rv.Type()},
		wp:  weak.Make((*byte)(p)),
	}, nil
}

// Key returns the identity key of the referenced value.
func (r Ref) Key() Key { return r.key }

// Alive reports whether the referenced object has not been collected.
func (r Ref) Alive() bool {
	return r.wp.Value() != nil
}

// Value returns the referenced value with its original dynamic type,
// or nil once it was collected.
func (r Ref) Value() any {
	p := r.wp.Value()
	if p == nil || r.key.typ == nil {
		return nil
	}
	return reflect.NewAt(r.key.typ.Elem(), unsafe.Pointer(p)).Interface()
}

// Is reports whether v is the live object r refers to.
func (r Ref) Is(v any) bool {
	k, ok := KeyOf(v)
	return ok && r.matches(k)
}

// IsValue is Is for a reflect.Value.
func (r Ref) IsValue(rv reflect.Value) bool {
	k, ok := KeyOfValue(rv)
	return ok && r.matches(k)
}

func (r Ref) matches(k Key) bool {
	return k == r.key && r.Alive()
}
