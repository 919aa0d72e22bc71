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
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// anyType is the universal root: every type satisfies it.
var anyType = reflect.TypeFor[any]()

// Index memoizes, per runtime type, the closure of static types a value of
// that type satisfies.
//
// Go has no declared supertypes besides interfaces, and the set of
// interfaces a type implements is open. The index therefore only tracks
// interfaces that were registered with it (in practice: every interface a
// call site or a token was ever keyed by). For a type T the closure is
//
//	{T} ∪ {registered interfaces T implements} ∪ {any}
//
// Each closure is immutable. When new interfaces are registered after a
// closure was computed it is extended, never recomputed, on next access.
type Index struct {
	// mu serializes registration.
	mu sync.Mutex
	// known holds registered interfaces for lock-free duplicate checks.
	known sync.Map // reflect.Type -> struct{}
	// ifaces is the append-only list of registered interfaces.
	ifaces atomic.Pointer[[]reflect.Type]
	// memo maps a type to its latest *closure.
	memo sync.Map
	// group deduplicates concurrent first computations per type.
	group singleflight.Group
}

// closure is the supertype set of typ computed against the first epoch
// registered interfaces.
type closure struct {
	typ   reflect.Type
	epoch int
	types []reflect.Type
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	x := &Index{}
	empty := make([]reflect.Type, 0)
	x.ifaces.Store(&empty)
	return x
}

// Register makes interface type t part of future closures.
// Non-interface types and the root type are ignored. Register is idempotent.
func (x *Index) Register(t reflect.Type) {
	if t == nil || t.Kind() != reflect.Interface || t == anyType {
		return
	}
	if _, ok := x.known.Load(t); ok {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.known.Load(t); ok {
		return
	}
	cur := *x.ifaces.Load()
	next := make([]reflect.Type, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, t)
	x.ifaces.Store(&next)
	x.known.Store(t, struct{}{})
}

// Registered returns the registered interfaces in registration order.
func (x *Index) Registered() []reflect.Type {
	cur := *x.ifaces.Load()
	out := make([]reflect.Type, len(cur))
	copy(out, cur)
	return out
}

// Supertypes returns the closure of t. The returned slice is shared and
// must not be modified. A nil type has no supertypes.
func (x *Index) Supertypes(t reflect.Type) []reflect.Type {
	if t == nil {
		return nil
	}
	ifs := *x.ifaces.Load()

	if v, ok := x.memo.Load(t); ok {
		return x.upTo(v.(*closure), ifs)
	}

	v, _, _ := x.group.Do(groupKey(t), func() (any, error) {
		if v, ok := x.memo.Load(t); ok {
			return v, nil
		}
		return x.extend(&closure{typ: t, types: base(t)}, ifs), nil
	})
	c := v.(*closure)
	if c.typ != t {
		// Two distinct types shared a group key.
		return x.extend(&closure{typ: t, types: base(t)}, ifs).types
	}
	return x.upTo(c, ifs)
}

// Satisfies reports whether a value of type t may be used where s is expected.
func Satisfies(t, s reflect.Type) bool {
	if t == nil || s == nil {
		return false
	}
	if t == s || s == anyType {
		return true
	}
	return s.Kind() == reflect.Interface && t.Implements(s)
}

// upTo returns c's types, extended to cover every interface in ifs.
func (x *Index) upTo(c *closure, ifs []reflect.Type) []reflect.Type {
	if c.epoch >= len(ifs) {
		return c.types
	}
	return x.extend(c, ifs).types
}

// extend builds a new closure covering the interfaces c has not seen yet and
// publishes it. Concurrent extensions may briefly publish an older epoch;
// readers then extend again.
func (x *Index) extend(c *closure, ifs []reflect.Type) *closure {
	types := make([]reflect.Type, len(c.types), len(c.types)+len(ifs)-c.epoch)
	copy(types, c.types)
	for _, s := range ifs[c.epoch:] {
		if s != c.typ && Satisfies(c.typ, s) {
			types = append(types, s)
		}
	}
	nc := &closure{typ: c.typ, epoch: len(ifs), types: types}
	x.memo.Store(c.typ, nc)
	return nc
}

func base(t reflect.Type) []reflect.Type {
	if t == anyType {
		return []reflect.Type{anyType}
	}
	return []reflect.Type{t, anyType}
}

// groupKey is a best-effort singleflight key. Collisions are detected by
// comparing the computed closure type.
func groupKey(t reflect.Type) string {
	return t.PkgPath() + "|" + t.String()
}
