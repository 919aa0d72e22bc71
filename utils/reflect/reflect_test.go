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

package reflect_test

import (
	stderrors "errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/rolx/errors"
	uref "dirpx.dev/rolx/utils/reflect"
)

// Local test types.
type Greeter interface{ Greet(string) string }
type Named interface{ Name() string }
type NamedGreeter interface {
	Named
	Greeter
}
type Unrelated interface{ Frobnicate() }

type A struct{ n string }

func (a *A) Greet(s string) string { return "hi " + s }
func (a *A) Name() string          { return a.n }

type B struct{ n int }

func (B) Name() string { return "b" }

var (
	anyT          = reflect.TypeFor[any]()
	greeterT      = reflect.TypeFor[Greeter]()
	namedT        = reflect.TypeFor[Named]()
	namedGreeterT = reflect.TypeFor[NamedGreeter]()
	unrelatedT    = reflect.TypeFor[Unrelated]()
	ptrAT         = reflect.TypeOf(&A{})
	bT            = reflect.TypeOf(B{})
)

func set(ts []reflect.Type) map[reflect.Type]bool {
	m := make(map[reflect.Type]bool, len(ts))
	for _, t := range ts {
		m[t] = true
	}
	return m
}

func TestSupertypes_Unregistered(t *testing.T) {
	x := uref.NewIndex()
	got := set(x.Supertypes(ptrAT))
	if len(got) != 2 || !got[ptrAT] || !got[anyT] {
		t.Fatalf("Supertypes(*A) = %v", got)
	}
	if s := x.Supertypes(anyT); len(s) != 1 || s[0] != anyT {
		t.Fatalf("Supertypes(any) = %v", s)
	}
	if x.Supertypes(nil) != nil {
		t.Fatal("Supertypes(nil) must be nil")
	}
}

func TestSupertypes_RegisteredInterfaces(t *testing.T) {
	x := uref.NewIndex()
	for _, i := range []reflect.Type{greeterT, namedT, namedGreeterT, unrelatedT, ptrAT, anyT} {
		x.Register(i)
	}
	if n := len(x.Registered()); n != 4 {
		t.Fatalf("Registered = %d interfaces, want 4", n)
	}

	cases := []struct {
		name string
		typ  reflect.Type
		want []reflect.Type
	}{
		{"ptr A", ptrAT, []reflect.Type{ptrAT, anyT, greeterT, namedT, namedGreeterT}},
		{"value B", bT, []reflect.Type{bT, anyT, namedT}},
		{"iface NamedGreeter", namedGreeterT, []reflect.Type{namedGreeterT, anyT, greeterT, namedT}},
		{"iface Unrelated", unrelatedT, []reflect.Type{unrelatedT, anyT}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := set(x.Supertypes(tc.typ))
			if len(got) != len(tc.want) {
				t.Fatalf("Supertypes(%v) = %v, want %v", tc.typ, got, tc.want)
			}
			for _, w := range tc.want {
				if !got[w] {
					t.Fatalf("Supertypes(%v) misses %v", tc.typ, w)
				}
			}
		})
	}
}

func TestSupertypes_ExtendedAfterLateRegistration(t *testing.T) {
	x := uref.NewIndex()
	first := x.Supertypes(ptrAT)
	if set(first)[greeterT] {
		t.Fatal("unregistered interface in closure")
	}

	x.Register(greeterT)
	second := set(x.Supertypes(ptrAT))
	if !second[greeterT] {
		t.Fatal("closure was not extended with late registration")
	}
	// The earlier result is immutable.
	if set(first)[greeterT] {
		t.Fatal("published closure was mutated")
	}
}

func TestSupertypes_Concurrent(t *testing.T) {
	x := uref.NewIndex()
	workers := runtime.GOMAXPROCS(0) * 4

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if i == id {
					x.Register(namedT)
				}
				_ = x.Supertypes(ptrAT)
				_ = x.Supertypes(bT)
			}
		}(w)
	}
	wg.Wait()

	if !set(x.Supertypes(ptrAT))[namedT] || !set(x.Supertypes(bT))[namedT] {
		t.Fatal("registration lost under concurrency")
	}
}

func TestSatisfies(t *testing.T) {
	if !uref.Satisfies(ptrAT, greeterT) || uref.Satisfies(bT, greeterT) {
		t.Fatal("interface satisfaction")
	}
	if !uref.Satisfies(bT, anyT) || !uref.Satisfies(bT, bT) {
		t.Fatal("root and identity")
	}
	if uref.Satisfies(ptrAT, reflect.TypeOf(A{})) || uref.Satisfies(nil, anyT) {
		t.Fatal("unrelated concrete types")
	}
}

type Core struct{ trace *[]string }

func (c *Core) Op(x int) string { return "core" }
func (c *Core) Sum(xs ...int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
func (c *Core) Pair(a int, b string) error { return nil }

func TestLookupOperation(t *testing.T) {
	cases := []struct {
		name string
		op   string
		sig  reflect.Type
		want error
	}{
		{"ok", "Op", reflect.TypeOf(func(int, *Core) string { return "" }), nil},
		{"ok variadic method", "Sum", reflect.TypeOf(func([]int, *Core) int { return 0 }), nil},
		{"ok interface sender", "Greet", reflect.TypeOf(func(string, Greeter) string { return "" }), nil},
		{"nil", "Op", nil, errors.ErrNotFunc},
		{"not func", "Op", reflect.TypeOf(0), errors.ErrNotFunc},
		{"no sender", "Op", reflect.TypeOf(func() {}), errors.ErrNoSender},
		{"variadic", "Op", reflect.TypeOf(func(...*Core) {}), errors.ErrVariadicSignature},
		{"missing", "Nope", reflect.TypeOf(func(*Core) {}), errors.ErrMissingMethod},
		{"unexported", "op", reflect.TypeOf(func(int, *Core) string { return "" }), errors.ErrMissingMethod},
		{"param mismatch", "Op", reflect.TypeOf(func(string, *Core) string { return "" }), errors.ErrSignatureMismatch},
		{"arity mismatch", "Pair", reflect.TypeOf(func(int, *Core) error { return nil }), errors.ErrSignatureMismatch},
		{"result mismatch", "Op", reflect.TypeOf(func(int, *Core) int { return 0 }), errors.ErrSignatureMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op, err := uref.LookupOperation(tc.op, tc.sig)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if op.Receiver != tc.sig.In(tc.sig.NumIn()-1) || op.Override == nil {
					t.Fatalf("bad operation %+v", op)
				}
				return
			}
			if !stderrors.Is(err, errors.ErrNoSuchOperation) || !stderrors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestOwn(t *testing.T) {
	c := &Core{}

	op, err := uref.LookupOperation("Op", reflect.TypeOf(func(int, *Core) string { return "" }))
	if err != nil {
		t.Fatal(err)
	}
	out := uref.Own(&op)([]reflect.Value{reflect.ValueOf(1), reflect.ValueOf(c)})
	if out[0].String() != "core" {
		t.Fatalf("Own(Op) = %v", out[0])
	}

	sum, err := uref.LookupOperation("Sum", reflect.TypeOf(func([]int, *Core) int { return 0 }))
	if err != nil {
		t.Fatal(err)
	}
	out = uref.Own(&sum)([]reflect.Value{reflect.ValueOf([]int{1, 2, 3}), reflect.ValueOf(c)})
	if out[0].Int() != 6 {
		t.Fatalf("Own(Sum) = %v", out[0])
	}

	greet, err := uref.LookupOperation("Greet", reflect.TypeOf(func(string, Greeter) string { return "" }))
	if err != nil {
		t.Fatal(err)
	}
	var g Greeter = &A{}
	sender := reflect.ValueOf(&g).Elem()
	out = uref.Own(&greet)([]reflect.Value{reflect.ValueOf("bob"), sender})
	if out[0].String() != "hi bob" {
		t.Fatalf("Own(Greet) = %v", out[0])
	}
}

type overrider struct{}

func (overrider) Op(proceed func(int, *Core) string, x int, c *Core) string { return "" }

type wrongOverrider struct{}

func (wrongOverrider) Op(x int, c *Core) string { return "" }

func TestOverrideOf(t *testing.T) {
	op, err := uref.LookupOperation("Op", reflect.TypeOf(func(int, *Core) string { return "" }))
	if err != nil {
		t.Fatal(err)
	}
	if m := uref.OverrideOf(&overrider{}, &op); !m.IsValid() {
		t.Fatal("expected override")
	}
	if m := uref.OverrideOf(&wrongOverrider{}, &op); m.IsValid() {
		t.Fatal("mismatched signature must not count as override")
	}
	if m := uref.OverrideOf(&A{}, &op); m.IsValid() {
		t.Fatal("missing method must not count as override")
	}
}
