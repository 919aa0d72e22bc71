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

package strategy_test

import (
	"reflect"
	"testing"

	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/binder"
	"dirpx.dev/rolx/chain"
	"dirpx.dev/rolx/config"
	"dirpx.dev/rolx/strategy"
	uref "dirpx.dev/rolx/utils/reflect"
)

// ---------------------- Fixtures ----------------------

type trace struct {
	steps []string
}

type core struct {
	tr *trace
}

func (c *core) Op(n int) int {
	c.tr.steps = append(c.tr.steps, "core")
	return n
}

func (c *core) String() string { return "core" }

type opFunc = func(int, *core) int

// adder overrides Op and proceeds.
type adder struct {
	apis.RoleBase
	name string
	add  int
}

func (a *adder) Op(proceed opFunc, n int, c *core) int {
	c.tr.steps = append(c.tr.steps, a.name)
	return proceed(n+a.add, c)
}

// String has the baseline shape but must never run.
func (a *adder) String(proceed func(*core) string, c *core) string {
	return "intercepted"
}

// shortcut overrides Op without proceeding.
type shortcut struct {
	apis.RoleBase
}

func (*shortcut) Op(_ opFunc, n int, c *core) int {
	c.tr.steps = append(c.tr.steps, "shortcut")
	return -n
}

// silent declares no override.
type silent struct {
	apis.RoleBase
}

// wrongShape declares Op with a signature that is not an override.
type wrongShape struct {
	apis.RoleBase
}

func (*wrongShape) Op(n int) int { return n * 100 }

func mustOp(t *testing.T, name string, sig reflect.Type) *apis.Operation {
	t.Helper()
	op, err := uref.LookupOperation(name, sig)
	if err != nil {
		t.Fatalf("LookupOperation(%s): %v", name, err)
	}
	return &op
}

func call(target apis.Target, n int, c *core) int {
	out := target([]reflect.Value{reflect.ValueOf(n), reflect.ValueOf(c)})
	return int(out[0].Int())
}

func steps(c *core) []string {
	s := c.tr.steps
	c.tr.steps = nil
	return s
}

func equal(a, b []string) bool {
	return reflect.DeepEqual(a, b)
}

// ---------------------- Tests ----------------------

func TestCompose_ProceedOrder(t *testing.T) {
	op := mustOp(t, "Op", reflect.TypeFor[opFunc]())
	c := &core{tr: &trace{}}

	ctx := chain.Of([]apis.Role{
		&adder{name: "a", add: 1},
		&silent{},
		&wrongShape{},
		&adder{name: "b", add: 10},
	})
	if got := call(strategy.Compose(op, ctx), 1, c); got != 12 {
		t.Fatalf("result = %d, want 12", got)
	}
	if got := steps(c); !equal(got, []string{"a", "b", "core"}) {
		t.Fatalf("trace = %v", got)
	}
}

func TestCompose_NoProceed(t *testing.T) {
	op := mustOp(t, "Op", reflect.TypeFor[opFunc]())
	c := &core{tr: &trace{}}

	ctx := chain.Of([]apis.Role{&shortcut{}, &adder{name: "a", add: 1}})
	if got := call(strategy.Compose(op, ctx), 3, c); got != -3 {
		t.Fatalf("result = %d, want -3", got)
	}
	if got := steps(c); !equal(got, []string{"shortcut"}) {
		t.Fatalf("trace = %v", got)
	}
}

func TestCompose_EmptyChain(t *testing.T) {
	op := mustOp(t, "Op", reflect.TypeFor[opFunc]())
	c := &core{tr: &trace{}}

	for _, ctx := range []apis.DispatchContext{nil, chain.End, chain.Of([]apis.Role{&silent{}})} {
		if got := call(strategy.Compose(op, ctx), 5, c); got != 5 {
			t.Fatalf("result = %d, want 5", got)
		}
		if got := steps(c); !equal(got, []string{"core"}) {
			t.Fatalf("trace = %v", got)
		}
	}
}

func TestDirectStrategy(t *testing.T) {
	b := binder.New(config.DefaultConfig())
	s := strategy.NewDirectStrategy(b)
	op := mustOp(t, "Op", reflect.TypeFor[opFunc]())
	c := &core{tr: &trace{}}

	d, ok := s.TryResolve(op, reflect.ValueOf(c))
	if !ok || d.Kind != apis.Direct {
		t.Fatalf("decision = %v/%v, want direct", d.Kind, ok)
	}
	if !d.Guard(reflect.ValueOf(c)) {
		t.Fatal("direct guard invalid before any Bind")
	}
	if got := call(d.Target, 2, c); got != 2 {
		t.Fatalf("result = %d", got)
	}

	if _, err := b.Bind(c, &silent{}); err != nil {
		t.Fatal(err)
	}
	if d.Guard(reflect.ValueOf(c)) {
		t.Fatal("direct guard survived a Bind of the sender type")
	}
	if _, ok := s.TryResolve(op, reflect.ValueOf(c)); ok {
		t.Fatal("direct strategy handled a call on an activated binder")
	}
}

func TestPureStrategy(t *testing.T) {
	b := binder.New(config.DefaultConfig())
	s := strategy.NewPureStrategy(b)
	op := mustOp(t, "Op", reflect.TypeFor[opFunc]())
	c1, c2 := &core{tr: &trace{}}, &core{tr: &trace{}}

	if _, err := b.Bind(c1, &silent{}); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.TryResolve(op, reflect.ValueOf(c1)); ok {
		t.Fatal("pure strategy handled a receiver with roles")
	}
	d, ok := s.TryResolve(op, reflect.ValueOf(c2))
	if !ok || d.Kind != apis.Pure {
		t.Fatalf("decision = %v/%v, want pure", d.Kind, ok)
	}
	if !d.Guard(reflect.ValueOf(c2)) || d.Guard(reflect.ValueOf(c1)) {
		t.Fatal("pure guard does not follow receiver purity")
	}
}

func TestBaselineStrategy(t *testing.T) {
	s := strategy.NewBaselineStrategy()

	str := mustOp(t, "String", reflect.TypeFor[func(*core) string]())
	d, ok := s.TryResolve(str, reflect.Value{})
	if !ok || d.Kind != apis.Baseline || !d.Guard(reflect.Value{}) {
		t.Fatalf("String not handled as baseline")
	}
	c := &core{tr: &trace{}}
	if out := d.Target([]reflect.Value{reflect.ValueOf(c)}); out[0].String() != "core" {
		t.Fatalf("String() = %v", out[0])
	}

	if _, ok := s.TryResolve(mustOp(t, "Op", reflect.TypeFor[opFunc]()), reflect.Value{}); ok {
		t.Fatal("Op handled as baseline")
	}
}

type hashable struct {
	v uint64
}

func (h *hashable) Hash() uint64                  { return h.v }
func (h *hashable) Equal(o *hashable) bool        { return h.v == o.v }
func (h *hashable) GoString() string              { return "hashable" }
func (h *hashable) Hash32() uint32                { return uint32(h.v) }
func (h *hashable) String(verbose bool) string    { return "hashable" }
func (h *hashable) Equals(o *hashable) bool       { return h.v == o.v }
func (h *hashable) Debug(o *hashable) (bool, int) { return true, 0 }

func TestIsBaseline(t *testing.T) {
	cases := []struct {
		name string
		sig  reflect.Type
		want bool
	}{
		{"Hash", reflect.TypeFor[func(*hashable) uint64](), true},
		{"Equal", reflect.TypeFor[func(*hashable, *hashable) bool](), true},
		{"GoString", reflect.TypeFor[func(*hashable) string](), true},
		{"Hash32", reflect.TypeFor[func(*hashable) uint32](), false},
		{"String", reflect.TypeFor[func(bool, *hashable) string](), false},
		{"Equals", reflect.TypeFor[func(*hashable, *hashable) bool](), false},
		{"Debug", reflect.TypeFor[func(*hashable, *hashable) (bool, int)](), false},
	}
	for _, tc := range cases {
		op := mustOp(t, tc.name, tc.sig)
		if got := strategy.IsBaseline(op); got != tc.want {
			t.Errorf("IsBaseline(%s %v) = %v, want %v", tc.name, tc.sig, got, tc.want)
		}
	}
}

func TestRoleStrategy(t *testing.T) {
	b := binder.New(config.DefaultConfig())
	s := strategy.NewRoleStrategy(b)
	op := mustOp(t, "Op", reflect.TypeFor[opFunc]())
	c, other := &core{tr: &trace{}}, &core{tr: &trace{}}

	if _, err := b.Bind(c, &adder{name: "a", add: 1}); err != nil {
		t.Fatal(err)
	}

	d, ok := s.TryResolve(op, reflect.ValueOf(c))
	if !ok || d.Kind != apis.RoleAware {
		t.Fatalf("decision = %v/%v, want role", d.Kind, ok)
	}
	if got := call(d.Target, 1, c); got != 2 {
		t.Fatalf("result = %d, want 2", got)
	}
	if got := steps(c); !equal(got, []string{"a", "core"}) {
		t.Fatalf("trace = %v", got)
	}

	if !d.Guard(reflect.ValueOf(c)) {
		t.Fatal("role guard invalid for its own receiver")
	}
	if d.Guard(reflect.ValueOf(other)) {
		t.Fatal("role guard valid for another receiver")
	}
	if _, err := b.Bind(c, &silent{}); err != nil {
		t.Fatal(err)
	}
	if d.Guard(reflect.ValueOf(c)) {
		t.Fatal("role guard survived a binding change")
	}

	// Values without identity are left to the fallback.
	vop := mustOp(t, "Len", reflect.TypeFor[func(valueSender) int]())
	if _, ok := s.TryResolve(vop, reflect.ValueOf(valueSender{})); ok {
		t.Fatal("role strategy handled a receiver without identity")
	}
}

type valueSender struct {
	n int
}

func (v valueSender) Len() int { return v.n }

func TestDefaults_Order(t *testing.T) {
	b := binder.New(config.DefaultConfig())
	got := strategy.Defaults(b)
	if len(got) != 4 {
		t.Fatalf("Defaults len = %d, want 4", len(got))
	}
}
