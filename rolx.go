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

package rolx

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/builder"
	"dirpx.dev/rolx/config"
	"dirpx.dev/rolx/resolver"
)

// init initializes the global state.
func init() {
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.bnd = b.BuildBinder(s.cfg, nil)
	s.res = b.BuildResolver(s.cfg, s.bnd, nil)
	s.bld = b
	st.Store(s)
}

var (
	// ErrNilBinder is returned when a builder returns a nil binder.
	ErrNilBinder = errors.New("rolx: builder returned nil binder")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("rolx: builder returned nil resolver")
)

// Bind attaches role to player in the global binder.
func Bind(player, role any) (apis.Role, error) {
	return st.Load().bnd.Bind(player, role)
}

// Unbind detaches role from player in the global binder.
func Unbind(player, role any) error {
	return st.Load().bnd.Unbind(player, role)
}

// Roles returns player's roles in the global binder.
func Roles(player any) []apis.Role {
	return st.Load().bnd.Roles(player)
}

// Resolve resolves req with the global resolver.
func Resolve(req apis.Request) (reflect.Value, error) {
	return st.Load().res.Resolve(req)
}

// Func resolves operation name for signature F with the global resolver.
//
// The returned function keeps dispatching against the resolver that was
// current when Func was called.
func Func[F any](name string) (F, error) {
	return resolver.Func[F](st.Load().res, name)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg.
// It rebuilds the unpinned binder and resolver using the new configuration.
// A rebuilt binder carries over the bindings of the old one. A pinned
// resolver keeps dispatching against the binder it was built for.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	next.cfg = cfg
	rebuild(&next, old)
	st.Store(&next)
}

// Binder returns the global binder.
func Binder() apis.Binder {
	return st.Load().bnd
}

// SetBinder sets and pins the global binder. The resolver is rebuilt
// against it unless pinned. Bindings of the old binder are not copied.
func SetBinder(b apis.Binder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	next.bnd = b
	next.pbnd = true
	if !old.pres {
		next.res = old.bld.BuildResolver(old.cfg, b, old.res)
	}
	mustComplete(&next)
	st.Store(&next)
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver sets and pins the global resolver.
func SetResolver(r apis.Resolver) {
	if r == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.res = r
	next.pres = true
	st.Store(&next)
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder to b and rebuilds the unpinned layers.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	next.bld = b
	rebuild(&next, old)
	st.Store(&next)
}

// SetAll explicitly sets all global state components.
//
// A nil cfg or bld leaves the corresponding component unchanged. A nil bnd
// or res is rebuilt by the builder; a non-nil one is pinned. Nothing is
// carried over from the old binder.
//
// This is mainly used by tests to get a clean deterministic state.
func SetAll(cfg *apis.Config, bnd apis.Binder, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := state{cfg: old.cfg, bld: old.bld}
	if cfg != nil {
		next.cfg = *cfg
	}
	if bld != nil {
		next.bld = bld
	}

	next.bnd, next.pbnd = bnd, bnd != nil
	if bnd == nil {
		next.bnd = next.bld.BuildBinder(next.cfg, nil)
	}
	next.res, next.pres = res, res != nil
	if res == nil {
		next.res = next.bld.BuildResolver(next.cfg, next.bnd, nil)
	}

	mustComplete(&next)
	st.Store(&next)
}

// IsBinderPinned returns whether the global binder is pinned.
func IsBinderPinned() bool {
	return st.Load().pbnd
}

// IsResolverPinned returns whether the global resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// UnpinBinder lets the next reconfiguration rebuild the global binder.
func UnpinBinder() {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.pbnd = false
	st.Store(&next)
}

// UnpinResolver lets the next reconfiguration rebuild the global resolver.
func UnpinResolver() {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.pres = false
	st.Store(&next)
}

// rebuild rebuilds the unpinned layers of next from old using next's
// builder and configuration. Caller holds buildMu.
func rebuild(next, old *state) {
	if !old.pbnd {
		next.bnd = next.bld.BuildBinder(next.cfg, old.bnd)
	}
	if !old.pres {
		next.res = next.bld.BuildResolver(next.cfg, next.bnd, old.res)
	}
	mustComplete(next)
}

// mustComplete panics if a builder left a layer nil.
func mustComplete(s *state) {
	if s.bnd == nil {
		panic(ErrNilBinder)
	}
	if s.res == nil {
		panic(ErrNilResolver)
	}
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable once published via st.Store; writers copy it, modify the copy
// and swap it in.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// bnd is the global binder.
	bnd apis.Binder
	// res is the global resolver.
	res apis.Resolver
	// bld is the global builder.
	bld apis.Builder
	// pbnd indicates whether bnd is pinned.
	pbnd bool
	// pres indicates whether res is pinned.
	pres bool
}
