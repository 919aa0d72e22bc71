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

// Package rolx attaches runtime roles to Go values.
//
// A role is a small unit of behavior that is bound to an existing object
// (the "player") at runtime and detached again later, without changing the
// player's static type. Roles bound to the same player form an ordered
// dispatch chain: a call issued against the player runs the first role
// that overrides the operation, which can delegate to the rest of the
// chain through its proceed argument. The end of the chain is the player's
// own method.
//
//	type Greeter struct{ name string }
//
//	func (g *Greeter) Greet(s string) string { return s + ", " + g.name }
//
//	type Loud struct{ apis.RoleBase }
//
//	func (*Loud) Greet(proceed func(string, *Greeter) string, s string, g *Greeter) string {
//		return strings.ToUpper(proceed(s, g))
//	}
//
//	greet, _ := rolx.Func[func(string, *Greeter) string]("Greet")
//	g := &Greeter{name: "Ada"}
//	greet("hello", g)          // "hello, Ada"
//	rolx.Bind(g, &Loud{})
//	greet("hello", g)          // "HELLO, ADA"
//
// # Design
//
// The core of rolx is a read-mostly global snapshot (state). The snapshot
// holds four things:
//
//   - Config: call site tuning, the binder's map implementation, and the
//     logger and meter provider used by both layers.
//
//   - Binder: the registry of players and their roles. It holds players
//     weakly, so bindings never extend a player's lifetime, and it owns the
//     invalidation tokens that tell call sites when a cached dispatch
//     decision went stale.
//
//   - Resolver: turns a call request (method name plus a func signature
//     whose last parameter is the receiver) into a callable. Every call
//     site caches its dispatch decision behind a guard:
//     1. While no role was ever bound, calls go straight to the
//     receiver's own method.
//     2. Afterwards, receivers without roles still do.
//     3. String, GoString, Hash and Equal are never intercepted.
//     4. Everything else walks the receiver's dispatch chain.
//
//   - Builder: a pluggable factory that constructs Binder and Resolver
//     instances for a given Config, carrying bindings over on rebuilds.
//
// Readers load the current snapshot atomically and never lock. Writers
// (SetConfig, SetBuilder, SetBinder, SetResolver, SetAll) take a short
// build mutex, assemble a new snapshot and publish it.
//
// # Pinning
//
// SetBinder and SetResolver pin the layer they set: later reconfigurations
// leave it alone until UnpinBinder or UnpinResolver is called.
//
// # Explicit construction
//
// The global state is a convenience. Binders and resolvers can always be
// built directly with the binder, resolver and builder packages, and are
// independent of each other and of the global state.
package rolx
