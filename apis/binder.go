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

package apis

import (
	"reflect"

	"dirpx.dev/rolx/token"
)

// Binder is the registry of players and the roles bound to them.
//
// Mutations are serialized; reads never block and always observe either the
// full pre- or the full post-mutation state of a player.
type Binder interface {
	// Bind appends role to player's role list and returns role.
	// It fails with a ValidationError when either value is unfit.
	Bind(player, role any) (Role, error)
	// Unbind removes the first identity-equal occurrence of role from
	// player's list. Unbinding a pair that is not bound is a no-op.
	Unbind(player, role any) error
	// Roles returns a snapshot of player's roles in delegation order.
	Roles(player any) []Role
	// DispatchContext returns player's current chain, or nil.
	DispatchContext(player any) DispatchContext
	// IsPureObject reports whether player has no roles bound.
	IsPureObject(player any) bool
	// IsPureType reports whether no live player is of (or implements) t.
	IsPureType(t reflect.Type) bool
	// ObjectToken returns the current token guarding decisions about player.
	ObjectToken(player any) *token.Token
	// TypeToken returns the current token guarding decisions about t.
	TypeToken(t reflect.Type) *token.Token
	// Activated reports whether a Bind ever succeeded on this binder.
	Activated() bool
	// AddObserver registers o for binding notifications.
	AddObserver(o Observer)
	// RemoveObserver unregisters o.
	RemoveObserver(o Observer)
	// Players returns the live players that currently have roles.
	Players() []any
	// Len returns the number of live players that currently have roles.
	Len() int
}

// Observer receives binding notifications.
//
// Notifications are delivered on the mutating goroutine after the binder
// released its lock, so implementations may call back into the binder.
// Observers are compared with == on removal and must be comparable.
type Observer interface {
	BindingAdded(player any, role Role)
	BindingRemoved(player any, role Role)
}
