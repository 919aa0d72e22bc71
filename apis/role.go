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

// Role marks a type as attachable behavior.
//
// The marker method is unexported, so the only way to satisfy Role from
// another package is to embed RoleBase. A role type may declare overriding
// methods for operations of the players it gets bound to; a role that
// declares none is a pure passthrough.
type Role interface {
	role()
}

// RoleBase is embedded by role types to satisfy Role.
//
// It carries one byte so that every role allocation gets its own address,
// even for roles without any other state.
type RoleBase struct {
	_ byte
}

func (RoleBase) role() {}

// DispatchContext is one link of an immutable dispatch chain.
//
// The terminal sentinel has no target and no next link; reaching it means
// "fall through to the player's own implementation".
type DispatchContext interface {
	// Target returns the role at this link, or nil for the sentinel.
	Target() Role
	// Next returns the remaining chain, or nil for the sentinel.
	Next() DispatchContext
	// IsEnd reports whether this link is the terminal sentinel.
	IsEnd() bool
}
