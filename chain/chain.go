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

// Package chain implements the immutable dispatch chain of a player.
//
// A chain lists the roles bound to one player in delegation order and ends
// in the shared sentinel End, which stands for the player's own
// implementation. Chains are never mutated after construction; a binding
// change builds a new chain and publishes it in place of the old one.
package chain

import "dirpx.dev/rolx/apis"

// Chain is one link of a dispatch chain.
type Chain struct {
	target apis.Role
	next   *Chain
}

// End is the terminal sentinel. It has neither target nor next link.
var End = &Chain{}

// Ensure Chain implements apis.DispatchContext.
var _ apis.DispatchContext = (*Chain)(nil)

// Of builds a new chain whose traversal order equals the order of roles.
// An empty input yields End.
func Of(roles []apis.Role) *Chain {
	c := End
	for i := len(roles) - 1; i >= 0; i-- {
		c = &Chain{target: roles[i], next: c}
	}
	return c
}

// Target returns the role at this link, or nil at End.
func (c *Chain) Target() apis.Role {
	return c.target
}

// Next returns the rest of the chain as an apis.DispatchContext, or nil at End.
func (c *Chain) Next() apis.DispatchContext {
	if c.next == nil {
		return nil
	}
	return c.next
}

// Rest returns the rest of the chain, or nil at End.
func (c *Chain) Rest() *Chain {
	return c.next
}

// IsEnd reports whether c is the terminal sentinel.
func (c *Chain) IsEnd() bool {
	return c == End
}

// Len returns the number of roles before End.
func (c *Chain) Len() int {
	n := 0
	for l := c; l != nil && !l.IsEnd(); l = l.next {
		n++
	}
	return n
}

// Roles returns the roles of c in traversal order.
func (c *Chain) Roles() []apis.Role {
	out := make([]apis.Role, 0, c.Len())
	for l := c; l != nil && !l.IsEnd(); l = l.next {
		out = append(out, l.target)
	}
	return out
}
