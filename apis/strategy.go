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
	"fmt"
	"reflect"
)

// Operation is a validated call request: the sender type is known to
// declare method Name with the signature Signature minus its sender.
type Operation struct {
	// Name is the method name.
	Name string
	// Signature is the request signature including the trailing sender.
	Signature reflect.Type
	// Receiver is the declared sender type (last parameter of Signature).
	Receiver reflect.Type
	// Method is the index of Name in Receiver's method set.
	Method int
	// Variadic reports whether the player's method is variadic.
	Variadic bool
	// Override is the method type a role declares to override the operation:
	// Signature with a leading proceed parameter of type Signature.
	Override reflect.Type
}

// Target executes a call; args[len(args)-1] is the sender.
type Target func(args []reflect.Value) []reflect.Value

// Guard reports whether a cached decision still applies to receiver.
type Guard func(receiver reflect.Value) bool

// DecisionKind tells how a decision was reached.
type DecisionKind int

const (
	// Direct dispatches to the player's own method, guarded by a type token.
	Direct DecisionKind = iota
	// Pure dispatches to the player's own method while the receiver has no roles.
	Pure
	// Baseline dispatches to a method that can never be intercepted.
	Baseline
	// RoleAware dispatches through the receiver's dispatch chain.
	RoleAware
	// Uncached is a fallback decision that is never reused.
	Uncached
)

// String returns a short label suitable for logs and metric attributes.
func (k DecisionKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Pure:
		return "pure"
	case Baseline:
		return "baseline"
	case RoleAware:
		return "role"
	case Uncached:
		return "uncached"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Decision is an executable target plus the guard under which it may be reused.
type Decision struct {
	Kind   DecisionKind
	Target Target
	Guard  Guard
}

// Strategy is one resolution step. A resolver tries strategies in order.
type Strategy interface {
	// TryResolve returns (decision, true) if it handles the call for receiver;
	// otherwise it returns false to fall through.
	TryResolve(op *Operation, receiver reflect.Value) (Decision, bool)
}
