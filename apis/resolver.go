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

import "reflect"

// Request describes a call to be dispatched.
//
// Signature is a func type whose last parameter is the "sender": the
// receiver the call is issued against. Receiver is optional; when set it
// must be assignable to the sender type.
type Request struct {
	Name      string
	Signature reflect.Type
	Receiver  any
}

// Resolver turns call requests into callables.
type Resolver interface {
	// Resolve returns a callable of exactly req.Signature, shared by all
	// requests with the same name and signature.
	Resolve(req Request) (reflect.Value, error)
	// Site returns the call site shared by all requests with the same
	// name and signature.
	Site(name string, sig reflect.Type) (CallSite, error)
	// Binder returns the binder this resolver dispatches against.
	Binder() Binder
}

// CallSite is the origin of calls for one (name, signature) pair. It caches
// its last dispatch decision until the decision's guard fails.
type CallSite interface {
	Name() string
	Signature() reflect.Type
	// Invoke dispatches args; the last element is the sender.
	Invoke(args []reflect.Value) []reflect.Value
	// Func returns a callable of Signature() backed by Invoke.
	Func() reflect.Value
	// Stable reports whether the site still caches decisions.
	Stable() bool
	// Resolutions returns the number of decisions the site has computed.
	Resolutions() int
}
