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

package builder

import (
	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/binder"
	"dirpx.dev/rolx/resolver"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildBinder builds and returns a new apis.Binder for cfg. If a previous
// binder is provided, the bindings of its live players are copied into the
// new binder in their original order. Observers are not carried over.
func (b *builder) BuildBinder(cfg apis.Config, prev apis.Binder) apis.Binder {
	nb := binder.New(cfg)
	if prev != nil {
		for _, p := range prev.Players() {
			for _, r := range prev.Roles(p) {
				_, _ = nb.Bind(p, r)
			}
		}
	}
	return nb
}

// BuildResolver builds and returns a new apis.Resolver for cfg dispatching
// against bnd. Call sites of the previous resolver are not reused: their
// decisions were taken against the previous binder.
func (b *builder) BuildResolver(cfg apis.Config, bnd apis.Binder, _ apis.Resolver) apis.Resolver {
	return resolver.New(cfg, bnd)
}
