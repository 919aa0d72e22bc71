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

// Package resolver implements the adaptive call resolver.
//
// A Resolver turns a call request (operation name plus signature) into a
// call site. A site dispatches every call to the decision of the first
// strategy that handles the receiver, and caches that decision until its
// guard fails. Sites that keep switching decisions are marked unstable and
// resolve live on every call from then on.
package resolver

import (
	"log/slog"
	"reflect"
	"sync"

	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/config"
	"dirpx.dev/rolx/errors"
	"dirpx.dev/rolx/strategy"
	"dirpx.dev/rolx/telemetry"
	uref "dirpx.dev/rolx/utils/reflect"
)

// siteKey identifies a shared call site.
type siteKey struct {
	name string
	sig  reflect.Type
}

// Resolver is the default apis.Resolver implementation.
// It is safe for concurrent use.
type Resolver struct {
	b         apis.Binder
	threshold int
	strats    []apis.Strategy
	sites     sync.Map // siteKey -> *Site
	logger    *slog.Logger
	metrics   *telemetry.Metrics
}

// Ensure Resolver implements apis.Resolver.
var _ apis.Resolver = (*Resolver)(nil)

// New constructs a Resolver dispatching against b that tries the given
// strategies in order. Nil strategies are ignored; with none left the
// resolver uses strategy.Defaults(b).
func New(cfg apis.Config, b apis.Binder, strategies ...apis.Strategy) *Resolver {
	cfg = config.Normalize(cfg)
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]apis.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		out = strategy.Defaults(b)
	}
	return &Resolver{
		b:         b,
		threshold: cfg.UnstableThreshold,
		strats:    out,
		logger:    telemetry.LoggerOr(cfg.Logger),
		metrics:   telemetry.MustMetrics(cfg.MeterProvider),
	}
}

// Binder returns the binder r dispatches against.
func (r *Resolver) Binder() apis.Binder { return r.b }

// NewSite validates the call request and returns a fresh, unshared site.
func (r *Resolver) NewSite(name string, sig reflect.Type) (*Site, error) {
	op, err := uref.LookupOperation(name, sig)
	if err != nil {
		return nil, err
	}
	s := &Site{op: op, r: r}
	s.fn = reflect.MakeFunc(sig, s.Invoke)
	return s, nil
}

// Site returns the site shared by every request for (name, sig).
func (r *Resolver) Site(name string, sig reflect.Type) (apis.CallSite, error) {
	return r.shared(name, sig)
}

// Resolve returns a callable of exactly req.Signature dispatching req.Name.
//
// A non-nil req.Receiver must be assignable to the sender type. It is only
// checked, not bound: the callable takes the receiver as its last argument.
func (r *Resolver) Resolve(req apis.Request) (reflect.Value, error) {
	s, err := r.shared(req.Name, req.Signature)
	if err != nil {
		return reflect.Value{}, err
	}
	if req.Receiver != nil && !reflect.TypeOf(req.Receiver).AssignableTo(s.op.Receiver) {
		return reflect.Value{}, errors.NoSuchOperation(req.Name, req.Signature, errors.ErrReceiverMismatch)
	}
	return s.fn, nil
}

func (r *Resolver) shared(name string, sig reflect.Type) (*Site, error) {
	key := siteKey{name: name, sig: sig}
	if v, ok := r.sites.Load(key); ok {
		return v.(*Site), nil
	}
	s, err := r.NewSite(name, sig)
	if err != nil {
		return nil, err
	}
	v, _ := r.sites.LoadOrStore(key, s)
	return v.(*Site), nil
}

// decide runs strategies in order until one handles the receiver.
// Calls nobody handles run the sender's own method, uncached.
func (r *Resolver) decide(op *apis.Operation, receiver reflect.Value) apis.Decision {
	for _, s := range r.strats {
		if d, ok := s.TryResolve(op, receiver); ok {
			return d
		}
	}
	return apis.Decision{Kind: apis.Uncached, Target: uref.Own(op)}
}

// Func resolves operation name for the signature F and returns it as F.
//
//	greet, err := resolver.Func[func(string, *Greeter) string](r, "Greet")
//	fmt.Println(greet("hi", g))
func Func[F any](r apis.Resolver, name string) (F, error) {
	var zero F
	s, err := r.Site(name, reflect.TypeFor[F]())
	if err != nil {
		return zero, err
	}
	return s.Func().Interface().(F), nil
}
