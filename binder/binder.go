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

// Package binder implements the registry of players and their roles.
//
// A Binder maps every player that has roles to an immutable record holding
// its role list and the dispatch chain built from it. Records are keyed by
// player identity and hold the player only weakly: a player and its
// bindings become collectible as soon as nobody else references the player.
// Records of collected players are purged opportunistically while the map is
// accessed.
//
// Mutations (Bind, Unbind) are serialized by one mutex, which also covers
// the replacement of the invalidation tokens a mutation affects. Reads are
// lock-free. Observers are notified after the mutex is released.
package binder

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/chain"
	"dirpx.dev/rolx/config"
	"dirpx.dev/rolx/errors"
	"dirpx.dev/rolx/telemetry"
	"dirpx.dev/rolx/token"
	"dirpx.dev/rolx/utils/identity"
	uref "dirpx.dev/rolx/utils/reflect"
)

// purgeEvery is the number of mutations between two opportunistic purges
// of stale records and object tokens.
const purgeEvery = 64

// record is the published state of one player. Never mutated once stored.
type record struct {
	ref   identity.Ref
	roles []apis.Role
	chain *chain.Chain
}

// pureMemo caches an IsPureType answer behind the token it was computed under.
type pureMemo struct {
	tok  *token.Token
	pure bool
}

// Binder is the default apis.Binder implementation.
type Binder struct {
	// id identifies the binder in logs and metrics.
	id string
	// mu serializes mutations end-to-end, including token replacement.
	mu sync.Mutex
	// mutations counts successful mutations; guarded by mu.
	mutations uint64
	// records maps player identity to its current record.
	records store
	// objects holds the object-level tokens, keyed weakly by player.
	objects token.Table[identity.Ref]
	// types holds the type-level tokens.
	types token.Table[reflect.Type]
	// pure caches IsPureType results per type.
	pure sync.Map // reflect.Type -> *pureMemo
	// index computes supertype closures for type-level invalidation.
	index *uref.Index
	// activated flips once, before the tokens of the first Bind are replaced.
	activated atomic.Bool

	obsMu     sync.Mutex
	observers atomic.Pointer[[]apis.Observer]

	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// Ensure Binder implements apis.Binder.
var _ apis.Binder = (*Binder)(nil)

// New constructs a Binder for cfg.
func New(cfg apis.Config) *Binder {
	cfg = config.Normalize(cfg)
	b := &Binder{
		id:      uuid.NewString(),
		records: newStore(cfg.MapKind),
		index:   uref.NewIndex(),
		logger:  telemetry.LoggerOr(cfg.Logger),
		metrics: telemetry.MustMetrics(cfg.MeterProvider),
	}
	empty := make([]apis.Observer, 0)
	b.observers.Store(&empty)
	return b
}

// ID returns the binder's instance identifier.
func (b *Binder) ID() string { return b.id }

// Index returns the supertype index used for type-level invalidation.
func (b *Binder) Index() *uref.Index { return b.index }

// Bind appends role to player's role list and returns role.
//
// The new record is published before any token is replaced, so a reader
// that captured a fresh token always sees the new state.
func (b *Binder) Bind(player, role any) (apis.Role, error) {
	r, err := validate(player, role)
	if err != nil {
		return nil, err
	}
	ref, err := identity.MakeRef(player)
	if err != nil {
		return nil, errors.Validation(err, player, role)
	}
	key := ref.Key()

	b.mu.Lock()
	b.maybePurgeLocked()

	var roles []apis.Role
	if cur := b.liveRecord(key); cur != nil {
		roles = make([]apis.Role, len(cur.roles), len(cur.roles)+1)
		copy(roles, cur.roles)
	}
	roles = append(roles, r)
	b.records.Store(key, &record{ref: ref, roles: roles, chain: chain.Of(roles)})

	b.activated.Store(true)
	replaced := 0
	if b.objects.Replace(ref) {
		replaced++
	}
	for _, t := range b.index.Supertypes(key.Type()) {
		if b.types.Replace(t) {
			replaced++
		}
	}
	b.mutations++
	b.mu.Unlock()

	b.metrics.RecordBind(b.id, replaced)
	if telemetry.Debugging(b.logger) {
		b.logger.Debug("role bound",
			"binder.id", b.id,
			"player", fmt.Sprintf("%T", player),
			"role", fmt.Sprintf("%T", role),
			"roles", len(roles),
			"tokens.replaced", replaced,
		)
	}
	for _, o := range *b.observers.Load() {
		o.BindingAdded(player, r)
	}
	return r, nil
}

// Unbind removes the first occurrence of role (by identity) from player's
// list. When the list becomes empty the record is removed.
//
// Only the player's own token is replaced. Type-level tokens stay as they
// are, even when no player of that type has roles anymore; decisions
// guarded by them are therefore re-resolved later than strictly needed.
func (b *Binder) Unbind(player, role any) error {
	if err := validateUnbind(player, role); err != nil {
		return err
	}
	key, ok := identity.KeyOf(player)
	if !ok {
		return nil
	}

	b.mu.Lock()
	cur := b.liveRecord(key)
	if cur == nil {
		b.mu.Unlock()
		return nil
	}
	i := indexOf(cur.roles, role)
	if i < 0 {
		b.mu.Unlock()
		return nil
	}

	removed := cur.roles[i]
	remaining := len(cur.roles) - 1
	if remaining == 0 {
		b.records.Delete(key)
	} else {
		roles := make([]apis.Role, 0, remaining)
		roles = append(roles, cur.roles[:i]...)
		roles = append(roles, cur.roles[i+1:]...)
		b.records.Store(key, &record{ref: cur.ref, roles: roles, chain: chain.Of(roles)})
	}
	replaced := 0
	if b.objects.Replace(cur.ref) {
		replaced++
	}
	b.mutations++
	b.maybePurgeLocked()
	b.mu.Unlock()

	b.metrics.RecordUnbind(b.id, replaced)
	if telemetry.Debugging(b.logger) {
		b.logger.Debug("role unbound",
			"binder.id", b.id,
			"player", fmt.Sprintf("%T", player),
			"role", fmt.Sprintf("%T", role),
			"roles", remaining,
		)
	}
	for _, o := range *b.observers.Load() {
		o.BindingRemoved(player, removed)
	}
	return nil
}

// Roles returns a copy of player's roles in delegation order.
func (b *Binder) Roles(player any) []apis.Role {
	rec := b.lookup(player)
	if rec == nil {
		return nil
	}
	out := make([]apis.Role, len(rec.roles))
	copy(out, rec.roles)
	return out
}

// DispatchContext returns player's current chain, or nil when it has no roles.
func (b *Binder) DispatchContext(player any) apis.DispatchContext {
	rec := b.lookup(player)
	if rec == nil {
		return nil
	}
	return rec.chain
}

// Chain is DispatchContext with the concrete chain type.
func (b *Binder) Chain(player any) *chain.Chain {
	rec := b.lookup(player)
	if rec == nil {
		return nil
	}
	return rec.chain
}

// IsPureObject reports whether player currently has no roles.
func (b *Binder) IsPureObject(player any) bool {
	if b.records.Len() == 0 {
		return true
	}
	return b.lookup(player) == nil
}

// IsPureType reports whether no live player is of type t or implements t.
//
// The answer is cached behind t's type token. Since Unbind never replaces
// type tokens, a false answer may outlive the last player of type t.
func (b *Binder) IsPureType(t reflect.Type) bool {
	if t == nil {
		return true
	}
	tok := b.TypeToken(t)
	if v, ok := b.pure.Load(t); ok {
		m := v.(*pureMemo)
		if m.tok == tok && tok.Valid() {
			return m.pure
		}
	}

	pure := true
	b.records.Range(func(k identity.Key, rec *record) bool {
		if !rec.ref.Alive() {
			b.records.CompareAndDelete(k, rec)
			return true
		}
		if uref.Satisfies(k.Type(), t) {
			pure = false
			return false
		}
		return true
	})
	b.pure.Store(t, &pureMemo{tok: tok, pure: pure})
	return pure
}

// ObjectToken returns the current token for player, creating it on first
// demand. Values without identity have no token and yield nil.
func (b *Binder) ObjectToken(player any) *token.Token {
	ref, err := identity.MakeRef(player)
	if err != nil {
		return nil
	}
	return b.objects.Get(ref)
}

// TypeToken returns the current token for t, creating it on first demand.
// Interface types are registered with the supertype index first, so that a
// later Bind of any implementation replaces the token.
func (b *Binder) TypeToken(t reflect.Type) *token.Token {
	if t == nil {
		return nil
	}
	b.index.Register(t)
	return b.types.Get(t)
}

// Activated reports whether a Bind ever succeeded on b.
func (b *Binder) Activated() bool {
	return b.activated.Load()
}

// AddObserver registers o. Adding the same observer twice delivers twice.
func (b *Binder) AddObserver(o apis.Observer) {
	if o == nil {
		return
	}
	b.obsMu.Lock()
	defer b.obsMu.Unlock()
	cur := *b.observers.Load()
	next := make([]apis.Observer, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, o)
	b.observers.Store(&next)
}

// RemoveObserver unregisters every registration of o.
func (b *Binder) RemoveObserver(o apis.Observer) {
	b.obsMu.Lock()
	defer b.obsMu.Unlock()
	cur := *b.observers.Load()
	next := make([]apis.Observer, 0, len(cur))
	for _, x := range cur {
		if x != o {
			next = append(next, x)
		}
	}
	b.observers.Store(&next)
}

// Players returns the live players that currently have roles.
// Order is unspecified.
func (b *Binder) Players() []any {
	out := make([]any, 0, b.records.Len())
	b.records.Range(func(k identity.Key, rec *record) bool {
		if v := rec.ref.Value(); v != nil {
			out = append(out, v)
		} else {
			b.records.CompareAndDelete(k, rec)
		}
		return true
	})
	return out
}

// Len returns the number of live players that currently have roles.
func (b *Binder) Len() int {
	b.records.Range(func(k identity.Key, rec *record) bool {
		if !rec.ref.Alive() {
			b.records.CompareAndDelete(k, rec)
		}
		return true
	})
	return b.records.Len()
}

// lookup returns the live record of player, or nil.
func (b *Binder) lookup(player any) *record {
	key, ok := identity.KeyOf(player)
	if !ok {
		return nil
	}
	return b.liveRecord(key)
}

// liveRecord returns the record stored under key if its player is still
// alive. A stale record is purged on the spot.
func (b *Binder) liveRecord(key identity.Key) *record {
	rec, ok := b.records.Load(key)
	if !ok {
		return nil
	}
	if !rec.ref.Alive() {
		b.records.CompareAndDelete(key, rec)
		return nil
	}
	return rec
}

// maybePurgeLocked drops stale records and object tokens every purgeEvery
// mutations. Caller holds mu.
func (b *Binder) maybePurgeLocked() {
	if b.mutations%purgeEvery != 0 {
		return
	}
	b.records.Range(func(k identity.Key, rec *record) bool {
		if !rec.ref.Alive() {
			b.records.CompareAndDelete(k, rec)
		}
		return true
	})
	b.objects.Sweep(func(r identity.Ref) bool { return !r.Alive() })
}

// indexOf returns the index of the first role identical to role, or -1.
func indexOf(roles []apis.Role, role any) int {
	for i, r := range roles {
		if any(r) == role {
			return i
		}
	}
	return -1
}
