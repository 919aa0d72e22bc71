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

// Package token implements invalidation tokens.
//
// A Token is a one-way valid→invalid flag. A consumer captures the token
// current for some key before it reads the state a decision depends on, and
// later reuses the decision only while the captured token is still valid.
// Invalidation never mutates a token back: the producer replaces the token in
// its Table and marks the old one permanently invalid.
package token

import (
	"sync"
	"sync/atomic"
)

// Token is a monotonic validity flag. The zero value is valid.
type Token struct {
	invalid atomic.Bool
}

// New returns a fresh, valid token.
func New() *Token {
	return &Token{}
}

// Valid reports whether t has not been invalidated. A nil token is never valid.
func (t *Token) Valid() bool {
	return t != nil && !t.invalid.Load()
}

func (t *Token) invalidate() {
	t.invalid.Store(true)
}

// Invalidate permanently invalidates every given token. Nil tokens are ignored.
func Invalidate(tokens ...*Token) {
	for _, t := range tokens {
		if t != nil {
			t.invalidate()
		}
	}
}

// Table maps keys to their current token. Tokens are created lazily on first
// demand and replaced, never reset. The zero value is ready to use.
//
// Get and Peek are safe for concurrent use with everything. Replace and Sweep
// are expected to be called by a single serialized writer.
type Table[K comparable] struct {
	m sync.Map // K -> *Token
	n atomic.Int64
}

// Get returns the current token for k, creating it if absent.
func (tb *Table[K]) Get(k K) *Token {
	if v, ok := tb.m.Load(k); ok {
		return v.(*Token)
	}
	v, loaded := tb.m.LoadOrStore(k, New())
	if !loaded {
		tb.n.Add(1)
	}
	return v.(*Token)
}

// Peek returns the current token for k without creating one.
func (tb *Table[K]) Peek(k K) (*Token, bool) {
	v, ok := tb.m.Load(k)
	if !ok {
		return nil, false
	}
	return v.(*Token), true
}

// Replace installs a fresh token for k and invalidates the previous one.
// Keys nobody asked a token for are left alone; it reports whether a token
// was replaced.
func (tb *Table[K]) Replace(k K) bool {
	for {
		v, ok := tb.m.Load(k)
		if !ok {
			return false
		}
		old := v.(*Token)
		if tb.m.CompareAndSwap(k, old, New()) {
			old.invalidate()
			return true
		}
	}
}

// Sweep deletes and invalidates the tokens of every key for which dead
// returns true. It returns the number of removed keys.
func (tb *Table[K]) Sweep(dead func(K) bool) int {
	removed := 0
	tb.m.Range(func(key, value any) bool {
		k := key.(K)
		if !dead(k) {
			return true
		}
		if tb.m.CompareAndDelete(k, value) {
			value.(*Token).invalidate()
			tb.n.Add(-1)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of keys holding a token.
func (tb *Table[K]) Len() int {
	return int(tb.n.Load())
}
