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

package binder

import (
	"sync"
	"sync/atomic"

	"dirpx.dev/rolx/apis"
	"dirpx.dev/rolx/utils/identity"
)

// store is the concurrent map of binding records.
//
// Load, Range and CompareAndDelete are safe for concurrent use and never
// block. Store and Delete are only called by the binder's serialized writer.
type store interface {
	Load(k identity.Key) (*record, bool)
	Store(k identity.Key, r *record)
	Delete(k identity.Key)
	CompareAndDelete(k identity.Key, r *record) bool
	Range(f func(k identity.Key, r *record) bool)
	Len() int
}

// newStore returns the store implementation selected by kind.
func newStore(kind apis.MapKind) store {
	switch kind {
	case apis.MapSnapshot:
		return newSnapshotStore()
	default:
		return &syncStore{}
	}
}

// syncStore is backed by sync.Map.
type syncStore struct {
	m sync.Map // identity.Key -> *record
	n atomic.Int64
}

func (s *syncStore) Load(k identity.Key) (*record, bool) {
	v, ok := s.m.Load(k)
	if !ok {
		return nil, false
	}
	return v.(*record), true
}

func (s *syncStore) Store(k identity.Key, r *record) {
	if _, loaded := s.m.Swap(k, r); !loaded {
		s.n.Add(1)
	}
}

func (s *syncStore) Delete(k identity.Key) {
	if _, loaded := s.m.LoadAndDelete(k); loaded {
		s.n.Add(-1)
	}
}

func (s *syncStore) CompareAndDelete(k identity.Key, r *record) bool {
	if s.m.CompareAndDelete(k, r) {
		s.n.Add(-1)
		return true
	}
	return false
}

func (s *syncStore) Range(f func(k identity.Key, r *record) bool) {
	s.m.Range(func(key, value any) bool {
		return f(key.(identity.Key), value.(*record))
	})
}

func (s *syncStore) Len() int {
	return int(s.n.Load())
}

// snapshotStore publishes an immutable map through an atomic pointer.
// Every write copies the map; readers use whatever snapshot they loaded.
type snapshotStore struct {
	p atomic.Pointer[map[identity.Key]*record]
}

func newSnapshotStore() *snapshotStore {
	s := &snapshotStore{}
	m := make(map[identity.Key]*record)
	s.p.Store(&m)
	return s
}

func (s *snapshotStore) Load(k identity.Key) (*record, bool) {
	r, ok := (*s.p.Load())[k]
	return r, ok
}

func (s *snapshotStore) Store(k identity.Key, r *record) {
	s.update(func(m map[identity.Key]*record) bool {
		m[k] = r
		return true
	})
}

func (s *snapshotStore) Delete(k identity.Key) {
	s.update(func(m map[identity.Key]*record) bool {
		if _, ok := m[k]; !ok {
			return false
		}
		delete(m, k)
		return true
	})
}

func (s *snapshotStore) CompareAndDelete(k identity.Key, r *record) bool {
	return s.update(func(m map[identity.Key]*record) bool {
		if m[k] != r {
			return false
		}
		delete(m, k)
		return true
	})
}

func (s *snapshotStore) Range(f func(k identity.Key, r *record) bool) {
	for k, r := range *s.p.Load() {
		if !f(k, r) {
			return
		}
	}
}

func (s *snapshotStore) Len() int {
	return len(*s.p.Load())
}

// update applies mutate to a copy of the current map and publishes it.
// Purges from readers may race with the writer, hence the CAS loop.
func (s *snapshotStore) update(mutate func(m map[identity.Key]*record) bool) bool {
	for {
		cur := s.p.Load()
		next := make(map[identity.Key]*record, len(*cur)+1)
		for k, r := range *cur {
			next[k] = r
		}
		if !mutate(next) {
			return false
		}
		if s.p.CompareAndSwap(cur, &next) {
			return true
		}
	}
}
