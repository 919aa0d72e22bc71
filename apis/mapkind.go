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
	"strings"
)

// MapKind selects the concurrent map a binder keeps its records in.
//
// # Overview
//
// Both implementations give lock-free reads and are driven by the same
// serialized writer, so the observable behavior of a binder does not depend
// on the choice. MapKind exists so that benchmarks and diagnostics can
// compare them.
//
// # Values
//
//   - MapSync     — sync.Map backed store. Good for disjoint, read-mostly keys.
//   - MapSnapshot — copy-on-write map behind an atomic pointer. Cheapest reads
//     and full scans, each write copies the map.
//
// # Contract
//
//   - Existing values MUST NOT change meaning; new values may be added.
//   - MapKind is a plain integer and safe to share across goroutines.
type MapKind int

const (
	// MapSync selects the sync.Map backed store.
	MapSync MapKind = iota

	// MapSnapshot selects the copy-on-write store.
	//
	// Every mutation copies the whole map, so it suits binders with few
	// players and many IsPureType scans.
	MapSnapshot
)

// String returns the canonical token for k.
//
// For out-of-range values it returns "unknown(<n>)" and never panics, so
// corrupted values can still be surfaced in logs.
func (k MapKind) String() string {
	switch k {
	case MapSync:
		return "sync"
	case MapSnapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseMapKind parses a textual MapKind.
//
// Matching is case-insensitive and ignores surrounding whitespace. On
// failure it returns MapSync and a non-nil error; callers MUST NOT rely on
// the returned value in that case.
//
//	kind, err := ParseMapKind("snapshot")
//	if err != nil {
//	    // handle invalid configuration
//	}
func ParseMapKind(s string) (MapKind, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return MapSync, fmt.Errorf("rolx: empty map kind")
	}

	switch strings.ToLower(trimmed) {
	case "sync":
		return MapSync, nil
	case "snapshot":
		return MapSnapshot, nil
	default:
		return MapSync, fmt.Errorf("rolx: unknown map kind %q", s)
	}
}

// MustParseMapKind is like ParseMapKind but panics on invalid input.
// Use it for hard-coded values only.
func MustParseMapKind(s string) MapKind {
	kind, err := ParseMapKind(s)
	if err != nil {
		panic(err)
	}
	return kind
}

// MarshalText implements encoding.TextMarshaler.
//
// Unknown values fail instead of being serialized in their diagnostic form,
// so invalid states are never persisted.
func (k MapKind) MarshalText() ([]byte, error) {
	switch k {
	case MapSync, MapSnapshot:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("rolx: cannot marshal unknown map kind %d", int(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
// On failure *k is left unchanged.
func (k *MapKind) UnmarshalText(text []byte) error {
	value, err := ParseMapKind(string(text))
	if err != nil {
		return err
	}
	*k = value
	return nil
}
