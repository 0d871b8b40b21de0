package view

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/layout"
)

// ExpandSet holds the qualified keys of nodes that currently show their
// nested pipeline. It is UI state owned by the caller. The zero value is an
// empty, read-only set; use [NewExpandSet] before calling [ExpandSet.Toggle].
type ExpandSet map[string]struct{}

// NewExpandSet returns a set holding keys.
func NewExpandSet(keys ...string) ExpandSet {
	s := make(ExpandSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is expanded.
func (s ExpandSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Toggle flips key in place and reports whether it is now expanded.
func (s ExpandSet) Toggle(key string) bool {
	if s.Has(key) {
		delete(s, key)
		return false
	}
	s[key] = struct{}{}
	return true
}

// With returns a copy of s with key added.
func (s ExpandSet) With(key string) ExpandSet {
	out := s.clone()
	out[key] = struct{}{}
	return out
}

// Without returns a copy of s with key and every key nested below it
// removed.
func (s ExpandSet) Without(key string) ExpandSet {
	out := s.clone()
	prefix := key + layout.KeySeparator
	for k := range out {
		if k == key || strings.HasPrefix(k, prefix) {
			delete(out, k)
		}
	}
	return out
}

// Keys returns the members in sorted order.
func (s ExpandSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of members.
func (s ExpandSet) Len() int { return len(s) }

// MarshalJSON encodes the set as a sorted list of keys.
func (s ExpandSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// UnmarshalJSON decodes a list of keys.
func (s *ExpandSet) UnmarshalJSON(b []byte) error {
	var keys []string
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	*s = NewExpandSet(keys...)
	return nil
}

func (s ExpandSet) clone() ExpandSet {
	out := make(ExpandSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
