// File: memory.go
// Title: kylang Variable Store
// Description: The single global name to integer mapping of a program run.
//              Names are case-insensitive and unset names read as zero.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package memory

import (
	"sort"
	"strings"
)

// Store maps lower-cased identifiers to values. A Store belongs to exactly
// one run and is not safe for concurrent use.
type Store struct {
	values map[string]int64
}

// New creates an empty store
func New() *Store {
	return &Store{values: make(map[string]int64)}
}

// Get returns the value of name, or 0 if it was never assigned
func (s *Store) Get(name string) int64 {
	return s.values[Fold(name)]
}

// Put assigns value to name, replacing any previous value
func (s *Store) Put(name string, value int64) {
	s.values[Fold(name)] = value
}

// Lookup returns the value of name and whether it was ever assigned
func (s *Store) Lookup(name string) (int64, bool) {
	v, ok := s.values[Fold(name)]
	return v, ok
}

// Len returns the number of assigned variables
func (s *Store) Len() int {
	return len(s.values)
}

// Names returns the assigned (lower-cased) names in sorted order
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of all assignments
func (s *Store) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Fold returns the storage key of a name
func Fold(name string) string {
	return strings.ToLower(name)
}
