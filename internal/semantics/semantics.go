// Package semantics provides the read-only store of named semantics
// flags consulted by the privileged view's get_flag accessor. The
// store is populated once from configuration and never written by this
// system afterwards, so concurrent reads need no synchronization.
package semantics

import (
	"maps"
	"sort"
)

// Store holds semantics flag values keyed by flag name.
type Store struct {
	values map[string]interface{}
}

// NewStore creates a store from the given flag values. The map is
// copied; later mutation of the argument does not affect the store.
func NewStore(values map[string]interface{}) *Store {
	if values == nil {
		values = map[string]interface{}{}
	}
	return &Store{values: maps.Clone(values)}
}

// Lookup returns the raw value of a flag and whether it is set.
func (s *Store) Lookup(name string) (interface{}, bool) {
	value, ok := s.values[name]
	return value, ok
}

// GetGeneric returns the raw value of a flag, or the given default if
// the flag is not set.
func (s *Store) GetGeneric(name string, defaultValue interface{}) interface{} {
	if value, ok := s.values[name]; ok {
		return value
	}
	return defaultValue
}

// Names returns the sorted names of all set flags.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of set flags.
func (s *Store) Len() int {
	return len(s.values)
}
