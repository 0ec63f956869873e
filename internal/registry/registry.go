// Package registry holds the pre-override truth: every built-in symbol
// as originally implemented, keyed by name within one of three
// namespaces. The registry is mutable while the environment is being
// assembled and becomes an immutable Snapshot on Freeze; the snapshot
// is what the privileged view exposes to trusted override scripts.
package registry

import (
	"maps"
	"sort"
	"sync"

	"go.starlark.net/starlark"

	"github.com/conneroisu/starlay/internal/errors"
)

// Namespace identifies one of the independent symbol namespaces.
type Namespace string

const (
	// NamespaceNative holds rule symbols reachable through the
	// `native` object in user scripts.
	NamespaceNative Namespace = "native"
	// NamespaceToplevel holds symbols predeclared at the top level of
	// user scripts.
	NamespaceToplevel Namespace = "toplevel"
	// NamespaceInternal holds symbols visible only through the
	// privileged view, never through ordinary resolution.
	NamespaceInternal Namespace = "internal"
)

// Namespaces lists all namespaces in display order.
func Namespaces() []Namespace {
	return []Namespace{NamespaceNative, NamespaceToplevel, NamespaceInternal}
}

// Valid reports whether ns is a known namespace.
func (ns Namespace) Valid() bool {
	switch ns {
	case NamespaceNative, NamespaceToplevel, NamespaceInternal:
		return true
	}
	return false
}

// Registry accumulates built-in symbol registrations until frozen.
// Namespaces are independent mappings: the same name may be registered
// in several namespaces and the bindings never alias.
type Registry struct {
	symbols map[Namespace]starlark.StringDict
	frozen  bool
	mutex   sync.RWMutex
}

// New creates an empty registry in the Building state.
func New() *Registry {
	symbols := make(map[Namespace]starlark.StringDict, 3)
	for _, ns := range Namespaces() {
		symbols[ns] = make(starlark.StringDict)
	}
	return &Registry{symbols: symbols}
}

// Register binds name to value in the given namespace. It fails with
// ERR_DUPLICATE_SYMBOL if the name is already bound in that namespace
// and with ERR_REGISTRY_FROZEN after Freeze has been called.
func (r *Registry) Register(ns Namespace, name string, value starlark.Value) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.frozen {
		return errors.ErrRegistryFrozen(string(ns), name)
	}
	dict, ok := r.symbols[ns]
	if !ok {
		return errors.ErrConfigInvalid("unknown namespace: " + string(ns))
	}
	if _, exists := dict[name]; exists {
		return errors.ErrDuplicateSymbol(string(ns), name)
	}

	dict[name] = value
	return nil
}

// Lookup returns the symbol bound to name in the given namespace, or
// ERR_SYMBOL_NOT_FOUND.
func (r *Registry) Lookup(ns Namespace, name string) (starlark.Value, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	value, exists := r.symbols[ns][name]
	if !exists {
		return nil, errors.ErrSymbolNotFound(string(ns), name)
	}
	return value, nil
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.frozen
}

// Count returns the number of symbols registered in a namespace.
func (r *Registry) Count(ns Namespace) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.symbols[ns])
}

// Freeze transitions the registry from Building to Sealed and returns
// the immutable snapshot of all three namespaces. The transition is
// one-directional; repeated calls return the same logical snapshot.
// Every registered value is also frozen at the Starlark level so that
// no script can mutate a built-in after sealing.
func (r *Registry) Freeze() *Snapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.frozen = true

	snap := &Snapshot{symbols: make(map[Namespace]starlark.StringDict, 3)}
	for _, ns := range Namespaces() {
		dict := maps.Clone(r.symbols[ns])
		for _, value := range dict {
			value.Freeze()
		}
		snap.symbols[ns] = dict
	}
	return snap
}

// Snapshot is the frozen state of the registry: the complete mapping of
// symbol name to original definition per namespace, captured before any
// override is installed. Safe for concurrent use by any number of
// readers.
type Snapshot struct {
	symbols map[Namespace]starlark.StringDict
}

// Get returns the original binding for name in the given namespace.
func (s *Snapshot) Get(ns Namespace, name string) (starlark.Value, bool) {
	value, ok := s.symbols[ns][name]
	return value, ok
}

// Dict returns a copy of the namespace mapping. Callers may mutate the
// returned map freely without affecting the snapshot.
func (s *Snapshot) Dict(ns Namespace) starlark.StringDict {
	return maps.Clone(s.symbols[ns])
}

// Names returns the sorted symbol names of a namespace.
func (s *Snapshot) Names(ns Namespace) []string {
	names := make([]string, 0, len(s.symbols[ns]))
	for name := range s.symbols[ns] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of symbols in a namespace.
func (s *Snapshot) Count(ns Namespace) int {
	return len(s.symbols[ns])
}
