// Package overrides implements the per-namespace table of replacement
// symbols exported by trusted override scripts. Ordinary user scripts
// resolve through the table: an installed override shadows the
// original, everything else falls through to the frozen registry
// snapshot. The privileged view deliberately bypasses this table.
package overrides

import (
	"maps"
	"sort"

	"go.starlark.net/starlark"

	"github.com/conneroisu/starlay/internal/errors"
	"github.com/conneroisu/starlay/internal/registry"
)

// Table maps symbol names to replacement definitions for one
// namespace. Every key must name a symbol present in the base
// snapshot; installing a replacement for an unknown name is a
// configuration error and leaves the table unchanged.
type Table struct {
	namespace registry.Namespace
	base      starlark.StringDict
	entries   starlark.StringDict
	sealed    bool
}

// NewTable creates an empty override table over the given namespace of
// the frozen snapshot.
func NewTable(snap *registry.Snapshot, ns registry.Namespace) *Table {
	return &Table{
		namespace: ns,
		base:      snap.Dict(ns),
		entries:   make(starlark.StringDict),
	}
}

// Install records a replacement for name. It fails with
// ERR_UNKNOWN_BASE_SYMBOL if name is absent from the base snapshot and
// with ERR_TABLE_SEALED after Seal. The replacement value is frozen at
// the Starlark level before it becomes visible.
func (t *Table) Install(name string, value starlark.Value) error {
	if t.sealed {
		return errors.ErrTableSealed(string(t.namespace), name)
	}
	if _, ok := t.base[name]; !ok {
		return errors.ErrUnknownBaseSymbol(string(t.namespace), name)
	}

	value.Freeze()
	t.entries[name] = value
	return nil
}

// Seal makes the table read-only for the remainder of the environment's
// lifetime. One-directional.
func (t *Table) Seal() {
	t.sealed = true
}

// Sealed reports whether Seal has been called.
func (t *Table) Sealed() bool {
	return t.sealed
}

// Resolve returns what an ordinary user script observes for name: the
// override if one is installed, otherwise the original definition,
// otherwise ERR_SYMBOL_NOT_FOUND.
func (t *Table) Resolve(name string) (starlark.Value, error) {
	if value, ok := t.entries[name]; ok {
		return value, nil
	}
	if value, ok := t.base[name]; ok {
		return value, nil
	}
	return nil, errors.ErrSymbolNotFound(string(t.namespace), name)
}

// Overridden reports whether name has an installed override.
func (t *Table) Overridden(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Resolved returns the full post-override mapping: the base snapshot
// overlaid with every installed override. This is the symbol set handed
// to ordinary user scripts.
func (t *Table) Resolved() starlark.StringDict {
	result := maps.Clone(t.base)
	for name, value := range t.entries {
		result[name] = value
	}
	return result
}

// OverriddenNames returns the sorted names of installed overrides.
func (t *Table) OverriddenNames() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of installed overrides.
func (t *Table) Len() int {
	return len(t.entries)
}
