// Package builtins implements the privileged `_builtins` object handed
// to trusted override scripts. It exposes the pre-override definitions
// of the native and toplevel namespaces, the internal-only symbol set,
// and the get_flag semantics accessor. The object is assembled once
// from an immutable registry snapshot and is never mutated afterwards,
// so it may be shared across concurrent script evaluations.
package builtins

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/conneroisu/starlay/internal/registry"
	"github.com/conneroisu/starlay/internal/semantics"
)

// Name is the reserved identifier under which the privileged view is
// predeclared for trusted scripts. Ordinary user scripts never see it.
const Name = "_builtins"

// View is the immutable privileged facade. It implements
// starlark.HasAttrs with exactly three fields (native, toplevel,
// internal) and one method (get_flag).
type View struct {
	native   *starlarkstruct.Struct
	toplevel *starlarkstruct.Struct
	internal *starlarkstruct.Struct
	getFlag  *starlark.Builtin
	flags    *semantics.Store
}

// Build assembles the privileged view from a frozen registry snapshot
// and the semantics store. The snapshot must have been taken before any
// override was installed; Build performs no resolution of its own, it
// is a pure assembly step.
func Build(snap *registry.Snapshot, store *semantics.Store) *View {
	view := &View{
		native:   namespaceStruct(snap, registry.NamespaceNative),
		toplevel: namespaceStruct(snap, registry.NamespaceToplevel),
		internal: namespaceStruct(snap, registry.NamespaceInternal),
		flags:    store,
	}
	view.getFlag = starlark.NewBuiltin("get_flag", view.flag)
	return view
}

func namespaceStruct(snap *registry.Snapshot, ns registry.Namespace) *starlarkstruct.Struct {
	s := starlarkstruct.FromStringDict(starlarkstruct.Default, snap.Dict(ns))
	s.Freeze()
	return s
}

// String implements starlark.Value.
func (v *View) String() string { return "<" + Name + " module>" }

// Type implements starlark.Value.
func (v *View) Type() string { return Name }

// Freeze implements starlark.Value. The view holds no mutable state.
func (v *View) Freeze() {}

// Truth implements starlark.Value.
func (v *View) Truth() starlark.Bool { return starlark.True }

// Hash implements starlark.Value.
func (v *View) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", Name)
}

// Attr implements starlark.HasAttrs.
func (v *View) Attr(name string) (starlark.Value, error) {
	switch name {
	case "native":
		return v.native, nil
	case "toplevel":
		return v.toplevel, nil
	case "internal":
		return v.internal, nil
	case "get_flag":
		return v.getFlag, nil
	}
	return nil, nil
}

// AttrNames implements starlark.HasAttrs.
func (v *View) AttrNames() []string {
	names := []string{"native", "toplevel", "internal", "get_flag"}
	sort.Strings(names)
	return names
}

// flag implements get_flag(name, default): the value of the named
// semantics flag coerced into the Starlark value model, or default
// unchanged if the flag is not set. A set flag whose value cannot be
// represented fails the call rather than corrupting the default.
func (v *View) flag(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var defaultValue starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "default", &defaultValue); err != nil {
		return nil, err
	}

	raw, ok := v.flags.Lookup(name)
	if !ok {
		return defaultValue, nil
	}
	return ToStarlark(name, raw)
}
