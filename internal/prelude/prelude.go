// Package prelude registers the stock built-in catalog: the rule
// symbols reachable through `native`, the toplevel symbols predeclared
// for user scripts, and the internal-only symbols visible through the
// privileged view. Registration happens before the registry is frozen;
// this catalog is the "what would exist without any override" truth.
package prelude

import (
	"fmt"

	starlarkjson "go.starlark.net/lib/json"
	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/conneroisu/starlay/internal/registry"
	"github.com/conneroisu/starlay/internal/version"
)

// nativeRuleNames lists the stock rule symbols, all overridable by
// trusted exports files.
var nativeRuleNames = []string{
	"alias",
	"exports_files",
	"filegroup",
	"genrule",
}

// Register binds the stock catalog into reg. It fails if any name is
// already taken, so it must run before user-supplied registrations of
// the same names.
func Register(reg *registry.Registry) error {
	for _, name := range nativeRuleNames {
		if err := reg.Register(registry.NamespaceNative, name, ruleBuiltin(name)); err != nil {
			return err
		}
	}

	toplevels := starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"json":   starlarkjson.Module,
		"math":   starlarkmath.Module,
	}
	for name, value := range toplevels {
		if err := reg.Register(registry.NamespaceToplevel, name, value); err != nil {
			return err
		}
	}

	internals := starlark.StringDict{
		"runtime":           runtimeInfo(),
		"overridable_rules": overridableRules(),
	}
	for name, value := range internals {
		if err := reg.Register(registry.NamespaceInternal, name, value); err != nil {
			return err
		}
	}

	return nil
}

// NewRegistry returns a fresh registry with the stock catalog
// registered, still in the Building state so callers may add their own
// symbols before freezing.
func NewRegistry() (*registry.Registry, error) {
	reg := registry.New()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// ruleBuiltin returns the stock implementation of a native rule: it
// accepts arbitrary keyword arguments, requires a non-empty string
// `name`, and returns None.
func ruleBuiltin(rule string) *starlark.Builtin {
	return starlark.NewBuiltin(rule, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s: unexpected positional arguments", b.Name())
		}

		var ruleName string
		for _, kv := range kwargs {
			key, _ := starlark.AsString(kv[0])
			if key != "name" {
				continue
			}
			s, ok := starlark.AsString(kv[1])
			if !ok {
				return nil, fmt.Errorf("%s: name must be a string, got %s", b.Name(), kv[1].Type())
			}
			ruleName = s
		}
		if ruleName == "" {
			return nil, fmt.Errorf("%s: a rule must have a non-empty name", b.Name())
		}

		return starlark.None, nil
	})
}

func runtimeInfo() starlark.Value {
	info := version.GetBuildInfo()
	s := starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"version":    starlark.String(info.Version),
		"go_version": starlark.String(info.GoVersion),
		"platform":   starlark.String(info.Platform),
	})
	s.Freeze()
	return s
}

func overridableRules() starlark.Value {
	elems := make([]starlark.Value, len(nativeRuleNames))
	for i, name := range nativeRuleNames {
		elems[i] = starlark.String(name)
	}
	list := starlark.NewList(elems)
	list.Freeze()
	return list
}
