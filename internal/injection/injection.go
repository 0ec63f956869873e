// Package injection drives the building-to-sealed transition of a symbol
// environment: it freezes the registry, builds the privileged view
// from the pre-override snapshot, evaluates the trusted exports files,
// installs their overrides, and seals the override tables. The
// transition runs exactly once per environment and never reverses.
package injection

import (
	"context"
	goerrors "errors"
	"maps"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/conneroisu/starlay/internal/builtins"
	"github.com/conneroisu/starlay/internal/errors"
	"github.com/conneroisu/starlay/internal/loader"
	"github.com/conneroisu/starlay/internal/logging"
	"github.com/conneroisu/starlay/internal/overrides"
	"github.com/conneroisu/starlay/internal/registry"
	"github.com/conneroisu/starlay/internal/semantics"
)

// Result is the sealed symbol environment for one build invocation.
// All fields are immutable and safe for concurrent reads.
type Result struct {
	Snapshot *registry.Snapshot
	View     *builtins.View
	Native   *overrides.Table
	Toplevel *overrides.Table
}

// Run performs the injection sequence. The snapshot is taken strictly
// before any override is installed, so the view always reflects the
// pre-override truth. Any registration, evaluation, or installation
// error aborts the whole sequence; a partially injected environment is
// never returned.
func Run(ctx context.Context, reg *registry.Registry, store *semantics.Store, exportPaths []string, logger logging.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.WithComponent("injection")

	snap := reg.Freeze()
	view := builtins.Build(snap, store)

	native := overrides.NewTable(snap, registry.NamespaceNative)
	toplevel := overrides.NewTable(snap, registry.NamespaceToplevel)

	ldr := loader.New(logger)
	for _, path := range exportPaths {
		exports, err := ldr.Load(ctx, path, view)
		if err != nil {
			return nil, err
		}

		if err := installAll(native, exports.Rules, path); err != nil {
			return nil, err
		}
		if err := installAll(toplevel, exports.Toplevels, path); err != nil {
			return nil, err
		}

		logger.Info(ctx, "exports installed",
			"script", path,
			"rules", len(exports.Rules),
			"toplevels", len(exports.Toplevels))
	}

	native.Seal()
	toplevel.Seal()

	logger.Debug(ctx, "environment sealed",
		"native", snap.Count(registry.NamespaceNative),
		"toplevel", snap.Count(registry.NamespaceToplevel),
		"internal", snap.Count(registry.NamespaceInternal),
		"overrides", native.Len()+toplevel.Len())

	return &Result{
		Snapshot: snap,
		View:     view,
		Native:   native,
		Toplevel: toplevel,
	}, nil
}

// installAll installs a set of exported symbols in name order so that
// failures are reported deterministically.
func installAll(table *overrides.Table, symbols starlark.StringDict, path string) error {
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	// Sorted install keeps error output stable across runs.
	sort.Strings(names)

	for _, name := range names {
		if err := table.Install(name, symbols[name]); err != nil {
			var serr *errors.StarlayError
			if goerrors.As(err, &serr) {
				return serr.WithFile(path)
			}
			return err
		}
	}
	return nil
}

// Predeclared returns the symbol environment ordinary user scripts
// observe: the post-override toplevels plus a `native` struct of the
// post-override rules. The privileged view is deliberately absent.
func (r *Result) Predeclared() starlark.StringDict {
	predeclared := maps.Clone(r.Toplevel.Resolved())

	nativeStruct := starlarkstruct.FromStringDict(starlarkstruct.Default, r.Native.Resolved())
	nativeStruct.Freeze()
	predeclared["native"] = nativeStruct

	return predeclared
}
