package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	serrors "github.com/conneroisu/starlay/internal/errors"
)

func TestNewRegistry(t *testing.T) {
	reg := New()

	assert.NotNil(t, reg)
	assert.False(t, reg.Frozen())
	for _, ns := range Namespaces() {
		assert.Equal(t, 0, reg.Count(ns))
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := New()

	err := reg.Register(NamespaceNative, "filegroup", starlark.String("impl"))
	require.NoError(t, err)

	value, err := reg.Lookup(NamespaceNative, "filegroup")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("impl"), value)
	assert.Equal(t, 1, reg.Count(NamespaceNative))
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := New()

	require.NoError(t, reg.Register(NamespaceNative, "genrule", starlark.String("a")))

	err := reg.Register(NamespaceNative, "genrule", starlark.String("b"))
	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeDuplicateSymbol, serrors.Code(err))

	// The original binding survives the failed registration.
	value, err := reg.Lookup(NamespaceNative, "genrule")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("a"), value)
}

func TestRegistry_NamespacesAreIndependent(t *testing.T) {
	reg := New()

	// The same name may be bound in every namespace without conflict.
	require.NoError(t, reg.Register(NamespaceNative, "cc_common", starlark.String("rule")))
	require.NoError(t, reg.Register(NamespaceToplevel, "cc_common", starlark.String("module")))
	require.NoError(t, reg.Register(NamespaceInternal, "cc_common", starlark.String("private")))

	native, err := reg.Lookup(NamespaceNative, "cc_common")
	require.NoError(t, err)
	internal, err := reg.Lookup(NamespaceInternal, "cc_common")
	require.NoError(t, err)
	assert.NotEqual(t, native, internal)
}

func TestRegistry_RegisterUnknownNamespace(t *testing.T) {
	reg := New()

	err := reg.Register(Namespace("bogus"), "x", starlark.None)
	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeConfigInvalid, serrors.Code(err))
}

func TestRegistry_RegisterAfterFreeze(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(NamespaceNative, "alias", starlark.None))

	reg.Freeze()
	assert.True(t, reg.Frozen())

	err := reg.Register(NamespaceNative, "late", starlark.None)
	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeRegistryFrozen, serrors.Code(err))
}

func TestRegistry_LookupMiss(t *testing.T) {
	reg := New()

	_, err := reg.Lookup(NamespaceNative, "missing")
	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeSymbolNotFound, serrors.Code(err))
	assert.True(t, serrors.IsRecoverable(err))
}

func TestSnapshot_ReflectsPreFreezeState(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(NamespaceNative, "filegroup", starlark.String("original")))
	require.NoError(t, reg.Register(NamespaceToplevel, "struct", starlark.String("ctor")))

	snap := reg.Freeze()

	value, ok := snap.Get(NamespaceNative, "filegroup")
	require.True(t, ok)
	assert.Equal(t, starlark.String("original"), value)

	_, ok = snap.Get(NamespaceNative, "struct")
	assert.False(t, ok, "toplevel symbol must not leak into native")
}

func TestSnapshot_DictReturnsCopy(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(NamespaceNative, "alias", starlark.None))

	snap := reg.Freeze()

	dict := snap.Dict(NamespaceNative)
	dict["injected"] = starlark.True
	delete(dict, "alias")

	// Snapshot is unaffected by caller mutation.
	_, ok := snap.Get(NamespaceNative, "injected")
	assert.False(t, ok)
	_, ok = snap.Get(NamespaceNative, "alias")
	assert.True(t, ok)
}

func TestSnapshot_FreezesValues(t *testing.T) {
	reg := New()
	list := starlark.NewList([]starlark.Value{starlark.MakeInt(1)})
	require.NoError(t, reg.Register(NamespaceInternal, "overridable_rules", list))

	snap := reg.Freeze()

	value, ok := snap.Get(NamespaceInternal, "overridable_rules")
	require.True(t, ok)
	err := value.(*starlark.List).Append(starlark.MakeInt(2))
	assert.Error(t, err, "frozen list must reject mutation")
}

func TestSnapshot_Names(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(NamespaceNative, "genrule", starlark.None))
	require.NoError(t, reg.Register(NamespaceNative, "alias", starlark.None))
	require.NoError(t, reg.Register(NamespaceNative, "filegroup", starlark.None))

	snap := reg.Freeze()

	assert.Equal(t, []string{"alias", "filegroup", "genrule"}, snap.Names(NamespaceNative))
	assert.Equal(t, 3, snap.Count(NamespaceNative))
	assert.Empty(t, snap.Names(NamespaceToplevel))
}

func TestSnapshot_ConcurrentReads(t *testing.T) {
	reg := New()
	for i := 0; i < 50; i++ {
		require.NoError(t, reg.Register(NamespaceNative, fmt.Sprintf("rule%d", i), starlark.MakeInt(i)))
	}

	snap := reg.Freeze()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				value, ok := snap.Get(NamespaceNative, fmt.Sprintf("rule%d", i))
				assert.True(t, ok)
				assert.Equal(t, starlark.MakeInt(i), value)
			}
		}()
	}
	wg.Wait()
}
