package injection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	serrors "github.com/conneroisu/starlay/internal/errors"
	"github.com/conneroisu/starlay/internal/registry"
	"github.com/conneroisu/starlay/internal/semantics"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.Register(registry.NamespaceNative, "filegroup", starlark.String("original_filegroup")))
	require.NoError(t, reg.Register(registry.NamespaceNative, "genrule", starlark.String("original_genrule")))
	require.NoError(t, reg.Register(registry.NamespaceToplevel, "CcInfo", starlark.String("original_ccinfo")))
	require.NoError(t, reg.Register(registry.NamespaceInternal, "runtime", starlark.String("internal_runtime")))
	return reg
}

func writeScript(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "exports.star")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_NoExports(t *testing.T) {
	result, err := Run(context.Background(), testRegistry(t), semantics.NewStore(nil), nil, nil)
	require.NoError(t, err)

	assert.True(t, result.Native.Sealed())
	assert.True(t, result.Toplevel.Sealed())
	assert.Equal(t, 0, result.Native.Len())

	value, err := result.Native.Resolve("filegroup")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("original_filegroup"), value)
}

func TestRun_InstallsExports(t *testing.T) {
	path := writeScript(t, `
exported_rules = {"filegroup": "replacement_filegroup"}
exported_toplevels = {"CcInfo": "replacement_ccinfo"}
`)

	result, err := Run(context.Background(), testRegistry(t), semantics.NewStore(nil), []string{path}, nil)
	require.NoError(t, err)

	// Ordinary resolution observes the overrides.
	value, err := result.Native.Resolve("filegroup")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("replacement_filegroup"), value)

	value, err = result.Toplevel.Resolve("CcInfo")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("replacement_ccinfo"), value)

	// Unoverridden names fall through to the originals.
	value, err = result.Native.Resolve("genrule")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("original_genrule"), value)

	// The privileged view still exposes the pre-override truth.
	native, err := result.View.Attr("native")
	require.NoError(t, err)
	original, err := native.(*starlarkstruct.Struct).Attr("filegroup")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("original_filegroup"), original)
}

func TestRun_ExportsSeeOriginals(t *testing.T) {
	// The exports script delegates to the original it replaces; this is
	// the resolution cycle the privileged view exists to break.
	path := writeScript(t, `
exported_rules = {"filegroup": "wraps " + _builtins.native.filegroup}
`)

	result, err := Run(context.Background(), testRegistry(t), semantics.NewStore(nil), []string{path}, nil)
	require.NoError(t, err)

	value, err := result.Native.Resolve("filegroup")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("wraps original_filegroup"), value)
}

func TestRun_UnknownBaseSymbol(t *testing.T) {
	path := writeScript(t, `
exported_rules = {"not_a_rule": "x"}
`)

	_, err := Run(context.Background(), testRegistry(t), semantics.NewStore(nil), []string{path}, nil)
	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeUnknownBaseSymbol, serrors.Code(err))
	assert.Contains(t, err.Error(), path)
}

func TestRun_EvaluationErrorAborts(t *testing.T) {
	path := writeScript(t, `fail("broken exports")`)

	_, err := Run(context.Background(), testRegistry(t), semantics.NewStore(nil), []string{path}, nil)
	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeExportsInvalid, serrors.Code(err))
}

func TestRun_FreezesRegistry(t *testing.T) {
	reg := testRegistry(t)

	_, err := Run(context.Background(), reg, semantics.NewStore(nil), nil, nil)
	require.NoError(t, err)

	assert.True(t, reg.Frozen())
	regErr := reg.Register(registry.NamespaceNative, "late", starlark.None)
	assert.Equal(t, serrors.ErrCodeRegistryFrozen, serrors.Code(regErr))
}

func TestRun_TablesSealedAfterRun(t *testing.T) {
	result, err := Run(context.Background(), testRegistry(t), semantics.NewStore(nil), nil, nil)
	require.NoError(t, err)

	installErr := result.Native.Install("filegroup", starlark.None)
	assert.Equal(t, serrors.ErrCodeTableSealed, serrors.Code(installErr))
}

func TestRun_FlagsReachExports(t *testing.T) {
	path := writeScript(t, `
exported_rules = {"filegroup": _builtins.get_flag("experimental_filegroup", "off")}
`)

	store := semantics.NewStore(map[string]interface{}{"experimental_filegroup": "on"})
	result, err := Run(context.Background(), testRegistry(t), store, []string{path}, nil)
	require.NoError(t, err)

	value, err := result.Native.Resolve("filegroup")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("on"), value)
}

func TestResult_Predeclared(t *testing.T) {
	path := writeScript(t, `
exported_rules = {"filegroup": "replacement_filegroup"}
exported_toplevels = {"CcInfo": "replacement_ccinfo"}
`)

	result, err := Run(context.Background(), testRegistry(t), semantics.NewStore(nil), []string{path}, nil)
	require.NoError(t, err)

	predeclared := result.Predeclared()

	// Toplevels carry the override.
	assert.Equal(t, starlark.String("replacement_ccinfo"), predeclared["CcInfo"])

	// The native struct carries the override and the untouched rule.
	nativeStruct, ok := predeclared["native"].(*starlarkstruct.Struct)
	require.True(t, ok)
	value, err := nativeStruct.Attr("filegroup")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("replacement_filegroup"), value)
	value, err = nativeStruct.Attr("genrule")
	require.NoError(t, err)
	assert.Equal(t, starlark.String("original_genrule"), value)

	// Internal symbols and the privileged view are absent.
	_, hasBuiltins := predeclared["_builtins"]
	assert.False(t, hasBuiltins)
	_, err = nativeStruct.Attr("runtime")
	assert.Error(t, err)
	_, hasRuntime := predeclared["runtime"]
	assert.False(t, hasRuntime)
}

func TestResult_UserScriptCannotSeeBuiltins(t *testing.T) {
	result, err := Run(context.Background(), testRegistry(t), semantics.NewStore(nil), nil, nil)
	require.NoError(t, err)

	userScript := filepath.Join(t.TempDir(), "user.star")
	require.NoError(t, os.WriteFile(userScript, []byte(`x = _builtins`), 0644))

	thread := &starlark.Thread{Name: "user"}
	_, execErr := starlark.ExecFile(thread, userScript, nil, result.Predeclared())
	require.Error(t, execErr, "ordinary scripts must not resolve _builtins")
}
