// Package loader evaluates trusted exports files. An exports file is a
// Starlark program executed with the privileged `_builtins` view
// predeclared; its `exported_rules` and `exported_toplevels` globals
// are string-keyed dicts naming the replacement symbols to install over
// the built-in originals.
package loader

import (
	"context"
	"fmt"

	"go.starlark.net/starlark"

	"github.com/conneroisu/starlay/internal/builtins"
	"github.com/conneroisu/starlay/internal/errors"
	"github.com/conneroisu/starlay/internal/logging"
)

// Export dict global names recognized in an exports file.
const (
	ExportedRulesKey     = "exported_rules"
	ExportedToplevelsKey = "exported_toplevels"
)

// Exports holds the replacement symbols declared by one exports file.
type Exports struct {
	Path      string
	Rules     starlark.StringDict
	Toplevels starlark.StringDict
}

// Loader evaluates exports files.
type Loader struct {
	logger logging.Logger
}

// New creates a loader. A nil logger discards script print output.
func New(logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Loader{logger: logger.WithComponent("loader")}
}

// Load executes the exports file at path with the privileged view bound
// as `_builtins` and collects its export dicts. A missing export dict
// means no overrides for that namespace. Evaluation failures and
// malformed export dicts fail with ERR_EXPORTS_INVALID.
func (l *Loader) Load(ctx context.Context, path string, view *builtins.View) (*Exports, error) {
	thread := &starlark.Thread{
		Name: "exports " + path,
		Print: func(_ *starlark.Thread, msg string) {
			l.logger.Info(ctx, msg, "script", path)
		},
	}

	predeclared := starlark.StringDict{builtins.Name: view}

	globals, err := starlark.ExecFile(thread, path, nil, predeclared)
	if err != nil {
		return nil, errors.ErrExportsInvalid(path, "evaluation failed", err)
	}

	rules, err := exportDict(path, globals, ExportedRulesKey)
	if err != nil {
		return nil, err
	}
	toplevels, err := exportDict(path, globals, ExportedToplevelsKey)
	if err != nil {
		return nil, err
	}

	l.logger.Debug(ctx, "exports evaluated",
		"script", path,
		"rules", len(rules),
		"toplevels", len(toplevels))

	return &Exports{Path: path, Rules: rules, Toplevels: toplevels}, nil
}

// exportDict extracts one export dict from the script globals. The
// global must be a dict with string keys; absence yields an empty set.
func exportDict(path string, globals starlark.StringDict, key string) (starlark.StringDict, error) {
	value, ok := globals[key]
	if !ok {
		return starlark.StringDict{}, nil
	}

	dict, ok := value.(*starlark.Dict)
	if !ok {
		return nil, errors.ErrExportsInvalid(path,
			fmt.Sprintf("%s must be a dict, got %s", key, value.Type()), nil)
	}

	result := make(starlark.StringDict, dict.Len())
	for _, item := range dict.Items() {
		name, ok := starlark.AsString(item[0])
		if !ok {
			return nil, errors.ErrExportsInvalid(path,
				fmt.Sprintf("%s keys must be strings, got %s", key, item[0].Type()), nil)
		}
		result[name] = item[1]
	}
	return result, nil
}
