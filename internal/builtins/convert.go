package builtins

import (
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/conneroisu/starlay/internal/errors"
)

// ToStarlark converts a native Go value into the Starlark value model.
// The supported variants are closed: nil, bool, the integer family,
// floats, strings, slices of these, and string-keyed maps of these
// (which become structs). Starlark values pass through unchanged.
// Anything else fails with ERR_UNREPRESENTABLE_VALUE; there is no
// silent fallback. The name is used for error context only.
func ToStarlark(name string, value interface{}) (starlark.Value, error) {
	switch v := value.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return v, nil
	case bool:
		return starlark.Bool(v), nil
	case int:
		return starlark.MakeInt(v), nil
	case int8:
		return starlark.MakeInt64(int64(v)), nil
	case int16:
		return starlark.MakeInt64(int64(v)), nil
	case int32:
		return starlark.MakeInt64(int64(v)), nil
	case int64:
		return starlark.MakeInt64(v), nil
	case uint:
		return starlark.MakeUint(v), nil
	case uint8:
		return starlark.MakeUint64(uint64(v)), nil
	case uint16:
		return starlark.MakeUint64(uint64(v)), nil
	case uint32:
		return starlark.MakeUint64(uint64(v)), nil
	case uint64:
		return starlark.MakeUint64(v), nil
	case float32:
		return starlark.Float(v), nil
	case float64:
		return starlark.Float(v), nil
	case string:
		return starlark.String(v), nil
	case []string:
		elems := make([]starlark.Value, len(v))
		for i, s := range v {
			elems[i] = starlark.String(s)
		}
		list := starlark.NewList(elems)
		list.Freeze()
		return list, nil
	case []interface{}:
		elems := make([]starlark.Value, len(v))
		for i, elem := range v {
			converted, err := ToStarlark(name, elem)
			if err != nil {
				return nil, err
			}
			elems[i] = converted
		}
		list := starlark.NewList(elems)
		list.Freeze()
		return list, nil
	case map[string]interface{}:
		dict := make(starlark.StringDict, len(v))
		for key, elem := range v {
			converted, err := ToStarlark(name, elem)
			if err != nil {
				return nil, err
			}
			dict[key] = converted
		}
		s := starlarkstruct.FromStringDict(starlarkstruct.Default, dict)
		s.Freeze()
		return s, nil
	default:
		return nil, errors.ErrUnrepresentableValue(name, value)
	}
}
