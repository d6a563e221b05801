package config

import (
	"strconv"

	"github.com/quantfoundry/treeconf/pkg/errors"
	stringpool "github.com/quantfoundry/treeconf/pkg/strings"
)

// Path is a compound key: an ordered sequence of scalar (string or int)
// keys navigating a nested config. A Path of length 1 behaves exactly
// like its single scalar key.
type Path []interface{}

// String renders the path with dot separators, e.g. "read_data.file_name".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, k := range p {
		parts[i] = keyString(k)
	}
	return stringpool.JoinPooled(parts, ".")
}

// checkScalarKey enforces the key contract shared by every access path:
// only strings and ints may be used as config keys.
func checkScalarKey(key interface{}) error {
	switch key.(type) {
	case string, int:
		return nil
	default:
		return errors.Newf(errors.ErrorTypeKind,
			"key=%s of type %T is not a valid config key: keys must be strings or ints",
			keyRepr(key), key)
	}
}

// normalizeKey turns a scalar key or a Path into a validated non-empty Path.
func normalizeKey(key interface{}) (Path, error) {
	switch k := key.(type) {
	case string, int:
		return Path{k}, nil
	case Path:
		if len(k) == 0 {
			return nil, errors.New(errors.ErrorTypeKind, "empty compound key")
		}
		for _, seg := range k {
			if err := checkScalarKey(seg); err != nil {
				return nil, err
			}
		}
		return k, nil
	default:
		return nil, checkScalarKey(key)
	}
}

// keyString renders a key for path joining and dict conversion.
func keyString(key interface{}) string {
	switch k := key.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	default:
		return stringpool.Sprintf("%v", k)
	}
}

// keyRepr renders a key the way lookup error messages quote it:
// strings single-quoted, ints bare.
func keyRepr(key interface{}) string {
	switch k := key.(type) {
	case string:
		return "'" + k + "'"
	case int:
		return strconv.Itoa(k)
	default:
		return stringpool.Sprintf("%v", k)
	}
}

// keyListRepr renders the keys present at one level of a config,
// e.g. ['nrows', 'nrows2']. Lookup failures embed it so that the
// offending level is visible without extra logging.
func keyListRepr(keys []interface{}) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = keyRepr(k)
	}
	return "[" + stringpool.JoinPooled(parts, ", ") + "]"
}

// pathKey produces a canonical, collision-free encoding of a path for use
// as a Go map key. String and int segments that render identically (e.g.
// "1" and 1) must stay distinct.
func pathKey(p Path) string {
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)

	for i, k := range p {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		switch v := k.(type) {
		case string:
			b.WriteString("s:")
			b.WriteString(v)
		case int:
			b.WriteString("i:")
			b.WriteString(strconv.Itoa(v))
		}
	}
	return stringpool.Clone(b.String())
}
