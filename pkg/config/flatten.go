package config

import (
	"github.com/quantfoundry/treeconf/pkg/errors"
)

// Tuple is an immutable-by-convention sequence leaf. It exists so that
// tuple literals in wire text survive a parse/serialize round-trip
// without degrading to lists.
type Tuple []interface{}

// EmptyLeaf marks the position of an empty nested Config in flattened
// form. Empty sub-configs survive flattening as a degenerate leaf rather
// than disappearing.
type EmptyLeaf struct{}

// FlatEntry is one (path, leaf value) pair of a flattened config.
type FlatEntry struct {
	Path  Path
	Value interface{}
}

// Flatten converts the tree into ordered (path, leaf) pairs, depth-first
// in key order. An empty nested Config contributes one entry whose value
// is EmptyLeaf.
func (c *Config) Flatten() []FlatEntry {
	var out []FlatEntry
	c.flattenInto(nil, &out)
	return out
}

func (c *Config) flattenInto(prefix Path, out *[]FlatEntry) {
	for _, key := range c.entries.keys {
		path := make(Path, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = key

		value := c.entries.values[key]
		if child, ok := value.(*Config); ok {
			if child.Len() == 0 {
				*out = append(*out, FlatEntry{Path: path, Value: EmptyLeaf{}})
				continue
			}
			child.flattenInto(path, out)
			continue
		}
		*out = append(*out, FlatEntry{Path: path, Value: value})
	}
}

// FromFlat rebuilds a Config from flattened entries. EmptyLeaf values
// become empty sub-configs again.
func FromFlat(entries []FlatEntry) (*Config, error) {
	c := New()
	for _, entry := range entries {
		if err := c.setFlat(entry); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// setFlat assigns one flattened entry through the normal compound-key
// write path.
func (c *Config) setFlat(entry FlatEntry) error {
	if _, ok := entry.Value.(EmptyLeaf); ok {
		_, err := c.ensureSubconfig(entry.Path)
		return err
	}
	return c.Set(entry.Path, entry.Value)
}

// ensureSubconfig walks path, creating empty sub-configs for missing
// segments, and returns the Config at the full path. An existing leaf on
// the way fails.
func (c *Config) ensureSubconfig(path Path) (*Config, error) {
	node := c
	for _, key := range path {
		if node.readOnly {
			return nil, errors.Newf(errors.ErrorTypeReadOnly,
				"cannot create subconfig key=%s: config is read-only\nconfig=\n%s",
				keyRepr(key), node.String())
		}
		if !node.entries.has(key) {
			child, err := node.AddSubconfig(key)
			if err != nil {
				return nil, err
			}
			node = child
			continue
		}
		value, err := node.entries.get(key)
		if err != nil {
			return nil, err
		}
		child, ok := value.(*Config)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeKind,
				"cannot descend into key=%s: existing value of type %T is not a config",
				keyRepr(key), value)
		}
		node = child
	}
	return node, nil
}

// hasPath reports whether a full path resolves, treating an empty
// sub-config as present.
func (c *Config) hasPath(path Path) bool {
	_, err := c.resolve(path)
	return err == nil
}

// flatIndex returns the flattened entries keyed by their canonical path
// encoding, plus the key order, for the comparison utilities.
func (c *Config) flatIndex() (map[string]FlatEntry, []string) {
	entries := c.Flatten()
	index := make(map[string]FlatEntry, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		k := pathKey(entry.Path)
		if _, dup := index[k]; !dup {
			order = append(order, k)
		}
		index[k] = entry
	}
	return index, order
}
