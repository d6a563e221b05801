package config

import (
	"bytes"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/quantfoundry/treeconf/pkg/errors"
	jsonutil "github.com/quantfoundry/treeconf/pkg/json"
)

// Dict is an insertion-ordered string-keyed mapping, the plain-data mirror
// of a Config used for JSON/YAML interchange. A Dict is a raw mapping: it
// cannot be stored as a config leaf.
type Dict struct {
	keys   []string
	values map[string]interface{}
}

// NewDict creates an empty Dict.
func NewDict() *Dict {
	return &Dict{values: make(map[string]interface{})}
}

// Set inserts or overwrites key, preserving the position of existing
// keys. It returns the Dict for chained literals.
func (d *Dict) Set(key string, value interface{}) *Dict {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
	return d
}

// Get returns the value for key.
func (d *Dict) Get(key string) (interface{}, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Len returns the number of keys.
func (d *Dict) Len() int {
	return len(d.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// MarshalJSON emits the mapping as a JSON object in insertion order.
func (d *Dict) MarshalJSON() ([]byte, error) {
	buf := jsonutil.GetBuffer()
	defer jsonutil.PutBuffer(buf)

	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := jsonutil.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := jsonutil.Marshal(d.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// UnmarshalJSON decodes a JSON object, preserving key order. Nested
// objects become nested Dicts, arrays become []interface{}, and numbers
// decode to int where they are integral.
func (d *Dict) UnmarshalJSON(data []byte) error {
	dec := jsonutil.NewDecoder(bytes.NewReader(data))
	value, err := decodeOrderedValue(dec)
	if err != nil {
		return err
	}
	parsed, ok := value.(*Dict)
	if !ok {
		return errors.Newf(errors.ErrorTypeInvalidValue,
			"expected a JSON object, got %T", value)
	}
	*d = *parsed
	return nil
}

func decodeOrderedValue(dec *gojson.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			out := NewDict()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.Newf(errors.ErrorTypeInvalidValue,
						"non-string object key %v", keyTok)
				}
				value, err := decodeOrderedValue(dec)
				if err != nil {
					return nil, err
				}
				out.Set(key, value)
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return nil, err
			}
			return out, nil
		case '[':
			var out []interface{}
			for dec.More() {
				value, err := decodeOrderedValue(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, value)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return nil, err
			}
			return out, nil
		}
		return nil, errors.Newf(errors.ErrorTypeInvalidValue, "unexpected delimiter %v", t)
	case gojson.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		return t.Float64()
	default:
		return tok, nil
	}
}

// MarshalYAML emits the mapping as an ordered YAML mapping node.
func (d *Dict) MarshalYAML() (interface{}, error) {
	return d.yamlNode()
}

// UnmarshalYAML decodes a YAML mapping, preserving key order. Nested
// mappings become nested Dicts and sequences become []interface{}.
func (d *Dict) UnmarshalYAML(node *yaml.Node) error {
	value, err := decodeYAMLValue(node)
	if err != nil {
		return err
	}
	parsed, ok := value.(*Dict)
	if !ok {
		return errors.Newf(errors.ErrorTypeInvalidValue,
			"expected a YAML mapping, got %T", value)
	}
	*d = *parsed
	return nil
}

func decodeYAMLValue(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.MappingNode:
		out := NewDict()
		for i := 0; i+1 < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, err
			}
			value, err := decodeYAMLValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.Set(key, value)
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]interface{}, 0, len(node.Content))
		for _, elem := range node.Content {
			value, err := decodeYAMLValue(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case yaml.AliasNode:
		return decodeYAMLValue(node.Alias)
	default:
		var value interface{}
		if err := node.Decode(&value); err != nil {
			return nil, err
		}
		return value, nil
	}
}

func (d *Dict) yamlNode() (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range d.keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		valueNode, err := yamlNodeFor(d.values[key])
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

func yamlNodeFor(value interface{}) (*yaml.Node, error) {
	switch v := value.(type) {
	case *Dict:
		return v.yamlNode()
	case []interface{}:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, elem := range v {
			elemNode, err := yamlNodeFor(elem)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, elemNode)
		}
		return node, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(value); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// ToDict recursively converts the config tree into a plain ordered
// mapping. Nested configs become nested Dicts; leaves pass through
// unchanged. Int keys convert to their decimal strings, which is why the
// dict round-trip law only holds for string-keyed trees.
func (c *Config) ToDict() *Dict {
	d := NewDict()
	for _, key := range c.entries.keys {
		value := c.entries.values[key]
		if child, ok := value.(*Config); ok {
			d.Set(keyString(key), child.ToDict())
			continue
		}
		d.Set(keyString(key), value)
	}
	return d
}

// FromDict rebuilds a Config from a nested Dict: the inverse of ToDict.
// Every mapping at any level becomes a Config, including empty ones. The
// input is first flattened to (path, value) pairs and then rebuilt, so a
// fully empty nested mapping survives as an empty sub-config.
func FromDict(d *Dict) (*Config, error) {
	var entries []FlatEntry
	flattenDict(d, nil, &entries)
	return FromFlat(entries)
}

func flattenDict(d *Dict, prefix Path, out *[]FlatEntry) {
	for _, key := range d.keys {
		path := make(Path, len(prefix)+1)
		copy(path, prefix)
		path[len(prefix)] = key

		value := d.values[key]
		if child, ok := value.(*Dict); ok {
			if child.Len() == 0 {
				*out = append(*out, FlatEntry{Path: path, Value: EmptyLeaf{}})
				continue
			}
			flattenDict(child, path, out)
			continue
		}
		*out = append(*out, FlatEntry{Path: path, Value: value})
	}
}
