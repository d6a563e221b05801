package config

import (
	"github.com/quantfoundry/treeconf/pkg/errors"
)

// orderedMap is the key discipline layer under Config: an insertion-ordered
// mapping that rejects any key that is not a string or an int, on both
// reads and writes. Centralizing the check here keeps Config itself free
// of per-call-site key validation.
type orderedMap struct {
	keys   []interface{}
	values map[interface{}]interface{}
}

func newOrderedMap() orderedMap {
	return orderedMap{
		values: make(map[interface{}]interface{}),
	}
}

// set inserts or overwrites key. An existing key keeps its position;
// a new key is appended.
func (m *orderedMap) set(key, value interface{}) error {
	if err := checkScalarKey(key); err != nil {
		return err
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return nil
}

func (m *orderedMap) get(key interface{}) (interface{}, error) {
	if err := checkScalarKey(key); err != nil {
		return nil, err
	}
	value, exists := m.values[key]
	if !exists {
		return nil, errors.Newf(errors.ErrorTypeNotFound,
			"key=%s not in %s", keyRepr(key), keyListRepr(m.keys))
	}
	return value, nil
}

func (m *orderedMap) has(key interface{}) bool {
	_, exists := m.values[key]
	return exists
}

// delete removes and returns the value for key.
func (m *orderedMap) delete(key interface{}) (interface{}, error) {
	value, err := m.get(key)
	if err != nil {
		return nil, err
	}
	deleteKey := key
	for i, k := range m.keys {
		if k == deleteKey {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	delete(m.values, key)
	return value, nil
}

func (m *orderedMap) len() int {
	return len(m.keys)
}

// orderedKeys returns the keys in insertion order. The slice is a copy.
func (m *orderedMap) orderedKeys() []interface{} {
	keys := make([]interface{}, len(m.keys))
	copy(keys, m.keys)
	return keys
}
