package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/quantfoundry/treeconf/pkg/errors"
	jsonutil "github.com/quantfoundry/treeconf/pkg/json"
)

func TestToDictFromDictRoundTrip(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("nrows", 10000))
	require.NoError(t, c.Set(Path{"read_data", "file_name"}, "a.txt"))
	require.NoError(t, c.Set("tags", []interface{}{"fast", "ci"}))

	d := c.ToDict()
	assert.Equal(t, []string{"nrows", "read_data", "tags"}, d.Keys())

	rebuilt, err := FromDict(d)
	require.NoError(t, err)
	assert.Equal(t, c.String(), rebuilt.String())
}

func TestFromDictDeepEmptyMapping(t *testing.T) {
	d := NewDict().Set("key2",
		NewDict().Set("key3",
			NewDict().Set("key4", NewDict())))

	c, err := FromDict(d)
	require.NoError(t, err)

	v, err := c.Get(Path{"key2", "key3", "key4"})
	require.NoError(t, err)
	sub, ok := v.(*Config)
	require.True(t, ok, "empty mapping must become an empty Config, got %T", v)
	assert.Equal(t, 0, sub.Len())
}

func TestFromDictEmptyTopLevel(t *testing.T) {
	c, err := FromDict(NewDict())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestFromDictRejectsRawMapLeaf(t *testing.T) {
	d := NewDict().Set("m", map[string]int{"a": 1})
	_, err := FromDict(d)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}

func TestDictJSONRoundTripPreservesOrder(t *testing.T) {
	d := NewDict().
		Set("zeta", 1).
		Set("alpha", NewDict().Set("x", 2.5).Set("a", "s")).
		Set("list", []interface{}{1, "two"})

	data, err := jsonutil.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t,
		`{"zeta":1,"alpha":{"x":2.5,"a":"s"},"list":[1,"two"]}`,
		string(data))

	parsed := NewDict()
	require.NoError(t, jsonutil.Unmarshal(data, parsed))
	assert.Equal(t, []string{"zeta", "alpha", "list"}, parsed.Keys())

	inner, ok := parsed.Get("alpha")
	require.True(t, ok)
	innerDict, ok := inner.(*Dict)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "a"}, innerDict.Keys())

	x, _ := innerDict.Get("x")
	assert.Equal(t, 2.5, x)
	z, _ := parsed.Get("zeta")
	assert.Equal(t, 1, z, "integral numbers decode to int")
}

func TestConfigThroughJSON(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("nrows", 10000))
	require.NoError(t, c.Set(Path{"read_data", "file_name"}, "a.txt"))

	data, err := jsonutil.Marshal(c.ToDict())
	require.NoError(t, err)

	parsed := NewDict()
	require.NoError(t, jsonutil.Unmarshal(data, parsed))
	rebuilt, err := FromDict(parsed)
	require.NoError(t, err)
	assert.Equal(t, c.String(), rebuilt.String())
}

func TestDictYAMLPreservesOrder(t *testing.T) {
	d := NewDict().
		Set("zeta", 1).
		Set("alpha", NewDict().Set("x", "y"))

	data, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1\nalpha:\n    x: y\n", string(data))
}

func TestDictYAMLRoundTrip(t *testing.T) {
	input := "zeta: 1\nalpha:\n    x: 2.5\n    tags:\n        - a\n        - b\nflag: true\n"

	d := NewDict()
	require.NoError(t, yaml.Unmarshal([]byte(input), d))
	assert.Equal(t, []string{"zeta", "alpha", "flag"}, d.Keys())

	inner, ok := d.Get("alpha")
	require.True(t, ok)
	innerDict, ok := inner.(*Dict)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "tags"}, innerDict.Keys())
	tags, _ := innerDict.Get("tags")
	assert.Equal(t, []interface{}{"a", "b"}, tags)

	z, _ := d.Get("zeta")
	assert.Equal(t, 1, z, "integers decode to int")

	data, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, input, string(data))
}
