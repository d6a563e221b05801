package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringNested(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("nrows", 10000))
	require.NoError(t, c.Set(Path{"read_data", "file_name"}, "foo_bar.txt"))
	require.NoError(t, c.Set(Path{"read_data", "nrows"}, 999))

	expected := strings.Join([]string{
		"nrows: 10000",
		"read_data:",
		"  file_name: foo_bar.txt",
		"  nrows: 999",
	}, "\n")
	assert.Equal(t, expected, c.String())
}

func TestStringEmptyConfigAndSubconfig(t *testing.T) {
	c := New()
	assert.Equal(t, "", c.String())

	_, err := c.AddSubconfig("empty")
	require.NoError(t, err)
	assert.Equal(t, "empty:", c.String())
}

func TestStringMultilineLeaf(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("table", "col1 col2\n1    2"))

	expected := strings.Join([]string{
		"table:",
		"  col1 col2",
		"  1    2",
	}, "\n")
	assert.Equal(t, expected, c.String())
}

func TestLeafRendering(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"negative int", -7, "-7"},
		{"float", 1.5, "1.5"},
		{"integral float", 2.0, "2.0"},
		{"bool true", true, "True"},
		{"bool false", false, "False"},
		{"nil", nil, "None"},
		{"list", []interface{}{1, "a", 2.5}, "[1, 'a', 2.5]"},
		{"nested list", []interface{}{[]interface{}{1, 2}}, "[[1, 2]]"},
		{"tuple", Tuple{1, 2}, "(1, 2)"},
		{"single tuple", Tuple{1}, "(1,)"},
		{"empty tuple", Tuple{}, "()"},
		{"typed slice", []int{1, 2, 3}, "[1, 2, 3]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			require.NoError(t, c.Set("v", tc.value))
			assert.Equal(t, "v: "+tc.want, c.String())
		})
	}
}

func sampleLoader() {}

func TestOpaqueLeafRenderingStripsAddresses(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("loader", sampleLoader))

	rendered := c.String()
	assert.Equal(t, "loader: <function sampleLoader>", rendered)
	assert.NotContains(t, rendered, "0x")

	// address-bearing strings normalize too
	c2 := New()
	require.NoError(t, c2.Set("handle", "<function foo at 0x7f2a91a0>"))
	assert.Equal(t, "handle: <function foo>", c2.String())
}

type opaqueHandle struct {
	id int
}

func TestStructLeafRendersAsObject(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("h", &opaqueHandle{id: 1}))
	assert.Equal(t, "h: <opaqueHandle object>", c.String())
}

func TestEqual(t *testing.T) {
	build := func() *Config {
		c := New()
		c.MustSet("a", 1)
		c.MustSet(Path{"sub", "b"}, []interface{}{1, 2})
		return c
	}
	a, b := build(), build()
	assert.True(t, a.Equal(b))

	require.NoError(t, b.Set("c", 3))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))

	// same rendering, different key type: still distinct
	x, y := New(), New()
	require.NoError(t, x.Set(1, "v"))
	require.NoError(t, y.Set("1", "v"))
	assert.False(t, x.Equal(y))
}
