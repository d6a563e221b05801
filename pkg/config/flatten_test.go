package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenOrderAndPaths(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("nrows", 10000))
	require.NoError(t, c.Set(Path{"read_data", "file_name"}, "a.txt"))
	require.NoError(t, c.Set(Path{"read_data", "nested", "x"}, 1))
	require.NoError(t, c.Set("tail", "end"))

	entries := c.Flatten()
	require.Len(t, entries, 4)
	assert.Equal(t, Path{"nrows"}, entries[0].Path)
	assert.Equal(t, Path{"read_data", "file_name"}, entries[1].Path)
	assert.Equal(t, Path{"read_data", "nested", "x"}, entries[2].Path)
	assert.Equal(t, Path{"tail"}, entries[3].Path)
	assert.Equal(t, 1, entries[2].Value)
}

func TestFlattenPreservesEmptySubconfig(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("a", 1))
	_, err := c.AddSubconfig("empty")
	require.NoError(t, err)

	entries := c.Flatten()
	require.Len(t, entries, 2)
	assert.Equal(t, Path{"empty"}, entries[1].Path)
	assert.Equal(t, EmptyLeaf{}, entries[1].Value)
}

func TestFlattenRoundTrip(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("nrows", 10000))
	require.NoError(t, c.Set(Path{"read_data", "file_name"}, "a.txt"))
	require.NoError(t, c.Set(Path{"read_data", 0}, "int keyed"))
	_, err := c.AddSubconfig("empty")
	require.NoError(t, err)

	rebuilt, err := FromFlat(c.Flatten())
	require.NoError(t, err)
	assert.Equal(t, c.String(), rebuilt.String())
	assert.True(t, c.Equal(rebuilt))

	sub, err := rebuilt.Subconfig("empty")
	require.NoError(t, err)
	assert.Equal(t, 0, sub.Len())
}

func TestPathString(t *testing.T) {
	assert.Equal(t, "read_data.file_name", Path{"read_data", "file_name"}.String())
	assert.Equal(t, "a.0.b", Path{"a", 0, "b"}.String())
}
