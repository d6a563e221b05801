package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoundry/treeconf/pkg/errors"
)

func TestToSeries(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("nrows", 10000))
	require.NoError(t, c.Set(Path{"read_data", "file_name"}, "a.txt"))
	_, err := c.AddSubconfig("empty")
	require.NoError(t, err)

	s, err := ToSeries(c, "run1")
	require.NoError(t, err)
	assert.Equal(t, "run1", s.Name)
	assert.Equal(t, []string{"nrows", "read_data.file_name", "empty"}, s.Labels)
	assert.Equal(t, []interface{}{10000, "a.txt", Tuple{}}, s.Values)

	text := s.String()
	assert.Contains(t, text, "nrows")
	assert.Contains(t, text, "10000")
	assert.Contains(t, text, "read_data.file_name  a.txt")
	assert.Contains(t, text, "()")
}

func TestToSeriesDuplicateLabel(t *testing.T) {
	// a key containing a dot collides with a two-level path when flattened
	c := New()
	require.NoError(t, c.Set("a.b", 1))
	require.NoError(t, c.Set(Path{"a", "b"}, 2))

	_, err := ToSeries(c, "bad")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateKey))
	assert.Contains(t, err.Error(), `"a.b"`)
}

func TestToFrame(t *testing.T) {
	a := New()
	require.NoError(t, a.Set("nrows", 10000))
	require.NoError(t, a.Set("only_a", 1))
	b := New()
	require.NoError(t, b.Set("nrows", 99))
	require.NoError(t, b.Set("only_b", 2.5))

	f, err := ToFrame([]*Config{a, b}, []string{"base", "tuned"})
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "tuned"}, f.Columns)
	assert.Equal(t, []string{"nrows", "only_a", "only_b"}, f.Labels)

	v, ok := f.Cell("nrows", 1)
	assert.True(t, ok)
	assert.Equal(t, 99, v)
	_, ok = f.Cell("only_b", 0)
	assert.False(t, ok, "column without the label reports absent")

	text := f.String()
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "base")
	assert.Contains(t, lines[0], "tuned")
	assert.Contains(t, lines[1], "10000")
	assert.Contains(t, lines[1], "99")
	assert.Contains(t, lines[2], "-", "missing cells render as a dash")
}

func TestToFrameDefaultNames(t *testing.T) {
	a := mustSingle(t, "x", 1)
	b := mustSingle(t, "x", 2)

	f, err := ToFrame([]*Config{a, b}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"config0", "config1"}, f.Columns)

	_, err = ToFrame([]*Config{a, b}, []string{"just one"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidValue))
}

func TestFrameToCSV(t *testing.T) {
	a := mustSingle(t, "nrows", 10000)
	require.NoError(t, a.Set("label", "with, comma"))
	b := mustSingle(t, "nrows", 99)

	f, err := ToFrame([]*Config{a, b}, []string{"base", "tuned"})
	require.NoError(t, err)

	csv := f.ToCSV()
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "parameter,base,tuned", lines[0])
	assert.Equal(t, "nrows,10000,99", lines[1])
	assert.Equal(t, `label,"with, comma",-`, lines[2])
}
