package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoundry/treeconf/pkg/errors"
	"github.com/quantfoundry/treeconf/pkg/testutil"
)

func buildWireFixture(t *testing.T) *Config {
	t.Helper()
	c := New()
	require.NoError(t, c.Set("nrows", 10000))
	require.NoError(t, c.Set("label", "foo_bar"))
	require.NoError(t, c.Set("threshold", 0.75))
	require.NoError(t, c.Set("enabled", true))
	require.NoError(t, c.Set("missing", nil))
	require.NoError(t, c.Set("weights", []interface{}{1, 2.5, "w"}))
	require.NoError(t, c.Set("pair", Tuple{"a", 1}))
	require.NoError(t, c.Set(Path{"read_data", "file_name"}, "a.txt"))
	require.NoError(t, c.Set(Path{"read_data", 0}, "int keyed"))
	_, err := c.AddSubconfig("empty")
	require.NoError(t, err)
	return c
}

func TestSerializeFormat(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("hello", "world"))
	require.NoError(t, c.Set("n", 5))
	require.NoError(t, c.Set(Path{"sub", "x"}, 1.5))

	text, err := c.Serialize(true)
	require.NoError(t, err)
	assert.Equal(t,
		"Config([('hello', 'world'), ('n', 5), ('sub', Config([('x', 1.5)]))])",
		text)
}

func TestWireRoundTrip(t *testing.T) {
	c := buildWireFixture(t)

	text, err := c.Serialize(true)
	require.NoError(t, err)

	parsed, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, c.String(), parsed.String())
	assert.True(t, c.Equal(parsed))
}

func TestWireRoundTripSpecialFloats(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("nan", math.NaN()))
	require.NoError(t, c.Set("inf", math.Inf(1)))
	require.NoError(t, c.Set("ninf", math.Inf(-1)))

	text, err := c.Serialize(true)
	require.NoError(t, err)
	assert.Equal(t, "Config([('nan', nan), ('inf', inf), ('ninf', -inf)])", text)
}

func TestStringEscapingRoundTrip(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("tricky", "it's a \"test\"\nwith \\ lines\tand tabs"))

	text, err := c.Serialize(true)
	require.NoError(t, err)

	parsed, err := Parse(text)
	require.NoError(t, err)
	v, err := parsed.Get("tricky")
	require.NoError(t, err)
	assert.Equal(t, "it's a \"test\"\nwith \\ lines\tand tabs", v)
}

func TestIsSerializable(t *testing.T) {
	c := buildWireFixture(t)
	assert.True(t, c.IsSerializable())

	require.NoError(t, c.Set("loader", sampleLoader))
	assert.False(t, c.IsSerializable(), "live function leaves cannot round-trip")

	_, err := c.Serialize(true)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSerialization))

	// best-effort serialization still works with the check disabled
	text, err := c.Serialize(false)
	require.NoError(t, err)
	assert.Contains(t, text, "<function sampleLoader>")
}

func TestParseSyntaxError(t *testing.T) {
	logs := testutil.ObservedLogs(t)

	for _, text := range []string{
		"",
		"Config([",
		"Config([('a', )])",
		"NotConfig([])",
		"Config([('a', 1)]) trailing",
		"Config([(None, 1)])",
		"Config([('a', __import__)])",
	} {
		cfg, err := Parse(text)
		require.Error(t, err, "text %q", text)
		assert.Nil(t, cfg, "text %q", text)
		assert.True(t, errors.IsType(err, errors.ErrorTypeSyntax), "text %q", text)
	}
	assert.Equal(t, 7, logs.FilterMessage("failed to parse config text").Len())
}

func TestParseWhitespaceTolerant(t *testing.T) {
	cfg, err := Parse("Config( [ ( 'a' , 1 ) , ( 'b' , [ 1 , 2 ] ) ] )")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\nb: [1, 2]", cfg.String())
}

func TestFromEnvVar(t *testing.T) {
	c := New()
	require.NoError(t, c.Set("nrows", 10))
	text, err := c.Serialize(true)
	require.NoError(t, err)

	t.Setenv("TREECONF_TEST_CFG", text)
	parsed, err := FromEnvVar("TREECONF_TEST_CFG")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, c.String(), parsed.String())
}

func TestFromEnvVarUnset(t *testing.T) {
	logs := testutil.ObservedLogs(t)

	parsed, err := FromEnvVar("TREECONF_TEST_CFG_UNSET")
	require.NoError(t, err)
	assert.Nil(t, parsed)
	assert.Equal(t, 1, logs.FilterMessage("environment variable not set").Len())
}
