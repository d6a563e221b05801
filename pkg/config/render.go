package config

import (
	"math"
	"reflect"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	stringpool "github.com/quantfoundry/treeconf/pkg/strings"
)

// memory-address suffixes are stripped from opaque leaf renderings so that
// string comparison of configs is stable across process runs.
var addrPattern = regexp.MustCompile(` at 0x[0-9a-fA-F]+`)

func stripAddr(s string) string {
	return addrPattern.ReplaceAllString(s, "")
}

// String produces the canonical multi-line rendering: one top-level key
// per line as "key: value", nested configs indented two spaces per level,
// multi-line leaves on their own indented block. Empty configs render as
// the empty string.
func (c *Config) String() string {
	b := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(b, stringpool.Medium)

	first := true
	c.render(b, 0, &first)
	return stringpool.Clone(b.String())
}

// Equal reports structural equality: same paths, in the same order, with
// leaf values compared by their canonical rendering. Opaque leaves whose
// renderings normalize identically compare equal; that is the documented
// limitation of address-stripped comparison.
func (c *Config) Equal(other *Config) bool {
	if other == nil {
		return false
	}
	left := c.Flatten()
	right := other.Flatten()
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if pathKey(left[i].Path) != pathKey(right[i].Path) {
			return false
		}
		if reprValue(left[i].Value) != reprValue(right[i].Value) {
			return false
		}
	}
	return true
}

func writeIndent(b *stringpool.Builder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteByte(' ')
	}
}

func (c *Config) render(b *stringpool.Builder, indent int, first *bool) {
	for _, key := range c.entries.keys {
		if !*first {
			b.WriteByte('\n')
		}
		*first = false
		writeIndent(b, indent)
		b.WriteString(keyString(key))
		b.WriteByte(':')

		value := c.entries.values[key]
		if child, ok := value.(*Config); ok {
			// an empty sub-config renders as a bare "key:" line
			child.render(b, indent+2, first)
			continue
		}

		rendered := formatValue(value)
		if strings.Contains(rendered, "\n") {
			for _, line := range strings.Split(rendered, "\n") {
				b.WriteByte('\n')
				writeIndent(b, indent+2)
				b.WriteString(line)
			}
			continue
		}
		b.WriteByte(' ')
		b.WriteString(rendered)
	}
}

// formatValue renders a leaf for the "key: value" form: strings appear
// bare, everything else uses its repr form.
func formatValue(value interface{}) string {
	if s, ok := value.(string); ok {
		return stripAddr(s)
	}
	return reprValue(value)
}

// reprValue renders a value in its canonical source-like form: strings
// single-quoted, bools True/False, nil None, NaN nan, lists in brackets,
// tuples in parens, nested configs as constructor calls. Opaque values
// normalize to an address-free <...> form.
func reprValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return quoteString(v)
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return stringpool.Sprintf("%d", v)
	case float64:
		return reprFloat(v)
	case float32:
		return reprFloat(float64(v))
	case EmptyLeaf:
		return "()"
	case Tuple:
		return reprSequence([]interface{}(v), "(", ")", len(v) == 1)
	case []interface{}:
		return reprSequence(v, "[", "]", false)
	case *Config:
		return v.serialize()
	case Path:
		return reprSequence([]interface{}(v), "(", ")", len(v) == 1)
	}
	return reprOpaque(value)
}

func quoteString(s string) string {
	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)

	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return stringpool.Clone(b.String())
}

func reprFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func reprSequence(values []interface{}, open, closing string, trailingComma bool) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = reprValue(v)
	}
	body := stringpool.JoinPooled(parts, ", ")
	if trailingComma {
		body += ","
	}
	return open + body + closing
}

// reprOpaque renders live objects (functions, structs, typed slices,
// arbitrary handles) in a canonical address-free form. Two distinct live
// objects of the same type and name render identically; accepted.
func reprOpaque(value interface{}) string {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Func:
		name := runtime.FuncForPC(rv.Pointer()).Name()
		if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
			name = name[idx+1:]
		}
		name = strings.TrimSuffix(name, "-fm")
		return "<function " + name + ">"
	case reflect.Slice, reflect.Array:
		elems := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems[i] = rv.Index(i).Interface()
		}
		return reprSequence(elems, "[", "]", false)
	}

	if s, ok := value.(interface{ String() string }); ok {
		return stripAddr(s.String())
	}
	if e, ok := value.(error); ok {
		return stripAddr(e.Error())
	}

	t := rv.Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return "<" + name + " object>"
}
