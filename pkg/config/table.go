package config

import (
	"github.com/quantfoundry/treeconf/pkg/errors"
	stringpool "github.com/quantfoundry/treeconf/pkg/strings"
)

// Tabular views for side-by-side comparison of experiment configs. This
// is presentation: the flattening is lossy (paths collapse to dotted
// labels), but duplicate labels are rejected so no two parameters can
// silently merge.

// Series is a single config flattened to labeled values.
type Series struct {
	Name   string
	Labels []string
	Values []interface{}
}

// ToSeries flattens one config into a Series. Path segments join with
// "."; empty sub-configs appear as an empty tuple value. Duplicate labels
// fail.
func ToSeries(c *Config, name string) (*Series, error) {
	entries := c.Flatten()
	s := &Series{
		Name:   name,
		Labels: make([]string, 0, len(entries)),
		Values: make([]interface{}, 0, len(entries)),
	}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		label := entry.Path.String()
		if seen[label] {
			return nil, errors.Newf(errors.ErrorTypeDuplicateKey,
				"flattening produced duplicate label %q", label)
		}
		seen[label] = true
		value := entry.Value
		if _, empty := value.(EmptyLeaf); empty {
			value = Tuple{}
		}
		s.Labels = append(s.Labels, label)
		s.Values = append(s.Values, value)
	}
	return s, nil
}

// String renders the series as aligned "label  value" lines.
func (s *Series) String() string {
	width := 0
	for _, label := range s.Labels {
		if len(label) > width {
			width = len(label)
		}
	}
	b := stringpool.GetBuilder(stringpool.Medium)
	defer stringpool.PutBuilder(b, stringpool.Medium)

	for i, label := range s.Labels {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(label)
		for pad := len(label); pad < width+2; pad++ {
			b.WriteByte(' ')
		}
		b.WriteString(formatValue(s.Values[i]))
	}
	return stringpool.Clone(b.String())
}

// Frame is several configs flattened side by side: one row per dotted
// path, one column per config.
type Frame struct {
	Labels  []string
	Columns []string
	cells   map[string][]interface{} // label -> one cell per column
	present map[string][]bool
}

// ToFrame flattens many configs into a Frame. Row order is first
// appearance across the inputs; names default to config0, config1, ...
func ToFrame(configs []*Config, names []string) (*Frame, error) {
	if names != nil && len(names) != len(configs) {
		return nil, errors.Newf(errors.ErrorTypeInvalidValue,
			"got %d names for %d configs", len(names), len(configs))
	}
	f := &Frame{
		Columns: make([]string, len(configs)),
		cells:   make(map[string][]interface{}),
		present: make(map[string][]bool),
	}
	for i := range configs {
		if names != nil {
			f.Columns[i] = names[i]
		} else {
			f.Columns[i] = stringpool.Sprintf("config%d", i)
		}
	}
	for col, cfg := range configs {
		series, err := ToSeries(cfg, f.Columns[col])
		if err != nil {
			return nil, err
		}
		for i, label := range series.Labels {
			if _, known := f.cells[label]; !known {
				f.Labels = append(f.Labels, label)
				f.cells[label] = make([]interface{}, len(configs))
				f.present[label] = make([]bool, len(configs))
			}
			f.cells[label][col] = series.Values[i]
			f.present[label][col] = true
		}
	}
	return f, nil
}

// Cell returns the value for (label, column index) and whether that
// config defines the label at all.
func (f *Frame) Cell(label string, col int) (interface{}, bool) {
	row, ok := f.cells[label]
	if !ok || col < 0 || col >= len(row) {
		return nil, false
	}
	return row[col], f.present[label][col]
}

func (f *Frame) cellText(label string, col int) string {
	value, ok := f.Cell(label, col)
	if !ok {
		return "-"
	}
	return formatValue(value)
}

// String renders the frame as an aligned text table with a header row.
func (f *Frame) String() string {
	widths := make([]int, len(f.Columns)+1)
	for _, label := range f.Labels {
		if len(label) > widths[0] {
			widths[0] = len(label)
		}
	}
	for col, name := range f.Columns {
		widths[col+1] = len(name)
		for _, label := range f.Labels {
			if n := len(f.cellText(label, col)); n > widths[col+1] {
				widths[col+1] = n
			}
		}
	}

	b := stringpool.GetBuilder(stringpool.Large)
	defer stringpool.PutBuilder(b, stringpool.Large)

	writeCell := func(text string, width int, last bool) {
		b.WriteString(text)
		if last {
			return
		}
		for pad := len(text); pad < width+2; pad++ {
			b.WriteByte(' ')
		}
	}

	writeCell("", widths[0], false)
	for col, name := range f.Columns {
		writeCell(name, widths[col+1], col == len(f.Columns)-1)
	}
	for _, label := range f.Labels {
		b.WriteByte('\n')
		writeCell(label, widths[0], false)
		for col := range f.Columns {
			writeCell(f.cellText(label, col), widths[col+1], col == len(f.Columns)-1)
		}
	}
	return stringpool.Clone(b.String())
}

// ToCSV exports the frame as CSV with a leading label column.
func (f *Frame) ToCSV() string {
	cb := stringpool.NewCSVBuilder(len(f.Labels)+1, len(f.Columns)+1)
	defer cb.Release()

	header := make([]string, 0, len(f.Columns)+1)
	header = append(header, "parameter")
	header = append(header, f.Columns...)
	cb.WriteHeader(header)

	row := make([]string, len(f.Columns)+1)
	for _, label := range f.Labels {
		row[0] = label
		for col := range f.Columns {
			row[col+1] = f.cellText(label, col)
		}
		cb.WriteRow(row)
	}
	return cb.String()
}
