// Package strings provides pooled string building utilities for treeconf.
// Config rendering, serialization and error formatting all funnel through
// the builders here so that repeated renders of large parameter trees do
// not churn the allocator.
package strings

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// BytesToString converts byte slice to string without allocation
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return *(*string)(unsafe.Pointer(&b))
}

// StringToBytes converts string to byte slice without allocation
// WARNING: The returned byte slice shares memory with the string.
// Do not modify the returned slice.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	sh := (*reflect.StringHeader)(unsafe.Pointer(&s))
	bh := reflect.SliceHeader{
		Data: sh.Data,
		Len:  sh.Len,
		Cap:  sh.Len,
	}
	return *(*[]byte)(unsafe.Pointer(&bh))
}

// Builder provides efficient string building with zero-copy operations
type Builder struct {
	buf []byte
}

// NewBuilder creates a new string builder
func NewBuilder(capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
	}
}

// WriteString appends a string to the builder
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, StringToBytes(s)...)
}

// WriteByte appends a single byte
func (b *Builder) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// Write implements io.Writer interface
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the built string using zero-copy conversion
func (b *Builder) String() string {
	return BytesToString(b.buf)
}

// Len returns the length of the built string
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset resets the builder for reuse
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// Clone creates a copy of a string (useful when you need to own the memory)
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, StringToBytes(s))
	return BytesToString(b)
}

// Contains checks if string contains substring without allocation
func Contains(s, substr string) bool {
	return Index(s, substr) >= 0
}

// Index finds the index of substring in string without allocation
func Index(s, substr string) int {
	if len(substr) == 0 {
		return 0
	}
	if len(substr) > len(s) {
		return -1
	}

	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// Global pools for different string building scenarios
var (
	// Small strings (< 1KB) - single error messages, flat key lists
	smallBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(1024) // 1KB
		},
	}

	// Medium strings (1KB - 16KB) - rendered config subtrees
	mediumBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(16 * 1024) // 16KB
		},
	}

	// Large strings (16KB+) - serialized experiment sweeps, CSV exports
	largeBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(64 * 1024) // 64KB
		},
	}
)

// BuilderSize represents different builder sizes
type BuilderSize int

const (
	Small  BuilderSize = iota // < 1KB
	Medium                    // 1KB - 16KB
	Large                     // 16KB+
)

// GetBuilder retrieves a pooled builder of the specified size
func GetBuilder(size BuilderSize) *Builder {
	var pool *sync.Pool
	switch size {
	case Small:
		pool = smallBuilderPool
	case Medium:
		pool = mediumBuilderPool
	case Large:
		pool = largeBuilderPool
	default:
		pool = smallBuilderPool
	}

	builder := pool.Get().(*Builder)
	builder.Reset()
	return builder
}

// PutBuilder returns a builder to the appropriate pool
func PutBuilder(builder *Builder, size BuilderSize) {
	if builder == nil {
		return
	}

	var pool *sync.Pool
	switch size {
	case Small:
		pool = smallBuilderPool
	case Medium:
		pool = mediumBuilderPool
	case Large:
		pool = largeBuilderPool
	default:
		pool = smallBuilderPool
	}

	builder.Reset()
	pool.Put(builder)
}

// Sprintf provides a pooled alternative to fmt.Sprintf
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	// Estimate size based on format string and args
	estimatedSize := len(format) + len(args)*16 // rough estimate

	size := Small
	if estimatedSize > 16*1024 {
		size = Large
	} else if estimatedSize > 1024 {
		size = Medium
	}

	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	fmt.Fprintf(builder, format, args...)

	return Clone(builder.String())
}

// JoinPooled efficiently joins strings using pooled builder
func JoinPooled(strings []string, delimiter string) string {
	if len(strings) == 0 {
		return ""
	}
	if len(strings) == 1 {
		return strings[0]
	}

	totalLen := 0
	for _, s := range strings {
		totalLen += len(s)
	}
	totalLen += (len(strings) - 1) * len(delimiter)

	size := Small
	if totalLen > 16*1024 {
		size = Large
	} else if totalLen > 1024 {
		size = Medium
	}

	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	builder.WriteString(strings[0])
	for i := 1; i < len(strings); i++ {
		builder.WriteString(delimiter)
		builder.WriteString(strings[i])
	}

	return Clone(builder.String())
}

// CSVBuilder provides optimized CSV string building for config comparison
// exports. It holds a pooled builder; call String exactly once and then
// Release to return the builder to its pool.
type CSVBuilder struct {
	builder  *Builder
	size     BuilderSize
	rowCount int
}

// NewCSVBuilder creates a new CSV builder
func NewCSVBuilder(estimatedRows, estimatedCols int) *CSVBuilder {
	estimatedSize := estimatedRows * estimatedCols * 20 // rough 20 chars per cell

	size := Small
	if estimatedSize > 16*1024 {
		size = Large
	} else if estimatedSize > 1024 {
		size = Medium
	}

	return &CSVBuilder{
		builder:  GetBuilder(size),
		size:     size,
		rowCount: 0,
	}
}

// WriteHeader writes CSV header
func (cb *CSVBuilder) WriteHeader(headers []string) {
	if len(headers) == 0 {
		return
	}

	cb.writeCSVField(headers[0])
	for i := 1; i < len(headers); i++ {
		cb.builder.WriteByte(',')
		cb.writeCSVField(headers[i])
	}
	cb.builder.WriteByte('\n')
}

// WriteRow writes a CSV row
func (cb *CSVBuilder) WriteRow(fields []string) {
	if len(fields) == 0 {
		return
	}

	cb.writeCSVField(fields[0])
	for i := 1; i < len(fields); i++ {
		cb.builder.WriteByte(',')
		cb.writeCSVField(fields[i])
	}
	cb.builder.WriteByte('\n')
	cb.rowCount++
}

// writeCSVField writes a single CSV field with proper escaping
func (cb *CSVBuilder) writeCSVField(field string) {
	needsQuoting := Contains(field, ",") || Contains(field, "\"") || Contains(field, "\n")

	if needsQuoting {
		cb.builder.WriteByte('"')
		for i := 0; i < len(field); i++ {
			if field[i] == '"' {
				cb.builder.WriteString("\"\"") // Escape quotes
			} else {
				cb.builder.WriteByte(field[i])
			}
		}
		cb.builder.WriteByte('"')
	} else {
		cb.builder.WriteString(field)
	}
}

// RowCount returns the number of data rows written so far
func (cb *CSVBuilder) RowCount() int {
	return cb.rowCount
}

// String returns the built CSV string as owned memory
func (cb *CSVBuilder) String() string {
	return Clone(cb.builder.String())
}

// Release returns the underlying builder to its pool
func (cb *CSVBuilder) Release() {
	PutBuilder(cb.builder, cb.size)
	cb.builder = nil
}
