package config

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/quantfoundry/treeconf/pkg/errors"
	"github.com/quantfoundry/treeconf/pkg/logger"
	stringpool "github.com/quantfoundry/treeconf/pkg/strings"
)

// UpdateMode governs what Update does when it encounters a path that
// already exists in the receiver.
type UpdateMode string

const (
	// UpdateAssertOnOverwrite fails the update when a path collides.
	UpdateAssertOnOverwrite UpdateMode = "assert_on_overwrite"
	// UpdateOverwrite always assigns, replacing existing values.
	UpdateOverwrite UpdateMode = "overwrite"
	// UpdateAssignIfMissing keeps existing values and warns.
	UpdateAssignIfMissing UpdateMode = "assign_if_missing"
)

// ClobberMode is a reserved knob for write-after-read auditing. It is
// stored and validated but not yet enforced.
type ClobberMode string

const (
	// ClobberAllowWriteAfterRead permits writing a key after it was read.
	ClobberAllowWriteAfterRead ClobberMode = "allow_write_after_read"
	// ClobberAssertOnWriteAfterRead reserves strict auditing semantics.
	ClobberAssertOnWriteAfterRead ClobberMode = "assert_on_write_after_read"
)

// ReportMode selects how lookup failures are surfaced.
type ReportMode string

const (
	// ReportNone propagates the raw error with no extra context. Used for
	// membership tests where building a full diagnostic would be wasted.
	ReportNone ReportMode = "none"
	// ReportLogError logs the offending key and the full subtree, then
	// propagates the original error unchanged. The default.
	ReportLogError ReportMode = "verbose_log_error"
	// ReportVerbose folds the offending key and the full subtree into the
	// returned error message itself.
	ReportVerbose ReportMode = "verbose_exception"
)

// Entry is a single (key, value) pair for constructing a Config.
type Entry struct {
	Key   interface{}
	Value interface{}
}

// Config is a recursive, ordered, scalar-keyed parameter tree. Values are
// leaves (any non-mapping value) or nested *Config instances owned
// exclusively by this node. Not safe for concurrent mutation; the
// read-only lock is a cooperative guard, not a concurrency primitive.
type Config struct {
	entries     orderedMap
	updateMode  UpdateMode
	clobberMode ClobberMode
	readOnly    bool
}

// New creates an empty Config with the default modes
// (assert on overwrite, assert on write-after-read).
func New() *Config {
	return &Config{
		entries:     newOrderedMap(),
		updateMode:  UpdateAssertOnOverwrite,
		clobberMode: ClobberAssertOnWriteAfterRead,
	}
}

// NewWithModes creates an empty Config with explicit modes. An empty
// update mode leaves the default unset, forcing Update callers to supply
// one. Unknown mode strings fail with an invalid-value error.
func NewWithModes(updateMode UpdateMode, clobberMode ClobberMode) (*Config, error) {
	if err := checkUpdateMode(updateMode, true); err != nil {
		return nil, err
	}
	if err := checkClobberMode(clobberMode); err != nil {
		return nil, err
	}
	return &Config{
		entries:     newOrderedMap(),
		updateMode:  updateMode,
		clobberMode: clobberMode,
	}, nil
}

// FromEntries builds a Config from ordered (key, value) pairs. Each pair
// goes through Set, so nested mappings must already be *Config values.
func FromEntries(entries []Entry) (*Config, error) {
	c := New()
	for _, e := range entries {
		if err := c.Set(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func checkUpdateMode(mode UpdateMode, allowEmpty bool) error {
	switch mode {
	case UpdateAssertOnOverwrite, UpdateOverwrite, UpdateAssignIfMissing:
		return nil
	case "":
		if allowEmpty {
			return nil
		}
	}
	return errors.Newf(errors.ErrorTypeInvalidValue,
		"invalid update mode %q", string(mode))
}

func checkClobberMode(mode ClobberMode) error {
	switch mode {
	case ClobberAllowWriteAfterRead, ClobberAssertOnWriteAfterRead:
		return nil
	}
	return errors.Newf(errors.ErrorTypeInvalidValue,
		"invalid clobber mode %q", string(mode))
}

// SetUpdateMode changes the stored default update mode.
func (c *Config) SetUpdateMode(mode UpdateMode) error {
	if err := checkUpdateMode(mode, false); err != nil {
		return err
	}
	c.updateMode = mode
	return nil
}

// UpdateModeValue returns the stored default update mode.
func (c *Config) UpdateModeValue() UpdateMode {
	return c.updateMode
}

// SetClobberMode changes the stored clobber mode.
func (c *Config) SetClobberMode(mode ClobberMode) error {
	if err := checkClobberMode(mode); err != nil {
		return err
	}
	c.clobberMode = mode
	return nil
}

// ClobberModeValue returns the stored clobber mode.
func (c *Config) ClobberModeValue() ClobberMode {
	return c.clobberMode
}

// isRawMapping reports whether value is a mapping literal that must not
// be stored as a leaf. Nested configs are fine; everything map-shaped
// else has to be wrapped into a Config first.
func isRawMapping(value interface{}) bool {
	switch value.(type) {
	case nil, *Config:
		return false
	case *Dict, Dict:
		return true
	}
	return reflect.ValueOf(value).Kind() == reflect.Map
}

// Set assigns value at key, which may be a scalar (string or int) or a
// compound Path. Intermediate levels of a compound key are created as
// empty sub-configs; descending through an existing leaf fails.
func (c *Config) Set(key, value interface{}) error {
	if isRawMapping(value) {
		return errors.Newf(errors.ErrorTypeInvalidValue,
			"cannot set key=%v to a raw mapping of type %T: wrap it in a Config first",
			key, value)
	}
	path, err := normalizeKey(key)
	if err != nil {
		return err
	}
	return c.setPath(path, value)
}

func (c *Config) setPath(path Path, value interface{}) error {
	if c.readOnly {
		return errors.Newf(errors.ErrorTypeReadOnly,
			"cannot set key=%s to %s: config is read-only\nconfig=\n%s",
			keyRepr(path[0]), reprValue(value), c.String())
	}
	head := path[0]
	if len(path) == 1 {
		return c.entries.set(head, value)
	}
	tail := path[1:]
	if c.entries.has(head) {
		existing, err := c.entries.get(head)
		if err != nil {
			return err
		}
		child, ok := existing.(*Config)
		if !ok {
			return errors.Newf(errors.ErrorTypeKind,
				"cannot set key=%s under key=%s: existing value of type %T is not a config",
				keyRepr(tail[0]), keyRepr(head), existing)
		}
		return child.setPath(tail, value)
	}
	child, err := c.AddSubconfig(head)
	if err != nil {
		return err
	}
	return child.setPath(tail, value)
}

// MustSet is Set for builder-style construction; it panics on error.
func (c *Config) MustSet(key, value interface{}) {
	if err := c.Set(key, value); err != nil {
		panic(err)
	}
}

// resolve walks a compound path, producing raw lookup errors with the
// keys of the level where resolution failed.
func (c *Config) resolve(path Path) (interface{}, error) {
	value, err := c.entries.get(path[0])
	if err != nil {
		return nil, err
	}
	if len(path) == 1 {
		return value, nil
	}
	child, ok := value.(*Config)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeNotFound,
			"key=%s not reachable: value at key=%s is a leaf of type %T, not a config",
			keyRepr(path[1]), keyRepr(path[0]), value)
	}
	return child.resolve(path[1:])
}

// Get returns the value at key (scalar or Path), logging the offending
// key and the full subtree on failure (ReportLogError semantics).
func (c *Config) Get(key interface{}) (interface{}, error) {
	return c.GetWith(key, ReportLogError)
}

// GetWith is Get with an explicit failure report mode.
func (c *Config) GetWith(key interface{}, mode ReportMode) (interface{}, error) {
	switch mode {
	case ReportNone, ReportLogError, ReportVerbose:
	default:
		return nil, errors.Newf(errors.ErrorTypeInvalidValue,
			"invalid report mode %q", string(mode))
	}
	path, err := normalizeKey(key)
	if err == nil {
		var value interface{}
		value, err = c.resolve(path)
		if err == nil {
			return value, nil
		}
	}
	switch mode {
	case ReportNone:
		return nil, err
	case ReportVerbose:
		return nil, errors.Wrap(err, errors.TypeOf(err),
			stringpool.Sprintf("lookup of key=%v failed\nconfig=\n%s", key, c.String()))
	default:
		logger.Error("config lookup failed",
			zap.String("key", stringpool.Sprintf("%v", key)),
			zap.String("config", c.String()),
			zap.Error(err))
		return nil, err
	}
}

// GetDefault returns the value at key, or fallback when the key is
// missing. Errors other than a missing key still propagate.
func (c *Config) GetDefault(key, fallback interface{}) (interface{}, error) {
	value, err := c.GetWith(key, ReportNone)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeNotFound) {
			return fallback, nil
		}
		return nil, err
	}
	return value, nil
}

// As returns the value at key checked against type T.
func As[T any](c *Config, key interface{}) (T, error) {
	var zero T
	value, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, errors.Newf(errors.ErrorTypeKind,
			"value at key=%v has type %T, expected %T", key, value, zero)
	}
	return typed, nil
}

// AsDefault returns the value at key checked against type T, or fallback
// when the key is missing. A present value of the wrong type still fails.
func AsDefault[T any](c *Config, key interface{}, fallback T) (T, error) {
	var zero T
	value, err := c.GetDefault(key, fallback)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, errors.Newf(errors.ErrorTypeKind,
			"value at key=%v has type %T, expected %T", key, value, zero)
	}
	return typed, nil
}

// Has reports whether key (scalar or Path) resolves to a value.
func (c *Config) Has(key interface{}) bool {
	_, err := c.GetWith(key, ReportNone)
	return err == nil
}

// Len returns the number of top-level keys. An empty config is "falsy":
// Len()==0.
func (c *Config) Len() int {
	return c.entries.len()
}

// Keys returns the top-level keys in insertion order.
func (c *Config) Keys() []interface{} {
	return c.entries.orderedKeys()
}

// ReadOnly reports whether this node is locked against writes.
func (c *Config) ReadOnly() bool {
	return c.readOnly
}

// MarkReadOnly sets the read-only flag on this node and recursively on
// every currently nested Config. Sub-configs added afterwards are not
// retroactively protected until MarkReadOnly is invoked again.
func (c *Config) MarkReadOnly(readOnly bool) {
	c.readOnly = readOnly
	for _, key := range c.entries.keys {
		if child, ok := c.entries.values[key].(*Config); ok {
			child.MarkReadOnly(readOnly)
		}
	}
}

// AddSubconfig creates, inserts and returns a new empty Config under key.
// The key must not already exist at this level.
func (c *Config) AddSubconfig(key interface{}) (*Config, error) {
	if err := checkScalarKey(key); err != nil {
		return nil, err
	}
	if c.readOnly {
		return nil, errors.Newf(errors.ErrorTypeReadOnly,
			"cannot add subconfig key=%s: config is read-only\nconfig=\n%s",
			keyRepr(key), c.String())
	}
	if c.entries.has(key) {
		return nil, errors.Newf(errors.ErrorTypeDuplicateKey,
			"key=%s already in %s", keyRepr(key), keyListRepr(c.entries.keys))
	}
	child := New()
	if err := c.entries.set(key, child); err != nil {
		return nil, err
	}
	return child, nil
}

// Subconfig returns the nested Config at key, failing when the value is
// a leaf.
func (c *Config) Subconfig(key interface{}) (*Config, error) {
	value, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	child, ok := value.(*Config)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeKind,
			"value at key=%v has type %T, not a config", key, value)
	}
	return child, nil
}

// Pop removes and returns the value for a top-level scalar key. It is not
// a path operation: compound keys are rejected.
func (c *Config) Pop(key interface{}) (interface{}, error) {
	if _, isPath := key.(Path); isPath {
		return nil, errors.New(errors.ErrorTypeKind,
			"pop takes a top-level scalar key, not a compound key")
	}
	return c.entries.delete(key)
}

// Update merges other into the receiver using the stored update mode.
func (c *Config) Update(other *Config) error {
	return c.UpdateWith(other, "")
}

// UpdateWith merges other into the receiver. The effective mode is the
// explicit argument when non-empty, else the receiver's stored default;
// with neither set the update fails. Assignment follows the compound-key
// Set path, so read-only nodes reject updates too.
func (c *Config) UpdateWith(other *Config, mode UpdateMode) error {
	if mode == "" {
		mode = c.updateMode
	}
	if mode == "" {
		return errors.New(errors.ErrorTypeInvalidConfig,
			"update mode not set: pass one explicitly or configure a default")
	}
	if err := checkUpdateMode(mode, false); err != nil {
		return err
	}
	for _, entry := range other.Flatten() {
		exists := c.hasPath(entry.Path)
		switch {
		case exists && mode == UpdateAssertOnOverwrite:
			old, _ := c.GetWith(entry.Path, ReportNone)
			return errors.Newf(errors.ErrorTypeOverwrite,
				"cannot overwrite key=%s: old value %s, new value %s\nself=\n%s\nother=\n%s",
				keyRepr(entry.Path.String()), reprValue(old), reprValue(entry.Value),
				c.String(), other.String())
		case exists && mode == UpdateAssignIfMissing:
			logger.Warn("skipping update of existing key",
				zap.String("key", entry.Path.String()))
			continue
		}
		if err := c.setFlat(entry); err != nil {
			return err
		}
	}
	return nil
}

// Copy produces a deep copy: no nested Config or slice value is shared
// with the receiver.
func (c *Config) Copy() *Config {
	out := &Config{
		entries:     newOrderedMap(),
		updateMode:  c.updateMode,
		clobberMode: c.clobberMode,
		readOnly:    c.readOnly,
	}
	for _, key := range c.entries.keys {
		//nolint:errcheck // keys were validated on the way in
		out.entries.set(key, deepCopyValue(c.entries.values[key]))
	}
	return out
}

func deepCopyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case *Config:
		return v.Copy()
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, elem := range v {
			out[i] = deepCopyValue(elem)
		}
		return out
	case Tuple:
		out := make(Tuple, len(v))
		for i, elem := range v {
			out[i] = deepCopyValue(elem)
		}
		return out
	default:
		return value
	}
}
