package config

import (
	"github.com/quantfoundry/treeconf/pkg/errors"
)

// Cross-config utilities for detecting parameter drift between experiment
// runs. Values are compared through their canonical repr form, since
// container leaves (lists, tuples) are not comparable Go values.

// ValidateConfigs fails when any two configs in the list render to an
// identical string.
func ValidateConfigs(configs []*Config) error {
	seen := make(map[string]int, len(configs))
	for i, cfg := range configs {
		rendered := cfg.String()
		if j, dup := seen[rendered]; dup {
			return errors.Newf(errors.ErrorTypeDuplicateConfig,
				"configs at positions %d and %d are identical:\n%s", j, i, rendered)
		}
		seen[rendered] = i
	}
	return nil
}

// valueSig is the hashable coercion of a leaf value.
func valueSig(value interface{}) string {
	return reprValue(value)
}

// IntersectConfigs returns the parameters shared by every config in the
// list: the set-intersection of (path, value) pairs. Key order follows
// the first config, and the first config's original value objects are
// kept rather than their coerced forms.
func IntersectConfigs(configs []*Config) (*Config, error) {
	if len(configs) == 0 {
		return nil, errors.New(errors.ErrorTypeInvalidConfig,
			"cannot intersect an empty list of configs")
	}
	indexes := make([]map[string]FlatEntry, len(configs)-1)
	for i, other := range configs[1:] {
		indexes[i], _ = other.flatIndex()
	}
	first := configs[0].Flatten()
	shared := make([]FlatEntry, 0, len(first))
	for _, entry := range first {
		key := pathKey(entry.Path)
		sig := valueSig(entry.Value)
		inAll := true
		for _, index := range indexes {
			otherEntry, ok := index[key]
			if !ok || valueSig(otherEntry.Value) != sig {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, entry)
		}
	}
	return FromFlat(shared)
}

// SubtractConfig returns every parameter of minuend that is absent from
// subtrahend or present with a different value.
func SubtractConfig(minuend, subtrahend *Config) (*Config, error) {
	if minuend == nil {
		return nil, errors.New(errors.ErrorTypeInvalidConfig, "minuend config is nil")
	}
	if subtrahend == nil {
		return nil, errors.New(errors.ErrorTypeInvalidConfig, "subtrahend config is nil")
	}
	index, _ := subtrahend.flatIndex()
	var kept []FlatEntry
	for _, entry := range minuend.Flatten() {
		other, ok := index[pathKey(entry.Path)]
		if ok && valueSig(other.Value) == valueSig(entry.Value) {
			continue
		}
		kept = append(kept, entry)
	}
	return FromFlat(kept)
}

// DiffConfigs returns, for each input config, its parameters unique
// relative to the common baseline (the intersection of all configs).
// Output order matches input order.
func DiffConfigs(configs []*Config) ([]*Config, error) {
	intersection, err := IntersectConfigs(configs)
	if err != nil {
		return nil, err
	}
	out := make([]*Config, len(configs))
	for i, cfg := range configs {
		diff, err := SubtractConfig(cfg, intersection)
		if err != nil {
			return nil, err
		}
		out[i] = diff
	}
	return out, nil
}
