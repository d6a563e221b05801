// Package treeconf provides hierarchical, ordered, scalar-keyed
// configuration trees for parameterizing data pipelines and research
// experiments.
//
// A Config is a recursive mapping: string or int keys, insertion order
// preserved, values that are either plain leaves or nested Config
// instances. The same tree drives a whole pipeline run, so the package
// is built around keeping large parameter sets legible, comparable and
// reproducible.
//
// # Core Features
//
// Compound-key navigation:
//
//	cfg := config.New()
//	cfg.MustSet(config.Path{"read_data", "file_name"}, "prices.csv")
//	v, err := cfg.Get(config.Path{"read_data", "file_name"})
//
// Explicit merge policies. Updates collide deliberately: the caller
// chooses between failing on overwrite, always overwriting, or keeping
// existing values.
//
// Read-only locking. MarkReadOnly freezes a tree (recursively) once a
// run starts, so late writes surface as errors instead of silently
// changing results.
//
// Flattening and diffing. Trees flatten to dotted (path, value) pairs,
// which power set operations across experiment configs:
//
//	shared, _ := config.IntersectConfigs(configs)
//	diffs, _ := config.DiffConfigs(configs)
//
// Serialization. Configs round-trip through a compact single-line wire
// text (parsed by a restricted parser, never evaluated) and convert to
// ordered JSON and YAML via the Dict mirror type.
//
// # Key Packages
//
//	pkg/config  - the Config tree, flattening, diffing, serialization
//	pkg/errors  - structured error handling
//	pkg/logger  - structured logging
//	pkg/strings - pooled string building
//	pkg/json    - pooled JSON encoding
//
// # Command Line
//
// The treeconf CLI renders, flattens, diffs and converts config files:
//
//	treeconf render experiment.cfg
//	treeconf diff base.cfg tuned.cfg --csv
//	treeconf convert experiment.cfg --to yaml
package treeconf
