// Package config implements the hierarchical configuration tree used to
// thread experiment and pipeline parameters through research code.
//
// A Config is a recursive, ordered, scalar-keyed mapping. Values are
// either leaves (anything except a raw mapping) or nested Config
// instances owned exclusively by their parent. Keys are strings or ints;
// compound keys (Path) navigate several levels at once.
//
// Example usage:
//
//	cfg := config.New()
//	cfg.MustSet("nrows", 10000)
//	cfg.MustSet(config.Path{"read_data", "file_name"}, "prices.parquet")
//
//	nrows, err := config.As[int](cfg, "nrows")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Configs support a configurable overwrite policy for Update, a
// recursively propagated read-only lock, flattening to path/value pairs,
// dict and wire-text serialization, and diff/intersection utilities for
// detecting parameter drift across experiment runs.
//
// The wire format is a single-line constructor-call expression
// (see Serialize and Parse) suitable for shipping a config between
// processes through an environment variable.
package config
