// Package config loads and merges mend configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (MEND_PROVIDER, MEND_MODEL, MEND_FORMAT, etc.)
//  3. Config file ($XDG_CONFIG_HOME/mend/config.json)
//  4. Built-in defaults
//
// A .env file in the working directory is loaded into the environment before
// merging; it never overrides variables already set. Use [Load] to obtain a
// merged [Config], [Save] to write the config file, and [SetField] to update
// a single key.
package config
