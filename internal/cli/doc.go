// Package cli wires together the Cobra command tree for the mend binary.
//
// It defines the root command and all subcommands (analyze, models, history,
// config, cache, version), binds flags, reads configuration, drives the batch
// analyzer, and returns deterministic exit codes for scripting.
package cli
