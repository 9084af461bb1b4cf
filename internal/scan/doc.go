// Package scan collects the input files for a batch run. Explicit file
// arguments are taken as-is; directory arguments are walked recursively
// with extension, exclusion, and size filters. The resulting item order is
// deterministic: argument order across arguments, lexicographic within a
// directory walk.
package scan
