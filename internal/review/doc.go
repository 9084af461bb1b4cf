// Package review holds the two pure collaborators of the batch engine: the
// prompt builder, which turns source code plus a category set into a model
// request, and the report generator, which turns an original/improved code
// pair into a markdown report.
//
// Both are deterministic string-in/string-out functions and never fail,
// including for model output that does not parse as code. The category
// taxonomy, prompt templates, and few-shot examples live here as static
// data.
package review
