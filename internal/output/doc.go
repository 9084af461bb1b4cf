// Package output persists per-file review reports and prints run
// summaries. Reports are written twice under the output directory:
// markdown under reports/markdown and a rendered HTML page under
// reports/html, both named <base>_review_<timestamp>.
package output
