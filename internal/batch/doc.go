// Package batch drives a list of source files through prompt construction,
// an LLM call, and report generation, one file at a time.
//
// A run is strictly sequential: one item's call must finish (success, retry
// exhaustion, or skip) before the next begins. Unusable inputs — empty,
// unreadable, or not valid UTF-8 — are skipped without touching the model.
// Usable inputs get up to three attempts with a one-second pause between
// them. The analyzer owns the retry policy for the batch path; it expects a
// client whose own retry is disabled so attempt counts stay exact.
//
// Progress and cancellation are cooperative callbacks checked at item
// boundaries. A cancelled run is not an error: it returns a valid Summary
// covering the items processed before the cancellation check fired.
package batch
