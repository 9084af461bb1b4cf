// Package cache provides a file-based cache for LLM analysis responses.
//
// Entries are keyed by a SHA-256 hash of provider, model, the ordered
// review-category set, and the (already redacted) source code. Each entry
// stores the raw model response with a creation timestamp and a TTL in
// seconds; expired entries are skipped on read.
//
// The default cache directory is $XDG_CACHE_HOME/mend or the
// OS-appropriate equivalent. ForModel adapts a Cache to the batch
// analyzer's response-cache interface by fixing the provider and model.
package cache
