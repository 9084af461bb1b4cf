// Package redact removes secrets from source code before it is sent to any
// LLM provider.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, database connection strings, and provider-specific tokens
// (Anthropic, OpenAI, GitHub, Slack). Matches are replaced with [REDACTED];
// the rest of the code is passed through unchanged so the model still sees
// the real program structure.
package redact
