// Package llm provides a provider-agnostic client for chat/completion
// text-generation backends.
//
// Supported providers: OpenAI (GPT) and Anthropic (Claude), via their
// official Go SDKs. A static capability table maps each known model to its
// context window and default output-token cap; construction fails with a
// typed error when the model is unknown, the provider credential is absent
// from the environment, or the transport cannot be built.
//
// Both streaming and non-streaming calls are supported. Streaming responses
// are exposed as a one-shot, forward-only [Stream] iterator with explicit
// Close semantics; [Client.Analyze] drains the stream internally and returns
// the concatenated text. Transient transport failures are retried with
// exponential back-off (1s, 2s, 4s, ...) up to a configurable attempt
// budget, after which a [ConnectionFailureError] wraps the last error.
//
// Use [New] to construct a Client from [Options].
package llm
