package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// credentialEnv maps a provider to the environment variable holding its
// API key.
var credentialEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Options configure a Client. Provider is required; every other field has a
// working default.
type Options struct {
	// Provider selects the backend: ProviderOpenAI or ProviderAnthropic.
	Provider string
	// Model is the model name. Empty selects the provider default.
	Model string
	// TimeoutSeconds bounds each network call. Defaults to 60.
	TimeoutSeconds int
	// Temperature for sampling. Defaults to 0.7. Ignored by model
	// families that do not accept a temperature parameter.
	Temperature float64
	// MaxOutputTokens caps the response length. Zero uses the capability
	// table default for the model.
	MaxOutputTokens int
	// MaxRetries is the total attempt budget for Analyze. Defaults to 3.
	// Set to 1 to disable in-client retry when an outer layer owns the
	// retry policy.
	MaxRetries int
	// Logger receives call-level diagnostics. Nil means silent.
	Logger *slog.Logger
}

// backend is the provider transport behind a Client.
type backend interface {
	complete(ctx context.Context, prompt string) (string, error)
	stream(ctx context.Context, prompt string) (Stream, error)
	probe(ctx context.Context) error
}

// Client is a provider-agnostic handle to a text-generation backend. Its
// configuration is immutable after New; a single Client is safe to share
// across sequential calls.
type Client struct {
	info       ModelInfo
	timeout    time.Duration
	maxRetries int
	backend    backend
	log        *slog.Logger
	sleep      sleepFunc
}

// New constructs a Client. It resolves the model against the capability
// table, reads the provider credential from the environment, and builds the
// underlying transport. All three failure modes are fatal: the caller must
// not start a run with a nil Client.
func New(opts Options) (*Client, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel(opts.Provider)
	}
	caps, ok := lookupModel(opts.Provider, model)
	if !ok {
		return nil, &ModelNotFoundError{Provider: opts.Provider, Model: model}
	}

	envVar := credentialEnv[opts.Provider]
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, &CredentialMissingError{Provider: opts.Provider, EnvVar: envVar}
	}

	info := ModelInfo{
		Provider:        opts.Provider,
		Model:           model,
		ContextWindow:   caps.contextWindow,
		MaxOutputTokens: caps.maxOutputTokens,
		Temperature:     opts.Temperature,
	}
	if opts.MaxOutputTokens > 0 {
		info.MaxOutputTokens = opts.MaxOutputTokens
	}
	if info.Temperature == 0 {
		info.Temperature = 0.7
	}

	b, err := newBackend(apiKey, info)
	if err != nil {
		return nil, &ClientInitError{Provider: opts.Provider, Err: err}
	}

	timeout := opts.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Client{
		info:       info,
		timeout:    time.Duration(timeout) * time.Second,
		maxRetries: maxRetries,
		backend:    b,
		log:        log,
		sleep:      sleepContext,
	}, nil
}

func newBackend(apiKey string, info ModelInfo) (backend, error) {
	switch info.Provider {
	case ProviderOpenAI:
		return newOpenAIBackend(apiKey, info), nil
	case ProviderAnthropic:
		return newAnthropicBackend(apiKey, info), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", info.Provider)
	}
}

// ModelInfo returns the configuration the client was constructed with.
func (c *Client) ModelInfo() ModelInfo { return c.info }

// TestConnection issues a minimal round trip to verify the credential and
// the backend are reachable. No retry: this is an explicit health probe.
func (c *Client) TestConnection(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.backend.probe(cctx); err != nil {
		return &ConnectionError{Provider: c.info.Provider, Err: err}
	}
	return nil
}

// AnalyzeOptions control a single Analyze call.
type AnalyzeOptions struct {
	// Streaming drains an incremental chunk sequence instead of waiting
	// for one complete payload. The returned text is identical either
	// way.
	Streaming bool
	// OnChunk, when non-nil, observes each chunk of a streaming call as
	// it arrives. Ignored for non-streaming calls.
	OnChunk func(string)
}

// Analyze sends prompt to the model and returns the full response text.
// The retry budget wraps the entire call: connection, first byte, and, for
// streaming calls, the full drain. Failed attempts wait 2^attempt seconds
// before retrying; after the budget is spent the last error is returned
// wrapped in a ConnectionFailureError.
func (c *Client) Analyze(ctx context.Context, prompt string, opts AnalyzeOptions) (string, error) {
	var out string
	attempt := 0
	err := retryWithBackoff(ctx, c.maxRetries, expBackoff, c.sleep, func() error {
		attempt++
		text, err := c.callOnce(ctx, prompt, opts)
		if err != nil {
			c.log.Warn("analyze attempt failed",
				"provider", c.info.Provider,
				"model", c.info.Model,
				"attempt", attempt,
				"max", c.maxRetries,
				"error", err)
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &ConnectionFailureError{Provider: c.info.Provider, Attempts: c.maxRetries, Err: err}
	}
	return out, nil
}

func (c *Client) callOnce(ctx context.Context, prompt string, opts AnalyzeOptions) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var text string
	if opts.Streaming {
		st, err := c.backend.stream(cctx, prompt)
		if err != nil {
			return "", err
		}
		text, err = drain(st, opts.OnChunk)
		if err != nil {
			return "", err
		}
	} else {
		var err error
		text, err = c.backend.complete(cctx, prompt)
		if err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

// Stream starts a streaming call and hands the chunk sequence to the
// caller. The caller owns the stream and must Close it; abandoning it
// mid-read releases the connection. No retry wraps a caller-held stream.
func (c *Client) Stream(ctx context.Context, prompt string) (Stream, error) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	st, err := c.backend.stream(cctx, prompt)
	if err != nil {
		cancel()
		return nil, err
	}
	return &timedStream{Stream: st, cancel: cancel}, nil
}
