package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

// anthropicBackend talks to the Anthropic messages API through the
// official SDK.
type anthropicBackend struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
}

func newAnthropicBackend(apiKey string, info ModelInfo) *anthropicBackend {
	return &anthropicBackend{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       info.Model,
		temperature: info.Temperature,
		maxTokens:   info.MaxOutputTokens,
	}
}

func (b *anthropicBackend) params(prompt string) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   int64(b.maxTokens),
		Temperature: anthropic.Float(b.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

func (b *anthropicBackend) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Messages.New(ctx, b.params(prompt))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text content in response")
	}
	return sb.String(), nil
}

func (b *anthropicBackend) stream(ctx context.Context, prompt string) (Stream, error) {
	s := b.client.Messages.NewStreaming(ctx, b.params(prompt))
	if err := s.Err(); err != nil {
		s.Close()
		return nil, err
	}
	return &anthropicStream{s: s}, nil
}

// probe sends a minimal 10-token message round trip.
func (b *anthropicBackend) probe(ctx context.Context) error {
	_, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: 10,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Hi")),
		},
	})
	return err
}

type anthropicStream struct {
	s    *ssestream.Stream[anthropic.MessageStreamEventUnion]
	text string
}

func (s *anthropicStream) Next() bool {
	for s.s.Next() {
		event := s.s.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				s.text = delta.Text
				return true
			}
		}
	}
	return false
}

func (s *anthropicStream) Text() string { return s.text }
func (s *anthropicStream) Err() error   { return s.s.Err() }
func (s *anthropicStream) Close() error { return s.s.Close() }
