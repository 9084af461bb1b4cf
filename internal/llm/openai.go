package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

// openaiBackend talks to the OpenAI chat completions API through the
// official SDK.
type openaiBackend struct {
	client      openai.Client
	model       string
	shape       requestShape
	temperature float64
	maxTokens   int
}

func newOpenAIBackend(apiKey string, info ModelInfo) *openaiBackend {
	return &openaiBackend{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       info.Model,
		shape:       shapeForModel(info.Model),
		temperature: info.Temperature,
		maxTokens:   info.MaxOutputTokens,
	}
}

func (b *openaiBackend) params(prompt string) openai.ChatCompletionNewParams {
	p := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	switch b.shape {
	case shapeMaxCompletionTokens:
		p.MaxCompletionTokens = openai.Int(int64(b.maxTokens))
	default:
		p.MaxTokens = openai.Int(int64(b.maxTokens))
		p.Temperature = openai.Float(b.temperature)
	}
	return p
}

func (b *openaiBackend) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, b.params(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *openaiBackend) stream(ctx context.Context, prompt string) (Stream, error) {
	s := b.client.Chat.Completions.NewStreaming(ctx, b.params(prompt))
	if err := s.Err(); err != nil {
		s.Close()
		return nil, err
	}
	return &openaiStream{s: s}, nil
}

func (b *openaiBackend) probe(ctx context.Context) error {
	_, err := b.client.Models.List(ctx)
	return err
}

type openaiStream struct {
	s    *ssestream.Stream[openai.ChatCompletionChunk]
	text string
}

func (s *openaiStream) Next() bool {
	for s.s.Next() {
		chunk := s.s.Current()
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			s.text = chunk.Choices[0].Delta.Content
			return true
		}
	}
	return false
}

func (s *openaiStream) Text() string { return s.text }
func (s *openaiStream) Err() error   { return s.s.Err() }
func (s *openaiStream) Close() error { return s.s.Close() }
