package llm

import (
	"sort"
	"strings"
)

// Provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ModelInfo describes the model a client is configured for. Immutable for
// the client's lifetime.
type ModelInfo struct {
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	ContextWindow   int     `json:"contextWindow"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type modelCaps struct {
	maxOutputTokens int
	contextWindow   int
}

// modelTable is the static capability table. Unknown (provider, model)
// pairs are a construction-time error.
var modelTable = map[string]map[string]modelCaps{
	ProviderOpenAI: {
		"gpt-5.1":             {16384, 128000},
		"gpt-5":               {16384, 128000},
		"gpt-5-mini":          {16384, 128000},
		"gpt-5-nano":          {16384, 128000},
		"gpt-5.1-chat-latest": {16384, 128000},
		"gpt-5-chat-latest":   {16384, 128000},
		"gpt-5.1-codex":       {16384, 128000},
		"gpt-5-codex":         {16384, 128000},
		"gpt-5-pro":           {16384, 128000},
		"gpt-4.1":             {16384, 128000},
		"gpt-4.1-mini":        {16384, 128000},
		"gpt-4.1-nano":        {16384, 128000},
		"gpt-4":               {8192, 8192},
		"gpt-4-turbo":         {4096, 128000},
		"gpt-4o":              {4096, 128000},
		"gpt-4o-2024-05-13":   {4096, 128000},
		"gpt-4o-mini":         {16384, 128000},
		"gpt-3.5-turbo":       {4096, 16385},
		"gpt-realtime":        {4096, 128000},
	},
	ProviderAnthropic: {
		"claude-3-5-sonnet-20241022": {8192, 200000},
		"claude-3-5-haiku-20241022":  {8192, 200000},
		"claude-3-opus-20240229":     {4096, 200000},
		"claude-3-sonnet-20240229":   {4096, 200000},
		"claude-3-haiku-20240307":    {4096, 200000},
	},
}

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-20241022",
}

// DefaultModel returns the default model for a provider, or "" for an
// unknown provider.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

func lookupModel(provider, model string) (modelCaps, bool) {
	models, ok := modelTable[provider]
	if !ok {
		return modelCaps{}, false
	}
	caps, ok := models[model]
	return caps, ok
}

// KnownModels returns the capability table as a sorted list, providers in
// alphabetical order and models alphabetical within each provider.
func KnownModels() []ModelInfo {
	var out []ModelInfo
	for provider, models := range modelTable {
		for model, caps := range models {
			out = append(out, ModelInfo{
				Provider:        provider,
				Model:           model,
				ContextWindow:   caps.contextWindow,
				MaxOutputTokens: caps.maxOutputTokens,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// requestShape selects which parameter set a model family accepts.
type requestShape int

const (
	// shapeMaxTokens sends max_tokens plus temperature.
	shapeMaxTokens requestShape = iota
	// shapeMaxCompletionTokens sends max_completion_tokens and omits
	// temperature. Used by the gpt-5 and gpt-4.1 families.
	shapeMaxCompletionTokens
)

var maxCompletionTokenPrefixes = []string{"gpt-5", "gpt-4.1"}

func shapeForModel(model string) requestShape {
	for _, prefix := range maxCompletionTokenPrefixes {
		if strings.HasPrefix(model, prefix) {
			return shapeMaxCompletionTokens
		}
	}
	return shapeMaxTokens
}
