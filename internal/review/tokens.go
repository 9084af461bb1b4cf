package review

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encoderMu sync.RWMutex
	encoders  = map[string]*tiktoken.Tiktoken{}
)

// EstimateTokens estimates how many tokens text costs for model. It uses a
// tiktoken encoder when one is available for the model and falls back to a
// bytes/4 heuristic otherwise (Claude models, or when the encoding data
// cannot be loaded).
func EstimateTokens(text, model string) int {
	enc := encoderForModel(model)
	if enc == nil {
		return heuristicTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

func heuristicTokens(text string) int {
	n := len(text) / 4
	if n == 0 && text != "" {
		n = 1
	}
	return n
}

func encoderForModel(model string) *tiktoken.Tiktoken {
	if !strings.HasPrefix(model, "gpt-") {
		return nil
	}

	encoderMu.RLock()
	enc, ok := encoders[model]
	encoderMu.RUnlock()
	if ok {
		return enc
	}

	encoderMu.Lock()
	defer encoderMu.Unlock()
	if enc, ok := encoders[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Newer models may not be in tiktoken's table yet.
		enc, err = tiktoken.GetEncoding("o200k_base")
		if err != nil {
			encoders[model] = nil
			return nil
		}
	}
	encoders[model] = enc
	return enc
}
