package split

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tokenizer     *tiktoken.Tiktoken
	tokenizerOnce sync.Once
	tokenizerErr  error
)

// getTokenizer returns a cached cl100k_base encoder.
func getTokenizer() (*tiktoken.Tiktoken, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tokenizer, tokenizerErr
}

// TokenLength returns a LengthFunc that counts cl100k_base tokens, for
// bounding pieces by model tokens instead of characters.
func TokenLength() (LengthFunc, error) {
	enc, err := getTokenizer()
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer; %w", err)
	}
	return func(s string) int {
		return len(enc.Encode(s, nil, nil))
	}, nil
}

// LengthByName resolves a configured length mode ("chars" or "tokens").
func LengthByName(name string) (LengthFunc, error) {
	switch name {
	case "", "chars", "characters":
		return RuneLength, nil
	case "tokens":
		return TokenLength()
	default:
		return nil, fmt.Errorf("unknown length mode %q; expected chars or tokens", name)
	}
}
