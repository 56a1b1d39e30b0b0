package explain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/leefowlercu/code-explainer/internal/providers"
)

// ErrEmptyResponse is returned when a provider answers with no usable text.
var ErrEmptyResponse = errors.New("empty explanation")

// buildSystemPrompt creates the system prompt shared by all providers.
func buildSystemPrompt() string {
	return `You are a senior engineer explaining source code to a colleague.
You receive one piece of a method or function, possibly a fragment of a longer body.
Explain what the piece does and how, in a few sentences of plain prose.
Refer to the enclosing type and method by name when it helps.
Do not repeat the code and do not wrap your answer in markdown.`
}

// buildUserPrompt renders the request context and the piece.
func buildUserPrompt(req providers.ExplainRequest) string {
	var b strings.Builder

	if req.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", req.Language)
	}
	if req.EnclosingName != "" {
		fmt.Fprintf(&b, "Enclosing type: %s\n", req.EnclosingName)
	}
	if req.UnitName != "" {
		fmt.Fprintf(&b, "Method: %s\n", req.UnitName)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	b.WriteString("Explain this code:\n```")
	b.WriteString(req.Language)
	b.WriteString("\n")
	b.WriteString(req.Piece)
	if !strings.HasSuffix(req.Piece, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```")

	return b.String()
}

// NormalizeResponse strips markdown fences and unwraps a JSON
// {"explanation": "..."} object if the model returned one.
func NormalizeResponse(text string) (string, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop the info string on the opening fence line
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = ""
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "{") {
		var wrapped struct {
			Explanation string `json:"explanation"`
			Summary     string `json:"summary"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err == nil {
			switch {
			case wrapped.Explanation != "":
				text = strings.TrimSpace(wrapped.Explanation)
			case wrapped.Summary != "":
				text = strings.TrimSpace(wrapped.Summary)
			}
		}
	}

	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
