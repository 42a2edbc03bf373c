// Package wire holds the chat-completions wire protocol types. Requests and
// responses marshal to the exact JSON shapes the remote endpoint expects;
// choices in a response arrive sorted by descending confidence and are never
// re-sorted here.
package wire

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`

	// N asks the endpoint for that many ranked candidate answers.
	N *int `json:"n,omitempty"`

	MaxTokens   *int              `json:"max_tokens,omitempty"`
	Temperature *float32          `json:"temperature,omitempty"`
	TopP        *float32          `json:"top_p,omitempty"`
	Stop        []string          `json:"stop,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Message struct {
	Role       string     `json:"role"`
	Content    Content    `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Content is the message body. Text-only content marshals as a plain JSON
// string; any media part forces the array form.
type Content []Part

type Part struct {
	Type string `json:"type"`

	Text       string      `json:"text,omitempty"`
	ImageURL   *ImageURL   `json:"image_url,omitempty"`
	InputAudio *InputAudio `json:"input_audio,omitempty"`
	File       *File       `json:"file,omitempty"`
}

const (
	PartText       = "text"
	PartImageURL   = "image_url"
	PartInputAudio = "input_audio"
	PartFile       = "file"
)

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type InputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type File struct {
	FileData string `json:"file_data"`
}

func (c Content) MarshalJSON() ([]byte, error) {
	textOnly := true
	for _, p := range c {
		if p.Type != PartText {
			textOnly = false
			break
		}
	}
	if textOnly {
		var b strings.Builder
		for _, p := range c {
			b.WriteString(p.Text)
		}
		return json.Marshal(b.String())
	}
	return json.Marshal([]Part(c))
}

func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*c = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*c = nil
			return nil
		}
		*c = Content{{Type: PartText, Text: s}}
		return nil
	}
	var parts []Part
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("message content must be a string or an array of parts: %w", err)
	}
	*c = Content(parts)
	return nil
}

// Text concatenates the text parts of the content.
func (c Content) Text() string {
	var b strings.Builder
	for _, p := range c {
		if p.Type == PartText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type Response struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`

	ServiceTier       string `json:"service_tier,omitempty"`
	SystemFingerprint string `json:"system_fingerprint,omitempty"`

	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one ranked candidate answer. The endpoint sorts choices by
// descending confidence; index 0 is the winning choice.
type Choice struct {
	Confidence    float64        `json:"confidence"`
	Index         int            `json:"index"`
	Message       Message        `json:"message"`
	FinishReason  string         `json:"finish_reason"`
	ModelIdentity string         `json:"model_identity,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	PromptTokensDetails     *PromptTokensDetails     `json:"prompt_tokens_details,omitempty"`
	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`
}

type PromptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

type CompletionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}
