// Package nbest translates between a generic multi-role chat message model
// and a chat-completions wire protocol whose responses rank several candidate
// answers by a confidence score, and recovers typed, confidence-ranked
// payloads from decoded answers.
package nbest

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleTool      Role = "tool"
)

// roleSynonyms maps every accepted role label onto a canonical role. Labels
// outside this table are rejected rather than passed through.
var roleSynonyms = map[string]Role{
	"user":      RoleUser,
	"human":     RoleUser,
	"assistant": RoleAssistant,
	"ai":        RoleAssistant,
	"system":    RoleSystem,
	"developer": RoleDeveloper,
	"tool":      RoleTool,
	"function":  RoleTool,
}

// RoleFromLabel resolves a free-form role label to a canonical Role. Matching
// is case-insensitive; unknown labels are an error.
func RoleFromLabel(label string) (Role, error) {
	r, ok := roleSynonyms[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return "", fmt.Errorf("unknown role label %q", label)
	}
	return r, nil
}

// Message is one turn in a conversation. Values are constructed once and not
// mutated afterwards.
type Message struct {
	Role    Role
	Content []ContentPart
	Name    string

	// ToolCalls is meaningful only for assistant messages.
	ToolCalls []ToolCall

	// ToolCallID is required for role=tool messages and identifies the prior
	// tool call this message answers.
	ToolCallID string
}

type ContentPart interface {
	isContentPart()
}

type TextPart struct{ Text string }

func (TextPart) isContentPart() {}

// ImagePart references an image by URL (remote or data URL). Detail is an
// optional rendering hint passed through verbatim.
type ImagePart struct {
	URL    string
	Detail string
}

func (ImagePart) isContentPart() {}

// AudioPart carries base64-encoded audio. Format must be one of the accepted
// audio formats; prefer the Audio* constructors, which derive it from the
// source MIME subtype.
type AudioPart struct {
	Data   string
	Format AudioFormat
}

func (AudioPart) isContentPart() {}

// FilePart carries an arbitrary file as a data URL string.
type FilePart struct{ Data string }

func (FilePart) isContentPart() {}

type AudioFormat string

const (
	AudioMP3 AudioFormat = "mp3"
	AudioWAV AudioFormat = "wav"
)

// ToolCall is a model-issued function invocation with decoded arguments.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// InvalidToolCall is a tool call whose wire arguments were not valid JSON.
// It is kept alongside valid calls so callers can inspect the malformed call
// instead of losing it.
type InvalidToolCall struct {
	ID      string
	Name    string
	RawArgs string
	Reason  string
}

type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishToolCalls     FinishReason = "tool_calls"
	FinishContentFilter FinishReason = "content_filter"
	FinishUnknown       FinishReason = "unknown"
)

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int

	CachedPromptTokens int
	ReasoningTokens    int
}

// RankedOutput pairs a validated output with the confidence of the candidate
// answer it was extracted from.
type RankedOutput[T any] struct {
	Confidence float64
	Output     T
}

// AnswerMessage is a decoded wire response reduced to a single answer. The
// message content is the JSON envelope carrying {confidence, output}; the
// winning choice's confidence is also exposed as a first-class field.
type AnswerMessage struct {
	Message    Message
	Confidence float64

	ToolCalls        []ToolCall
	InvalidToolCalls []InvalidToolCall

	FinishReason FinishReason
	Usage        Usage
	Metadata     ResponseMetadata
}

// ResponseMetadata carries response/choice fields that are not needed for
// correctness but useful for observability.
type ResponseMetadata struct {
	ID                string
	Created           int64
	Model             string
	ServiceTier       string
	SystemFingerprint string

	ChoiceIndex    int
	ModelIdentity  string
	ChoiceMetadata map[string]any

	// RunnersUp summarizes the choices below the winning one, in response
	// order.
	RunnersUp []ChoiceSummary
}

type ChoiceSummary struct {
	Index        int
	Confidence   float64
	FinishReason FinishReason
}

func System(text string) Message {
	return Message{Role: RoleSystem, Content: []ContentPart{TextPart{Text: text}}}
}

func Developer(text string) Message {
	return Message{Role: RoleDeveloper, Content: []ContentPart{TextPart{Text: text}}}
}

func User(text string) Message {
	return Message{Role: RoleUser, Content: []ContentPart{TextPart{Text: text}}}
}

func Assistant(text string) Message {
	return Message{Role: RoleAssistant, Content: []ContentPart{TextPart{Text: text}}}
}

// ToolResult builds a role=tool message answering the tool call with the
// given id.
func ToolResult(toolCallID, toolName, text string) Message {
	return Message{
		Role:       RoleTool,
		Name:       toolName,
		ToolCallID: toolCallID,
		Content:    []ContentPart{TextPart{Text: text}},
	}
}

// Text concatenates the message's text parts. Non-text parts are skipped.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Content {
		if t, ok := p.(TextPart); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}
