package nbest

import (
	"encoding/json"
	"fmt"

	"github.com/nbest-dev/nbest/wire"
)

// EncodeMessages encodes a conversation for the wire request, in order. The
// first failing message aborts the whole batch; no partial request is built.
func EncodeMessages(msgs []Message) ([]wire.Message, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	out := make([]wire.Message, 0, len(msgs))
	for i, m := range msgs {
		wm, err := EncodeMessage(m)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		out = append(out, wm)
	}
	return out, nil
}

// EncodeMessage encodes one message for the wire request. It is a pure
// function of its input.
func EncodeMessage(m Message) (wire.Message, error) {
	switch m.Role {
	case RoleUser:
		return encodeUserMessage(m)
	case RoleAssistant:
		return encodeAssistantMessage(m)
	case RoleSystem, RoleDeveloper:
		return encodeTextOnlyMessage(m)
	case RoleTool:
		return encodeToolMessage(m)
	default:
		return wire.Message{}, &UnsupportedContentError{Role: m.Role, Reason: "unknown role"}
	}
}

// encodeUserMessage accepts all content part kinds. Audio formats are
// re-checked against the accepted set so parts built without the Audio*
// constructors cannot smuggle an unsupported format onto the wire.
func encodeUserMessage(m Message) (wire.Message, error) {
	content := make(wire.Content, 0, len(m.Content))
	for _, p := range m.Content {
		switch v := p.(type) {
		case TextPart:
			content = append(content, wire.Part{Type: wire.PartText, Text: v.Text})
		case ImagePart:
			if v.URL == "" {
				return wire.Message{}, &UnsupportedContentError{Role: m.Role, Part: "ImagePart", Reason: "missing url"}
			}
			content = append(content, wire.Part{
				Type:     wire.PartImageURL,
				ImageURL: &wire.ImageURL{URL: v.URL, Detail: v.Detail},
			})
		case AudioPart:
			format, err := audioFormatFromSubtype(string(v.Format))
			if err != nil {
				return wire.Message{}, err
			}
			content = append(content, wire.Part{
				Type:       wire.PartInputAudio,
				InputAudio: &wire.InputAudio{Data: v.Data, Format: string(format)},
			})
		case FilePart:
			content = append(content, wire.Part{
				Type: wire.PartFile,
				File: &wire.File{FileData: v.Data},
			})
		default:
			return wire.Message{}, &UnsupportedContentError{Role: m.Role, Part: fmt.Sprintf("%T", p)}
		}
	}
	return wire.Message{
		Role:    string(m.Role),
		Content: content,
		Name:    m.Name,
	}, nil
}

// encodeAssistantMessage reduces content to text-only parts; media is not
// representable in outbound assistant turns. Tool calls encode with their
// arguments serialized to a JSON string.
func encodeAssistantMessage(m Message) (wire.Message, error) {
	content, err := textOnlyContent(m)
	if err != nil {
		return wire.Message{}, err
	}

	var toolCalls []wire.ToolCall
	for _, tc := range m.ToolCalls {
		args, err := json.Marshal(tc.Args)
		if err != nil {
			return wire.Message{}, &SerializationError{ToolCallID: tc.ID, ToolName: tc.Name, Cause: err}
		}
		toolCalls = append(toolCalls, wire.ToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: wire.FunctionCall{
				Name:      tc.Name,
				Arguments: string(args),
			},
		})
	}

	return wire.Message{
		Role:      string(m.Role),
		Content:   content,
		Name:      m.Name,
		ToolCalls: toolCalls,
	}, nil
}

func encodeTextOnlyMessage(m Message) (wire.Message, error) {
	content, err := textOnlyContent(m)
	if err != nil {
		return wire.Message{}, err
	}
	return wire.Message{
		Role:    string(m.Role),
		Content: content,
		Name:    m.Name,
	}, nil
}

func encodeToolMessage(m Message) (wire.Message, error) {
	if m.ToolCallID == "" {
		return wire.Message{}, fmt.Errorf("tool message missing ToolCallID")
	}
	content, err := textOnlyContent(m)
	if err != nil {
		return wire.Message{}, err
	}
	return wire.Message{
		Role:       string(m.Role),
		Content:    content,
		ToolCallID: m.ToolCallID,
	}, nil
}

func textOnlyContent(m Message) (wire.Content, error) {
	content := make(wire.Content, 0, len(m.Content))
	for _, p := range m.Content {
		t, ok := p.(TextPart)
		if !ok {
			return nil, &UnsupportedContentError{Role: m.Role, Part: fmt.Sprintf("%T", p)}
		}
		content = append(content, wire.Part{Type: wire.PartText, Text: t.Text})
	}
	return content, nil
}
