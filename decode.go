package nbest

import (
	"encoding/json"

	"github.com/nbest-dev/nbest/wire"
)

// DecodeResponse reduces a wire response to a single answer built from the
// winning choice. The answer's visible content is the single-object JSON
// envelope {"confidence": n, "output": s}. Decode never fails: an empty
// choice list degrades to confidence 0 and empty output.
func DecodeResponse(resp wire.Response) AnswerMessage {
	return decodeResponse(resp, false)
}

// DecodeRankedResponse is DecodeResponse with the array-form envelope: the
// visible content carries one {confidence, output} element per choice, in
// response order. Tool calls and metadata still come from the winning choice.
func DecodeRankedResponse(resp wire.Response) AnswerMessage {
	return decodeResponse(resp, true)
}

func decodeResponse(resp wire.Response, ranked bool) AnswerMessage {
	var winning wire.Choice
	if len(resp.Choices) > 0 {
		winning = resp.Choices[0]
	}

	var envelope string
	if ranked {
		envs := make([]Envelope, 0, len(resp.Choices))
		for _, c := range resp.Choices {
			envs = append(envs, Envelope{Confidence: c.Confidence, Output: c.Message.Content.Text()})
		}
		envelope = encodeEnvelopeList(envs)
	} else {
		envelope = encodeEnvelope(Envelope{
			Confidence: winning.Confidence,
			Output:     winning.Message.Content.Text(),
		})
	}

	toolCalls, invalid := splitToolCalls(winning.Message.ToolCalls)

	var runnersUp []ChoiceSummary
	if len(resp.Choices) > 1 {
		for _, c := range resp.Choices[1:] {
			runnersUp = append(runnersUp, ChoiceSummary{
				Index:        c.Index,
				Confidence:   c.Confidence,
				FinishReason: FinishReason(c.FinishReason),
			})
		}
	}

	return AnswerMessage{
		Message: Message{
			Role:    RoleAssistant,
			Content: []ContentPart{TextPart{Text: envelope}},
			Name:    winning.Message.Name,
		},
		Confidence:       winning.Confidence,
		ToolCalls:        toolCalls,
		InvalidToolCalls: invalid,
		FinishReason:     FinishReason(winning.FinishReason),
		Usage:            decodeUsage(resp.Usage),
		Metadata: ResponseMetadata{
			ID:                resp.ID,
			Created:           resp.Created,
			Model:             resp.Model,
			ServiceTier:       resp.ServiceTier,
			SystemFingerprint: resp.SystemFingerprint,
			ChoiceIndex:       winning.Index,
			ModelIdentity:     winning.ModelIdentity,
			ChoiceMetadata:    winning.Metadata,
			RunnersUp:         runnersUp,
		},
	}
}

// splitToolCalls buckets wire tool calls into valid and invalid by whether
// their arguments parse as JSON. Malformed calls are kept, not dropped, so
// the caller can see what the model actually produced.
func splitToolCalls(calls []wire.ToolCall) ([]ToolCall, []InvalidToolCall) {
	var valid []ToolCall
	var invalid []InvalidToolCall
	for _, tc := range calls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			invalid = append(invalid, InvalidToolCall{
				ID:      tc.ID,
				Name:    tc.Function.Name,
				RawArgs: tc.Function.Arguments,
				Reason:  err.Error(),
			})
			continue
		}
		valid = append(valid, ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return valid, invalid
}

func decodeUsage(u wire.Usage) Usage {
	out := Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
	if u.PromptTokensDetails != nil {
		out.CachedPromptTokens = u.PromptTokensDetails.CachedTokens
	}
	if u.CompletionTokensDetails != nil {
		out.ReasoningTokens = u.CompletionTokensDetails.ReasoningTokens
	}
	return out
}
