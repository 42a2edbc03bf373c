package nbest

import (
	"context"
	"encoding/json"
)

// CompleteObject runs a completion and parses the winning answer against a
// JSON schema in one call.
func CompleteObject[T any](ctx context.Context, c *Client, req CompleteRequest, schemaJSON json.RawMessage) (RankedOutput[T], error) {
	parser, err := NewSchemaParser[T](schemaJSON)
	if err != nil {
		return RankedOutput[T]{}, err
	}
	req.NumCandidates = 0
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return RankedOutput[T]{}, err
	}
	return parser.Parse(ctx, resp.Answer.Message.Text())
}

// CompleteRankedObject runs a multi-candidate completion and parses the
// ranked answers against a JSON schema. The winning candidate must validate;
// lower-ranked candidates that fail validation are dropped.
func CompleteRankedObject[T any](ctx context.Context, c *Client, req CompleteRequest, schemaJSON json.RawMessage) ([]RankedOutput[T], error) {
	parser, err := NewSchemaParser[T](schemaJSON)
	if err != nil {
		return nil, err
	}
	if req.NumCandidates < 2 {
		req.NumCandidates = 2
	}
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return parser.ParseRanked(ctx, resp.Answer.Message.Text())
}
