package nbest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nbest-dev/nbest/internal/schema"
)

// The parser family recovers typed outputs from the envelope text produced
// by the decoder. Parse handles the single-object envelope; ParseRanked
// handles the array envelope and applies the asymmetric failure policy: a
// validation failure at rank 0 fails the parse, a failure at any lower rank
// drops that element.

// TextParser returns outputs as-is.
type TextParser struct{}

func (TextParser) Parse(ctx context.Context, text string) (RankedOutput[string], error) {
	return parseSingle(ctx, text, identityValidate)
}

func (TextParser) ParseRanked(ctx context.Context, text string) ([]RankedOutput[string], error) {
	return parseRanked(ctx, text, identityValidate)
}

func identityValidate(_ context.Context, output string) (string, error) {
	return output, nil
}

// JSONParser requires each output to be a JSON object and returns it as an
// untyped map.
type JSONParser struct{}

func (JSONParser) Parse(ctx context.Context, text string) (RankedOutput[map[string]any], error) {
	return parseSingle(ctx, text, jsonValidate)
}

func (JSONParser) ParseRanked(ctx context.Context, text string) ([]RankedOutput[map[string]any], error) {
	return parseRanked(ctx, text, jsonValidate)
}

func jsonValidate(_ context.Context, output string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(output), &m); err != nil {
		return nil, fmt.Errorf("output is not a JSON object: %w", err)
	}
	return m, nil
}

// SchemaParser validates each output against a JSON schema before decoding
// it into T. The schema is compiled once at construction.
type SchemaParser[T any] struct {
	compiled *schema.Compiled
}

func NewSchemaParser[T any](schemaJSON json.RawMessage) (*SchemaParser[T], error) {
	c, err := schema.Compile(schemaJSON)
	if err != nil {
		return nil, err
	}
	return &SchemaParser[T]{compiled: c}, nil
}

func (p *SchemaParser[T]) Parse(ctx context.Context, text string) (RankedOutput[T], error) {
	return parseSingle(ctx, text, p.validate)
}

func (p *SchemaParser[T]) ParseRanked(ctx context.Context, text string) ([]RankedOutput[T], error) {
	return parseRanked(ctx, text, p.validate)
}

func (p *SchemaParser[T]) validate(_ context.Context, output string) (T, error) {
	var zero T
	raw := json.RawMessage(output)
	if err := p.compiled.Validate(raw); err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode output: %w", err)
	}
	return out, nil
}

// FuncParser delegates validation to a caller-supplied function, which may
// block or call out to external validators; it receives the parse context.
type FuncParser[T any] struct {
	fn func(ctx context.Context, output string) (T, error)
}

func NewFuncParser[T any](fn func(ctx context.Context, output string) (T, error)) *FuncParser[T] {
	return &FuncParser[T]{fn: fn}
}

func (p *FuncParser[T]) Parse(ctx context.Context, text string) (RankedOutput[T], error) {
	return parseSingle(ctx, text, p.fn)
}

func (p *FuncParser[T]) ParseRanked(ctx context.Context, text string) ([]RankedOutput[T], error) {
	return parseRanked(ctx, text, p.fn)
}

func parseSingle[T any](ctx context.Context, text string, validate func(context.Context, string) (T, error)) (RankedOutput[T], error) {
	env, err := decodeEnvelope(text)
	if err != nil {
		return RankedOutput[T]{}, err
	}
	out, err := validate(ctx, env.Output)
	if err != nil {
		return RankedOutput[T]{}, &ValidationError{Index: 0, Confidence: env.Confidence, Cause: err}
	}
	return RankedOutput[T]{Confidence: env.Confidence, Output: out}, nil
}

func parseRanked[T any](ctx context.Context, text string, validate func(context.Context, string) (T, error)) ([]RankedOutput[T], error) {
	envs, err := decodeEnvelopeList(text)
	if err != nil {
		return nil, err
	}
	if len(envs) == 0 {
		return nil, &EnvelopeError{Reason: "empty envelope array"}
	}

	// Elements validate independently, so run them concurrently and join
	// before applying the rank policy.
	type result struct {
		out T
		err error
	}
	results := make([]result, len(envs))
	var wg sync.WaitGroup
	for i, env := range envs {
		wg.Add(1)
		go func(i int, env Envelope) {
			defer wg.Done()
			out, err := validate(ctx, env.Output)
			results[i] = result{out: out, err: err}
		}(i, env)
	}
	wg.Wait()

	// Rank 0 must be valid regardless of how the rest fared.
	if results[0].err != nil {
		return nil, &ValidationError{Index: 0, Confidence: envs[0].Confidence, Cause: results[0].err}
	}

	out := make([]RankedOutput[T], 0, len(envs))
	for i, r := range results {
		if r.err != nil {
			continue
		}
		out = append(out, RankedOutput[T]{Confidence: envs[i].Confidence, Output: r.out})
	}
	return out, nil
}
