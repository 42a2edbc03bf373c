// Package schema wraps JSON-schema compilation and document validation.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Compiled is a reusable compiled schema. Compile once, validate many times.
type Compiled struct {
	s *jsonschema.Schema
}

func Compile(schemaJSON json.RawMessage) (*Compiled, error) {
	if len(schemaJSON) == 0 {
		return nil, fmt.Errorf("empty schema")
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("schema resource: %w", err)
	}
	s, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Compiled{s: s}, nil
}

func (c *Compiled) Validate(raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty json")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return c.s.Validate(doc)
}
