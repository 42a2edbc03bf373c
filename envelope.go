package nbest

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Envelope is the {confidence, output} pair carried as the visible text of a
// decoded answer. The parser family depends on this exact shape.
type Envelope struct {
	Confidence float64 `json:"confidence"`
	Output     string  `json:"output"`
}

func encodeEnvelope(e Envelope) string {
	b, _ := json.Marshal(e)
	return string(b)
}

func encodeEnvelopeList(envs []Envelope) string {
	if envs == nil {
		envs = []Envelope{}
	}
	b, _ := json.Marshal(envs)
	return string(b)
}

func decodeEnvelope(text string) (Envelope, error) {
	if !gjson.Valid(text) {
		return Envelope{}, &EnvelopeError{Reason: "not valid JSON"}
	}
	v := gjson.Parse(text)
	if !v.IsObject() {
		return Envelope{}, &EnvelopeError{Reason: "expected a JSON object"}
	}
	if err := checkEnvelopeFields(v); err != nil {
		return Envelope{}, &EnvelopeError{Reason: err.Error()}
	}
	var e Envelope
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return Envelope{}, &EnvelopeError{Reason: "decode envelope", Cause: err}
	}
	return e, nil
}

func decodeEnvelopeList(text string) ([]Envelope, error) {
	if !gjson.Valid(text) {
		return nil, &EnvelopeError{Reason: "not valid JSON"}
	}
	v := gjson.Parse(text)
	if !v.IsArray() {
		return nil, &EnvelopeError{Reason: "expected a JSON array"}
	}
	var ferr error
	i := 0
	v.ForEach(func(_, el gjson.Result) bool {
		if !el.IsObject() {
			ferr = &EnvelopeError{Reason: fmt.Sprintf("element %d is not an object", i)}
			return false
		}
		if err := checkEnvelopeFields(el); err != nil {
			ferr = &EnvelopeError{Reason: fmt.Sprintf("element %d: %v", i, err)}
			return false
		}
		i++
		return true
	})
	if ferr != nil {
		return nil, ferr
	}
	var envs []Envelope
	if err := json.Unmarshal([]byte(text), &envs); err != nil {
		return nil, &EnvelopeError{Reason: "decode envelope array", Cause: err}
	}
	return envs, nil
}

func checkEnvelopeFields(v gjson.Result) error {
	conf := v.Get("confidence")
	if !conf.Exists() || conf.Type != gjson.Number {
		return fmt.Errorf("missing numeric \"confidence\"")
	}
	out := v.Get("output")
	if !out.Exists() || out.Type != gjson.String {
		return fmt.Errorf("missing string \"output\"")
	}
	return nil
}
