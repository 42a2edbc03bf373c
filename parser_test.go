package nbest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

var intFieldSchema = []byte(`{
  "type": "object",
  "required": ["a"],
  "properties": { "a": { "type": "integer" } }
}`)

type intField struct {
	A int `json:"a"`
}

func TestParseRanked_DropsLowerRankFailures(t *testing.T) {
	p, err := NewSchemaParser[intField](intFieldSchema)
	if err != nil {
		t.Fatal(err)
	}

	text := `[{"confidence":0.9,"output":"{\"a\":1}"},{"confidence":0.5,"output":"not json"}]`
	outs, err := p.ParseRanked(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 1 {
		t.Fatalf("outputs=%d", len(outs))
	}
	if outs[0].Output.A != 1 || outs[0].Confidence != 0.9 {
		t.Fatalf("outs[0]=%#v", outs[0])
	}
}

func TestParseRanked_FailsWhenWinnerInvalid(t *testing.T) {
	p, err := NewSchemaParser[intField](intFieldSchema)
	if err != nil {
		t.Fatal(err)
	}

	text := `[{"confidence":0.9,"output":"not json"},{"confidence":0.5,"output":"{\"a\":1}"}]`
	_, err = p.ParseRanked(context.Background(), text)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Index != 0 || ve.Confidence != 0.9 {
		t.Fatalf("validation error %#v", ve)
	}
}

func TestParseRanked_OrderPreserved(t *testing.T) {
	text := `[{"confidence":0.9,"output":"x"},{"confidence":0.6,"output":"y"},{"confidence":0.3,"output":"z"}]`
	outs, err := TextParser{}.ParseRanked(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 3 {
		t.Fatalf("outputs=%d", len(outs))
	}
	wantOut := []string{"x", "y", "z"}
	prev := 1.1
	for i, o := range outs {
		if o.Output != wantOut[i] {
			t.Fatalf("outs[%d]=%#v", i, o)
		}
		if o.Confidence > prev {
			t.Fatalf("confidence increased at %d: %g > %g", i, o.Confidence, prev)
		}
		prev = o.Confidence
	}
}

func TestParseRanked_Idempotent(t *testing.T) {
	text := `[{"confidence":0.8,"output":"{\"a\":3}"},{"confidence":0.2,"output":"{\"a\":4}"}]`
	p, err := NewSchemaParser[intField](intFieldSchema)
	if err != nil {
		t.Fatal(err)
	}
	first, err := p.ParseRanked(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.ParseRanked(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ:\n%#v\n%#v", first, second)
	}
}

func TestParseRanked_EnvelopeErrors(t *testing.T) {
	cases := map[string]string{
		"not json":           `not json at all`,
		"object not array":   `{"confidence":0.9,"output":"x"}`,
		"element not object": `["x"]`,
		"missing confidence": `[{"output":"x"}]`,
		"string confidence":  `[{"confidence":"0.9","output":"x"}]`,
		"missing output":     `[{"confidence":0.9}]`,
		"numeric output":     `[{"confidence":0.9,"output":7}]`,
		"empty array":        `[]`,
	}
	for name, text := range cases {
		_, err := TextParser{}.ParseRanked(context.Background(), text)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !IsEnvelope(err) {
			t.Fatalf("%s: expected EnvelopeError, got %v", name, err)
		}
	}
}

func TestParse_EnvelopeErrors(t *testing.T) {
	cases := map[string]string{
		"not json":           `oops`,
		"array not object":   `[{"confidence":0.9,"output":"x"}]`,
		"missing confidence": `{"output":"x"}`,
		"missing output":     `{"confidence":0.9}`,
	}
	for name, text := range cases {
		_, err := TextParser{}.Parse(context.Background(), text)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !IsEnvelope(err) {
			t.Fatalf("%s: expected EnvelopeError, got %v", name, err)
		}
	}
}

func TestJSONParser(t *testing.T) {
	out, err := JSONParser{}.Parse(context.Background(), `{"confidence":0.7,"output":"{\"k\":\"v\"}"}`)
	if err != nil {
		t.Fatal(err)
	}
	if out.Output["k"] != "v" {
		t.Fatalf("output=%#v", out.Output)
	}

	_, err = JSONParser{}.Parse(context.Background(), `{"confidence":0.7,"output":"[1,2]"}`)
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for non-object output, got %v", err)
	}
}

func TestFuncParser(t *testing.T) {
	p := NewFuncParser(func(_ context.Context, output string) (string, error) {
		if !strings.HasPrefix(output, "ok:") {
			return "", fmt.Errorf("missing prefix")
		}
		return strings.TrimPrefix(output, "ok:"), nil
	})

	out, err := p.Parse(context.Background(), `{"confidence":1,"output":"ok:done"}`)
	if err != nil {
		t.Fatal(err)
	}
	if out.Output != "done" {
		t.Fatalf("output=%q", out.Output)
	}

	outs, err := p.ParseRanked(context.Background(), `[{"confidence":0.9,"output":"ok:a"},{"confidence":0.5,"output":"bad"},{"confidence":0.2,"output":"ok:c"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 2 || outs[0].Output != "a" || outs[1].Output != "c" {
		t.Fatalf("outputs=%#v", outs)
	}
}

func TestSchemaParser_SingleFailHard(t *testing.T) {
	p, err := NewSchemaParser[intField](intFieldSchema)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Parse(context.Background(), `{"confidence":0.9,"output":"{\"b\":1}"}`)
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
