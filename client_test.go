package nbest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nbest-dev/nbest/wire"
)

func completionHandler(t *testing.T, resp wire.Response) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path=%q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth=%q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestClientComplete(t *testing.T) {
	var gotReq wire.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		completionHandler(t, wire.Response{
			ID:      "resp_1",
			Choices: []wire.Choice{choiceWithText(0.76, 0, "answer")},
		})(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	resp, err := c.Complete(context.Background(), CompleteRequest{
		Model:    "ranker-large",
		Messages: []Message{System("be brief"), User("question?")},
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotReq.Model != "ranker-large" || len(gotReq.Messages) != 2 {
		t.Fatalf("request %#v", gotReq)
	}
	if gotReq.N != nil {
		t.Fatalf("single-answer request should not set n, got %v", *gotReq.N)
	}
	if resp.Answer.Confidence != 0.76 {
		t.Fatalf("confidence=%g", resp.Answer.Confidence)
	}
	out, err := TextParser{}.Parse(context.Background(), resp.Answer.Message.Text())
	if err != nil {
		t.Fatal(err)
	}
	if out.Output != "answer" {
		t.Fatalf("output=%q", out.Output)
	}
}

func TestClientComplete_RankedCandidates(t *testing.T) {
	var gotReq wire.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		completionHandler(t, wire.Response{
			Choices: []wire.Choice{
				choiceWithText(0.8, 0, "best"),
				choiceWithText(0.3, 1, "alt"),
			},
		})(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	resp, err := c.Complete(context.Background(), CompleteRequest{
		Model:         "ranker-large",
		Messages:      []Message{User("q")},
		NumCandidates: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotReq.N == nil || *gotReq.N != 2 {
		t.Fatalf("n=%v", gotReq.N)
	}

	outs, err := TextParser{}.ParseRanked(context.Background(), resp.Answer.Message.Text())
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 2 || outs[0].Output != "best" || outs[1].Output != "alt" {
		t.Fatalf("outputs=%#v", outs)
	}
}

func TestClientComplete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"unauthorized"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), CompleteRequest{
		Model:    "ranker-large",
		Messages: []Message{User("q")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestClientComplete_EncodeFailureAbortsCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), CompleteRequest{
		Model: "ranker-large",
		Messages: []Message{
			{Role: RoleUser, Content: []ContentPart{AudioPart{Data: "AA==", Format: "ogg"}}},
		},
	})
	if !IsUnsupportedFormat(err) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if called {
		t.Fatal("request must not be sent when encoding fails")
	}
}

func TestClientComplete_RequiresAPIKey(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.Complete(context.Background(), CompleteRequest{Model: "m", Messages: []Message{User("q")}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCompleteObject(t *testing.T) {
	answers := wire.Response{
		Choices: []wire.Choice{choiceWithText(0.9, 0, `{"a":5}`)},
	}
	srv := httptest.NewServer(completionHandler(t, answers))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	out, err := CompleteObject[intField](context.Background(), c, CompleteRequest{
		Model:    "ranker-large",
		Messages: []Message{User("give a")},
	}, intFieldSchema)
	if err != nil {
		t.Fatal(err)
	}
	if out.Output.A != 5 || out.Confidence != 0.9 {
		t.Fatalf("out=%#v", out)
	}
}
