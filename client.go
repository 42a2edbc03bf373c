package nbest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nbest-dev/nbest/internal/httpx"
	"github.com/nbest-dev/nbest/wire"
)

const (
	defaultBaseURL   = "https://api.nbest.dev"
	defaultAPIPrefix = "/v1"
)

type Config struct {
	APIKey     string
	BaseURL    string
	APIPrefix  string
	Headers    map[string]string
	HTTPClient *http.Client

	MaxRetries int
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func normalizeConfig(cfg Config) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = defaultAPIPrefix
	}
	return cfg
}

// Client executes completion calls against the ranked chat-completions
// endpoint. The codec (EncodeMessages/DecodeResponse) stays usable without a
// client; Client only adds the transport around it.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: normalizeConfig(cfg)}
}

func (c *Client) Config() Config { return c.cfg }

type CompleteRequest struct {
	Model    string
	Messages []Message

	// NumCandidates asks the endpoint for that many ranked candidates.
	// Values above 1 switch the decoded answer to the array-form envelope.
	NumCandidates int

	MaxTokens   *int
	Temperature *float32
	TopP        *float32
	Stop        []string
	Metadata    map[string]string

	Timeout time.Duration
}

type CompleteResponse struct {
	Answer AnswerMessage
	Raw    wire.Response
}

// Complete encodes the conversation, executes the wire call and decodes the
// ranked response. It always requests the complete, non-incremental answer;
// ranking by confidence rules out partial results.
func (c *Client) Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error) {
	ctx, cancel := applyTimeout(ctx, req.Timeout)
	defer cancel()

	if c.cfg.APIKey == "" {
		return nil, &TransportError{Code: "config_error", Message: "API key is required"}
	}
	if req.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	msgs, err := EncodeMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	wreq := wire.Request{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        append([]string(nil), req.Stop...),
		Metadata:    req.Metadata,
	}
	if req.NumCandidates > 1 {
		n := req.NumCandidates
		wreq.N = &n
	}

	body, err := json.Marshal(wreq)
	if err != nil {
		return nil, &TransportError{Code: "marshal_error", Message: err.Error(), Cause: err}
	}

	u, err := c.endpointURL()
	if err != nil {
		return nil, &TransportError{Code: "url_error", Message: err.Error(), Cause: err}
	}

	h := make(http.Header)
	h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	for k, v := range c.cfg.Headers {
		h.Set(k, v)
	}

	resp, err := httpx.PostJSON(ctx, c.cfg.HTTPClient, u, body, h, httpx.RetryPolicy{
		MaxRetries: c.cfg.MaxRetries,
		MinBackoff: c.cfg.MinBackoff,
		MaxBackoff: c.cfg.MaxBackoff,
	})
	if err != nil {
		code, retryable := classifyNetworkErr(err)
		return nil, &TransportError{Code: code, Message: err.Error(), Retryable: retryable, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromHTTP(resp)
	}

	var out wire.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Code: "decode_error", Message: err.Error(), Cause: err}
	}

	answer := DecodeResponse(out)
	if req.NumCandidates > 1 {
		answer = DecodeRankedResponse(out)
	}
	return &CompleteResponse{Answer: answer, Raw: out}, nil
}

func (c *Client) endpointURL() (string, error) {
	base := strings.TrimRight(c.cfg.BaseURL, "/")
	prefix := strings.TrimRight(c.cfg.APIPrefix, "/")
	u, err := url.Parse(base + prefix + "/chat/completions")
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func errorFromHTTP(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var er errorResponse
	if json.Unmarshal(b, &er) == nil && er.Error.Message != "" {
		return &TransportError{
			Code:      stringifyCode(er.Error.Code, er.Error.Type),
			Status:    resp.StatusCode,
			Message:   er.Error.Message,
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}
	return &TransportError{
		Code:      "http_error",
		Status:    resp.StatusCode,
		Message:   strings.TrimSpace(string(b)),
		Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
	}
}

func stringifyCode(code any, typ string) string {
	switch v := code.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%d", int(v))
	}
	if typ != "" {
		return typ
	}
	return "api_error"
}

func classifyNetworkErr(err error) (code string, retryable bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout", false
	}
	if errors.Is(err, context.Canceled) {
		return "canceled", false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout", true
	}
	return "network_error", true
}

func applyTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
