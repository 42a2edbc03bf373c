package nbest

import (
	"context"
	"errors"
	"fmt"
)

// UnsupportedContentError reports a message or content part the encoder does
// not recognize for the resolved role.
type UnsupportedContentError struct {
	Role   Role
	Part   string
	Reason string
}

func (e *UnsupportedContentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Part != "" {
		return fmt.Sprintf("unsupported content part %s for role %q", e.Part, e.Role)
	}
	if e.Reason != "" {
		return fmt.Sprintf("unsupported message (role %q): %s", e.Role, e.Reason)
	}
	return fmt.Sprintf("unsupported message (role %q)", e.Role)
}

func IsUnsupportedContent(err error) bool {
	var e *UnsupportedContentError
	return errors.As(err, &e)
}

// UnsupportedFormatError reports a media MIME type outside the accepted set.
type UnsupportedFormatError struct {
	MimeType string
}

func (e *UnsupportedFormatError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unsupported media format %q (accepted audio formats: mp3, wav)", e.MimeType)
}

func IsUnsupportedFormat(err error) bool {
	var e *UnsupportedFormatError
	return errors.As(err, &e)
}

// SerializationError reports tool-call arguments that could not be marshalled
// for the wire request.
type SerializationError struct {
	ToolCallID string
	ToolName   string
	Cause      error
}

func (e *SerializationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("serialize arguments of tool call %q (%s): %v", e.ToolName, e.ToolCallID, e.Cause)
	}
	return fmt.Sprintf("serialize arguments of tool call %q (%s)", e.ToolName, e.ToolCallID)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

func IsSerialization(err error) bool {
	var e *SerializationError
	return errors.As(err, &e)
}

// EnvelopeError reports answer text that is not the expected JSON envelope
// shape. It aborts the whole parse.
type EnvelopeError struct {
	Reason string
	Cause  error
}

func (e *EnvelopeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return "malformed answer envelope: " + e.Reason + ": " + e.Cause.Error()
	}
	return "malformed answer envelope: " + e.Reason
}

func (e *EnvelopeError) Unwrap() error { return e.Cause }

func IsEnvelope(err error) bool {
	var e *EnvelopeError
	return errors.As(err, &e)
}

// ValidationError reports an output that failed shape validation. It is
// returned only when the winning (index 0) candidate fails; lower-ranked
// failures drop the candidate instead.
type ValidationError struct {
	Index      int
	Confidence float64
	Cause      error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("invalid output at rank %d (confidence %g): %v", e.Index, e.Confidence, e.Cause)
	}
	return fmt.Sprintf("invalid output at rank %d (confidence %g)", e.Index, e.Confidence)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// TransportError reports a failure of the HTTP completion call.
type TransportError struct {
	Code      string
	Status    int
	Message   string
	Retryable bool
	Cause     error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return "transport: " + e.Message
	}
	return "transport error"
}

func (e *TransportError) Unwrap() error { return e.Cause }

func IsRateLimited(err error) bool {
	var e *TransportError
	return errors.As(err, &e) && (e.Status == 429 || e.Code == "rate_limited")
}

func IsAuth(err error) bool {
	var e *TransportError
	return errors.As(err, &e) && (e.Status == 401 || e.Status == 403 || e.Code == "unauthorized")
}

func IsTimeout(err error) bool {
	var e *TransportError
	if errors.As(err, &e) && e.Code == "timeout" {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func IsCanceled(err error) bool {
	var e *TransportError
	if errors.As(err, &e) && e.Code == "canceled" {
		return true
	}
	return errors.Is(err, context.Canceled)
}
