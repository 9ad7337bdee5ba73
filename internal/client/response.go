package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/go-playground/validator/v10"
)

// Envelope is the wrapping convention of an endpoint's response body.
type Envelope int

const (
	// EnvelopeNone is a bare resource or array.
	EnvelopeNone Envelope = iota
	// EnvelopeData wraps the payload as {"data": ...}.
	EnvelopeData
	// EnvelopeUser wraps the payload as {"user": ...}.
	EnvelopeUser
)

func (e Envelope) String() string {
	switch e {
	case EnvelopeData:
		return "data"
	case EnvelopeUser:
		return "user"
	}
	return "none"
}

// Unwrap extracts the payload from body according to the envelope.
func Unwrap(body []byte, env Envelope) (json.RawMessage, error) {
	if env == EnvelopeNone {
		return body, nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, apperr.DecodeErr(fmt.Errorf("expected {%s: ...} envelope: %w", env, err))
	}
	raw, ok := wrapper[env.String()]
	if !ok {
		return nil, apperr.DecodeErr(fmt.Errorf("response has no %q field", env))
	}
	return raw, nil
}

// decodeInto unwraps body and decodes it into out.
func decodeInto(body []byte, env Envelope, out any) error {
	raw, err := Unwrap(body, env)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.DecodeErr(err)
	}
	return nil
}

// serverMessage pulls a human message out of an error body.
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"message", "error", "msg"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ValidationErr(err.Error(), nil)
	}
	fields := make(map[string]string, len(verrs))
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return apperr.ValidationErr(strings.Join(parts, ", "), fields)
}
