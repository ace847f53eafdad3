package auth

import (
	"encoding/json"
	"fmt"
)

// MissingInputError is returned when no authorization code remains after
// normalizing the user's input.
type MissingInputError struct{}

func (e *MissingInputError) Error() string {
	return "no authorization code provided"
}

// ExchangeError is returned when the token endpoint answers with a non-2xx
// status, or with a 2xx body that is not a JSON object.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Body)
}

// MissingFieldError is returned when a successful token response lacks a
// required field.
type MissingFieldError struct {
	Field string
	Body  map[string]interface{}
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("token response is missing %q", e.Field)
}

// PrettyBody renders the parsed response for diagnostics.
func (e *MissingFieldError) PrettyBody() string {
	b, err := json.MarshalIndent(e.Body, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", e.Body)
	}
	return string(b)
}

// TransportError wraps network level failures: DNS, TLS, timeouts, resets.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to reach token endpoint: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
