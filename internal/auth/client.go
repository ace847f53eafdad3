package auth

import (
	"net/http"
	"time"
)

// NewHTTPClient creates the client used for the token exchange. A zero
// timeout leaves the transport defaults in place.
func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{
		Timeout: timeout,
	}
}
