package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// HTTPClient is an interface for making HTTP requests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Exchanger trades an authorization code for a token pair
type Exchanger struct {
	oauth  *oauth2.Config
	client HTTPClient
	logger zerolog.Logger
}

// NewExchanger creates an exchanger posting to cfg.Endpoint.TokenURL
func NewExchanger(cfg *oauth2.Config, client HTTPClient, logger zerolog.Logger) *Exchanger {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Exchanger{
		oauth:  cfg,
		client: client,
		logger: logger,
	}
}

// Exchange performs exactly one form-encoded POST to the token endpoint.
// It is never retried: authorization codes are single use.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", e.oauth.RedirectURL)
	form.Set("client_id", e.oauth.ClientID)
	form.Set("client_secret", e.oauth.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.oauth.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	e.logger.Debug().
		Str("token_url", e.oauth.Endpoint.TokenURL).
		Int("code_length", len(code)).
		Msg("🔄 Exchanging authorization code")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read token response: %w", err)}
	}

	e.logger.Debug().
		Int("status", resp.StatusCode).
		Int("body_length", len(body)).
		Msg("Token endpoint responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		e.logger.Error().Err(err).Msg("❌ Token response is not a JSON object")
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	tokenResp := &TokenResponse{
		AccessToken:  stringField(raw, "access_token"),
		RefreshToken: stringField(raw, "refresh_token"),
		TokenType:    stringField(raw, "token_type"),
		ExpiresIn:    intField(raw, "expires_in"),
		Scope:        stringField(raw, "scope"),
		Raw:          raw,
	}

	if tokenResp.RefreshToken == "" {
		return nil, &MissingFieldError{Field: "refresh_token", Body: raw}
	}

	return tokenResp, nil
}

// stringField returns raw[key] when it holds a string, "" otherwise
func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

// intField reads a whole number sent either as a JSON number or a numeric
// string. Anything else yields 0.
func intField(raw map[string]interface{}, key string) int {
	switch v := raw[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}
