package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestExchanger(tokenURL string) *Exchanger {
	cfg := &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  DefaultRedirectURI,
		Scopes:       DefaultScopes,
		Endpoint:     Endpoint(AuthorizeURL, tokenURL),
	}
	return NewExchanger(cfg, nil, zerolog.Nop())
}

func TestExchange_SendsSingleFormPost(t *testing.T) {
	calls := 0
	var form url.Values
	var contentType, method string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		assert.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"a","refresh_token":"R123","expires_in":86400,"token_type":"bearer"}`)
	}))
	defer srv.Close()

	resp, err := newTestExchanger(srv.URL).Exchange(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {"the-code"},
		"redirect_uri":  {"https://example.com"},
		"client_id":     {"client-id"},
		"client_secret": {"client-secret"},
	}, form)

	assert.Equal(t, "a", resp.AccessToken)
	assert.Equal(t, "R123", resp.RefreshToken)
	assert.Equal(t, 86400, resp.ExpiresIn)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "R123", resp.Raw["refresh_token"])
}

func TestExchange_NonSuccessStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
	defer srv.Close()

	resp, err := newTestExchanger(srv.URL).Exchange(context.Background(), "expired")
	assert.Nil(t, resp)
	assert.Equal(t, 1, calls, "exchange must not be retried")

	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr), "expected ExchangeError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, exErr.StatusCode)
	assert.Equal(t, `{"error":"invalid_grant"}`, exErr.Body)
}

func TestExchange_MissingRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"access_token":"a"}`)
	}))
	defer srv.Close()

	_, err := newTestExchanger(srv.URL).Exchange(context.Background(), "code")

	var missing *MissingFieldError
	require.True(t, errors.As(err, &missing), "expected MissingFieldError, got %v", err)
	assert.Equal(t, "refresh_token", missing.Field)
	assert.Equal(t, map[string]interface{}{"access_token": "a"}, missing.Body)
	assert.Contains(t, missing.PrettyBody(), `"access_token": "a"`)
}

func TestExchange_EmptyRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"access_token":"a","refresh_token":""}`)
	}))
	defer srv.Close()

	_, err := newTestExchanger(srv.URL).Exchange(context.Background(), "code")

	var missing *MissingFieldError
	assert.True(t, errors.As(err, &missing))
}

func TestExchange_BodyNotJSONObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>oops</html>`)
	}))
	defer srv.Close()

	_, err := newTestExchanger(srv.URL).Exchange(context.Background(), "code")

	var exErr *ExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, http.StatusOK, exErr.StatusCode)
	assert.Equal(t, "<html>oops</html>", exErr.Body)
}

func TestExchange_BodyNotJSONObjectVariants(t *testing.T) {
	for _, body := range []string{`null`, `[]`, `"R123"`, `42`} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			}))
			defer srv.Close()

			_, err := newTestExchanger(srv.URL).Exchange(context.Background(), "code")

			var exErr *ExchangeError
			require.True(t, errors.As(err, &exErr), "expected ExchangeError, got %v", err)
			assert.Equal(t, body, exErr.Body)
		})
	}
}

func TestExchange_LooselyTypedOptionalFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		expiresIn int
	}{
		{"expires_in as string", `{"refresh_token":"R","expires_in":"86400"}`, 86400},
		{"expires_in as float", `{"refresh_token":"R","expires_in":86400.0}`, 86400},
		{"expires_in not numeric", `{"refresh_token":"R","expires_in":"soon"}`, 0},
		{"access_token not a string", `{"refresh_token":"R","access_token":12,"expires_in":null}`, 0},
		{"scope as list", `{"refresh_token":"R","scope":["daily"],"expires_in":3600}`, 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			tokens, err := newTestExchanger(srv.URL).Exchange(context.Background(), "code")
			require.NoError(t, err)
			assert.Equal(t, "R", tokens.RefreshToken)
			assert.Equal(t, tt.expiresIn, tokens.ExpiresIn)
			assert.NotNil(t, tokens.Raw)
		})
	}
}

func TestExchange_NonStringRefreshTokenIsMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"refresh_token":12345}`)
	}))
	defer srv.Close()

	_, err := newTestExchanger(srv.URL).Exchange(context.Background(), "code")

	var missing *MissingFieldError
	assert.True(t, errors.As(err, &missing))
}

func TestExchange_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	tokenURL := srv.URL
	srv.Close()

	_, err := newTestExchanger(tokenURL).Exchange(context.Background(), "code")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "expected TransportError, got %v", err)
	assert.NotNil(t, errors.Unwrap(transportErr))
}

type failingClient struct{ err error }

func (f failingClient) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestExchange_TransportErrorWrapsCause(t *testing.T) {
	cause := errors.New("tls: handshake failure")
	cfg := &oauth2.Config{Endpoint: Endpoint(AuthorizeURL, TokenURL)}

	_, err := NewExchanger(cfg, failingClient{err: cause}, zerolog.Nop()).Exchange(context.Background(), "code")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "tls: handshake failure")
}
