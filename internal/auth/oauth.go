package auth

import (
	"strings"

	"golang.org/x/oauth2"
)

const (
	// AuthorizeURL is the Oura consent page
	AuthorizeURL = "https://cloud.ouraring.com/oauth/authorize"
	// TokenURL is the endpoint for exchanging authorization codes
	TokenURL = "https://api.ouraring.com/oauth/token"
	// DefaultRedirectURI must match the redirect URI registered with the Oura application
	DefaultRedirectURI = "https://example.com"
)

// DefaultScopes are requested on every authorization
var DefaultScopes = []string{
	"daily",
	"spo2",
	"workout",
	"personal",
	"heart_health",
	"stress",
	"session",
	"heartrate",
}

// Endpoint describes the Oura OAuth endpoints. Client credentials are sent in
// the form body rather than via basic auth.
func Endpoint(authorizeURL, tokenURL string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   authorizeURL,
		TokenURL:  tokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// AuthorizationURL builds the consent URL the user opens in a browser:
// <authorize>?client_id=..&redirect_uri=..&response_type=code&scope=..
// No state parameter is added since the code is copied by hand.
func AuthorizationURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("")
}

// ParseScopes splits a scope list delimited by spaces, '+' or ','.
func ParseScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '+' || r == ',' || r == '\t'
	})
}
