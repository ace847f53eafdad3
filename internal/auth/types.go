package auth

import "time"

// TokenResponse represents the OAuth token endpoint response
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`

	// Raw is the full decoded response body, kept for diagnostics.
	Raw map[string]interface{} `json:"-"`
}

// CalculateExpiresAt calculates the expiry timestamp from expires_in seconds
func CalculateExpiresAt(expiresIn int) int64 {
	return (time.Now().Unix() + int64(expiresIn)) * 1000 // Convert to milliseconds
}
