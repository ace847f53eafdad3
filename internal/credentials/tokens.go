package credentials

import (
	"fmt"
	"strconv"
	"time"
)

// Keys read by the worker when it refreshes and calls the Oura API
const (
	KeyRefreshToken  = "refresh_token"
	KeyAccessToken   = "access_token"
	KeyAccessExpires = "access_expires"
)

// KeyValue is the subset of a KV namespace the token store needs
type KeyValue interface {
	GetString(key string) (string, error)
	PutString(key, value string) error
	Delete(key string) error
}

// TokenRecord is the worker's view of the stored tokens
type TokenRecord struct {
	RefreshToken  string
	AccessToken   string
	AccessExpires int64 // unix milliseconds
}

// TokenStatus summarizes stored tokens without exposing them
type TokenStatus struct {
	HasRefreshToken bool  `json:"hasRefreshToken"`
	HasAccessToken  bool  `json:"hasAccessToken"`
	AccessExpires   int64 `json:"accessExpires,omitempty"`
	IsExpired       bool  `json:"isExpired"`
}

// TokenStore keeps the worker tokens in a key/value namespace
type TokenStore struct {
	kv KeyValue
}

func NewTokenStore(kv KeyValue) *TokenStore {
	return &TokenStore{kv: kv}
}

// Update replaces the stored tokens. Without an access token the stale one is
// dropped so the worker refreshes on its next request.
func (s *TokenStore) Update(rec TokenRecord) error {
	if rec.RefreshToken == "" {
		return fmt.Errorf("refresh token is required")
	}
	if err := s.kv.PutString(KeyRefreshToken, rec.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	if rec.AccessToken == "" {
		if err := s.kv.Delete(KeyAccessToken); err != nil {
			return fmt.Errorf("failed to clear access token: %w", err)
		}
		if err := s.kv.Delete(KeyAccessExpires); err != nil {
			return fmt.Errorf("failed to clear access expiry: %w", err)
		}
		return nil
	}

	if err := s.kv.PutString(KeyAccessToken, rec.AccessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := s.kv.PutString(KeyAccessExpires, strconv.FormatInt(rec.AccessExpires, 10)); err != nil {
		return fmt.Errorf("failed to store access expiry: %w", err)
	}
	return nil
}

// Get loads the stored tokens; missing keys come back empty
func (s *TokenStore) Get() (*TokenRecord, error) {
	refresh, err := s.kv.GetString(KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	access, err := s.kv.GetString(KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	expiresRaw, err := s.kv.GetString(KeyAccessExpires)
	if err != nil {
		return nil, fmt.Errorf("failed to get access expiry: %w", err)
	}

	rec := &TokenRecord{RefreshToken: refresh, AccessToken: access}
	if expiresRaw != "" {
		rec.AccessExpires, err = strconv.ParseInt(expiresRaw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse access expiry %q: %w", expiresRaw, err)
		}
	}
	return rec, nil
}

// Status reports which tokens are present and whether the access token expired
func (s *TokenStore) Status() (*TokenStatus, error) {
	rec, err := s.Get()
	if err != nil {
		return nil, err
	}
	return &TokenStatus{
		HasRefreshToken: rec.RefreshToken != "",
		HasAccessToken:  rec.AccessToken != "",
		AccessExpires:   rec.AccessExpires,
		IsExpired:       rec.AccessToken == "" || time.Now().UnixMilli() > rec.AccessExpires,
	}, nil
}
