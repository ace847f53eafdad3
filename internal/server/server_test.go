package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dvcrn/oura-token/internal/credentials"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "admin-secret"

type memoryKV map[string]string

func (m memoryKV) GetString(key string) (string, error) { return m[key], nil }
func (m memoryKV) PutString(key, value string) error { m[key] = value; return nil }
func (m memoryKV) Delete(key string) error { delete(m, key); return nil }

func newTestServer(adminKey string) (*Server, memoryKV) {
	kv := memoryKV{}
	return New(zerolog.Nop(), credentials.NewTokenStore(kv), adminKey), kv
}

func doRequest(s http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(testAdminKey)

	rec := doRequest(s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = doRequest(s, http.MethodPost, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(testAdminKey)

	rec := doRequest(s, http.MethodGet, "/v2/usercollection/sleep", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{name: "no credentials", headers: nil, want: http.StatusUnauthorized},
		{name: "wrong bearer", headers: map[string]string{"Authorization": "Bearer nope"}, want: http.StatusUnauthorized},
		{name: "malformed header", headers: map[string]string{"Authorization": testAdminKey}, want: http.StatusUnauthorized},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer " + testAdminKey}, want: http.StatusOK},
		{name: "lowercase bearer", headers: map[string]string{"Authorization": "bearer " + testAdminKey}, want: http.StatusOK},
		{name: "x-api-key", headers: map[string]string{"X-API-Key": testAdminKey}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(testAdminKey)
			rec := doRequest(s, http.MethodGet, "/admin/tokens/status", "", tt.headers)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdminNotConfigured(t *testing.T) {
	s, _ := newTestServer("")

	rec := doRequest(s, http.MethodGet, "/admin/tokens/status", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTokensHandlerStoresTokens(t *testing.T) {
	s, kv := newTestServer(testAdminKey)
	auth := map[string]string{"Authorization": "Bearer " + testAdminKey}

	before := time.Now().UnixMilli()
	rec := doRequest(s, http.MethodPost, "/admin/tokens",
		`{"refresh_token":"R123","access_token":"A1","expires_in":3600}`, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "R123", kv[credentials.KeyRefreshToken])
	assert.Equal(t, "A1", kv[credentials.KeyAccessToken])

	expires, err := strconv.ParseInt(kv[credentials.KeyAccessExpires], 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, expires, before+3600*1000-1000)
	assert.LessOrEqual(t, expires, time.Now().UnixMilli()+3600*1000)
}

func TestTokensHandlerRefreshOnly(t *testing.T) {
	s, kv := newTestServer(testAdminKey)
	kv[credentials.KeyAccessToken] = "stale"
	kv[credentials.KeyAccessExpires] = "99999999999999"

	rec := doRequest(s, http.MethodPost, "/admin/tokens", `{"refresh_token":"R2"}`,
		map[string]string{"X-API-Key": testAdminKey})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, memoryKV{credentials.KeyRefreshToken: "R2"}, kv)
}

func TestTokensHandlerRejectsBadBodies(t *testing.T) {
	s, kv := newTestServer(testAdminKey)
	auth := map[string]string{"Authorization": "Bearer " + testAdminKey}

	rec := doRequest(s, http.MethodPost, "/admin/tokens", `not json`, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPost, "/admin/tokens", `{"access_token":"A1"}`, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodGet, "/admin/tokens", "", auth)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Empty(t, kv)
}

func TestTokensStatusNeverLeaksTokens(t *testing.T) {
	s, kv := newTestServer(testAdminKey)
	kv[credentials.KeyRefreshToken] = "secret-refresh"
	kv[credentials.KeyAccessToken] = "secret-access"
	kv[credentials.KeyAccessExpires] = strconv.FormatInt(time.Now().Add(time.Hour).UnixMilli(), 10)

	rec := doRequest(s, http.MethodGet, "/admin/tokens/status", "",
		map[string]string{"Authorization": "Bearer " + testAdminKey})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, rec.Body.String(), "secret-refresh")
	assert.NotContains(t, rec.Body.String(), "secret-access")

	var status credentials.TokenStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.HasRefreshToken)
	assert.True(t, status.HasAccessToken)
	assert.False(t, status.IsExpired)
}

func TestWorkerUploaderRoundTrip(t *testing.T) {
	s, kv := newTestServer(testAdminKey)
	srv := httptest.NewServer(s)
	defer srv.Close()

	uploader := credentials.NewWorkerUploader(srv.URL, testAdminKey, srv.Client())
	err := uploader.Save(context.Background(), &credentials.Tokens{AccessToken: "a", RefreshToken: "R123", ExpiresIn: 86400})
	require.NoError(t, err)

	assert.Equal(t, "R123", kv[credentials.KeyRefreshToken])
	assert.Equal(t, "a", kv[credentials.KeyAccessToken])

	err = credentials.NewWorkerUploader(srv.URL, "wrong", srv.Client()).
		Save(context.Background(), &credentials.Tokens{RefreshToken: "R999"})
	assert.Error(t, err)
	assert.Equal(t, "R123", kv[credentials.KeyRefreshToken])
}
