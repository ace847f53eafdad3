package app

import (
	"github.com/dvcrn/oura-token/internal/credentials"
	"github.com/dvcrn/oura-token/internal/server"
	"github.com/rs/zerolog"
)

// NewServer creates the worker-side admin server over a key/value namespace
func NewServer(kv credentials.KeyValue, adminKey string, logger zerolog.Logger) *server.Server {
	return server.New(logger, credentials.NewTokenStore(kv), adminKey)
}
