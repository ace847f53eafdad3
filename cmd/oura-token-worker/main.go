//go:build js && wasm

package main

import (
	"github.com/dvcrn/oura-token/internal/app"
	"github.com/dvcrn/oura-token/internal/credentials"
	"github.com/dvcrn/oura-token/internal/logger"
	"github.com/syumai/workers"
	"github.com/syumai/workers/cloudflare"
)

func main() {
	log := logger.New(cloudflare.Getenv("LOG_LEVEL"))

	kv, err := credentials.NewCloudflareKV(credentials.KVBinding)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open Cloudflare KV namespace")
	}
	log.Info().Str("binding", credentials.KVBinding).Msg("📦 Using Cloudflare KV token store")

	srv := app.NewServer(kv, cloudflare.Getenv("ADMIN_API_KEY"), log)

	// Serve using workers - it handles all the HTTP server setup
	workers.Serve(srv)
}
