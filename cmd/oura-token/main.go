package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/atotto/clipboard"
	"github.com/dvcrn/oura-token/internal/app"
	"github.com/dvcrn/oura-token/internal/auth"
	"github.com/dvcrn/oura-token/internal/config"
	"github.com/dvcrn/oura-token/internal/credentials"
	"github.com/dvcrn/oura-token/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := config.Parse("oura-token", os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	oauthCfg := cfg.OAuth2()
	mirrors, closeMirrors, err := buildMirrors(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("⚠️  Invalid mirror configuration")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeMirrors()

	opts := app.Options{
		OAuth:     oauthCfg,
		Exchanger: auth.NewExchanger(oauthCfg, auth.NewHTTPClient(cfg.HTTPTimeout), log),
		Primary:   credentials.NewFileStore(cfg.OutputPath),
		Mirrors:   mirrors,
		In:        os.Stdin,
		Out:       os.Stdout,
		Logger:    log,
	}
	if cfg.CopyURL {
		opts.CopyURL = clipboard.WriteAll
	}

	log.Debug().
		Str("token_url", cfg.TokenURL).
		Str("output", cfg.OutputPath).
		Int("mirrors", len(mirrors)).
		Msg("Starting authorization code flow")

	return app.ExitCode(app.NewFlow(opts).Run(ctx))
}

func buildMirrors(cfg *config.Config, log zerolog.Logger) ([]credentials.Store, func(), error) {
	var mirrors []credentials.Store
	closeFn := func() {}

	if cfg.MirrorConfigDir {
		store := credentials.NewConfigDirStore("")
		mirrors = append(mirrors, store)
		log.Info().Str("path", store.Path).Msg("📄 Mirroring refresh token to config directory")
	}

	if cfg.RedisURL != "" {
		store, err := credentials.NewRedisStore(cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			return nil, closeFn, err
		}
		mirrors = append(mirrors, store)
		closeFn = func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close redis client")
			}
		}
		log.Info().Str("key", store.Key()).Msg("📦 Mirroring refresh token to Redis")
	}

	if cfg.WorkerURL != "" {
		mirrors = append(mirrors, credentials.NewWorkerUploader(cfg.WorkerURL, cfg.WorkerAdminKey, nil))
		log.Info().Str("worker_url", cfg.WorkerURL).Msg("☁️  Seeding worker with new tokens")
	}

	return mirrors, closeFn, nil
}
