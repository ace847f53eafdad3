package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/dvcrn/oura-token/internal/auth"
	"github.com/dvcrn/oura-token/internal/credentials"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"golang.org/x/oauth2"
)

// EnvPrefix is prepended to flag names to form environment variables,
// e.g. -client-id is read from OURA_CLIENT_ID.
const EnvPrefix = "OURA"

// Config holds everything the token flow needs. It is built once in main and
// passed down explicitly.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AuthorizeURL string
	TokenURL     string

	OutputPath  string
	HTTPTimeout time.Duration

	MirrorConfigDir bool
	RedisURL        string
	RedisKey        string
	WorkerURL       string
	WorkerAdminKey  string

	CopyURL  bool
	LogLevel string
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment. Variables
// that are already set win, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Parse reads configuration from args, OURA_* environment variables and an
// optional JSON file given with -config, in that order of precedence.
func Parse(name string, args []string, output io.Writer) (*Config, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		flags.SetOutput(output)
	}

	c := &Config{}
	var scopes string
	flags.StringVar(&c.ClientID, "client-id", "", "Oura OAuth application client ID")
	flags.StringVar(&c.ClientSecret, "client-secret", "", "Oura OAuth application client secret")
	flags.StringVar(&c.RedirectURI, "redirect-uri", auth.DefaultRedirectURI, "redirect URI registered with the Oura application")
	flags.StringVar(&scopes, "scopes", strings.Join(auth.DefaultScopes, " "), "scopes to request, separated by spaces, '+' or ','")
	flags.StringVar(&c.AuthorizeURL, "authorize-url", auth.AuthorizeURL, "OAuth authorization endpoint")
	flags.StringVar(&c.TokenURL, "token-url", auth.TokenURL, "OAuth token endpoint")
	flags.StringVar(&c.OutputPath, "output", credentials.DefaultTokenPath, "file the refresh token is written to")
	flags.DurationVar(&c.HTTPTimeout, "http-timeout", 0, "timeout for the token request (0 uses the HTTP client default)")
	flags.BoolVar(&c.MirrorConfigDir, "mirror-config-dir", false, "also write the refresh token to the user config directory")
	flags.StringVar(&c.RedisURL, "redis-url", "", "also store the refresh token in Redis (redis://...)")
	flags.StringVar(&c.RedisKey, "redis-key", credentials.DefaultRedisKey, "Redis key for the refresh token")
	flags.StringVar(&c.WorkerURL, "worker-url", "", "base URL of a deployed worker to seed with the new tokens")
	flags.StringVar(&c.WorkerAdminKey, "worker-admin-key", "", "admin API key of the worker")
	flags.BoolVar(&c.CopyURL, "copy-url", false, "copy the authorization URL to the clipboard")
	flags.StringVar(&c.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")
	_ = flags.String("config", "", "JSON config file (optional)")

	err := ff.Parse(flags, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
	)
	if err != nil {
		return nil, err
	}

	c.Scopes = auth.ParseScopes(scopes)

	switch {
	case c.WorkerURL != "" && c.WorkerAdminKey == "":
		return nil, fmt.Errorf("-worker-url requires -worker-admin-key")
	case c.OutputPath == "":
		return nil, fmt.Errorf("-output must not be empty")
	}
	return c, nil
}

// OAuth2 describes the client to golang.org/x/oauth2
func (c *Config) OAuth2() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       c.Scopes,
		Endpoint:     auth.Endpoint(c.AuthorizeURL, c.TokenURL),
	}
}
