package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dvcrn/oura-token/internal/auth"
	"github.com/dvcrn/oura-token/internal/credentials"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// TokenExchanger trades an authorization code for tokens
type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (*auth.TokenResponse, error)
}

// Options wires the interactive flow. OAuth, Exchanger and Primary are
// required; everything else is optional. CopyURL, when set, receives the
// authorization URL.
type Options struct {
	OAuth     *oauth2.Config
	Exchanger TokenExchanger
	Primary   *credentials.FileStore
	Mirrors   []credentials.Store
	In        io.Reader
	Out       io.Writer
	CopyURL   func(string) error
	Logger    zerolog.Logger
}

// Flow walks the user through a single authorization code exchange
type Flow struct {
	oauth     *oauth2.Config
	exchanger TokenExchanger
	primary   *credentials.FileStore
	mirrors   []credentials.Store
	in        *bufio.Reader
	out       io.Writer
	copyURL   func(string) error
	logger    zerolog.Logger
}

func NewFlow(opts Options) *Flow {
	return &Flow{
		oauth:     opts.OAuth,
		exchanger: opts.Exchanger,
		primary:   opts.Primary,
		mirrors:   opts.Mirrors,
		in:        bufio.NewReader(opts.In),
		out:       opts.Out,
		copyURL:   opts.CopyURL,
		logger:    opts.Logger,
	}
}

// Run executes the steps in order: instructions, input, normalization,
// exchange, persistence, summary. The first failure ends the run and is
// returned after its diagnostics have been printed.
func (f *Flow) Run(ctx context.Context) error {
	f.printf("%s\n%s\n%s\n", rule("="), titleStyle.Render("OURA TOKEN GENERATOR"), rule("="))

	if f.oauth.ClientID == "" || f.oauth.ClientSecret == "" {
		f.logger.Warn().Msg("⚠️  Client ID or secret is empty, the provider will reject this request")
	}

	authURL := auth.AuthorizationURL(f.oauth)
	f.printInstructions(authURL)

	f.printf("\n%s\n", stepStyle.Render("📋 STEP 2: Paste Authorization Code"))
	f.printf("\nPaste the authorization code here: ")
	line, err := f.readLine()
	if err != nil {
		return err
	}

	code, err := auth.ExtractCode(line)
	if err != nil {
		f.printf("%s\n", errorStyle.Render("❌ Error: No code provided"))
		return err
	}
	f.printf("\n✓ Code received: %s\n", preview(code, 20))

	f.printf("\n🔄 Getting tokens...\n")
	tokens, err := f.exchanger.Exchange(ctx, code)
	if err != nil {
		f.printExchangeFailure(err)
		return err
	}
	f.logger.Info().
		Int("expires_in", tokens.ExpiresIn).
		Str("scope", tokens.Scope).
		Msg("✅ Authorization code exchanged")

	saved := &credentials.Tokens{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}

	overwrite := credentials.FileExists(f.primary.Path)
	if err := f.primary.Save(ctx, saved); err != nil {
		f.logger.Error().Err(err).Str("path", f.primary.Path).Msg("❌ Failed to save refresh token")
		f.printf("%s\n", errorStyle.Render(fmt.Sprintf("❌ Error: %v", err)))
		return err
	}
	f.logger.Info().
		Str("path", f.primary.Path).
		Bool("overwrote", overwrite).
		Msg("📄 Refresh token saved")

	f.saveMirrors(ctx, saved)
	f.printSummary(tokens.RefreshToken, overwrite)
	return nil
}

func (f *Flow) printInstructions(authURL string) {
	f.printf("\n%s\n%s\n", stepStyle.Render("📋 STEP 1: Get Authorization Code"), rule("-"))
	f.printf("Open this URL in your browser:\n\n%s\n", urlStyle.Render(authURL))

	if f.copyURL != nil {
		if err := f.copyURL(authURL); err != nil {
			f.logger.Warn().Err(err).Msg("Could not copy authorization URL to clipboard")
		} else {
			f.printf("%s\n", mutedStyle.Render("(copied to clipboard)"))
		}
	}

	f.printf("\n%s\n", rule("-"))
	f.printf("After you authorize:\n")
	f.printf("  1. You'll see an error page (this is normal!)\n")
	f.printf("  2. Look at the URL in your browser's address bar\n")
	f.printf("  3. It will look like: %s ... code=XXXXXXXXX\n", f.oauth.RedirectURL)
	f.printf("  4. Copy the code part (everything after 'code='), or paste the whole URL\n")
	f.printf("%s\n", rule("-"))
}

func (f *Flow) readLine() (string, error) {
	line, err := f.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read authorization code: %w", err)
	}
	return line, nil
}

func (f *Flow) printExchangeFailure(err error) {
	var (
		exErr        *auth.ExchangeError
		missingField *auth.MissingFieldError
		transportErr *auth.TransportError
	)
	switch {
	case errors.As(err, &exErr):
		f.logger.Error().Int("status", exErr.StatusCode).Msg("❌ Token exchange rejected")
		f.printf("%s\n", errorStyle.Render(fmt.Sprintf("❌ Error %d:", exErr.StatusCode)))
		f.printf("%s\n", exErr.Body)
		f.printf("\nTroubleshooting:\n")
		f.printf("  - Make sure you copied the FULL authorization code\n")
		f.printf("  - Codes expire quickly - try the process again\n")
		f.printf("  - Make sure the redirect URI matches your OAuth app settings\n")
	case errors.As(err, &missingField):
		f.logger.Error().Str("field", missingField.Field).Msg("❌ Token response incomplete")
		f.printf("%s\n", errorStyle.Render("❌ No refresh token in response"))
		f.printf("Response: %s\n", missingField.PrettyBody())
	case errors.As(err, &transportErr):
		f.logger.Error().Err(transportErr.Err).Msg("❌ Token endpoint unreachable")
		f.printf("%s\n", errorStyle.Render(fmt.Sprintf("❌ Error: %v", transportErr.Err)))
	default:
		f.logger.Error().Err(err).Msg("❌ Token exchange failed")
		f.printf("%s\n", errorStyle.Render(fmt.Sprintf("❌ Error: %v", err)))
	}
}

// saveMirrors writes to the optional stores. The primary file already holds
// the token, so failures here are reported but do not fail the run.
func (f *Flow) saveMirrors(ctx context.Context, tokens *credentials.Tokens) {
	for _, m := range f.mirrors {
		if err := m.Save(ctx, tokens); err != nil {
			f.logger.Error().Err(err).Str("store", m.Name()).Msg("❌ Failed to mirror refresh token")
			f.printf("%s\n", errorStyle.Render(fmt.Sprintf("⚠️  Could not save to %s: %v", m.Name(), err)))
			continue
		}
		f.logger.Info().Str("store", m.Name()).Msg("✅ Refresh token mirrored")
		f.printf("✓ Also saved to %s\n", m.Name())
	}
}

func (f *Flow) printSummary(refreshToken string, overwrote bool) {
	f.printf("\n%s\n%s\n%s\n", rule("="), successStyle.Render("✅ SUCCESS!"), rule("="))
	f.printf("\nRefresh token saved to: %s\n", f.primary.Path)
	if overwrote {
		f.printf("%s\n", mutedStyle.Render("(previous contents were replaced)"))
	}
	f.printf("Token preview: %s\n", preview(refreshToken, 30))
	f.printf("Token length: %d characters\n", len(refreshToken))
}

func (f *Flow) printf(format string, args ...interface{}) {
	fmt.Fprintf(f.out, format, args...)
}

// ExitCode maps a Run error to the process exit status
func ExitCode(err error) int {
	var (
		missingInput *auth.MissingInputError
		exErr        *auth.ExchangeError
		missingField *auth.MissingFieldError
		transportErr *auth.TransportError
		writeErr     *credentials.WriteError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &missingInput):
		return 2
	case errors.As(err, &exErr):
		return 3
	case errors.As(err, &missingField):
		return 4
	case errors.As(err, &transportErr):
		return 5
	case errors.As(err, &writeErr):
		return 6
	default:
		return 1
	}
}
