package credentials

import "context"

// Tokens is the token pair handed to a Store after a successful exchange
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Store persists a freshly issued refresh token somewhere
type Store interface {
	Name() string
	Save(ctx context.Context, tokens *Tokens) error
}
