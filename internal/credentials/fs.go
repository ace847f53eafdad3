package credentials

import (
	"context"
	"fmt"
	"os"
)

// DefaultTokenPath is where the refresh token is written, relative to the
// working directory.
const DefaultTokenPath = "refresh_token.txt"

// WriteError is returned when the primary token file cannot be written
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write refresh token to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// FileStore writes the raw refresh token to a single file. The file holds
// the token bytes and nothing else, and is replaced on every run.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultTokenPath
	}
	return &FileStore{Path: path}
}

func (f *FileStore) Name() string {
	return "file"
}

// Save truncates and rewrites the file. There is no temp-file-and-rename
// step: an interrupted write is fixed by running the tool again.
func (f *FileStore) Save(_ context.Context, tokens *Tokens) error {
	if err := os.WriteFile(f.Path, []byte(tokens.RefreshToken), 0600); err != nil {
		return &WriteError{Path: f.Path, Err: err}
	}
	return nil
}
