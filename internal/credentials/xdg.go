package credentials

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kirsle/configdir"
)

const appName = "oura-token"

// DefaultMirrorPath is the refresh token copy kept in the user config
// directory, e.g. ~/.config/oura-token/refresh_token on Linux.
func DefaultMirrorPath() string {
	return filepath.Join(configdir.LocalConfig(appName), "refresh_token")
}

func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfigDirStore mirrors the refresh token into the user config directory so
// other tools can find it regardless of where the CLI was run.
type ConfigDirStore struct {
	Path string
}

func NewConfigDirStore(path string) *ConfigDirStore {
	if path == "" {
		path = DefaultMirrorPath()
	}
	return &ConfigDirStore{Path: path}
}

func (c *ConfigDirStore) Name() string {
	return "config-dir"
}

func (c *ConfigDirStore) Save(_ context.Context, tokens *Tokens) error {
	if err := EnsureParentDir(c.Path); err != nil {
		return err
	}
	if err := os.WriteFile(c.Path, []byte(tokens.RefreshToken), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Path, err)
	}
	return nil
}
