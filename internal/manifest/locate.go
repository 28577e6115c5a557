package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables consulted when no explicit path is given, in
// precedence order, and the fallback filename in the current directory.
const (
	EnvBrewfilePath = "BREWFILE_PATH"
	EnvMashfilePath = "MASHFILE_PATH"
	DefaultFilename = "Brewfile"
)

// ErrNotFound indicates no manifest file could be resolved from the
// CLI argument, the environment, or the default location.
var ErrNotFound = errors.New("manifest file not found")

// Locate resolves the manifest path. Precedence: the explicit argument,
// then $BREWFILE_PATH, then $MASHFILE_PATH, then ./Brewfile. The first
// defined source wins; if the chosen path does not name an existing
// file, the whole resolution fails.
func Locate(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvBrewfilePath)
	}
	if path == "" {
		path = os.Getenv(EnvMashfilePath)
	}
	if path == "" {
		path = DefaultFilename
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving manifest path %q: %w", path, err)
	}

	if _, err := os.Stat(abs); err != nil {
		tried := explicit
		if tried == "" {
			tried = "(none)"
		}
		return "", fmt.Errorf("%w: tried CLI argument %s, $%s, $%s, and ./%s",
			ErrNotFound, tried, EnvBrewfilePath, EnvMashfilePath, DefaultFilename)
	}
	return abs, nil
}
