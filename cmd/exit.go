package cmd

import (
	"errors"

	"github.com/papapumpkin/mash/internal/backend"
	"github.com/papapumpkin/mash/internal/manifest"
	"github.com/papapumpkin/mash/internal/plan"
)

// Exit codes. Configuration problems are distinguished from missing
// tools so wrapper scripts can tell "fix the manifest" from "install
// the dependency".
const (
	exitGenericError        = 1
	exitConfigError         = 2
	exitMissingDependency   = 3
	exitUnsupportedPlatform = 7
)

var errUnsupportedPlatform = errors.New("mash is not available on windows (it may work in WSL, but this has not been tested)")

// exitCode maps an error from a command run to the process exit code.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errUnsupportedPlatform):
		return exitUnsupportedPlatform
	case errors.Is(err, manifest.ErrNotFound), errors.Is(err, plan.ErrUnknownDirective):
		return exitConfigError
	}

	var missing *backend.ToolMissingError
	if errors.As(err, &missing) {
		return exitMissingDependency
	}
	return exitGenericError
}
