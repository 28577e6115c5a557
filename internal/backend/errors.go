package backend

import (
	"fmt"

	"github.com/papapumpkin/mash/internal/manifest"
)

// ToolMissingError indicates a backend's tool, or a dependency of its
// install recipe, is absent and could not be bootstrapped. It is fatal
// to that backend only; the run continues with the remaining backends.
type ToolMissingError struct {
	Backend manifest.Directive
	Tool    string
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("%s backend: required tool %q not found", e.Backend, e.Tool)
}
