package command

import (
	"fmt"
	"strings"
)

// NotFoundError reports that none of a spec's candidate executables
// resolved on the search path.
type NotFoundError struct {
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find any executables in %v", e.Candidates)
}

// RefusedError reports that a command's argument vector matched the
// dangerous-pattern deny-list and was never executed.
type RefusedError struct {
	Argv []string
}

func (e *RefusedError) Error() string {
	return fmt.Sprintf("refuse to run dangerous command %v", e.Argv)
}

// ExitError reports a spawned command that completed with a non-zero
// exit status.
type ExitError struct {
	Cmd    string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s failed with exit code %d", e.Cmd, e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}
