package backend

import (
	"context"
	"os"
	"strings"

	"github.com/papapumpkin/mash/internal/command"
	"github.com/papapumpkin/mash/internal/manifest"
)

// Override environment variables for the shell safety gate. The long
// one is intentionally unwieldy: setting it means you really meant it.
const (
	LongOverrideVar = "IAMOKAYWITHMASHEXECUTINGARBITRARYSHELLCOMMANDS" +
		"ANDIKNOWTHEMANYMANYRISKSOFLETTINGASCRIPTDOTHISNONSENSE"
	SimpleOverrideVar = "MASH_EXEC_UNSAFE"
)

// Shell is the raw shell-command backend. It never executes anything
// unless the safety gate opens: either override variable is set, or
// the --unsafe flag was passed and the operator confirmed
// interactively. It is the one place in mash where a string is handed
// to a shell for interpretation.
type Shell struct {
	base
	unsafe  bool
	confirm ConfirmFunc
}

func (s *Shell) Directive() manifest.Directive { return manifest.DirectiveShell }

// gateOpen evaluates the non-interactive part of the safety gate.
func gateOpen() bool {
	return os.Getenv(LongOverrideVar) != "" || os.Getenv(SimpleOverrideVar) == "1"
}

func (s *Shell) Sync(ctx context.Context, lines []string) error {
	if len(lines) == 0 {
		s.log.Info("No shell commands to run.")
		return nil
	}

	listing := "\n\t" + strings.Join(lines, "\n\t")

	switch {
	case gateOpen():
		s.log.Infof("running commands:%s", listing)
	case s.unsafe && s.confirm != nil:
		if !s.confirm(lines) {
			s.log.Warn("aborted by user")
			return nil
		}
	default:
		s.log.Warnf("did not run commands:%s\n\nto run these commands, use the -u/--unsafe flag", listing)
		return nil
	}

	for _, line := range lines {
		payload, ok := manifest.DirectiveShell.Payload(line)
		if !ok {
			s.log.Warnf("Unrecognized shell directive: %s", line)
			continue
		}

		cmd, err := command.Resolve(command.Spec{
			Candidates: []string{"/bin/sh"},
			Args:       command.StaticArgs{"-c", payload},
		})
		if err != nil {
			// A refused command is fatal to that command only; the
			// remaining lines still get their chance.
			s.log.Error(err.Error())
			continue
		}
		if err := s.runner.Run(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}
