package backend

import (
	"context"
	"strings"

	"github.com/papapumpkin/mash/internal/command"
	"github.com/papapumpkin/mash/internal/manifest"
)

// Apt reconciles OS-native packages on Debian-family systems. Desired
// state is the apt bucket; drift is measured against apt-mark's
// manually-installed set and removed with --purge. The ordering policy
// drops this bucket entirely on macOS.
type Apt struct {
	base
}

func (a *Apt) Directive() manifest.Directive { return manifest.DirectiveApt }

func (a *Apt) Sync(ctx context.Context, lines []string) error {
	pkgs := payloads(a.log, manifest.DirectiveApt, lines)
	if len(pkgs) == 0 {
		a.log.Info("No apt packages to install.")
		return nil
	}

	if res := command.FindExecutable("apt"); !res.Found {
		return &ToolMissingError{Backend: manifest.DirectiveApt, Tool: "apt"}
	}

	// Refresh package lists and upgrade what's already there.
	a.lenient(ctx, command.Spec{Candidates: []string{"apt"}, Args: command.StaticArgs{"update"}, Sudo: true})
	a.lenient(ctx, command.Spec{Candidates: []string{"apt"}, Args: command.StaticArgs{"upgrade", "-y"}, Sudo: true})

	install := append(command.StaticArgs{"install", "-y"}, pkgs...)
	if err := a.run(ctx, command.Spec{Candidates: []string{"apt"}, Args: install, Sudo: true}); err != nil {
		return err
	}

	out, err := a.output(ctx, command.Spec{Candidates: []string{"apt-mark"}, Args: command.StaticArgs{"showmanual"}})
	if err != nil {
		a.log.Error("Failed to retrieve manually installed packages.")
		a.log.Debugf("%v", err)
		return nil
	}

	toRemove := extras(parseManualPackages(out), pkgs)
	if len(toRemove) > 0 {
		a.log.Info("Removing packages no longer listed in the manifest:")
		for _, pkg := range toRemove {
			a.log.Infof("  %s", pkg)
		}
		remove := append(command.StaticArgs{"remove", "--purge", "-y"}, toRemove...)
		if err := a.run(ctx, command.Spec{Candidates: []string{"apt"}, Args: remove, Sudo: true}); err != nil {
			return err
		}
	}

	// Housekeeping, best-effort.
	a.lenient(ctx, command.Spec{Candidates: []string{"apt"}, Args: command.StaticArgs{"autoremove", "-y"}, Sudo: true})
	a.lenient(ctx, command.Spec{Candidates: []string{"apt"}, Args: command.StaticArgs{"autoclean"}, Sudo: true})
	return nil
}

// parseManualPackages splits apt-mark showmanual output into package
// names, one per line.
func parseManualPackages(out string) []string {
	var pkgs []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			pkgs = append(pkgs, line)
		}
	}
	return pkgs
}
