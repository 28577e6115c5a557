package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/mash/internal/command"
	"github.com/papapumpkin/mash/internal/manifest"
)

// Stow reconciles dotfile symlink sets with GNU stow. There is no
// installed-state query: every managed target is unlinked and relinked
// each run, which guarantees a clean symlink set idempotently.
type Stow struct {
	base
}

func (s *Stow) Directive() manifest.Directive { return manifest.DirectiveStow }

func (s *Stow) Sync(ctx context.Context, lines []string) error {
	res := command.FindExecutable("stow")
	if !res.Found {
		// Stow has no bootstrap recipe; a missing binary is a
		// non-fatal skip.
		s.log.Warn("GNU stow is not installed; skipping stow directives.")
		return nil
	}
	stowPath := res.Path

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	var validDirs []string
	for _, target := range payloads(s.log, manifest.DirectiveStow, lines) {
		dir := resolveStowTarget(target, home)
		if _, err := os.Stat(dir); err != nil {
			s.log.Warnf("Directory not found: %s", dir)
			continue
		}
		validDirs = append(validDirs, dir)
	}

	if len(validDirs) == 0 {
		s.log.Info("No valid stow directories to process.")
		return nil
	}

	// Unstow everything first so the relink starts clean. Deleting a
	// target that was never stowed is allowed to fail.
	for _, dir := range validDirs {
		s.lenient(ctx, command.Spec{
			Candidates: []string{stowPath},
			Args: command.StaticArgs{
				"--dir", filepath.Dir(dir),
				"--target", home,
				"--delete", filepath.Base(dir),
			},
		})
	}

	for _, dir := range validDirs {
		err := s.run(ctx, command.Spec{
			Candidates: []string{stowPath},
			Args: command.StaticArgs{
				"--dir", filepath.Dir(dir),
				"--target", home,
				filepath.Base(dir),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveStowTarget expands a stow payload to an absolute directory:
// "~" expands to the home directory, and relative paths are rooted at
// it.
func resolveStowTarget(target, home string) string {
	if target == "~" {
		return home
	}
	if strings.HasPrefix(target, "~/") {
		return filepath.Join(home, target[2:])
	}
	if !filepath.IsAbs(target) {
		return filepath.Join(home, target)
	}
	return filepath.Clean(target)
}
