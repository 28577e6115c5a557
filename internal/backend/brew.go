package backend

import (
	"context"
	"os"
	"path/filepath"

	"github.com/papapumpkin/mash/internal/command"
	"github.com/papapumpkin/mash/internal/manifest"
	"github.com/papapumpkin/mash/internal/plan"
)

// brewInstallScript is the upstream Homebrew installer, fetched and
// executed through bash as Homebrew documents it.
const brewInstallScript = `$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)`

// Brew is the default-bucket backend: every manifest line that matched
// no explicit keyword is assumed to be a Brewfile line and applied with
// `brew bundle`. Homebrew does its own desired-vs-installed diffing
// through the bundle file, so there is no separate reconcile stage.
type Brew struct {
	base
	prefix   string // operator override for HOMEBREW_PREFIX
	platform plan.Platform
}

func (b *Brew) Directive() manifest.Directive { return manifest.DirectiveBrew }

// brewPath resolves where brew lives, or would live after install:
// search path first, then $HOMEBREW_PREFIX, then the platform default.
func (b *Brew) brewPath() string {
	if res := command.FindExecutable("brew"); res.Found {
		return res.Path
	}

	prefix := b.prefix
	if prefix == "" {
		prefix = os.Getenv("HOMEBREW_PREFIX")
	}
	if prefix == "" {
		switch {
		case b.platform.Darwin() && b.platform.ARM():
			prefix = "/opt/homebrew"
		case b.platform.Darwin():
			prefix = "/usr/local"
		default:
			home, _ := os.UserHomeDir()
			prefix = filepath.Join(home, ".linuxbrew")
		}
	}
	return filepath.Join(prefix, "bin", "brew")
}

func (b *Brew) Sync(ctx context.Context, lines []string) error {
	brew := b.brewPath()

	if !fileExists(brew) {
		if !ensureCurl(b.log) || !command.FindExecutable("git").Found {
			b.log.Warn("Homebrew requires both curl and git to install.")
			return &ToolMissingError{Backend: manifest.DirectiveBrew, Tool: "brew"}
		}
		b.log.Info("Installing Homebrew...")
		b.lenient(ctx, command.Spec{
			Candidates:    []string{"/bin/bash"},
			Args:          command.StaticArgs{"-c", brewInstallScript},
			ForwardStdout: true,
		})
	}

	if !fileExists(brew) {
		b.log.Error("brew not found after attempted installation.")
		return &ToolMissingError{Backend: manifest.DirectiveBrew, Tool: "brew"}
	}

	b.lenient(ctx, command.Spec{Candidates: []string{brew}, Args: command.StaticArgs{"update"}})
	b.lenient(ctx, command.Spec{Candidates: []string{brew}, Args: command.StaticArgs{"upgrade"}})

	if len(lines) == 0 {
		b.log.Info("No brew lines to bundle.")
	} else {
		bundleFile, err := writeBundleFile(lines)
		if err != nil {
			return err
		}
		defer os.Remove(bundleFile)

		err = b.run(ctx, command.Spec{
			Candidates: []string{brew},
			Args:       command.StaticArgs{"bundle", "--file", bundleFile},
		})
		if err != nil {
			return err
		}
	}

	b.lenient(ctx, command.Spec{Candidates: []string{brew}, Args: command.StaticArgs{"cleanup"}})
	return nil
}

// writeBundleFile writes the brew bucket's lines to a temporary
// Brewfile for `brew bundle --file`.
func writeBundleFile(lines []string) (string, error) {
	f, err := os.CreateTemp("", "mash-brewfile-")
	if err != nil {
		return "", err
	}
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
