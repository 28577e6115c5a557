package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/mash/internal/command"
	"github.com/papapumpkin/mash/internal/manifest"
)

// rustupInstallPipeline fetches and runs the upstream rustup installer
// non-interactively.
const rustupInstallPipeline = `curl --proto '=https' --tlsv1.2 -sSf https://sh.rustup.rs | sh -s -- -y`

// Cargo reconciles source-built toolchain packages installed via
// `cargo install`. rustup is bootstrapped on demand; drift is measured
// against `cargo install --list`.
type Cargo struct {
	base
	cargoHome  string
	rustupHome string
}

func (c *Cargo) Directive() manifest.Directive { return manifest.DirectiveCargo }

func (c *Cargo) Sync(ctx context.Context, lines []string) error {
	prefix := c.cargoHome
	if prefix == "" {
		prefix = os.Getenv("CARGO_HOME")
	}
	if prefix == "" {
		home, _ := os.UserHomeDir()
		prefix = filepath.Join(home, ".cargo")
	}
	binDir := filepath.Join(prefix, "bin")

	cargoPath := pathOrFallback("cargo", filepath.Join(binDir, "cargo"))
	rustupPath := pathOrFallback("rustup", filepath.Join(binDir, "rustup"))

	if !fileExists(rustupPath) {
		if !ensureCurl(c.log) {
			c.log.Warn("rustup/cargo is not present and it requires curl to install")
			return &ToolMissingError{Backend: manifest.DirectiveCargo, Tool: "rustup"}
		}
		rustupHome := c.rustupHome
		if rustupHome == "" {
			rustupHome = os.Getenv("RUSTUP_HOME")
		}
		if rustupHome == "" {
			rustupHome = prefix
		}
		c.log.Info("Installing rustup...")
		c.lenient(ctx, command.Spec{
			Candidates: []string{"/bin/sh"},
			Args:       command.StaticArgs{"-c", rustupInstallPipeline},
			Env: map[string]string{
				"CARGO_HOME":  prefix,
				"RUSTUP_HOME": rustupHome,
			},
			ForwardStdout: true,
		})
	}

	if !fileExists(cargoPath) || !fileExists(rustupPath) {
		c.log.Error("Cargo or rustup not found even after installation.")
		return &ToolMissingError{Backend: manifest.DirectiveCargo, Tool: "cargo"}
	}

	c.lenient(ctx, command.Spec{Candidates: []string{rustupPath}, Args: command.StaticArgs{"self", "update"}})
	c.lenient(ctx, command.Spec{Candidates: []string{cargoPath}, Args: command.StaticArgs{"install-update", "-a"}})

	pkgs := payloads(c.log, manifest.DirectiveCargo, lines)
	if len(pkgs) == 0 {
		c.log.Info("No cargo packages to install.")
		return nil
	}

	for _, pkg := range pkgs {
		err := c.run(ctx, command.Spec{
			Candidates: []string{cargoPath},
			Args:       command.StaticArgs{"install", pkg},
		})
		if err != nil {
			return err
		}
	}

	out, err := c.output(ctx, command.Spec{Candidates: []string{cargoPath}, Args: command.StaticArgs{"install", "--list"}})
	if err != nil {
		c.log.Error("Failed to retrieve installed cargo packages.")
		return nil
	}

	toRemove := extras(parseCargoInstalled(out), pkgs)
	if len(toRemove) > 0 {
		c.log.Info("Removing cargo packages no longer listed in the manifest:")
		for _, pkg := range toRemove {
			c.log.Infof("  %s", pkg)
			err := c.run(ctx, command.Spec{
				Candidates: []string{cargoPath},
				Args:       command.StaticArgs{"uninstall", pkg},
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// parseCargoInstalled extracts package names from `cargo install
// --list` output. Top-level lines have the form "name vX.Y.Z:";
// indented lines list the package's binaries and are skipped.
func parseCargoInstalled(out string) []string {
	var pkgs []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			pkgs = append(pkgs, fields[0])
		}
	}
	return pkgs
}

// pathOrFallback resolves name on the search path, falling back to the
// given location under the backend's prefix.
func pathOrFallback(name, fallback string) string {
	if res := command.FindExecutable(name); res.Found {
		return res.Path
	}
	return fallback
}
