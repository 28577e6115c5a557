package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/papapumpkin/mash/internal/command"
	"github.com/papapumpkin/mash/internal/manifest"
)

// uvInstallPipeline fetches and runs the upstream uv installer.
const uvInstallPipeline = `curl -LsSf https://astral.sh/uv/install.sh | sh`

// UV reconciles language-tool packages managed by uv's pip interface.
// Drift is measured against `uv pip freeze`.
type UV struct {
	base
	uvHome string
}

func (u *UV) Directive() manifest.Directive { return manifest.DirectiveUv }

func (u *UV) Sync(ctx context.Context, lines []string) error {
	prefix := u.uvHome
	if prefix == "" {
		prefix = os.Getenv("UV_HOME")
	}
	if prefix == "" {
		home, _ := os.UserHomeDir()
		prefix = filepath.Join(home, ".local", "uv")
	}

	uvPath := pathOrFallback("uv", filepath.Join(prefix, "bin", "uv"))

	if !fileExists(uvPath) {
		if !ensureCurl(u.log) {
			u.log.Warn("uv is not present and it requires curl to install")
			return &ToolMissingError{Backend: manifest.DirectiveUv, Tool: "uv"}
		}
		u.log.Info("Installing uv using upstream method...")
		u.lenient(ctx, command.Spec{
			Candidates:    []string{"/bin/sh"},
			Args:          command.StaticArgs{"-c", uvInstallPipeline},
			Env:           map[string]string{"UV_HOME": prefix},
			ForwardStdout: true,
		})
	}

	if !fileExists(uvPath) {
		u.log.Error("uv not found after attempted installation.")
		return &ToolMissingError{Backend: manifest.DirectiveUv, Tool: "uv"}
	}

	u.lenient(ctx, command.Spec{Candidates: []string{uvPath}, Args: command.StaticArgs{"self", "update"}})

	pkgs := payloads(u.log, manifest.DirectiveUv, lines)
	if len(pkgs) == 0 {
		u.log.Info("No uv packages to install.")
		return nil
	}

	install := append(command.StaticArgs{"pip", "install"}, pkgs...)
	if err := u.run(ctx, command.Spec{Candidates: []string{uvPath}, Args: install}); err != nil {
		return err
	}

	out, err := u.output(ctx, command.Spec{Candidates: []string{uvPath}, Args: command.StaticArgs{"pip", "freeze"}})
	if err != nil {
		u.log.Error("Failed to retrieve installed uv packages.")
		return nil
	}

	toRemove := extras(parseFreeze(out), pkgs)
	if len(toRemove) > 0 {
		u.log.Info("Removing uv packages no longer listed in the manifest:")
		uninstall := append(command.StaticArgs{"pip", "uninstall", "-y"}, toRemove...)
		if err := u.run(ctx, command.Spec{Candidates: []string{uvPath}, Args: uninstall}); err != nil {
			return err
		}
	}
	return nil
}

// parseFreeze extracts package names from pip-freeze style output
// ("name==version" per line).
func parseFreeze(out string) []string {
	var pkgs []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, _, _ := strings.Cut(line, "==")
		pkgs = append(pkgs, name)
	}
	return pkgs
}
