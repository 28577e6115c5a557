// Package backend implements the per-directive reconcilers that
// converge installed system state toward a manifest bucket. Each
// backend walks the same lifecycle: bootstrap the tool if absent,
// self-update, install the desired set, remove drift where the tool
// can enumerate installed state, then clean up.
package backend

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/papapumpkin/mash/internal/command"
	"github.com/papapumpkin/mash/internal/manifest"
	"github.com/papapumpkin/mash/internal/plan"
)

// Reconciler converges one directive's slice of the system.
type Reconciler interface {
	// Directive returns the bucket this reconciler consumes.
	Directive() manifest.Directive
	// Sync applies the bucket's lines. Empty input is a cheap no-op.
	Sync(ctx context.Context, lines []string) error
}

// ConfirmFunc asks the operator to approve running the listed shell
// commands. It is the interactive boundary of the shell safety gate;
// implementations live outside this package.
type ConfirmFunc func(commands []string) bool

// Paths carries operator overrides for backend install prefixes.
// Empty fields fall back to the backend's environment variable and
// then its platform default.
type Paths struct {
	HomebrewPrefix string
	CargoHome      string
	RustupHome     string
	UVHome         string
}

// Deps bundles everything a reconciler needs; threaded explicitly so
// no backend reaches for ambient globals.
type Deps struct {
	Runner   *command.Runner
	Log      *zap.SugaredLogger
	Platform plan.Platform
	Paths    Paths
	Unsafe   bool        // -u/--unsafe was passed
	Confirm  ConfirmFunc // interactive shell confirmation
}

// For returns the reconciler owning directive d. This switch is the
// single point of dispatch over the closed directive set.
func For(d manifest.Directive, deps Deps) (Reconciler, error) {
	b := base{runner: deps.Runner, log: deps.Log}
	switch d {
	case manifest.DirectiveShell:
		return &Shell{base: b, unsafe: deps.Unsafe, confirm: deps.Confirm}, nil
	case manifest.DirectiveApt:
		return &Apt{base: b}, nil
	case manifest.DirectiveBrew:
		return &Brew{base: b, prefix: deps.Paths.HomebrewPrefix, platform: deps.Platform}, nil
	case manifest.DirectiveCargo:
		return &Cargo{base: b, cargoHome: deps.Paths.CargoHome, rustupHome: deps.Paths.RustupHome}, nil
	case manifest.DirectiveUv:
		return &UV{base: b, uvHome: deps.Paths.UVHome}, nil
	case manifest.DirectiveStow:
		return &Stow{base: b}, nil
	}
	return nil, fmt.Errorf("no reconciler for directive %q", d)
}

// base carries the runner and logger shared by every reconciler, with
// small helpers for the three execution modes.
type base struct {
	runner *command.Runner
	log    *zap.SugaredLogger
}

// run resolves and executes spec as a critical step.
func (b base) run(ctx context.Context, spec command.Spec) error {
	cmd, err := command.Resolve(spec)
	if err != nil {
		return err
	}
	return b.runner.Run(ctx, cmd)
}

// lenient resolves and executes spec best-effort; even a resolution
// failure only warns.
func (b base) lenient(ctx context.Context, spec command.Spec) {
	cmd, err := command.Resolve(spec)
	if err != nil {
		b.log.Warn(err.Error())
		return
	}
	b.runner.RunLenient(ctx, cmd)
}

// output resolves spec and returns the command's captured stdout.
func (b base) output(ctx context.Context, spec command.Spec) (string, error) {
	cmd, err := command.Resolve(spec)
	if err != nil {
		return "", err
	}
	return b.runner.Output(ctx, cmd)
}

// payloads extracts the quoted argument of each line in d's bucket.
// Lines that reached the bucket malformed are warned about and
// skipped, never fatal.
func payloads(log *zap.SugaredLogger, d manifest.Directive, lines []string) []string {
	var out []string
	for _, line := range lines {
		v, ok := d.Payload(line)
		if !ok {
			log.Warnf("Unrecognized %s directive: %s", d, line)
			continue
		}
		out = append(out, v)
	}
	return out
}

// extras computes installed − desired, deduplicated and sorted so
// removal commands and their logs are deterministic.
func extras(installed, desired []string) []string {
	want := make(map[string]bool, len(desired))
	for _, d := range desired {
		want[d] = true
	}
	seen := make(map[string]bool, len(installed))
	var out []string
	for _, pkg := range installed {
		if pkg == "" || want[pkg] || seen[pkg] {
			continue
		}
		seen[pkg] = true
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// ensureCurl reports whether curl is on the search path. The brew,
// cargo, and uv bootstrap recipes all download through curl.
func ensureCurl(log *zap.SugaredLogger) bool {
	if res := command.FindExecutable("curl"); !res.Found {
		log.Error("curl is required but not found in PATH.")
		return false
	}
	return true
}
