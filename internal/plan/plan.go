// Package plan orders classified manifest buckets for execution and
// applies platform-conditional exclusions.
package plan

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/papapumpkin/mash/internal/manifest"
)

// ErrUnknownDirective indicates a bucket name outside the canonical
// directive set. This is a configuration error: the run aborts before
// any command executes.
var ErrUnknownDirective = errors.New("unknown directive")

// CanonicalOrder is the fixed execution priority over directives. Brew
// sits after shell and apt: shell lines prepare the ground, apt covers
// base system packages, and the remaining toolchains build on both.
var CanonicalOrder = []manifest.Directive{
	manifest.DirectiveShell,
	manifest.DirectiveApt,
	manifest.DirectiveBrew,
	manifest.DirectiveCargo,
	manifest.DirectiveUv,
	manifest.DirectiveStow,
}

// Platform describes the host the plan is built for.
type Platform struct {
	OS   string // runtime.GOOS value: "darwin", "linux", ...
	Arch string // runtime.GOARCH value: "arm64", "amd64", ...
}

// Current returns the platform mash is running on.
func Current() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// Darwin reports whether the platform is macOS.
func (p Platform) Darwin() bool { return p.OS == "darwin" }

// ARM reports whether the platform is an ARM variant.
func (p Platform) ARM() bool { return p.Arch == "arm64" || p.Arch == "arm" }

// Step is one (directive, lines) pair of a plan, in execution order.
type Step struct {
	Directive manifest.Directive
	Lines     []string
}

// Plan is the ordered sequence of steps a sync run executes.
type Plan []Step

// Build orders buckets by CanonicalOrder after applying platform
// exclusions: on macOS the apt bucket is dropped entirely (apt is
// assumed absent), and on ARM a placeholder adjustment is reserved.
// Any bucket name outside the canonical set fails construction — the
// manifest classifier cannot produce one, so this guards programmatic
// callers.
//
// Buckets with zero lines are retained; reconcilers treat empty input
// as a no-op.
func Build(buckets manifest.Buckets, platform Platform) (Plan, error) {
	adjusted := make(manifest.Buckets, len(buckets))
	for d, lines := range buckets {
		adjusted[d] = lines
	}

	if platform.Darwin() {
		delete(adjusted, manifest.DirectiveApt)
	} else if platform.ARM() {
		// TODO: build-from-source fallback so casks can be replaced on
		// ARM Linux. No-op for now.
		_ = adjusted
	}

	var extra []string
	for d := range adjusted {
		if !manifest.Known(d) {
			extra = append(extra, string(d))
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: additional directives %v not allowed", ErrUnknownDirective, extra)
	}

	out := make(Plan, 0, len(adjusted))
	for _, d := range CanonicalOrder {
		lines, ok := adjusted[d]
		if !ok {
			continue
		}
		out = append(out, Step{Directive: d, Lines: lines})
	}
	return out, nil
}
