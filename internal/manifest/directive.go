// Package manifest reads mash manifest files — Brewfiles extended with
// extra directives — and partitions their lines into per-directive
// buckets via a progressive filter.
package manifest

import "regexp"

// Directive names a manifest line category. Each extra directive owns a
// recognition pattern anchored to its keyword token; lines matching no
// extra directive are plain Brewfile lines and belong to DirectiveBrew.
type Directive string

const (
	DirectiveShell Directive = "shell"
	DirectiveApt   Directive = "apt"
	DirectiveBrew  Directive = "brew"
	DirectiveCargo Directive = "cargo"
	DirectiveUv    Directive = "uv"
	DirectiveStow  Directive = "stow"
)

// ExtraDirectives lists the explicit-keyword directives in the order the
// classifier filters them. Brew is deliberately absent: it is the
// implicit bucket for whatever remains after filtering.
var ExtraDirectives = []Directive{
	DirectiveShell,
	DirectiveApt,
	DirectiveCargo,
	DirectiveUv,
	DirectiveStow,
}

// Known reports whether d is a member of the fixed directive set.
func Known(d Directive) bool {
	switch d {
	case DirectiveShell, DirectiveApt, DirectiveBrew, DirectiveCargo, DirectiveUv, DirectiveStow:
		return true
	}
	return false
}

func compileMatch(kw Directive) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + string(kw) + `\s+['"].*['"]$`)
}

func compilePayload(kw Directive) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + string(kw) + `\s+['"](.*)['"]$`)
}

// matchPatterns recognize full directive lines; payloadPatterns capture
// the quoted argument. Both keyed by extra directive — brew lines carry
// no keyword and are consumed verbatim.
var (
	matchPatterns = map[Directive]*regexp.Regexp{
		DirectiveShell: compileMatch(DirectiveShell),
		DirectiveApt:   compileMatch(DirectiveApt),
		DirectiveCargo: compileMatch(DirectiveCargo),
		DirectiveUv:    compileMatch(DirectiveUv),
		DirectiveStow:  compileMatch(DirectiveStow),
	}
	payloadPatterns = map[Directive]*regexp.Regexp{
		DirectiveShell: compilePayload(DirectiveShell),
		DirectiveApt:   compilePayload(DirectiveApt),
		DirectiveCargo: compilePayload(DirectiveCargo),
		DirectiveUv:    compilePayload(DirectiveUv),
		DirectiveStow:  compilePayload(DirectiveStow),
	}
)

// Payload extracts the quoted argument from a directive line. The second
// return is false when the line does not match d's pattern, or when d
// has no keyword pattern at all (brew).
func (d Directive) Payload(line string) (string, bool) {
	re, ok := payloadPatterns[d]
	if !ok {
		return "", false
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
