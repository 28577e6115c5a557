package manifest

import (
	"fmt"
	"os"
	"strings"
)

// Buckets maps each directive to its matched lines, in manifest order.
// Every directive in the fixed set has an entry after classification,
// even when no line matched it.
type Buckets map[Directive][]string

// CleanLines normalizes raw manifest lines: carriage-return and newline
// noise dropped, '#' comments stripped to end of line, surrounding
// whitespace trimmed, blank results removed. Total over arbitrary text.
//
// Comment stripping is a naive substring cut with no quoting awareness;
// a literal '#' inside a quoted payload is unsupported.
func CleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\r", "")
		line = strings.ReplaceAll(line, "\n", "")
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Classify partitions normalized lines into directive buckets using a
// progressive filter: each extra directive removes its matches from the
// remaining pool before the next is tried, and whatever survives every
// filter is assumed to be a brew line. Classification never fails;
// unrecognized syntax lands in the brew bucket and is dealt with by the
// brew backend.
func Classify(lines []string) Buckets {
	buckets := make(Buckets, len(ExtraDirectives)+1)
	remaining := lines
	for _, d := range ExtraDirectives {
		re := matchPatterns[d]
		var matched, rest []string
		for _, line := range remaining {
			if re.MatchString(line) {
				matched = append(matched, line)
			} else {
				rest = append(rest, line)
			}
		}
		buckets[d] = matched
		remaining = rest
	}
	buckets[DirectiveBrew] = remaining
	return buckets
}

// Load reads the manifest file at path and classifies its lines.
func Load(path string) (Buckets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Classify(CleanLines(strings.Split(string(data), "\n"))), nil
}
