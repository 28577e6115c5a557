// Package command resolves executables into immutable command
// descriptors and runs them through a mode-aware runner. Resolution and
// execution are separate steps: construction performs the search-path
// lookup and the dangerous-pattern scan but never launches a process.
package command

import (
	"os"
	"os/exec"
	"regexp"
	"strings"
)

// dangerousPatterns is a small fixed deny-list of shell invocations mash
// refuses to run. It is a heuristic against accidental self-harm, not a
// security boundary.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+-rf\b`),
	regexp.MustCompile(`\bmkfs\b`),
	regexp.MustCompile(`\bshutdown\b`),
}

// ArgSource supplies a command's arguments. Exactly two implementations
// exist: a static list, and a thunk resolved once at construction time.
type ArgSource interface {
	args() []string
}

// StaticArgs is a fixed argument list.
type StaticArgs []string

func (a StaticArgs) args() []string { return a }

// ArgFunc defers argument computation until the command is resolved.
type ArgFunc func() []string

func (f ArgFunc) args() []string { return f() }

// Resolution is the outcome of a search-path lookup. Found is false
// when no candidate resolves; callers branch on it rather than on an
// error.
type Resolution struct {
	Path  string
	Found bool
}

// FindExecutable returns the first candidate resolvable on the search
// path. Candidates may be bare names or absolute paths.
func FindExecutable(candidates ...string) Resolution {
	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return Resolution{Path: p, Found: true}
		}
	}
	return Resolution{}
}

// Spec describes a command before resolution.
type Spec struct {
	Candidates    []string          // executable names tried in order, first found wins
	Args          ArgSource         // optional arguments
	Sudo          bool              // prefix the argv with sudo
	Env           map[string]string // overrides appended to the inherited environment
	ForwardStdout bool              // stream stdout to the console instead of capturing it
}

// Command is a resolved, immutable command ready to run.
type Command struct {
	argv          []string
	env           map[string]string
	forwardStdout bool
}

// Resolve builds a Command from spec. It fails with a *NotFoundError
// when no candidate executable resolves, and with a *RefusedError when
// the fully expanded argv matches a dangerous pattern. The refusal
// check happens here, at construction, so dry-run cannot bypass it.
func Resolve(spec Spec) (*Command, error) {
	res := FindExecutable(spec.Candidates...)
	if !res.Found {
		return nil, &NotFoundError{Candidates: spec.Candidates}
	}

	argv := []string{res.Path}
	if spec.Args != nil {
		argv = append(argv, spec.Args.args()...)
	}
	if spec.Sudo {
		argv = append([]string{"sudo"}, argv...)
	}

	// Scan the joined vector so both split ("rm", "-rf") and embedded
	// (sh -c "rm -rf x") forms are caught.
	joined := strings.Join(argv, " ")
	for _, re := range dangerousPatterns {
		if re.MatchString(joined) {
			return nil, &RefusedError{Argv: argv}
		}
	}

	return &Command{
		argv:          argv,
		env:           spec.Env,
		forwardStdout: spec.ForwardStdout,
	}, nil
}

// Argv returns a copy of the fully expanded argument vector, privilege
// wrapper included.
func (c *Command) Argv() []string {
	out := make([]string, len(c.argv))
	copy(out, c.argv)
	return out
}

// String renders the command in shell-quoted form for logging.
func (c *Command) String() string {
	quoted := make([]string, len(c.argv))
	for i, word := range c.argv {
		quoted[i] = shellQuote(word)
	}
	return strings.Join(quoted, " ")
}

// environ returns the process environment for the command: the parent
// environment plus any overrides, or nil (inherit) when there are none.
func (c *Command) environ() []string {
	if len(c.env) == 0 {
		return nil
	}
	env := os.Environ()
	for k, v := range c.env {
		env = append(env, k+"="+v)
	}
	return env
}

// shellQuote single-quotes a word when it contains characters a shell
// would interpret, for display purposes only.
func shellQuote(word string) string {
	if word == "" {
		return "''"
	}
	if !strings.ContainsAny(word, " \t\n\"'\\$&|;<>()*?[]#~") {
		return word
	}
	return "'" + strings.ReplaceAll(word, "'", `'"'"'`) + "'"
}
