// Package ui renders mash's styled terminal output: the banner, plan
// listings, and the interactive shell confirmation prompt. Everything
// user-facing goes to stderr so stdout stays clean for forwarded
// command output and --json.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/mash/internal/plan"
)

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan — headings
	colorAccent  = lipgloss.Color("#FFD700") // Gold — attention/confirmation
	colorDanger  = lipgloss.Color("#FF5252") // Red — errors
	colorMuted   = lipgloss.Color("#8C8C8C") // Gray — de-emphasized
)

var (
	styleTitle     = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleDirective = lipgloss.NewStyle().Foreground(colorPrimary)
	styleWarn      = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleError     = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleMuted     = lipgloss.NewStyle().Foreground(colorMuted)
)

// Printer writes styled output. The zero value is not usable; New wires
// the standard streams, and tests substitute their own.
type Printer struct {
	Out io.Writer // styled output, normally stderr
	In  io.Reader // confirmation input, normally stdin
}

func New() *Printer {
	return &Printer{Out: os.Stderr, In: os.Stdin}
}

// PlanRender prints the ordered plan: one directive per section with
// its matched lines, empty buckets marked as no-ops.
func (p *Printer) PlanRender(steps plan.Plan) {
	fmt.Fprintln(p.Out, styleTitle.Render("execution plan"))
	for _, step := range steps {
		header := fmt.Sprintf("%s (%d)", step.Directive, len(step.Lines))
		fmt.Fprintln(p.Out, "  "+styleDirective.Render(header))
		if len(step.Lines) == 0 {
			fmt.Fprintln(p.Out, "    "+styleMuted.Render("(nothing to do)"))
			continue
		}
		for _, line := range step.Lines {
			fmt.Fprintln(p.Out, "    "+line)
		}
	}
}

// Error prints a one-line error message.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.Out, styleError.Render("error: ")+msg)
}

// ConfirmShell lists every shell command that would run and asks for a
// literal "y". Anything else declines. This is the interactive leg of
// the shell safety gate.
func (p *Printer) ConfirmShell(commands []string) bool {
	fmt.Fprintln(p.Out, styleWarn.Render("are you certain you wish to run commands:"))
	for _, c := range commands {
		fmt.Fprintln(p.Out, "\t"+c)
	}
	fmt.Fprint(p.Out, "[y]es/[n]o\n> ")

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y"
}
