package backend

import (
	"context"
	"strings"
	"testing"

	"github.com/papapumpkin/mash/internal/journal"
	"github.com/papapumpkin/mash/internal/manifest"
)

var shellLines = []string{
	`shell 'echo one'`,
	`shell "echo two"`,
	`shell 'echo three'`,
}

func closeGate(t *testing.T) {
	t.Helper()
	t.Setenv(LongOverrideVar, "")
	t.Setenv(SimpleOverrideVar, "")
}

func newShell(t *testing.T, deps Deps) Reconciler {
	t.Helper()
	r, err := For(manifest.DirectiveShell, deps)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	return r
}

func commandEvents(events []journal.Event) []journal.Event {
	var out []journal.Event
	for _, evt := range events {
		if evt.Kind == journal.KindCommand || evt.Kind == journal.KindCommandFailed {
			out = append(out, evt)
		}
	}
	return out
}

func TestShell_GateClosedRunsNothing(t *testing.T) {
	closeGate(t)
	deps, events := dryDeps(t)

	if err := newShell(t, deps).Sync(context.Background(), shellLines); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := commandEvents(events()); len(got) != 0 {
		t.Errorf("%d commands issued with the gate closed, want 0", len(got))
	}
}

func TestShell_SimpleOverrideRunsAllInOrder(t *testing.T) {
	closeGate(t)
	t.Setenv(SimpleOverrideVar, "1")
	deps, events := dryDeps(t)

	if err := newShell(t, deps).Sync(context.Background(), shellLines); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got := commandEvents(events())
	if len(got) != len(shellLines) {
		t.Fatalf("%d commands issued, want %d", len(got), len(shellLines))
	}
	for i, want := range []string{"echo one", "echo two", "echo three"} {
		if cmd := got[i].Command; !containsPayload(cmd, want) {
			t.Errorf("command[%d] = %q, want it to carry %q", i, cmd, want)
		}
	}
}

func TestShell_SimpleOverrideRequiresExactlyOne(t *testing.T) {
	closeGate(t)
	t.Setenv(SimpleOverrideVar, "true")
	deps, events := dryDeps(t)

	if err := newShell(t, deps).Sync(context.Background(), shellLines); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := commandEvents(events()); len(got) != 0 {
		t.Errorf(`%d commands issued with %s="true", want 0 (only "1" opens the gate)`, len(got), SimpleOverrideVar)
	}
}

func TestShell_LongOverrideAnyValue(t *testing.T) {
	closeGate(t)
	t.Setenv(LongOverrideVar, "whatever")
	deps, events := dryDeps(t)

	if err := newShell(t, deps).Sync(context.Background(), shellLines); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := commandEvents(events()); len(got) != len(shellLines) {
		t.Errorf("%d commands issued, want %d", len(got), len(shellLines))
	}
}

func TestShell_UnsafeFlagConfirmDeclined(t *testing.T) {
	closeGate(t)
	deps, events := dryDeps(t)
	deps.Unsafe = true
	deps.Confirm = func([]string) bool { return false }

	if err := newShell(t, deps).Sync(context.Background(), shellLines); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := commandEvents(events()); len(got) != 0 {
		t.Errorf("%d commands issued after a declined confirmation, want 0", len(got))
	}
}

func TestShell_UnsafeFlagConfirmAccepted(t *testing.T) {
	closeGate(t)
	deps, events := dryDeps(t)
	deps.Unsafe = true

	var asked []string
	deps.Confirm = func(commands []string) bool {
		asked = commands
		return true
	}

	if err := newShell(t, deps).Sync(context.Background(), shellLines); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(asked) != len(shellLines) {
		t.Errorf("confirmation saw %d lines, want %d", len(asked), len(shellLines))
	}
	if got := commandEvents(events()); len(got) != len(shellLines) {
		t.Errorf("%d commands issued, want %d", len(got), len(shellLines))
	}
}

func TestShell_RefusedLineSkipsOnlyThatLine(t *testing.T) {
	closeGate(t)
	t.Setenv(SimpleOverrideVar, "1")
	deps, events := dryDeps(t)

	lines := []string{
		`shell 'echo before'`,
		`shell 'rm -rf /'`,
		`shell 'echo after'`,
	}
	if err := newShell(t, deps).Sync(context.Background(), lines); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got := commandEvents(events())
	if len(got) != 2 {
		t.Fatalf("%d commands issued, want 2 (the refused line is skipped)", len(got))
	}
	if !containsPayload(got[0].Command, "echo before") || !containsPayload(got[1].Command, "echo after") {
		t.Errorf("commands = %q and %q, want the lines around the refused one", got[0].Command, got[1].Command)
	}
}

func TestShell_EmptyBucket(t *testing.T) {
	closeGate(t)
	t.Setenv(SimpleOverrideVar, "1")
	deps, events := dryDeps(t)

	if err := newShell(t, deps).Sync(context.Background(), nil); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := commandEvents(events()); len(got) != 0 {
		t.Errorf("%d commands issued for an empty bucket, want 0", len(got))
	}
}

// containsPayload reports whether a journaled command's shell-quoted
// textual form carries the given payload.
func containsPayload(cmd, payload string) bool {
	return strings.Contains(cmd, payload)
}
