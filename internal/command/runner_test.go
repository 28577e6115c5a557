package command

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/papapumpkin/mash/internal/journal"
)

func testRunner(t *testing.T, dry bool) *Runner {
	t.Helper()
	return &Runner{
		Log:    zaptest.NewLogger(t).Sugar(),
		DryRun: dry,
	}
}

func mustResolve(t *testing.T, spec Spec) *Command {
	t.Helper()
	cmd, err := Resolve(spec)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return cmd
}

func TestRunner_DryRunNeverSpawns(t *testing.T) {
	// A command that would certainly fail if spawned.
	cmd := mustResolve(t, Spec{
		Candidates: []string{"sh"},
		Args:       StaticArgs{"--definitely-not-a-flag"},
	})

	r := testRunner(t, true)
	if err := r.Run(context.Background(), cmd); err != nil {
		t.Errorf("dry-run Run returned %v, want nil", err)
	}
	if _, err := r.Output(context.Background(), cmd); err != nil {
		t.Errorf("dry-run Output returned %v, want nil", err)
	}
	r.RunLenient(context.Background(), cmd)
}

func TestRunner_CriticalFailure(t *testing.T) {
	cmd := mustResolve(t, Spec{
		Candidates: []string{"sh"},
		Args:       StaticArgs{"-c", "echo boom >&2; exit 3"},
	})

	err := testRunner(t, false).Run(context.Background(), cmd)

	var xerr *ExitError
	if !errors.As(err, &xerr) {
		t.Fatalf("Run error = %v, want *ExitError", err)
	}
	if xerr.Code != 3 {
		t.Errorf("exit code = %d, want 3", xerr.Code)
	}
	if !strings.Contains(xerr.Stderr, "boom") {
		t.Errorf("stderr = %q, want it to contain boom", xerr.Stderr)
	}
}

func TestRunner_LenientFailureSwallowed(t *testing.T) {
	cmd := mustResolve(t, Spec{
		Candidates: []string{"sh"},
		Args:       StaticArgs{"-c", "exit 1"},
	})

	// Must not panic and must not abort the caller; nothing to assert
	// beyond returning.
	testRunner(t, false).RunLenient(context.Background(), cmd)
}

func TestRunner_OutputCapturesStdout(t *testing.T) {
	cmd := mustResolve(t, Spec{
		Candidates: []string{"sh"},
		Args:       StaticArgs{"-c", "printf hello"},
	})

	out, err := testRunner(t, false).Output(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if out != "hello" {
		t.Errorf("Output = %q, want hello", out)
	}
}

func TestRunner_ForwardStdoutStreamsToConsole(t *testing.T) {
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = orig })

	cmd := mustResolve(t, Spec{
		Candidates:    []string{"sh"},
		Args:          StaticArgs{"-c", "printf forwarded"},
		ForwardStdout: true,
	})
	if err := testRunner(t, false).Run(context.Background(), cmd); err != nil {
		t.Fatalf("Run: %v", err)
	}

	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "forwarded" {
		t.Errorf("console received %q, want forwarded", data)
	}
}

func TestRunner_EnvOverrides(t *testing.T) {
	cmd := mustResolve(t, Spec{
		Candidates: []string{"sh"},
		Args:       StaticArgs{"-c", "printf %s \"$MASH_TEST_VALUE\""},
		Env:        map[string]string{"MASH_TEST_VALUE": "forty-two"},
	})

	out, err := testRunner(t, false).Output(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if out != "forty-two" {
		t.Errorf("Output = %q, want forty-two", out)
	}
}

func TestRunner_JournalsCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	rec, err := journal.Open(path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}

	r := testRunner(t, false)
	r.Journal = rec

	ok := mustResolve(t, Spec{Candidates: []string{"sh"}, Args: StaticArgs{"-c", "true"}})
	bad := mustResolve(t, Spec{Candidates: []string{"sh"}, Args: StaticArgs{"-c", "exit 9"}})

	if err := r.Run(context.Background(), ok); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := r.Run(context.Background(), bad); err == nil {
		t.Fatal("Run of failing command succeeded")
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("closing journal: %v", err)
	}

	events := readEvents(t, path)
	if len(events) != 2 {
		t.Fatalf("journal has %d events, want 2", len(events))
	}
	if events[0].Kind != journal.KindCommand {
		t.Errorf("first event kind = %q, want %q", events[0].Kind, journal.KindCommand)
	}
	if events[1].Kind != journal.KindCommandFailed || events[1].ExitCode != 9 {
		t.Errorf("second event = %+v, want command_failed with exit code 9", events[1])
	}
}

func readEvents(t *testing.T, path string) []journal.Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer f.Close()

	var events []journal.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var evt journal.Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("bad journal line %q: %v", scanner.Text(), err)
		}
		events = append(events, evt)
	}
	return events
}
