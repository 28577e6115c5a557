// Package journal provides a JSONL event stream recording what a sync
// run did: every directive entered and every command issued (or skipped
// under dry-run) becomes one structured JSON line, making runs
// auditable after the fact. The manifest remains the only source of
// truth; the journal is an append-only log, never read back by mash.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of journal event.
const (
	KindRunStart       = "run_start"
	KindRunDone        = "run_done"
	KindDirectiveStart = "directive_start"
	KindDirectiveDone  = "directive_done"
	KindDirectiveSkip  = "directive_skip"
	KindCommand        = "command"
	KindCommandFailed  = "command_failed"
)

// Event is a single journal record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	Directive string    `json:"directive,omitempty"`
	Command   string    `json:"command,omitempty"`
	ExitCode  int       `json:"exit_code,omitempty"`
	DryRun    bool      `json:"dry_run,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Recorder appends journal events to a JSONL file. It is safe for
// concurrent use. A nil *Recorder is a valid no-op recorder.
type Recorder struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// Open creates a Recorder appending to the file at path, creating it if
// absent.
func Open(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	return &Recorder{file: f, enc: json.NewEncoder(f)}, nil
}

// Record writes a single event, stamping it with the current time if
// unset. Calling Record on a nil Recorder is a no-op.
func (r *Recorder) Record(evt Event) error {
	if r == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(evt); err != nil {
		return fmt.Errorf("journal: encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Recorder is a no-op.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}
