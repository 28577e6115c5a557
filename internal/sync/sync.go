// Package sync drives a full manifest run: classify the manifest,
// order the buckets, then hand each bucket to its reconciler, one at a
// time, in plan order. Backend failures are contained to their backend;
// only configuration errors abort the whole run.
package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/papapumpkin/mash/internal/backend"
	"github.com/papapumpkin/mash/internal/journal"
	"github.com/papapumpkin/mash/internal/manifest"
	"github.com/papapumpkin/mash/internal/plan"
)

// Engine executes sync runs. Construct one per process with its
// dependencies threaded in; it holds no hidden state between runs.
type Engine struct {
	Deps    backend.Deps
	Journal *journal.Recorder
	Log     *zap.SugaredLogger
}

// Run converges the system toward the manifest at path. Strictly
// sequential: one bucket at a time, one command at a time. Returns an
// error when the manifest cannot be loaded or ordered, or when at
// least one backend failed; partial failures never stop the remaining
// backends. A run where the only problems were missing tools still
// visits every backend, but reports the ToolMissingErrors so the
// process exit code can distinguish "install the dependency" from
// success.
func (e *Engine) Run(ctx context.Context, path string) error {
	buckets, err := manifest.Load(path)
	if err != nil {
		return err
	}

	steps, err := plan.Build(buckets, e.Deps.Platform)
	if err != nil {
		return err
	}

	_ = e.Journal.Record(journal.Event{Kind: journal.KindRunStart, Detail: path})

	failed := 0
	var missingTools []error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.Log.Infof("running %s-based commands", step.Directive)
		_ = e.Journal.Record(journal.Event{Kind: journal.KindDirectiveStart, Directive: string(step.Directive)})

		rec, err := backend.For(step.Directive, e.Deps)
		if err != nil {
			return err
		}

		if err := rec.Sync(ctx, step.Lines); err != nil {
			var missing *backend.ToolMissingError
			if errors.As(err, &missing) {
				e.Log.Warnf("skipping %s backend: %v", step.Directive, err)
				_ = e.Journal.Record(journal.Event{
					Kind:      journal.KindDirectiveSkip,
					Directive: string(step.Directive),
					Detail:    err.Error(),
				})
				missingTools = append(missingTools, err)
				continue
			}

			failed++
			e.Log.Errorf("%s backend failed: %v", step.Directive, err)
			_ = e.Journal.Record(journal.Event{
				Kind:      journal.KindDirectiveDone,
				Directive: string(step.Directive),
				Detail:    err.Error(),
			})
			continue
		}

		_ = e.Journal.Record(journal.Event{Kind: journal.KindDirectiveDone, Directive: string(step.Directive)})
	}

	_ = e.Journal.Record(journal.Event{Kind: journal.KindRunDone, Detail: path})

	if failed > 0 {
		return fmt.Errorf("%d backend(s) failed", failed)
	}
	if len(missingTools) > 0 {
		return fmt.Errorf("completed with missing tools: %w", errors.Join(missingTools...))
	}
	return nil
}
