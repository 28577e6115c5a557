package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/mash/internal/manifest"
)

var watchCmd = &cobra.Command{
	Use:   "watch [manifest]",
	Short: "Sync now, then re-sync whenever the manifest changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rc, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer rc.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w, err := manifest.NewWatcher(rc.manifestPath)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	// Initial convergence; failures are reported but the watch stays up.
	if err := rc.engine.Run(ctx, rc.manifestPath); err != nil {
		rc.log.Errorf("sync failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			rc.log.Info("manifest changed; re-running sync")
			if err := rc.engine.Run(ctx, rc.manifestPath); err != nil {
				rc.log.Errorf("sync failed: %v", err)
			}
		}
	}
}
