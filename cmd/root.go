// Package cmd wires the mash CLI. The root command performs a full
// sync run; subcommands preview the execution plan or keep re-syncing
// as the manifest changes.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papapumpkin/mash/internal/backend"
	"github.com/papapumpkin/mash/internal/command"
	"github.com/papapumpkin/mash/internal/config"
	"github.com/papapumpkin/mash/internal/journal"
	"github.com/papapumpkin/mash/internal/manifest"
	"github.com/papapumpkin/mash/internal/plan"
	"github.com/papapumpkin/mash/internal/sync"
	"github.com/papapumpkin/mash/internal/ui"
)

const version = "0.1.0"

const longHelp = `mash preprocesses a Brewfile extended with shell, apt, cargo, uv, and stow
directives, driving each backend tool through bootstrap, update, install,
and cleanup to converge installed state toward the manifest.`

var rootCmd = &cobra.Command{
	Use:          "mash [manifest]",
	Short:        "Declarative package-manifest synchronizer",
	Long:         longHelp,
	Args:         cobra.MaximumNArgs(1),
	Version:      version,
	SilenceUsage: true,
	RunE:         runSync,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initViper)

	rootCmd.PersistentFlags().String("config", "", "config file (default ./mash.toml, then ~/.config/mash/mash.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print diagnostic messages")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error messages")
	rootCmd.PersistentFlags().BoolP("dry-run", "n", false, "log commands without executing them")
	rootCmd.PersistentFlags().BoolP("unsafe", "u", false, "allow execution of shell commands via the shell directive")
	rootCmd.PersistentFlags().String("journal", "", "append run events to a JSONL journal file")
	rootCmd.Flags().BoolP("version", "V", false, "print version information and exit")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

func initViper() {
	viper.SetEnvPrefix("MASH")
	viper.AutomaticEnv()
}

func runSync(cmd *cobra.Command, args []string) error {
	rc, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer rc.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return rc.engine.Run(ctx, rc.manifestPath)
}

// runContext bundles the pieces a sync-flavored command needs.
type runContext struct {
	cfg          config.Config
	log          *zap.SugaredLogger
	journal      *journal.Recorder
	engine       *sync.Engine
	manifestPath string
}

func (rc *runContext) close() {
	_ = rc.journal.Close()
	_ = rc.log.Sync()
}

// setup loads config, applies flag overrides, builds the logger,
// journal, and engine, and resolves the manifest path.
func setup(cmd *cobra.Command, args []string) (*runContext, error) {
	if runtime.GOOS == "windows" {
		return nil, errUnsupportedPlatform
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, &cfg)
	if len(args) > 0 {
		cfg.ManifestPath = args[0]
	}

	log, err := newLogger(cfg.Verbose, cfg.Quiet)
	if err != nil {
		return nil, err
	}

	var rec *journal.Recorder
	if cfg.JournalPath != "" {
		rec, err = journal.Open(cfg.JournalPath)
		if err != nil {
			return nil, err
		}
	}

	path, err := manifest.Locate(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}

	printer := ui.New()
	runner := &command.Runner{
		Log:     log,
		Journal: rec,
		DryRun:  cfg.DryRun,
		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,
	}
	deps := backend.Deps{
		Runner:   runner,
		Log:      log,
		Platform: plan.Current(),
		Paths: backend.Paths{
			HomebrewPrefix: cfg.HomebrewPrefix,
			CargoHome:      cfg.CargoHome,
			RustupHome:     cfg.RustupHome,
			UVHome:         cfg.UVHome,
		},
		Unsafe:  cfg.Unsafe,
		Confirm: printer.ConfirmShell,
	}

	return &runContext{
		cfg:          cfg,
		log:          log,
		journal:      rec,
		engine:       &sync.Engine{Deps: deps, Journal: rec, Log: log},
		manifestPath: path,
	}, nil
}

// applyFlagOverrides applies CLI flag values onto the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
	if v, _ := cmd.Flags().GetBool("quiet"); v {
		cfg.Quiet = true
	}
	if v, _ := cmd.Flags().GetBool("dry-run"); v {
		cfg.DryRun = true
	}
	if v, _ := cmd.Flags().GetBool("unsafe"); v {
		cfg.Unsafe = true
	}
	if v, _ := cmd.Flags().GetString("journal"); v != "" {
		cfg.JournalPath = v
	}
}
