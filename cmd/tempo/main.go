package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stefanpenner/tempo/pkg/coach"
	"github.com/stefanpenner/tempo/pkg/engine"
	"github.com/stefanpenner/tempo/pkg/journal"
	"github.com/stefanpenner/tempo/pkg/notify"
	"github.com/stefanpenner/tempo/pkg/store"
	"github.com/stefanpenner/tempo/pkg/tui"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return newRootCmd().ExecuteContext(ctx)
}

// options carries the persistent flags and the lazily opened store.
type options struct {
	dir     string
	jsonOut bool
	verbose bool

	store  *store.Store
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "tempo",
		Short:         "Daily routine timeline with alarms and sacred-time locks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.open(cmd == cmd.Root())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "data directory (default $"+store.EnvDataDir+" or the platform data dir)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print structured output as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newStatusCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newUseCmd(opts),
		newDeleteCmd(opts),
		newBlockCmd(opts),
		newShiftCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newSettingsCmd(opts),
		newGoalCmd(opts),
		newEvaluateCmd(opts),
		newHistoryCmd(opts),
		newTipCmd(opts),
		newDraftCmd(opts),
		newDaemonCmd(opts),
		newUnlockCmd(opts),
		newWorkoutCmd(opts),
		newMeditateCmd(opts),
		newSubtaskCmd(opts),
	)
	return root
}

// open creates the store and the logger. The TUI owns the terminal, so it
// logs to a file in the data directory instead of stderr.
func (o *options) open(interactive bool) error {
	dir := o.dir
	if dir == "" {
		dir = store.DefaultDataDir()
	}
	s, err := store.NewStore(dir)
	if err != nil {
		return err
	}
	o.store = s

	config := zap.NewProductionConfig()
	if o.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if interactive {
		config.OutputPaths = []string{s.LogPath()}
		config.ErrorOutputPaths = []string{s.LogPath()}
	}
	o.logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newEngine wires the store, journal and desktop notifier into an engine.
// The caller closes the returned journal.
func newEngine(ctx context.Context, o *options, opts ...engine.Option) (*engine.Engine, *journal.Journal, error) {
	j, err := journal.Open(ctx, o.store.JournalPath())
	if err != nil {
		return nil, nil, err
	}

	settings, err := o.store.LoadSettings()
	if err != nil {
		o.logger.Warn("using default settings", zap.Error(err))
	}
	desktop := notify.NewDesktop(o.logger.Named("notify"))
	desktop.Sound = settings.AlarmSound
	desktop.Volume = settings.Volume
	sink := notify.Multi{notify.Bell(os.Stderr), desktop}

	opts = append([]engine.Option{
		engine.WithHistory(j),
		engine.WithLogger(o.logger.Named("engine")),
	}, opts...)
	return engine.New(store.EngineSource{Store: o.store}, sink, opts...), j, nil
}

// newCoach returns nil when no API key is configured.
func newCoach(ctx context.Context, o *options) *coach.Coach {
	gen, err := coach.NewGenAI(ctx, "", "")
	if err != nil {
		o.logger.Debug("coach disabled", zap.Error(err))
		return nil
	}
	return coach.New(gen)
}

func runTUI(ctx context.Context, o *options) error {
	eng, j, err := newEngine(ctx, o)
	if err != nil {
		return err
	}
	defer j.Close()

	settings, _ := o.store.LoadSettings()
	modelOpts := []tui.Option{
		tui.WithLogger(o.logger.Named("tui")),
		tui.WithInterval(settings.TickInterval),
	}
	if c := newCoach(ctx, o); c != nil {
		modelOpts = append(modelOpts, tui.WithCoach(c))
	}

	p := tea.NewProgram(tui.NewModel(o.store, eng, modelOpts...), tea.WithAltScreen(), tea.WithContext(ctx))

	cleanup, err := tui.StartWatcher(o.store.Root, p, o.logger.Named("watcher"))
	if err != nil {
		o.logger.Warn("file watcher failed", zap.Error(err))
	} else {
		defer cleanup()
	}

	_, err = p.Run()
	return err
}
