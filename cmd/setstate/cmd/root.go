// Package cmd implements the setstate CLI commands.
//
// The root command loads setstate.yaml, builds the zap logger and installs
// it as the diagnostics sink before dispatching to a subcommand (counter,
// merge, version).
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-drift/setstate/cmd/setstate/internal/config"
	sserrors "github.com/go-drift/setstate/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// globalOptions holds the persistent flags and what PersistentPreRunE
// resolves from them.
type globalOptions struct {
	configPath string
	logLevel   string
	verbose    bool

	cfg    *config.Resolved
	logger *zap.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "setstate",
		Short: "setstate - reactive state cells with change callbacks",
		Long: `setstate demonstrates state cells that merge mapping updates,
accept updater functions and run a change callback after each
stabilization, skipping the first one.

Use "setstate <command> --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "path to the configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.verbose, "verbose", false, "include stack traces in diagnostics")

	root.AddCommand(
		newCounterCommand(opts),
		newMergeCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI with os.Args, cancelling on interrupt.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *globalOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		level, err := zapcore.ParseLevel(o.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if flags.Changed("verbose") {
		cfg.Verbose = o.verbose
	}

	logger, err := newLogger(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger
	sserrors.SetHandler(&sserrors.LogHandler{Logger: logger, Verbose: cfg.Verbose})
	return nil
}

func newLogger(level zapcore.Level, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = !verbose
	return zc.Build()
}
