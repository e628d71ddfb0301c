package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iconoclast/childprocess/config"
	"github.com/iconoclast/childprocess/errors"
	"github.com/iconoclast/childprocess/logger"
	"github.com/iconoclast/childprocess/observability"
	"github.com/iconoclast/childprocess/process"
	"github.com/iconoclast/childprocess/version"
)

const appName = "childproc"

// Exit codes for failures that are not the child's own.
const (
	exitFailure      = 1
	exitLaunchFailed = 127
)

type app struct {
	configFile string
	cfg        config.Config
	shutdown   []func(context.Context) error
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Spawn, wait for and terminate child processes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to a config file (default: search ./childproc.yml and the user config directory)")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newQuoteCmd())
	root.AddCommand(version.NewCommand(version.Get(appName)))

	root.SilenceUsage = true
	root.SilenceErrors = true
	return root
}

// setup loads configuration and installs logging, process timing and,
// when endpoints are configured, telemetry exporters.
func (a *app) setup(ctx context.Context) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if err := config.LoadConfig(appName, &a.cfg, opts...); err != nil {
		return err
	}
	if a.cfg.Name == "" {
		a.cfg.Name = appName
	}
	a.cfg.ApplyDefaults()
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger.Init(&a.cfg.Logging)
	logger.RegisterDefaults(appName, "process", "config")
	if err := process.Configure(a.cfg.Process); err != nil {
		return err
	}

	if a.cfg.TracingEnabled() {
		tp, err := observability.InitTracer(ctx, &a.cfg.Tracing)
		if err != nil {
			return err
		}
		a.shutdown = append(a.shutdown, tp.Shutdown)
	}
	if a.cfg.MetricsEnabled() {
		mp, err := observability.InitMeter(ctx, &a.cfg.Metrics)
		if err != nil {
			return err
		}
		a.shutdown = append(a.shutdown, mp.Shutdown)
	}
	return nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, fn := range a.shutdown {
		if err := fn(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *exitError
	if stderrors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "%s: %v\n", appName, err)
	if errors.HasCode(err, errors.ErrCodeLaunchFailed) {
		return exitLaunchFailed
	}
	return exitFailure
}

// exitError carries the child's exit code out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
