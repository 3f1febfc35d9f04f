package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/systemstart/fwbuild/pkg/cleanup"
	"github.com/systemstart/fwbuild/pkg/config"
	"github.com/systemstart/fwbuild/pkg/logging"
	"github.com/systemstart/fwbuild/pkg/steps"
	"github.com/systemstart/fwbuild/pkg/workflow"
)

var version = "dev"

const (
	_ = iota
	exitUnknownAction
	exitDotenvError
	exitLoadConfigFailed
	exitLoggingInitFailed
	exitInterrupted
)

// actionFull runs the whole pipeline; every other action is a step keyword.
const actionFull = "full"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(exitUnknownAction)
	}
}

func newRootCommand() *cobra.Command {
	var showVersion bool

	cmd := &cobra.Command{
		Use:   "fwbuild [action]",
		Short: "Menu-driven build workflow manager for embedded firmware images",
		Long: "fwbuild drives the firmware build lifecycle: device backup, vendor blob\n" +
			"fetch, source sync, config patching, overlay staging, configuration and\n" +
			"build, ending with artifact verification. Without an action it opens an\n" +
			"interactive menu; with one it runs that action directly.\n\n" +
			"Actions: " + actionFull + ", " + strings.Join(steps.Names(), ", "),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if showVersion {
				fmt.Println(version)
				return nil
			}
			return run(args)
		},
	}
	cmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	return cmd
}

func run(args []string) error {
	includeEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(exitLoadConfigFailed)
	}

	logFile, err := logging.Initialize(cfg.LogDir(), slog.LevelDebug)
	if err != nil {
		slog.Error("failed to initialise logging", "error", err)
		os.Exit(exitLoggingInitFailed)
	}

	registry := cleanup.New()
	registry.Register(func() { logFile.Close() }) // registered first, runs last
	installSignalHandler(registry)
	defer registry.Run()

	slog.Info("build manager initialised", "dry_run", cfg.DryRun, "build_root", cfg.BuildRoot)

	engine := workflow.New(cfg, registry)
	if len(args) == 1 {
		return dispatch(engine, strings.ToLower(strings.TrimSpace(args[0])))
	}

	runMenu(engine)
	return nil
}

// dispatch runs one CLI action. A recognised action that fails inside the
// workflow still returns nil: the failure is logged and visible in the
// summary, and the exit code stays zero for compatibility with the operator
// scripts driving this tool.
func dispatch(engine *workflow.Engine, action string) error {
	switch {
	case action == actionFull:
		_ = engine.RunFull()
	case slices.Contains(steps.Names(), action):
		_ = engine.RunStep(action)
	default:
		slog.Error("unknown action", "action", action)
		return fmt.Errorf("unknown action %q", action)
	}
	printSummary(engine.Summary())
	return nil
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		return
	}
	slog.Info("using .env file")
}

func installSignalHandler(registry *cleanup.Registry) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-ch
		slog.Warn("received signal; cleaning up before exit", "signal", sig.String())
		registry.Run()
		os.Exit(exitInterrupted)
	}()
}
