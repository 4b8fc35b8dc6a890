package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rickchristie/travelkit"
	"github.com/rickchristie/travelkit/booking"
	"github.com/rickchristie/travelkit/config"
	"github.com/rickchristie/travelkit/gateway"
	"github.com/rickchristie/travelkit/loggers"
	"github.com/rickchristie/travelkit/tools"
	"github.com/rickchristie/travelkit/transport"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// options are the persistent flags shared by every subcommand.
type options struct {
	configFile string
	envFiles   []string
	logPath    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "travelkit",
		Short:         "Travel search and booking tools for LLM agents",
		Long:          `travelkit searches flights, buses, trains and cabs, and books, cancels and looks up bookings. Run a single tool, serve the tools over HTTP, or chat with an agent that calls them.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	flags.StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	flags.StringVar(&opts.logPath, "log", "", "write a YAML log of every tool call to this file ('-' for stderr)")

	root.AddCommand(
		newToolsCmd(opts),
		newCallCmd(opts),
		newChatCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func (o *options) loadConfig(validate bool) (*config.Config, error) {
	return config.Load(config.LoadOptions{
		File:           o.configFile,
		EnvFiles:       o.envFiles,
		SkipValidation: !validate,
	})
}

// env wires the registry for one command run.
type env struct {
	cfg      *config.Config
	registry *tools.Registry
	logger   *loggers.LoggerHook
	closeLog func() error
}

func (o *options) newEnv(cmd *cobra.Command, validate bool) (*env, error) {
	cfg, err := o.loadConfig(validate)
	if err != nil {
		return nil, err
	}

	clock := travelkit.NewDefaultTimeProvider()
	gw := gateway.New(cfg)
	reg := tools.NewTravelRegistry(tools.Services{
		Searchers: transport.NewRouter(gw, cfg, clock),
		Bookings:  booking.NewManager(gw, clock, booking.WithStrictStatusLookup(cfg.StrictStatusLookup)),
	}).WithClock(clock)

	e := &env{cfg: cfg, registry: reg, closeLog: func() error { return nil }}
	if o.logPath == "" {
		return e, nil
	}

	var w io.Writer
	switch o.logPath {
	case "-":
		w = cmd.ErrOrStderr()
	default:
		f, err := os.OpenFile(o.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		e.closeLog = f.Close
	}
	e.logger = loggers.NewLoggerHookWithWriter(w, loggers.WithSecrets(cfg.RapidAPIKey, cfg.LLM.APIKey))
	reg.RegisterHook(e.logger)
	return e, nil
}
