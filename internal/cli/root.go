// Package cli wires the sampler's commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"horizonx-sampler/internal/config"
	"horizonx-sampler/internal/logger"
)

const name = "horizonx-sampler"

// overridden during build with ldflags
var version = "dev"

const (
	flagInterval = "interval"
	flagProcRoot = "proc-root"
	flagLogLevel = "log-level"
	flagFormat   = "format"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  flagInterval,
			Usage: "time between samples (overrides SCRAPE_INTERVAL)",
		},
		&cli.StringFlag{
			Name:  flagProcRoot,
			Usage: "procfs mount to read from (overrides PROC_ROOT)",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "debug, info, warn or error (overrides LOG_LEVEL)",
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    flagFormat,
		Aliases: []string{"f"},
		Usage:   "output format: json or yaml",
		Value:   "json",
	}
}

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Sample CPU, memory, network and disk counters from procfs",
		Version: version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			serveCmd(),
			streamCmd(),
			snapshotCmd(),
			tokenCmd(),
		},
	}
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(cmd *cli.Command) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if cmd.IsSet(flagInterval) {
		cfg.Interval = cmd.Duration(flagInterval)
	}
	if cmd.IsSet(flagProcRoot) {
		cfg.ProcRoot = cmd.String(flagProcRoot)
	}
	if cmd.IsSet(flagLogLevel) {
		cfg.LogLevel = cmd.String(flagLogLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, logger.New(cfg), nil
}
