package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"horizonx-sampler/internal/adapters/stdout"
	"horizonx-sampler/internal/core/metrics"
)

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Take one snapshot and print it",
		Flags: []cli.Flag{formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out, err := stdout.NewWriter(cmd.Root().Writer, cmd.String(flagFormat))
			if err != nil {
				return err
			}

			start := time.Now()

			sampler := metrics.NewSampler(os.DirFS(cfg.ProcRoot), log)
			snapshot, err := sampler.Collect(ctx)
			if err != nil {
				return fmt.Errorf("sample %s: %w", cfg.ProcRoot, err)
			}

			snapshot.HostID = cfg.HostID
			snapshot.RecordedAt = start.UTC()

			return out.Write(ctx, snapshot)
		},
	}
}
