package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"horizonx-sampler/internal/adapters/stdout"
	"horizonx-sampler/internal/core/metrics"
)

func streamCmd() *cli.Command {
	return &cli.Command{
		Name:  "stream",
		Usage: "Sample on every interval and print each snapshot until interrupted",
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

			sampler := metrics.NewSampler(os.DirFS(cfg.ProcRoot), log)
			scheduler := metrics.NewScheduler(cfg.Interval, sampler, out, log, metrics.WithHostID(cfg.HostID))

			return scheduler.Run(ctx)
		},
	}
}
