package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"horizonx-sampler/internal/domain"
)

func tokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for the HTTP endpoint, signed with JWT_SECRET",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "subject",
				Usage: "who the token is for",
				Value: "dashboard",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "token lifetime",
				Value: 24 * time.Hour,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := domain.IssueToken(cmd.String("subject"), cfg.JWTSecret, cmd.Duration("ttl"))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, token)
			return err
		},
	}
}
