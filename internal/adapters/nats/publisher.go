// Package nats publishes snapshots to a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

// flushTimeout bounds the server round trip when the caller's context
// carries no deadline. nats.go refuses to flush without one.
const flushTimeout = 5 * time.Second

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

type Publisher struct {
	nc      conn
	subject string
	log     logger.Logger
}

// Connect dials url and returns a Publisher for subject. The connection
// reconnects forever; outages are logged.
func Connect(url, subject string, log logger.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("horizonx-sampler"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}

	log.Info("nats connection established", "url", nc.ConnectedUrl(), "subject", subject)

	return newPublisher(nc, subject, log), nil
}

func newPublisher(nc conn, subject string, log logger.Logger) *Publisher {
	return &Publisher{nc: nc, subject: subject, log: log}
}

func (p *Publisher) Write(ctx context.Context, s domain.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}

	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.subject, err)
	}
	return nil
}

// Close drains pending messages before closing the connection.
func (p *Publisher) Close() error {
	return p.nc.Drain()
}
