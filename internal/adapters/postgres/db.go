// Package postgres stores snapshots in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"horizonx-sampler/internal/logger"
)

func InitDB(ctx context.Context, databaseURL string, log logger.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database not responding: %w", err)
	}

	log.Info("postgres connection established successfully", "host", cfg.ConnConfig.Host, "database", cfg.ConnConfig.Database)

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id BIGSERIAL PRIMARY KEY,
	host_id UUID NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_host_recorded ON snapshots (host_id, recorded_at DESC);

CREATE TABLE IF NOT EXISTS cpu_stats (
	snapshot_id BIGINT PRIMARY KEY REFERENCES snapshots (id) ON DELETE CASCADE,
	user_time BIGINT NOT NULL,
	nice_time BIGINT NOT NULL,
	system_time BIGINT NOT NULL,
	idle_time BIGINT NOT NULL,
	iowait_time BIGINT NOT NULL,
	irq_time BIGINT NOT NULL,
	softirq_time BIGINT NOT NULL,
	steal_time BIGINT NOT NULL,
	guest_time BIGINT NOT NULL,
	guest_nice_time BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS mem_info (
	snapshot_id BIGINT PRIMARY KEY REFERENCES snapshots (id) ON DELETE CASCADE,
	mem_total BIGINT NOT NULL,
	mem_free BIGINT NOT NULL,
	mem_available BIGINT NOT NULL,
	buffers BIGINT NOT NULL,
	cached BIGINT NOT NULL,
	swap_total BIGINT NOT NULL,
	swap_free BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS network_interfaces (
	snapshot_id BIGINT NOT NULL REFERENCES snapshots (id) ON DELETE CASCADE,
	position INT NOT NULL,
	name TEXT NOT NULL,
	receive_bytes BIGINT NOT NULL,
	receive_packets BIGINT NOT NULL,
	receive_errors BIGINT NOT NULL,
	receive_dropped BIGINT NOT NULL,
	fifo_errors BIGINT NOT NULL,
	frame_errors BIGINT NOT NULL,
	compressed_packets BIGINT NOT NULL,
	multicast_packets BIGINT NOT NULL,
	transmit_bytes BIGINT NOT NULL,
	transmit_packets BIGINT NOT NULL,
	transmit_errors BIGINT NOT NULL,
	transmit_dropped BIGINT NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);

CREATE TABLE IF NOT EXISTS disk_stats (
	snapshot_id BIGINT NOT NULL REFERENCES snapshots (id) ON DELETE CASCADE,
	position INT NOT NULL,
	major BIGINT NOT NULL,
	minor BIGINT NOT NULL,
	device_name TEXT NOT NULL,
	reads_completed BIGINT NOT NULL,
	reads_merged BIGINT NOT NULL,
	sectors_read BIGINT NOT NULL,
	read_time BIGINT NOT NULL,
	writes_completed BIGINT NOT NULL,
	writes_merged BIGINT NOT NULL,
	sectors_written BIGINT NOT NULL,
	write_time BIGINT NOT NULL,
	io_in_progress BIGINT NOT NULL,
	io_time BIGINT NOT NULL,
	io_weighted_time BIGINT NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);
`

// Migrate provisions the snapshot tables. It is safe to run repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate snapshot tables: %w", err)
	}
	return nil
}
