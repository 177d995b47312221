// Package sqlite stores snapshots in a local SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"horizonx-sampler/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

func NewSqliteDB(dbPath string, log logger.Logger) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database not responding: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info("sqlite connection established successfully", "path", dbPath)

	if err := runMigration(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

var migrations = []struct {
	table string
	query string
}{
	{"snapshots", `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY,
		host_id TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_host_recorded ON snapshots (host_id, recorded_at);
	`},
	{"cpu_stats", `
	CREATE TABLE IF NOT EXISTS cpu_stats (
		snapshot_id INTEGER PRIMARY KEY REFERENCES snapshots (id) ON DELETE CASCADE,
		user_time INTEGER NOT NULL,
		nice_time INTEGER NOT NULL,
		system_time INTEGER NOT NULL,
		idle_time INTEGER NOT NULL,
		iowait_time INTEGER NOT NULL,
		irq_time INTEGER NOT NULL,
		softirq_time INTEGER NOT NULL,
		steal_time INTEGER NOT NULL,
		guest_time INTEGER NOT NULL,
		guest_nice_time INTEGER NOT NULL
	);
	`},
	{"mem_info", `
	CREATE TABLE IF NOT EXISTS mem_info (
		snapshot_id INTEGER PRIMARY KEY REFERENCES snapshots (id) ON DELETE CASCADE,
		mem_total INTEGER NOT NULL,
		mem_free INTEGER NOT NULL,
		mem_available INTEGER NOT NULL,
		buffers INTEGER NOT NULL,
		cached INTEGER NOT NULL,
		swap_total INTEGER NOT NULL,
		swap_free INTEGER NOT NULL
	);
	`},
	{"network_interfaces", `
	CREATE TABLE IF NOT EXISTS network_interfaces (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		receive_bytes INTEGER NOT NULL,
		receive_packets INTEGER NOT NULL,
		receive_errors INTEGER NOT NULL,
		receive_dropped INTEGER NOT NULL,
		fifo_errors INTEGER NOT NULL,
		frame_errors INTEGER NOT NULL,
		compressed_packets INTEGER NOT NULL,
		multicast_packets INTEGER NOT NULL,
		transmit_bytes INTEGER NOT NULL,
		transmit_packets INTEGER NOT NULL,
		transmit_errors INTEGER NOT NULL,
		transmit_dropped INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, position)
	);
	`},
	{"disk_stats", `
	CREATE TABLE IF NOT EXISTS disk_stats (
		snapshot_id INTEGER NOT NULL REFERENCES snapshots (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		major INTEGER NOT NULL,
		minor INTEGER NOT NULL,
		device_name TEXT NOT NULL,
		reads_completed INTEGER NOT NULL,
		reads_merged INTEGER NOT NULL,
		sectors_read INTEGER NOT NULL,
		read_time INTEGER NOT NULL,
		writes_completed INTEGER NOT NULL,
		writes_merged INTEGER NOT NULL,
		sectors_written INTEGER NOT NULL,
		write_time INTEGER NOT NULL,
		io_in_progress INTEGER NOT NULL,
		io_time INTEGER NOT NULL,
		io_weighted_time INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, position)
	);
	`},
}

func runMigration(db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m.query); err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", m.table, err)
		}
	}
	return nil
}
