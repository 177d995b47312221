package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"horizonx-sampler/internal/domain"
)

type MetricsRepository struct {
	db *sql.DB
}

func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// Write stores the snapshot and all of its rows in one transaction.
func (r *MetricsRepository) Write(ctx context.Context, s domain.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (host_id, recorded_at) VALUES (?, ?)`,
		s.HostID.String(), s.RecordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	c := s.CPU
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO cpu_stats (snapshot_id, user_time, nice_time, system_time, idle_time, iowait_time,
			irq_time, softirq_time, steal_time, guest_time, guest_nice_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, signed(c.User), signed(c.Nice), signed(c.System), signed(c.Idle), signed(c.IOWait),
		signed(c.IRQ), signed(c.SoftIRQ), signed(c.Steal), signed(c.Guest), signed(c.GuestNice),
	); err != nil {
		return fmt.Errorf("insert cpu_stats: %w", err)
	}

	m := s.Memory
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO mem_info (snapshot_id, mem_total, mem_free, mem_available, buffers, cached, swap_total, swap_free)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, signed(m.MemTotal), signed(m.MemFree), signed(m.MemAvailable), signed(m.Buffers),
		signed(m.Cached), signed(m.SwapTotal), signed(m.SwapFree),
	); err != nil {
		return fmt.Errorf("insert mem_info: %w", err)
	}

	if err := insertNetwork(ctx, tx, id, s.Network); err != nil {
		return err
	}

	if err := insertDisks(ctx, tx, id, s.Disk); err != nil {
		return err
	}

	return tx.Commit()
}

func insertNetwork(ctx context.Context, tx *sql.Tx, id int64, interfaces []domain.NetworkInterface) error {
	if len(interfaces) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO network_interfaces (snapshot_id, position, name, receive_bytes, receive_packets,
			receive_errors, receive_dropped, fifo_errors, frame_errors, compressed_packets, multicast_packets,
			transmit_bytes, transmit_packets, transmit_errors, transmit_dropped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare network_interfaces: %w", err)
	}
	defer stmt.Close()

	for i, n := range interfaces {
		if _, err := stmt.ExecContext(ctx, id, i, n.Name,
			signed(n.ReceiveBytes), signed(n.ReceivePackets), signed(n.ReceiveErrors), signed(n.ReceiveDropped),
			signed(n.FIFOErrors), signed(n.FrameErrors), signed(n.CompressedPackets), signed(n.MulticastPackets),
			signed(n.TransmitBytes), signed(n.TransmitPackets), signed(n.TransmitErrors), signed(n.TransmitDropped),
		); err != nil {
			return fmt.Errorf("insert network_interfaces %s: %w", n.Name, err)
		}
	}

	return nil
}

func insertDisks(ctx context.Context, tx *sql.Tx, id int64, disks []domain.DiskStats) error {
	if len(disks) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO disk_stats (snapshot_id, position, major, minor, device_name, reads_completed,
			reads_merged, sectors_read, read_time, writes_completed, writes_merged, sectors_written,
			write_time, io_in_progress, io_time, io_weighted_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare disk_stats: %w", err)
	}
	defer stmt.Close()

	for i, d := range disks {
		if _, err := stmt.ExecContext(ctx, id, i, signed(d.Major), signed(d.Minor), d.DeviceName,
			signed(d.ReadsCompleted), signed(d.ReadsMerged), signed(d.SectorsRead), signed(d.ReadTime),
			signed(d.WritesCompleted), signed(d.WritesMerged), signed(d.SectorsWritten), signed(d.WriteTime),
			signed(d.IOInProgress), signed(d.IOTime), signed(d.IOWeightedTime),
		); err != nil {
			return fmt.Errorf("insert disk_stats %s: %w", d.DeviceName, err)
		}
	}

	return nil
}

// Latest reads back the most recent snapshot.
func (r *MetricsRepository) Latest(ctx context.Context) (domain.Snapshot, error) {
	var s domain.Snapshot
	var id int64
	var hostID string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, host_id, recorded_at FROM snapshots ORDER BY recorded_at DESC, id DESC LIMIT 1`,
	).Scan(&id, &hostID, &s.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select snapshot: %w", err)
	}

	if s.HostID, err = uuid.Parse(hostID); err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse host_id: %w", err)
	}

	c := &s.CPU
	if err := r.db.QueryRowContext(ctx, `
		SELECT user_time, nice_time, system_time, idle_time, iowait_time, irq_time, softirq_time,
			steal_time, guest_time, guest_nice_time
		FROM cpu_stats WHERE snapshot_id = ?`, id,
	).Scan((*counter)(&c.User), (*counter)(&c.Nice), (*counter)(&c.System), (*counter)(&c.Idle),
		(*counter)(&c.IOWait), (*counter)(&c.IRQ), (*counter)(&c.SoftIRQ), (*counter)(&c.Steal),
		(*counter)(&c.Guest), (*counter)(&c.GuestNice)); err != nil {
		return domain.Snapshot{}, fmt.Errorf("select cpu_stats: %w", err)
	}

	m := &s.Memory
	if err := r.db.QueryRowContext(ctx, `
		SELECT mem_total, mem_free, mem_available, buffers, cached, swap_total, swap_free
		FROM mem_info WHERE snapshot_id = ?`, id,
	).Scan((*counter)(&m.MemTotal), (*counter)(&m.MemFree), (*counter)(&m.MemAvailable), (*counter)(&m.Buffers),
		(*counter)(&m.Cached), (*counter)(&m.SwapTotal), (*counter)(&m.SwapFree)); err != nil {
		return domain.Snapshot{}, fmt.Errorf("select mem_info: %w", err)
	}

	if s.Network, err = r.selectNetwork(ctx, id); err != nil {
		return domain.Snapshot{}, err
	}

	if s.Disk, err = r.selectDisks(ctx, id); err != nil {
		return domain.Snapshot{}, err
	}

	return s, nil
}

func (r *MetricsRepository) selectNetwork(ctx context.Context, id int64) ([]domain.NetworkInterface, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, receive_bytes, receive_packets, receive_errors, receive_dropped, fifo_errors,
			frame_errors, compressed_packets, multicast_packets, transmit_bytes, transmit_packets,
			transmit_errors, transmit_dropped
		FROM network_interfaces WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("select network_interfaces: %w", err)
	}
	defer rows.Close()

	var out []domain.NetworkInterface
	for rows.Next() {
		var n domain.NetworkInterface
		if err := rows.Scan(&n.Name, (*counter)(&n.ReceiveBytes), (*counter)(&n.ReceivePackets), (*counter)(&n.ReceiveErrors), (*counter)(&n.ReceiveDropped),
			(*counter)(&n.FIFOErrors), (*counter)(&n.FrameErrors), (*counter)(&n.CompressedPackets), (*counter)(&n.MulticastPackets),
			(*counter)(&n.TransmitBytes), (*counter)(&n.TransmitPackets), (*counter)(&n.TransmitErrors), (*counter)(&n.TransmitDropped)); err != nil {
			return nil, fmt.Errorf("scan network_interfaces: %w", err)
		}
		out = append(out, n)
	}

	return out, rows.Err()
}

func (r *MetricsRepository) selectDisks(ctx context.Context, id int64) ([]domain.DiskStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT major, minor, device_name, reads_completed, reads_merged, sectors_read, read_time,
			writes_completed, writes_merged, sectors_written, write_time, io_in_progress, io_time,
			io_weighted_time
		FROM disk_stats WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("select disk_stats: %w", err)
	}
	defer rows.Close()

	var out []domain.DiskStats
	for rows.Next() {
		var d domain.DiskStats
		if err := rows.Scan((*counter)(&d.Major), (*counter)(&d.Minor), &d.DeviceName, (*counter)(&d.ReadsCompleted), (*counter)(&d.ReadsMerged),
			(*counter)(&d.SectorsRead), (*counter)(&d.ReadTime), (*counter)(&d.WritesCompleted), (*counter)(&d.WritesMerged), (*counter)(&d.SectorsWritten),
			(*counter)(&d.WriteTime), (*counter)(&d.IOInProgress), (*counter)(&d.IOTime), (*counter)(&d.IOWeightedTime)); err != nil {
			return nil, fmt.Errorf("scan disk_stats: %w", err)
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

// DeleteBefore prunes snapshots recorded before the cutoff. Child rows
// go with them through ON DELETE CASCADE.
func (r *MetricsRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE recorded_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return res.RowsAffected()
}
