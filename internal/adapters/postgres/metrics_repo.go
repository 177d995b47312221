package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"horizonx-sampler/internal/domain"
)

var (
	networkColumns = []string{
		"snapshot_id", "position", "name",
		"receive_bytes", "receive_packets", "receive_errors", "receive_dropped",
		"fifo_errors", "frame_errors", "compressed_packets", "multicast_packets",
		"transmit_bytes", "transmit_packets", "transmit_errors", "transmit_dropped",
	}

	diskColumns = []string{
		"snapshot_id", "position", "major", "minor", "device_name",
		"reads_completed", "reads_merged", "sectors_read", "read_time",
		"writes_completed", "writes_merged", "sectors_written", "write_time",
		"io_in_progress", "io_time", "io_weighted_time",
	}
)

type MetricsRepository struct {
	db *pgxpool.Pool
}

func NewMetricsRepository(db *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{db: db}
}

func (r *MetricsRepository) Write(ctx context.Context, s domain.Snapshot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO snapshots (host_id, recorded_at) VALUES ($1, $2) RETURNING id`,
		s.HostID, s.RecordedAt,
	).Scan(&id); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	c := s.CPU
	if _, err := tx.Exec(ctx, `
		INSERT INTO cpu_stats (snapshot_id, user_time, nice_time, system_time, idle_time, iowait_time,
			irq_time, softirq_time, steal_time, guest_time, guest_nice_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, signed(c.User), signed(c.Nice), signed(c.System), signed(c.Idle), signed(c.IOWait),
		signed(c.IRQ), signed(c.SoftIRQ), signed(c.Steal), signed(c.Guest), signed(c.GuestNice),
	); err != nil {
		return fmt.Errorf("insert cpu_stats: %w", err)
	}

	m := s.Memory
	if _, err := tx.Exec(ctx, `
		INSERT INTO mem_info (snapshot_id, mem_total, mem_free, mem_available, buffers, cached, swap_total, swap_free)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, signed(m.MemTotal), signed(m.MemFree), signed(m.MemAvailable), signed(m.Buffers),
		signed(m.Cached), signed(m.SwapTotal), signed(m.SwapFree),
	); err != nil {
		return fmt.Errorf("insert mem_info: %w", err)
	}

	if len(s.Network) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"network_interfaces"}, networkColumns,
			pgx.CopyFromRows(networkRows(id, s.Network))); err != nil {
			return fmt.Errorf("copy network_interfaces: %w", err)
		}
	}

	if len(s.Disk) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"disk_stats"}, diskColumns,
			pgx.CopyFromRows(diskRows(id, s.Disk))); err != nil {
			return fmt.Errorf("copy disk_stats: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func networkRows(id int64, interfaces []domain.NetworkInterface) [][]any {
	rows := make([][]any, len(interfaces))
	for i, n := range interfaces {
		rows[i] = []any{
			id, int32(i), n.Name,
			signed(n.ReceiveBytes), signed(n.ReceivePackets), signed(n.ReceiveErrors), signed(n.ReceiveDropped),
			signed(n.FIFOErrors), signed(n.FrameErrors), signed(n.CompressedPackets), signed(n.MulticastPackets),
			signed(n.TransmitBytes), signed(n.TransmitPackets), signed(n.TransmitErrors), signed(n.TransmitDropped),
		}
	}
	return rows
}

func diskRows(id int64, disks []domain.DiskStats) [][]any {
	rows := make([][]any, len(disks))
	for i, d := range disks {
		rows[i] = []any{
			id, int32(i), signed(d.Major), signed(d.Minor), d.DeviceName,
			signed(d.ReadsCompleted), signed(d.ReadsMerged), signed(d.SectorsRead), signed(d.ReadTime),
			signed(d.WritesCompleted), signed(d.WritesMerged), signed(d.SectorsWritten), signed(d.WriteTime),
			signed(d.IOInProgress), signed(d.IOTime), signed(d.IOWeightedTime),
		}
	}
	return rows
}

func (r *MetricsRepository) Latest(ctx context.Context) (domain.Snapshot, error) {
	var s domain.Snapshot
	var id int64

	err := r.db.QueryRow(ctx,
		`SELECT id, host_id, recorded_at FROM snapshots ORDER BY recorded_at DESC, id DESC LIMIT 1`,
	).Scan(&id, &s.HostID, &s.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select snapshot: %w", err)
	}

	c := &s.CPU
	if err := r.db.QueryRow(ctx, `
		SELECT user_time, nice_time, system_time, idle_time, iowait_time, irq_time, softirq_time,
			steal_time, guest_time, guest_nice_time
		FROM cpu_stats WHERE snapshot_id = $1`, id,
	).Scan((*counter)(&c.User), (*counter)(&c.Nice), (*counter)(&c.System), (*counter)(&c.Idle),
		(*counter)(&c.IOWait), (*counter)(&c.IRQ), (*counter)(&c.SoftIRQ), (*counter)(&c.Steal),
		(*counter)(&c.Guest), (*counter)(&c.GuestNice)); err != nil {
		return domain.Snapshot{}, fmt.Errorf("select cpu_stats: %w", err)
	}

	m := &s.Memory
	if err := r.db.QueryRow(ctx, `
		SELECT mem_total, mem_free, mem_available, buffers, cached, swap_total, swap_free
		FROM mem_info WHERE snapshot_id = $1`, id,
	).Scan((*counter)(&m.MemTotal), (*counter)(&m.MemFree), (*counter)(&m.MemAvailable), (*counter)(&m.Buffers),
		(*counter)(&m.Cached), (*counter)(&m.SwapTotal), (*counter)(&m.SwapFree)); err != nil {
		return domain.Snapshot{}, fmt.Errorf("select mem_info: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT name, receive_bytes, receive_packets, receive_errors, receive_dropped, fifo_errors,
			frame_errors, compressed_packets, multicast_packets, transmit_bytes, transmit_packets,
			transmit_errors, transmit_dropped
		FROM network_interfaces WHERE snapshot_id = $1 ORDER BY position`, id)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select network_interfaces: %w", err)
	}
	s.Network, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.NetworkInterface, error) {
		var n domain.NetworkInterface
		err := row.Scan(&n.Name, (*counter)(&n.ReceiveBytes), (*counter)(&n.ReceivePackets), (*counter)(&n.ReceiveErrors), (*counter)(&n.ReceiveDropped),
			(*counter)(&n.FIFOErrors), (*counter)(&n.FrameErrors), (*counter)(&n.CompressedPackets), (*counter)(&n.MulticastPackets),
			(*counter)(&n.TransmitBytes), (*counter)(&n.TransmitPackets), (*counter)(&n.TransmitErrors), (*counter)(&n.TransmitDropped))
		return n, err
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("scan network_interfaces: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT major, minor, device_name, reads_completed, reads_merged, sectors_read, read_time,
			writes_completed, writes_merged, sectors_written, write_time, io_in_progress, io_time,
			io_weighted_time
		FROM disk_stats WHERE snapshot_id = $1 ORDER BY position`, id)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select disk_stats: %w", err)
	}
	s.Disk, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DiskStats, error) {
		var d domain.DiskStats
		err := row.Scan((*counter)(&d.Major), (*counter)(&d.Minor), &d.DeviceName, (*counter)(&d.ReadsCompleted), (*counter)(&d.ReadsMerged),
			(*counter)(&d.SectorsRead), (*counter)(&d.ReadTime), (*counter)(&d.WritesCompleted), (*counter)(&d.WritesMerged), (*counter)(&d.SectorsWritten),
			(*counter)(&d.WriteTime), (*counter)(&d.IOInProgress), (*counter)(&d.IOTime), (*counter)(&d.IOWeightedTime))
		return d, err
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("scan disk_stats: %w", err)
	}

	return s, nil
}

func (r *MetricsRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM snapshots WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
