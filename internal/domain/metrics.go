package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Snapshot is everything sampled for one tick. Counters are raw and
// cumulative since boot; nothing here is a rate.
type Snapshot struct {
	HostID     uuid.UUID          `json:"host_id" yaml:"host_id"`
	CPU        CPUStats           `json:"cpu_stats" yaml:"cpu_stats"`
	Memory     MemInfo            `json:"mem_info" yaml:"mem_info"`
	Network    []NetworkInterface `json:"network_info" yaml:"network_info"`
	Disk       []DiskStats        `json:"disk_info" yaml:"disk_info"`
	RecordedAt time.Time          `json:"recorded_at" yaml:"recorded_at"`
}

// CPUStats holds the aggregate "cpu" row of the stat pseudo-file, in ticks.
type CPUStats struct {
	User      uint64 `json:"user" yaml:"user"`
	Nice      uint64 `json:"nice" yaml:"nice"`
	System    uint64 `json:"system" yaml:"system"`
	Idle      uint64 `json:"idle" yaml:"idle"`
	IOWait    uint64 `json:"iowait" yaml:"iowait"`
	IRQ       uint64 `json:"irq" yaml:"irq"`
	SoftIRQ   uint64 `json:"softirq" yaml:"softirq"`
	Steal     uint64 `json:"steal" yaml:"steal"`
	Guest     uint64 `json:"guest" yaml:"guest"`
	GuestNice uint64 `json:"guest_nice" yaml:"guest_nice"`
}

// MemInfo values are in kibibytes, as the kernel reports them.
type MemInfo struct {
	MemTotal     uint64 `json:"mem_total" yaml:"mem_total"`
	MemFree      uint64 `json:"mem_free" yaml:"mem_free"`
	MemAvailable uint64 `json:"mem_available" yaml:"mem_available"`
	Buffers      uint64 `json:"buffers" yaml:"buffers"`
	Cached       uint64 `json:"cached" yaml:"cached"`
	SwapTotal    uint64 `json:"swap_total" yaml:"swap_total"`
	SwapFree     uint64 `json:"swap_free" yaml:"swap_free"`
}

type NetworkInterface struct {
	Name              string `json:"name" yaml:"name"`
	ReceiveBytes      uint64 `json:"receive_bytes" yaml:"receive_bytes"`
	ReceivePackets    uint64 `json:"receive_packets" yaml:"receive_packets"`
	ReceiveErrors     uint64 `json:"receive_errors" yaml:"receive_errors"`
	ReceiveDropped    uint64 `json:"receive_dropped" yaml:"receive_dropped"`
	FIFOErrors        uint64 `json:"fifo_errors" yaml:"fifo_errors"`
	FrameErrors       uint64 `json:"frame_errors" yaml:"frame_errors"`
	CompressedPackets uint64 `json:"compressed_packets" yaml:"compressed_packets"`
	MulticastPackets  uint64 `json:"multicast_packets" yaml:"multicast_packets"`
	TransmitBytes     uint64 `json:"transmit_bytes" yaml:"transmit_bytes"`
	TransmitPackets   uint64 `json:"transmit_packets" yaml:"transmit_packets"`
	TransmitErrors    uint64 `json:"transmit_errors" yaml:"transmit_errors"`
	TransmitDropped   uint64 `json:"transmit_dropped" yaml:"transmit_dropped"`
}

type DiskStats struct {
	Major           uint64 `json:"major" yaml:"major"`
	Minor           uint64 `json:"minor" yaml:"minor"`
	DeviceName      string `json:"device_name" yaml:"device_name"`
	ReadsCompleted  uint64 `json:"reads_completed" yaml:"reads_completed"`
	ReadsMerged     uint64 `json:"reads_merged" yaml:"reads_merged"`
	SectorsRead     uint64 `json:"sectors_read" yaml:"sectors_read"`
	ReadTime        uint64 `json:"read_time" yaml:"read_time"`
	WritesCompleted uint64 `json:"writes_completed" yaml:"writes_completed"`
	WritesMerged    uint64 `json:"writes_merged" yaml:"writes_merged"`
	SectorsWritten  uint64 `json:"sectors_written" yaml:"sectors_written"`
	WriteTime       uint64 `json:"write_time" yaml:"write_time"`
	IOInProgress    uint64 `json:"io_in_progress" yaml:"io_in_progress"`
	IOTime          uint64 `json:"io_time" yaml:"io_time"`
	IOWeightedTime  uint64 `json:"io_weighted_time" yaml:"io_weighted_time"`
}

// SnapshotSink receives one Snapshot per tick. Delivery is best-effort;
// a sink that wants stronger guarantees buffers or retries on its own.
type SnapshotSink interface {
	Write(ctx context.Context, snapshot Snapshot) error
}

// SnapshotRepository is a sink that can also read back what it stored.
type SnapshotRepository interface {
	SnapshotSink
	Latest(ctx context.Context) (Snapshot, error)
}
