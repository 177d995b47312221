// Package exporter exposes the latest snapshot and collection loop
// counters in the Prometheus format. Values are the raw cumulative
// counters read from procfs; rates are left to the query side.
package exporter

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"horizonx-sampler/internal/core/metrics"
	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

const namespace = "horizonx"

type latestReader interface {
	Latest(ctx context.Context) (domain.Snapshot, error)
}

type statsSource interface {
	Stats() metrics.Stats
}

type fieldDesc[T any] struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(T) uint64
}

func counter[T any](subsystem, name, help, label string, value func(T) uint64) fieldDesc[T] {
	return fieldDesc[T]{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, []string{label}, nil),
		kind:  prometheus.CounterValue,
		value: value,
	}
}

type Exporter struct {
	latest latestReader
	stats  statsSource
	log    logger.Logger

	cpuTicks  *prometheus.Desc
	memory    *prometheus.Desc
	recorded  *prometheus.Desc
	network   []fieldDesc[domain.NetworkInterface]
	disk      []fieldDesc[domain.DiskStats]
	loopTicks *prometheus.Desc
	delivered *prometheus.Desc
	sampleErr *prometheus.Desc
	sinkErr   *prometheus.Desc
}

// New builds an exporter. stats may be nil when no collection loop runs.
func New(latest latestReader, stats statsSource, log logger.Logger) *Exporter {
	e := &Exporter{
		latest: latest,
		stats:  stats,
		log:    log,

		cpuTicks: prometheus.NewDesc("horizonx_cpu_ticks_total",
			"Aggregate CPU time spent in each mode, in clock ticks.", []string{"mode"}, nil),
		memory: prometheus.NewDesc("horizonx_memory_kibibytes",
			"Memory figures from meminfo, in KiB.", []string{"field"}, nil),
		recorded: prometheus.NewDesc("horizonx_snapshot_timestamp_seconds",
			"Unix time the latest snapshot was taken.", nil, nil),

		loopTicks: prometheus.NewDesc("horizonx_sampler_ticks_total",
			"Ticks handled by the collection loop.", nil, nil),
		delivered: prometheus.NewDesc("horizonx_sampler_snapshots_delivered_total",
			"Snapshots accepted by the sink.", nil, nil),
		sampleErr: prometheus.NewDesc("horizonx_sampler_sample_failures_total",
			"Ticks skipped because a pseudo-file could not be read or parsed.", nil, nil),
		sinkErr: prometheus.NewDesc("horizonx_sampler_sink_failures_total",
			"Ticks whose snapshot the sink rejected.", nil, nil),
	}

	type nic = domain.NetworkInterface
	e.network = []fieldDesc[nic]{
		counter("network", "receive_bytes_total", "Bytes received.", "interface", func(n nic) uint64 { return n.ReceiveBytes }),
		counter("network", "receive_packets_total", "Packets received.", "interface", func(n nic) uint64 { return n.ReceivePackets }),
		counter("network", "receive_errors_total", "Receive errors.", "interface", func(n nic) uint64 { return n.ReceiveErrors }),
		counter("network", "receive_dropped_total", "Received packets dropped.", "interface", func(n nic) uint64 { return n.ReceiveDropped }),
		counter("network", "receive_fifo_errors_total", "Receive FIFO buffer errors.", "interface", func(n nic) uint64 { return n.FIFOErrors }),
		counter("network", "receive_frame_errors_total", "Receive framing errors.", "interface", func(n nic) uint64 { return n.FrameErrors }),
		counter("network", "receive_compressed_total", "Compressed packets received.", "interface", func(n nic) uint64 { return n.CompressedPackets }),
		counter("network", "receive_multicast_total", "Multicast frames received.", "interface", func(n nic) uint64 { return n.MulticastPackets }),
		counter("network", "transmit_bytes_total", "Bytes transmitted.", "interface", func(n nic) uint64 { return n.TransmitBytes }),
		counter("network", "transmit_packets_total", "Packets transmitted.", "interface", func(n nic) uint64 { return n.TransmitPackets }),
		counter("network", "transmit_errors_total", "Transmit errors.", "interface", func(n nic) uint64 { return n.TransmitErrors }),
		counter("network", "transmit_dropped_total", "Transmitted packets dropped.", "interface", func(n nic) uint64 { return n.TransmitDropped }),
	}

	type dsk = domain.DiskStats
	inProgress := fieldDesc[dsk]{
		desc: prometheus.NewDesc("horizonx_disk_io_in_progress",
			"I/Os currently in progress.", []string{"device"}, nil),
		kind:  prometheus.GaugeValue,
		value: func(d dsk) uint64 { return d.IOInProgress },
	}
	e.disk = []fieldDesc[dsk]{
		counter("disk", "reads_completed_total", "Reads completed.", "device", func(d dsk) uint64 { return d.ReadsCompleted }),
		counter("disk", "reads_merged_total", "Adjacent reads merged.", "device", func(d dsk) uint64 { return d.ReadsMerged }),
		counter("disk", "sectors_read_total", "Sectors read.", "device", func(d dsk) uint64 { return d.SectorsRead }),
		counter("disk", "read_time_milliseconds_total", "Time spent reading.", "device", func(d dsk) uint64 { return d.ReadTime }),
		counter("disk", "writes_completed_total", "Writes completed.", "device", func(d dsk) uint64 { return d.WritesCompleted }),
		counter("disk", "writes_merged_total", "Adjacent writes merged.", "device", func(d dsk) uint64 { return d.WritesMerged }),
		counter("disk", "sectors_written_total", "Sectors written.", "device", func(d dsk) uint64 { return d.SectorsWritten }),
		counter("disk", "write_time_milliseconds_total", "Time spent writing.", "device", func(d dsk) uint64 { return d.WriteTime }),
		inProgress,
		counter("disk", "io_time_milliseconds_total", "Time spent doing I/Os.", "device", func(d dsk) uint64 { return d.IOTime }),
		counter("disk", "io_weighted_time_milliseconds_total", "Weighted time spent doing I/Os.", "device", func(d dsk) uint64 { return d.IOWeightedTime }),
	}

	return e
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.cpuTicks
	ch <- e.memory
	ch <- e.recorded
	for _, f := range e.network {
		ch <- f.desc
	}
	for _, f := range e.disk {
		ch <- f.desc
	}
	ch <- e.loopTicks
	ch <- e.delivered
	ch <- e.sampleErr
	ch <- e.sinkErr
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e.stats != nil {
		st := e.stats.Stats()
		ch <- prometheus.MustNewConstMetric(e.loopTicks, prometheus.CounterValue, float64(st.Ticks))
		ch <- prometheus.MustNewConstMetric(e.delivered, prometheus.CounterValue, float64(st.Delivered))
		ch <- prometheus.MustNewConstMetric(e.sampleErr, prometheus.CounterValue, float64(st.SampleFailures))
		ch <- prometheus.MustNewConstMetric(e.sinkErr, prometheus.CounterValue, float64(st.SinkFailures))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := e.latest.Latest(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			e.log.Error("exporter: failed to read latest snapshot", "error", err)
		}
		return
	}

	ch <- prometheus.MustNewConstMetric(e.recorded, prometheus.GaugeValue, float64(s.RecordedAt.UnixNano())/1e9)

	c := s.CPU
	for _, m := range []struct {
		mode  string
		value uint64
	}{
		{"user", c.User}, {"nice", c.Nice}, {"system", c.System}, {"idle", c.Idle}, {"iowait", c.IOWait},
		{"irq", c.IRQ}, {"softirq", c.SoftIRQ}, {"steal", c.Steal}, {"guest", c.Guest}, {"guest_nice", c.GuestNice},
	} {
		ch <- prometheus.MustNewConstMetric(e.cpuTicks, prometheus.CounterValue, float64(m.value), m.mode)
	}

	mem := s.Memory
	for _, m := range []struct {
		field string
		value uint64
	}{
		{"mem_total", mem.MemTotal}, {"mem_free", mem.MemFree}, {"mem_available", mem.MemAvailable},
		{"buffers", mem.Buffers}, {"cached", mem.Cached}, {"swap_total", mem.SwapTotal}, {"swap_free", mem.SwapFree},
	} {
		ch <- prometheus.MustNewConstMetric(e.memory, prometheus.GaugeValue, float64(m.value), m.field)
	}

	for _, n := range s.Network {
		for _, f := range e.network {
			ch <- prometheus.MustNewConstMetric(f.desc, f.kind, float64(f.value(n)), n.Name)
		}
	}

	for _, d := range s.Disk {
		for _, f := range e.disk {
			ch <- prometheus.MustNewConstMetric(f.desc, f.kind, float64(f.value(d)), d.DeviceName)
		}
	}
}
