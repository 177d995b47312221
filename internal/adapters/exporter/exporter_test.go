package exporter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizonx-sampler/internal/core/metrics"
	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
	"horizonx-sampler/internal/store"
)

type fixedStats metrics.Stats

func (f fixedStats) Stats() metrics.Stats { return metrics.Stats(f) }

func sample() domain.Snapshot {
	return domain.Snapshot{
		RecordedAt: time.Unix(1760000000, 0).UTC(),
		CPU:        domain.CPUStats{User: 100, Nice: 1, System: 50, Idle: 1000, IOWait: 3, IRQ: 0, SoftIRQ: 2, Steal: 0, Guest: 0, GuestNice: 0},
		Memory:     domain.MemInfo{MemTotal: 16384, MemFree: 4096, MemAvailable: 8192, Buffers: 128, Cached: 2048, SwapTotal: 1024, SwapFree: 512},
		Network: []domain.NetworkInterface{
			{Name: "lo", ReceiveBytes: 500, TransmitBytes: 500},
			{Name: "eth0", ReceiveBytes: 1234, TransmitBytes: 4321, MulticastPackets: 7},
		},
		Disk: []domain.DiskStats{
			{Major: 8, DeviceName: "sda", ReadsCompleted: 10, SectorsWritten: 80, IOInProgress: 2},
		},
	}
}

func TestExporter_Snapshot(t *testing.T) {
	latest := store.NewSnapshotStore()
	require.NoError(t, latest.Write(context.Background(), sample()))

	e := New(latest, nil, logger.Discard())

	expected := `
# HELP horizonx_cpu_ticks_total Aggregate CPU time spent in each mode, in clock ticks.
# TYPE horizonx_cpu_ticks_total counter
horizonx_cpu_ticks_total{mode="guest"} 0
horizonx_cpu_ticks_total{mode="guest_nice"} 0
horizonx_cpu_ticks_total{mode="idle"} 1000
horizonx_cpu_ticks_total{mode="iowait"} 3
horizonx_cpu_ticks_total{mode="irq"} 0
horizonx_cpu_ticks_total{mode="nice"} 1
horizonx_cpu_ticks_total{mode="softirq"} 2
horizonx_cpu_ticks_total{mode="steal"} 0
horizonx_cpu_ticks_total{mode="system"} 50
horizonx_cpu_ticks_total{mode="user"} 100
# HELP horizonx_network_receive_bytes_total Bytes received.
# TYPE horizonx_network_receive_bytes_total counter
horizonx_network_receive_bytes_total{interface="eth0"} 1234
horizonx_network_receive_bytes_total{interface="lo"} 500
# HELP horizonx_disk_io_in_progress I/Os currently in progress.
# TYPE horizonx_disk_io_in_progress gauge
horizonx_disk_io_in_progress{device="sda"} 2
# HELP horizonx_memory_kibibytes Memory figures from meminfo, in KiB.
# TYPE horizonx_memory_kibibytes gauge
horizonx_memory_kibibytes{field="buffers"} 128
horizonx_memory_kibibytes{field="cached"} 2048
horizonx_memory_kibibytes{field="mem_available"} 8192
horizonx_memory_kibibytes{field="mem_free"} 4096
horizonx_memory_kibibytes{field="mem_total"} 16384
horizonx_memory_kibibytes{field="swap_free"} 512
horizonx_memory_kibibytes{field="swap_total"} 1024
`
	err := testutil.CollectAndCompare(e, strings.NewReader(expected),
		"horizonx_cpu_ticks_total",
		"horizonx_network_receive_bytes_total",
		"horizonx_disk_io_in_progress",
		"horizonx_memory_kibibytes",
	)
	assert.NoError(t, err)

	// 10 cpu + 7 memory + 1 timestamp + 2*12 network + 1*11 disk
	assert.Equal(t, 53, testutil.CollectAndCount(e))
}

func TestExporter_NoSnapshotYet(t *testing.T) {
	stats := fixedStats{Ticks: 3, Delivered: 1, SampleFailures: 2}
	e := New(store.NewSnapshotStore(), stats, logger.Discard())

	assert.Equal(t, 4, testutil.CollectAndCount(e))
	assert.Zero(t, testutil.CollectAndCount(e, "horizonx_cpu_ticks_total"))

	expected := `
# HELP horizonx_sampler_sample_failures_total Ticks skipped because a pseudo-file could not be read or parsed.
# TYPE horizonx_sampler_sample_failures_total counter
horizonx_sampler_sample_failures_total 2
# HELP horizonx_sampler_ticks_total Ticks handled by the collection loop.
# TYPE horizonx_sampler_ticks_total counter
horizonx_sampler_ticks_total 3
`
	assert.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected),
		"horizonx_sampler_ticks_total", "horizonx_sampler_sample_failures_total"))
}

type brokenLatest struct{}

func (brokenLatest) Latest(context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{}, errors.New("db down")
}

func TestExporter_LatestError(t *testing.T) {
	e := New(brokenLatest{}, nil, logger.Discard())
	assert.Zero(t, testutil.CollectAndCount(e))
}

func TestHandler(t *testing.T) {
	latest := store.NewSnapshotStore()
	require.NoError(t, latest.Write(context.Background(), sample()))

	h := Handler(NewRegistry(New(latest, fixedStats{Ticks: 1}, logger.Discard())))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `horizonx_network_transmit_bytes_total{interface="eth0"} 4321`)
	assert.Contains(t, body, `horizonx_disk_sectors_written_total{device="sda"} 80`)
	assert.Contains(t, body, "horizonx_sampler_ticks_total 1")
	assert.Contains(t, body, "go_goroutines")
}
