package memory

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizonx-sampler/internal/domain"
)

const procMemInfo = `MemTotal:       16303428 kB
MemFree:         1201452 kB
MemAvailable:    9786536 kB
Buffers:          521408 kB
Cached:          7703800 kB
SwapCached:         1024 kB
Active:          5512480 kB
SwapTotal:       2097148 kB
SwapFree:        2090748 kB
HugePages_Total:       0
`

func newTestCollector(data string) *Collector {
	return NewCollector(fstest.MapFS{memInfoPath: {Data: []byte(data)}})
}

func TestCollect(t *testing.T) {
	got, err := newTestCollector(procMemInfo).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, MemInfo{
		MemTotal:     16303428,
		MemFree:      1201452,
		MemAvailable: 9786536,
		Buffers:      521408,
		Cached:       7703800,
		SwapTotal:    2097148,
		SwapFree:     2090748,
	}, got)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  MemInfo
	}{
		{
			name:  "each label sets one field",
			lines: []string{"MemTotal: 1", "MemFree: 2", "MemAvailable: 3", "Buffers: 4", "Cached: 5", "SwapTotal: 6", "SwapFree: 7"},
			want:  MemInfo{1, 2, 3, 4, 5, 6, 7},
		},
		{
			name:  "absent labels stay zero",
			lines: []string{"MemTotal: 100 kB"},
			want:  MemInfo{MemTotal: 100},
		},
		{
			name:  "unknown labels ignored",
			lines: []string{"SwapCached: 9", "Cached: 5", "Active(file): 3"},
			want:  MemInfo{Cached: 5},
		},
		{
			name:  "label match is exact",
			lines: []string{"MemTotal 9", "memtotal: 9", "MemTotal:: 9"},
			want:  MemInfo{},
		},
		{
			name:  "short lines ignored",
			lines: []string{"MemTotal:", "", "   "},
			want:  MemInfo{},
		},
		{
			name:  "bad value is zero",
			lines: []string{"MemTotal: lots", "MemFree: 2"},
			want:  MemInfo{MemFree: 2},
		},
		{
			name:  "empty file",
			lines: nil,
			want:  MemInfo{},
		},
	}

	c := newTestCollector("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Parse(tt.lines)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollect_Unreadable(t *testing.T) {
	_, err := NewCollector(fstest.MapFS{}).Collect(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnreadable)
}

func TestCollect_ReadsMemInfoNotDiskStats(t *testing.T) {
	fsys := fstest.MapFS{
		"diskstats":  {Data: []byte("MemTotal: 1\n")},
		memInfoPath: {Data: []byte("MemTotal: 2\n")},
	}

	got, err := NewCollector(fsys).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.MemTotal)
}
