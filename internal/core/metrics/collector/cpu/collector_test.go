package cpu

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizonx-sampler/internal/domain"
)

const procStat = `cpu  4705 356 584 3699176 23 23 0 1 2 3
cpu0 1393280 32966 572056 13343292 6130 0 17875 0 0 0
intr 1462898 0 0 0
ctxt 115315
btime 769041601
`

func newTestCollector(data string) *Collector {
	fsys := fstest.MapFS{statPath: {Data: []byte(data)}}
	return NewCollector(fsys)
}

func TestCollect(t *testing.T) {
	got, err := newTestCollector(procStat).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, CPUStats{
		User:      4705,
		Nice:      356,
		System:    584,
		Idle:      3699176,
		IOWait:    23,
		IRQ:       23,
		SoftIRQ:   0,
		Steal:     1,
		Guest:     2,
		GuestNice: 3,
	}, got)
}

func TestParse_DistinctColumns(t *testing.T) {
	c := newTestCollector("")

	got, err := c.Parse([]string{"cpu 1 2 3 4 5 6 7 8 9 10 11 12"})
	require.NoError(t, err)

	assert.Equal(t, CPUStats{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)
}

func TestParse_BadCounterIsZero(t *testing.T) {
	c := newTestCollector("")

	got, err := c.Parse([]string{"cpu 1 x 3 4 5 6 7 8 9 -10"})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), got.User)
	assert.Equal(t, uint64(0), got.Nice)
	assert.Equal(t, uint64(0), got.GuestNice)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"empty file", nil},
		{"blank first line", []string{""}},
		{"per core row first", []string{"cpu0 1 2 3 4 5 6 7 8 9 10"}},
		{"other label", []string{"intr 1 2 3 4 5 6 7 8 9 10"}},
		{"too few fields", []string{"cpu 1 2 3 4 5 6 7 8 9"}},
		{"aggregate only on second line", []string{"intr 1", "cpu 1 2 3 4 5 6 7 8 9 10"}},
	}

	c := newTestCollector("")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Parse(tt.lines)
			assert.ErrorIs(t, err, domain.ErrMalformedSource)
		})
	}
}

func TestCollect_Errors(t *testing.T) {
	_, err := newTestCollector("cpu0 1 2 3 4 5 6 7 8 9 10\ncpu 1 2 3 4 5 6 7 8 9 10\n").Collect(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedSource)

	_, err = NewCollector(fstest.MapFS{}).Collect(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnreadable)
}

func TestCollect_Deterministic(t *testing.T) {
	c := newTestCollector(procStat)

	first, err := c.Collect(context.Background())
	require.NoError(t, err)
	second, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
