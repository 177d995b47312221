package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

type closingSink struct {
	recordingSink
	closed   *[]string
	name     string
	closeErr error
}

func (c *closingSink) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.closeErr
}

func TestFanout_Write(t *testing.T) {
	first := &recordingSink{}
	broken := &recordingSink{err: errors.New("disk full")}
	last := &recordingSink{}

	f := NewFanout(logger.Discard())
	f.Add("first", first)
	f.Add("broken", broken)
	f.Add("last", last)
	require.Equal(t, 3, f.Len())

	err := f.Write(context.Background(), domain.Snapshot{CPU: domain.CPUStats{Idle: 7}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink broken: disk full")

	assert.Len(t, first.got(), 1)
	assert.Len(t, last.got(), 1)
	assert.Equal(t, uint64(7), last.got()[0].CPU.Idle)
}

func TestFanout_WriteNoSinks(t *testing.T) {
	assert.NoError(t, NewFanout(logger.Discard()).Write(context.Background(), domain.Snapshot{}))
}

func TestFanout_Close(t *testing.T) {
	var closed []string

	f := NewFanout(logger.Discard())
	f.Add("a", &closingSink{closed: &closed, name: "a"})
	f.Add("plain", &recordingSink{})
	f.Add("b", &closingSink{closed: &closed, name: "b", closeErr: errors.New("flush timeout")})

	err := f.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close sink b")
	assert.Equal(t, []string{"b", "a"}, closed)
}
