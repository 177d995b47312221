package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

type fakeConn struct {
	subjects   []string
	payloads   [][]byte
	publishErr error
	flushErr   error
	flushes    int
	drained    bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) FlushWithContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return nats.ErrNoDeadlineContext
	}
	f.flushes++
	return f.flushErr
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublisher_Write(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "horizonx.snapshots", logger.Discard())

	s := domain.Snapshot{
		CPU:     domain.CPUStats{User: 7},
		Network: []domain.NetworkInterface{{Name: "eth0", ReceiveBytes: 10}},
	}
	require.NoError(t, p.Write(context.Background(), s))

	require.Equal(t, []string{"horizonx.snapshots"}, fc.subjects)
	assert.Equal(t, 1, fc.flushes)

	var got domain.Snapshot
	require.NoError(t, json.Unmarshal(fc.payloads[0], &got))
	assert.Equal(t, uint64(7), got.CPU.User)
	assert.Equal(t, "eth0", got.Network[0].Name)

	require.NoError(t, p.Close())
	assert.True(t, fc.drained)
}

func TestPublisher_Errors(t *testing.T) {
	boom := errors.New("boom")

	p := newPublisher(&fakeConn{publishErr: boom}, "s", logger.Discard())
	assert.ErrorIs(t, p.Write(context.Background(), domain.Snapshot{}), boom)

	p = newPublisher(&fakeConn{flushErr: boom}, "s", logger.Discard())
	assert.ErrorIs(t, p.Write(context.Background(), domain.Snapshot{}), boom)
}

func TestPublisher_WriteWithoutDeadline(t *testing.T) {
	srv := test.RunRandClientPortServer()
	t.Cleanup(srv.Shutdown)

	sub, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(sub.Close)

	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("horizonx.snapshots", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	p, err := Connect(srv.ClientURL(), "horizonx.snapshots", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	// The scheduler hands sinks a detached context with no deadline.
	ctx := context.WithoutCancel(context.Background())
	require.NoError(t, p.Write(ctx, domain.Snapshot{CPU: domain.CPUStats{Idle: 1 << 63}}))

	select {
	case msg := <-msgs:
		var got domain.Snapshot
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, uint64(1<<63), got.CPU.Idle)
	case <-time.After(5 * time.Second):
		t.Fatal("snapshot not delivered")
	}
}
