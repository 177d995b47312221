// Package agent ships snapshots to a remote HorizonX server.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

const (
	metricsPath = "/agent/metrics"
	maxRetries  = 3
)

var ErrAuthentication = errors.New("authentication failed")

// MetricsReporter buffers snapshots and posts them in gzip-compressed
// JSON batches.
type MetricsReporter struct {
	client  *http.Client
	baseURL string
	token   string
	log     logger.Logger
	backoff time.Duration

	buffer    []domain.Snapshot
	bufferMu  sync.Mutex
	maxBuffer int
}

type ReporterOption func(*MetricsReporter)

func WithHTTPClient(c *http.Client) ReporterOption {
	return func(r *MetricsReporter) { r.client = c }
}

// WithBackoff sets the wait before the first retry. Later retries double it.
func WithBackoff(d time.Duration) ReporterOption {
	return func(r *MetricsReporter) { r.backoff = d }
}

func NewMetricsReporter(baseURL, token string, batchSize int, log logger.Logger, opts ...ReporterOption) *MetricsReporter {
	if batchSize < 1 {
		batchSize = 1
	}

	r := &MetricsReporter{
		client:    &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		token:     token,
		log:       log,
		backoff:   time.Second,
		buffer:    make([]domain.Snapshot, 0, batchSize),
		maxBuffer: batchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Write buffers s and sends the batch once it is full.
func (r *MetricsReporter) Write(ctx context.Context, s domain.Snapshot) error {
	r.Add(s)
	if r.ShouldFlush() {
		return r.Flush(ctx)
	}
	return nil
}

func (r *MetricsReporter) Add(s domain.Snapshot) {
	r.bufferMu.Lock()
	defer r.bufferMu.Unlock()

	r.buffer = append(r.buffer, s)
	r.log.Debug("snapshot buffered", "buffer_size", len(r.buffer))
}

func (r *MetricsReporter) ShouldFlush() bool {
	r.bufferMu.Lock()
	defer r.bufferMu.Unlock()

	return len(r.buffer) >= r.maxBuffer
}

func (r *MetricsReporter) Flush(ctx context.Context) error {
	r.bufferMu.Lock()
	if len(r.buffer) == 0 {
		r.bufferMu.Unlock()
		r.log.Debug("no snapshots to flush")
		return nil
	}

	batch := make([]domain.Snapshot, len(r.buffer))
	copy(batch, r.buffer)
	r.buffer = r.buffer[:0]
	r.bufferMu.Unlock()

	r.log.Debug("flushing snapshot batch", "size", len(batch))

	return r.sendBatch(ctx, batch)
}

// Close sends whatever is still buffered.
func (r *MetricsReporter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return r.Flush(ctx)
}

func (r *MetricsReporter) BufferSize() int {
	r.bufferMu.Lock()
	defer r.bufferMu.Unlock()
	return len(r.buffer)
}

func encodeBatch(batch []domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)

	if err := json.NewEncoder(zw).Encode(map[string]any{"snapshots": batch}); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *MetricsReporter) sendBatch(ctx context.Context, batch []domain.Snapshot) error {
	body, err := encodeBatch(batch)
	if err != nil {
		r.log.Error("failed to encode snapshots", "error", err)
		return err
	}

	backoff := r.backoff

	for attempt := range maxRetries {
		if attempt > 0 {
			r.log.Debug("retrying snapshot send", "attempt", attempt+1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+metricsPath, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Content-Encoding", "gzip")
		if r.token != "" {
			req.Header.Set("Authorization", "Bearer "+r.token)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			r.log.Warn("failed to send snapshots", "error", err, "attempt", attempt+1)
			continue
		}

		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			r.log.Debug("snapshots sent", "count", len(batch), "status", resp.StatusCode)
			return nil
		}

		r.log.Warn("server returned error", "status", resp.StatusCode, "attempt", attempt+1)

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %d", ErrAuthentication, resp.StatusCode)
		}
	}

	return fmt.Errorf("failed to send snapshots after %d attempts", maxRetries)
}
