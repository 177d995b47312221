package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"horizonx-sampler/internal/adapters/http/response"
	"horizonx-sampler/internal/domain"
	"horizonx-sampler/internal/logger"
)

type snapshotSampler interface {
	Collect(ctx context.Context) (domain.Snapshot, error)
}

type latestReader interface {
	Latest(ctx context.Context) (domain.Snapshot, error)
}

type SnapshotHandler struct {
	sampler snapshotSampler
	latest  latestReader
	hostID  uuid.UUID
	res     *response.JSONWriter
	log     logger.Logger
}

func NewSnapshotHandler(sampler snapshotSampler, latest latestReader, hostID uuid.UUID, log logger.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		sampler: sampler,
		latest:  latest,
		hostID:  hostID,
		res:     response.NewJSONWriter(log),
		log:     log,
	}
}

// Sample reads the pseudo-files now and returns the bare snapshot.
func (h *SnapshotHandler) Sample(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snapshot, err := h.sampler.Collect(r.Context())
	if err != nil {
		h.log.Error("on-demand sample failed", "error", err)
		h.res.Error(w, http.StatusInternalServerError, "failed to sample system stats")
		return
	}

	snapshot.HostID = h.hostID
	snapshot.RecordedAt = start.UTC()

	h.res.WriteValue(w, http.StatusOK, snapshot)
}

// Latest returns the last snapshot delivered by the collection loop.
func (h *SnapshotHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.latest.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			h.res.Error(w, http.StatusNotFound, "snapshot not found")
			return
		}

		h.log.Error("failed to get latest snapshot", "error", err)
		h.res.Error(w, http.StatusInternalServerError, "failed to get latest snapshot")
		return
	}

	h.res.Write(w, http.StatusOK, &response.Response{
		Message: "OK",
		Data:    snapshot,
	})
}
