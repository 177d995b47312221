package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"horizonx-sampler/internal/adapters/http/middleware"
	"horizonx-sampler/internal/config"
)

type RouterDeps struct {
	Snapshot *SnapshotHandler
	Metrics  http.Handler
	Ws       http.Handler

	// Registerer receives the request metrics. Nil disables them.
	Registerer prometheus.Registerer
}

func NewRouter(cfg *config.Config, deps *RouterDeps) http.Handler {
	mux := http.NewServeMux()

	globalMw := middleware.New(middleware.CORS(cfg.AllowedOrigins))

	var requestMetrics middleware.Middleware
	if deps.Registerer != nil {
		requestMetrics = middleware.Metrics(deps.Registerer)
	}
	authStack := middleware.New(requestMetrics, middleware.JWT(cfg.JWTSecret))

	// HEALTH
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// SNAPSHOTS
	mux.Handle("GET /{$}", authStack.ThenFunc(deps.Snapshot.Sample))
	mux.Handle("GET /snapshots/latest", authStack.ThenFunc(deps.Snapshot.Latest))

	// PROMETHEUS
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", authStack.Then(deps.Metrics))
	}

	// WEBSOCKET (authenticates on its own so browsers can pass ?token=)
	if deps.Ws != nil {
		mux.Handle("GET /ws", deps.Ws)
	}

	return globalMw.Then(mux)
}
