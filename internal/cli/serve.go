package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	httpapi "horizonx-sampler/internal/adapters/http"
	"horizonx-sampler/internal/adapters/exporter"
	"horizonx-sampler/internal/adapters/nats"
	"horizonx-sampler/internal/adapters/postgres"
	"horizonx-sampler/internal/adapters/sqlite"
	"horizonx-sampler/internal/adapters/ws"
	"horizonx-sampler/internal/agent"
	"horizonx-sampler/internal/config"
	"horizonx-sampler/internal/core/metrics"
	"horizonx-sampler/internal/logger"
	"horizonx-sampler/internal/store"
	"horizonx-sampler/internal/workers"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the collection loop into the configured sinks and serve the HTTP endpoint",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("horizonx sampler: starting...",
		"version", version,
		"host_id", cfg.HostID,
		"interval", cfg.Interval,
		"proc_root", cfg.ProcRoot,
		"sinks", cfg.Sinks,
	)

	sampler := metrics.NewSampler(os.DirFS(cfg.ProcRoot), log)
	latest := store.NewSnapshotStore()
	hub := ws.NewHub(log)

	fanout := metrics.NewFanout(log)
	fanout.Add("latest", latest)
	fanout.Add("ws", hub)

	pruners, cleanup, err := openSinks(ctx, cfg, fanout, log)
	defer cleanup()
	if err != nil {
		return err
	}

	scheduler := metrics.NewScheduler(cfg.Interval, sampler, fanout, log, metrics.WithHostID(cfg.HostID))

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Collection loop
	g.Go(func() error {
		return scheduler.Run(gCtx)
	})

	// 2. WebSocket hub
	g.Go(func() error {
		hub.Run(gCtx)
		return nil
	})

	// 3. Retention
	if cfg.Retention > 0 && len(pruners) > 0 {
		g.Go(func() error {
			worker := workers.NewRetentionWorker(cfg.Retention, pruners, log)
			workers.NewScheduler(log).RunByDuration(gCtx, cfg.RetentionCheck, worker)
			return nil
		})
	}

	// 4. HTTP endpoint
	if cfg.HTTPEnabled {
		reg := exporter.NewRegistry(exporter.New(latest, scheduler, log))

		router := httpapi.NewRouter(cfg, &httpapi.RouterDeps{
			Snapshot:   httpapi.NewSnapshotHandler(sampler, latest, cfg.HostID, log),
			Metrics:    exporter.Handler(reg),
			Ws:         ws.NewHandler(hub, log, cfg.JWTSecret, cfg.AllowedOrigins),
			Registerer: reg,
		})
		srv := httpapi.NewServer(router, cfg.Address)

		g.Go(func() error {
			log.Info("http server listening", "address", cfg.Address)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()

	log.Info("flushing sinks before shutdown...")
	if cerr := fanout.Close(); cerr != nil {
		log.Error("failed to close sinks", "error", cerr)
	}

	if err != nil {
		return err
	}

	log.Info("horizonx sampler stopped gracefully.")
	return nil
}

// openSinks adds every configured sink to fanout. The returned cleanup
// releases database handles and must run after fanout is closed.
func openSinks(ctx context.Context, cfg *config.Config, fanout *metrics.Fanout, log logger.Logger) (map[string]workers.Pruner, func(), error) {
	pruners := map[string]workers.Pruner{}
	var closers []func()

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.SinkEnabled(config.SinkSQLite) {
		db, err := sqlite.NewSqliteDB(cfg.SQLitePath, log)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { db.Close() })

		repo := sqlite.NewMetricsRepository(db)
		fanout.Add(config.SinkSQLite, repo)
		pruners[config.SinkSQLite] = repo
	}

	if cfg.SinkEnabled(config.SinkPostgres) {
		pool, err := postgres.InitDB(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pool.Close)

		repo := postgres.NewMetricsRepository(pool)
		fanout.Add(config.SinkPostgres, repo)
		pruners[config.SinkPostgres] = repo
	}

	if cfg.SinkEnabled(config.SinkHTTP) {
		fanout.Add(config.SinkHTTP, agent.NewMetricsReporter(cfg.ReportURL, cfg.ReportToken, cfg.ReportBatchSize, log))
	}

	if cfg.SinkEnabled(config.SinkNATS) {
		pub, err := nats.Connect(cfg.NATSURL, cfg.NATSSubject, log)
		if err != nil {
			return nil, cleanup, err
		}
		fanout.Add(config.SinkNATS, pub)
	}

	return pruners, cleanup, nil
}
