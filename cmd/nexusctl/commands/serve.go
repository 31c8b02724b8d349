package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/marmos91/nexus/internal/logger"
	"github.com/marmos91/nexus/pkg/config"
	"github.com/marmos91/nexus/pkg/httpapi"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/metrics"
	"github.com/marmos91/nexus/pkg/pubsub"
	"github.com/marmos91/nexus/pkg/registry"
	"github.com/marmos91/nexus/pkg/snapshot"
	"github.com/marmos91/nexus/pkg/xvalue"
)

var metricsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a manager with a few long-lived demo owners behind an HTTP API",
	Long: `serve builds a manager, registers a small set of long-lived demo
owners (so the Prometheus metrics actually move), and exposes /health,
/owners, /schema and /metrics over HTTP until interrupted. It listens on
the configured http_api port unless --metrics-addr gives another address;
/metrics reports data only when metrics.enabled is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "override the configured HTTP listen address (host:port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := manager.New()
	cfg.Manager.ApplyToManager(mgr)

	var metricsReg *prometheus.Registry
	if cfg.Metrics.Enabled {
		metricsReg = prometheus.NewRegistry()
		mgr.SetMetrics(metrics.New(metricsReg))
		logger.Info("metrics enabled")
	}

	reg := registry.New()
	stopTickers, err := startDemoOwners(mgr, reg)
	if err != nil {
		return fmt.Errorf("failed to start demo owners: %w", err)
	}
	defer stopTickers()

	var store *snapshot.Store
	if cfg.Snapshot.Enabled {
		store, err = snapshot.Open(cfg.Snapshot.Path)
		if err != nil {
			return fmt.Errorf("failed to open snapshot store: %w", err)
		}
		defer store.Close()

		if err := store.Restore(mgr, reg); err != nil {
			logger.Warn("snapshot restore failed", "error", err)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPAPI.Port)
	if metricsAddr != "" {
		addr = metricsAddr
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: httpapi.NewRouter(reg, metricsReg),
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("http api listening", "addr", addr)
		serverDone <- srv.ListenAndServe()
	}()

	var flushDone chan struct{}
	if store != nil {
		flushDone = startSnapshotFlusher(ctx, store, reg, cfg.Snapshot.FlushInterval)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	cancel()
	if flushDone != nil {
		<-flushDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	if store != nil {
		if err := store.Persist(reg); err != nil {
			logger.Error("final snapshot persist failed", "error", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// startDemoOwners registers a small set of owners that mutate on their own
// timers, purely so that a freshly started server has something for
// /owners and the Prometheus counters to show.
func startDemoOwners(mgr *manager.Manager, reg *registry.Registry) (stop func(), err error) {
	ticks, err := xvalue.New(mgr, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticks counter: %w", err)
	}
	reg.Register("ticks", ticks)

	ticksPublisher := pubsub.NewValuePublisher(pubsub.Direct, nil)
	ticks.UsePublisher(ticksPublisher)
	ticksPublisher.Subscribe(tickLogger{})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		n := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				n++
				if err := ticks.Set(n); err != nil {
					logger.Warn("failed to advance ticks counter", "error", err)
				}
			}
		}
	}()

	return func() { close(done) }, nil
}

// tickLogger is a pubsub.Subscriber that logs every ticks publication at
// debug level, exercising the producer side of pkg/pubsub (attached via
// xvalue.Value.UsePublisher) end to end against the consumer side.
type tickLogger struct{}

func (tickLogger) Name() string { return "tick-logger" }
func (tickLogger) Receive(payload any) {
	logger.Debug("ticks published", "value", payload)
}

// startSnapshotFlusher periodically persists reg to store until ctx is
// canceled, then signals completion on the returned channel.
func startSnapshotFlusher(ctx context.Context, store *snapshot.Store, reg *registry.Registry, interval time.Duration) chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := store.Persist(reg); err != nil {
					logger.Error("periodic snapshot persist failed", "error", err)
				}
			}
		}
	}()
	return done
}
