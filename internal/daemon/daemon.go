package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhenden/fsgrowth/internal/config"
	"github.com/dhenden/fsgrowth/internal/engine"
	"github.com/dhenden/fsgrowth/internal/metrics"
)

// Daemon runs the report pipeline for each configured filesystem on a
// fixed interval, replacing cron for long-lived deployments.
type Daemon struct {
	cfg     *config.Config
	engine  *engine.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new Daemon instance.
func New(cfg *config.Config, eng *engine.Engine, logger *slog.Logger) *Daemon {
	return &Daemon{
		cfg:    cfg,
		engine: eng,
		logger: logger,
	}
}

// Run starts the daemon and blocks until Stop is called or the context
// is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = true
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		close(d.doneCh)
		d.mu.Unlock()
	}()

	if len(d.cfg.Filesystems) == 0 {
		d.logger.Warn("no filesystems configured for monitoring")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.stopCh:
			return nil
		}
	}

	fsCtx, fsCancel := context.WithCancel(ctx)
	defer fsCancel()

	if d.cfg.Daemon.MetricsAddr != "" {
		// Register once; Run may be invoked again after Stop.
		if d.metrics == nil {
			d.metrics = metrics.New(prometheus.DefaultRegisterer)
		}
		go d.serveMetrics(fsCtx)
	}

	var wg sync.WaitGroup
	for _, fs := range d.cfg.Filesystems {
		wg.Add(1)
		go func(filesystem string) {
			defer wg.Done()
			d.runSampler(fsCtx, filesystem)
		}(fs)
	}

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		d.logger.Info("context cancelled, shutting down")
	case <-d.stopCh:
		d.logger.Info("stop requested, shutting down")
	}

	fsCancel()
	wg.Wait()

	return nil
}

// Stop signals the daemon to stop gracefully.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if d.running && d.stopCh != nil {
		close(d.stopCh)
	}
	d.mu.Unlock()
}

// Wait blocks until the daemon has fully stopped.
func (d *Daemon) Wait() {
	d.mu.Lock()
	doneCh := d.doneCh
	d.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
}

// runSampler runs the sample-and-report loop for a single filesystem.
func (d *Daemon) runSampler(ctx context.Context, filesystem string) {
	interval := d.cfg.Daemon.Interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("starting sampler",
		"filesystem", filesystem,
		"interval", interval,
		"window_days", d.cfg.Report.WindowDays,
	)

	// Run an initial cycle immediately
	d.runOnce(ctx, filesystem)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runOnce(ctx, filesystem)
		}
	}
}

// runOnce performs a single collect-and-report cycle for a filesystem.
// Failures are logged, never fatal: the next tick gets a fresh chance.
func (d *Daemon) runOnce(ctx context.Context, filesystem string) {
	rep, err := d.engine.Run(ctx, engine.Options{
		Filesystem: filesystem,
		WindowDays: d.cfg.Report.WindowDays,
		Collect:    true,
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.logger.Error("run failed", "filesystem", filesystem, "error", err)
		}
		if d.metrics != nil {
			d.metrics.ObserveFailure(filesystem)
		}
		return
	}

	d.logger.Info("run completed",
		"filesystem", filesystem,
		"samples", rep.Persisted,
		"missing_days", len(rep.GapDates),
	)
	if d.metrics != nil {
		d.metrics.ObserveReport(rep)
	}
}

// serveMetrics exposes the Prometheus endpoint until the context ends.
func (d *Daemon) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: d.cfg.Daemon.MetricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("metrics server shutdown", "error", err)
		}
	}()

	d.logger.Info("serving metrics", "addr", d.cfg.Daemon.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		d.logger.Error("metrics server failed", "error", err)
	}
}
