// Command mdfd runs a single mdf.Engine instance as a long-lived process:
// it builds a graph, drives it from a Streamer, drains terminal tokens into
// a Drainer, and exposes a control-plane HTTP surface (health, Prometheus
// metrics, an SSE feed of instance lifecycle events) while it runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/duragraph/mdf/internal/config"
	"github.com/duragraph/mdf/internal/drainers"
	"github.com/duragraph/mdf/internal/httpapi"
	"github.com/duragraph/mdf/internal/instructions"
	"github.com/duragraph/mdf/internal/mdf"
	"github.com/duragraph/mdf/internal/monitoring"
	"github.com/duragraph/mdf/internal/streamers"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("mdfd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	shutdownTracing, err := initTracing()
	if err != nil {
		logger.Warn("tracing disabled, continuing without an exporter", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer shutdownTracing(context.Background())

	hst := instructions.NewHistogram(imageSize)
	graph, leaves := buildMandelbrotGraph(hst)
	if err := graph.Freeze(); err != nil {
		return fmt.Errorf("freezing graph: %w", err)
	}

	drainer := drainers.NewPPMWriter(hst)
	hub := httpapi.NewHub()
	promMetrics := monitoring.NewEngineMetrics("mdf", nil)

	engine, err := mdf.New(graph, cfg.Engine.Workers, drainer,
		mdf.WithLogger(logger),
		mdf.WithMetrics(monitoring.Fanout{promMetrics, hub}),
		mdf.WithQueueCapacity(cfg.Engine.QueueCapacity),
	)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	streamer := streamers.NewStatic(mandelbrotBatches(leaves))
	server := httpapi.NewServer(hub, []byte(cfg.Server.JWTSecret))

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancelRun := context.WithCancel(rootCtx)
	group, gctx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		defer cancelRun()
		_, err := engine.Start(gctx, streamer)
		return err
	})

	group.Go(func() error {
		logger.Info("control plane listening", "addr", cfg.Server.ServerAddr())
		return server.Start(cfg.Server.ServerAddr())
	})

	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}

	const maxIterCutoff = maxIter
	if err := drainer.WriteFile("mandelbrot.ppm", maxIterCutoff); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	logger.Info("wrote mandelbrot.ppm")
	return nil
}
