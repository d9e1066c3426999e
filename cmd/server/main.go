package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"l2domains/internal/config"
	"l2domains/internal/handler"
	"l2domains/internal/hub"
	"l2domains/internal/logging"
	"l2domains/internal/metrics"
	"l2domains/internal/repository/sqlite"
	"l2domains/internal/service"
	"l2domains/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "l2domains-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Command line flags override the config file
	configPath := flag.String("config", "", "config file (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	snapshot := flag.String("watch", "", "snapshot directory or file to analyze on change")
	flag.Parse()

	cfg, cfgFile, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *snapshot != "" {
		cfg.Watch.Enabled = true
		cfg.Watch.Snapshot = *snapshot
	}

	reg := metrics.DefaultRegistry()
	logger, err := logging.New(logging.Options{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == config.LogFormatJSON,
	}, logging.WithEntryHook(reg.LogHook))
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting l2domains server", zap.String("config", cfgFile))
	logger.Debug(cfg.Summary())

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	eventBus := service.NewEventBus()
	svc := service.NewAnalysisService(repo, eventBus,
		service.WithLogger(logger.Named("service")),
		service.WithMetrics(reg),
		service.WithWorkers(cfg.Analysis.Workers),
		service.WithTimeout(cfg.Analysis.Timeout.Duration()))

	if n, err := repo.CountAnalyses(context.Background()); err == nil {
		reg.SetStoredAnalyses(n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// SSE hub fed from the event bus
	sseHub := hub.New(logger.Named("hub"), reg.EventSubscribers)
	g.Go(func() error {
		sseHub.Run(gctx)
		return nil
	})
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	g.Go(func() error {
		for {
			select {
			case event := <-eventChan:
				sseHub.Broadcast(event)
			case <-gctx.Done():
				eventBus.Unsubscribe(eventChan)
				return nil
			}
		}
	})

	if cfg.Watch.Enabled {
		reloader := &watcher.Reloader{
			Path:     cfg.Watch.Snapshot,
			Analyzer: svc,
			Metrics:  reg,
			Logger:   logger.Named("watcher"),
		}
		// Analyze once at startup so the latest snapshot is always stored
		reloader.OnChange(gctx)
		w := watcher.New(cfg.Watch.Snapshot, reloader.OnChange, logger.Named("watcher")).
			WithDebounce(cfg.Watch.Debounce.Duration())
		g.Go(func() error {
			if err := w.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("watch %s: %w", cfg.Watch.Snapshot, err)
			}
			return nil
		})
	}

	h := handler.NewAnalysisHandler(svc, logger.Named("http"))
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.Routes(h, sseHub, reg, logger.Named("http")),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("server stopped")
	return err
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}
