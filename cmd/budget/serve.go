package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"budget/internal/backend"
	"budget/internal/cache"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/telemetry"
	"budget/internal/worker"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, logger := appConfig, appLogger
	slogger := logger.Slog()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "budget",
		Version:     version,
		Exporter:    cfg.TraceExporter,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(slogger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}

	// Another replica's writes must reach this process before its summaries can be cached.
	var summaries *services.SummaryCache
	caches := cache.NewManager(slogger.With(log.FieldComponent, log.ComponentCache))
	if res.CoherentCaching() {
		summaries = services.NewSummaryCache(cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
		caches.Register(summaries.LRU())
	} else {
		slogger.Warn("Summary cache disabled: the store is shared and change events are not available",
			log.FieldComponent, log.ComponentCache, "backend", cfg.DataBackend)
	}
	caches.StartCleanup(cfg.SummaryCacheTTL)

	// A nil *amqp.Client must not become a non-nil interface.
	var events services.EventPublisher
	consumeCtx, stopConsuming := context.WithCancel(ctx)
	defer stopConsuming()
	if res.Events != nil {
		events = res.Events
		listener := worker.NewChangeListener(res.Events,
			services.RemoteChangeHandler(summaries, res.Events.Source()),
			slogger.With(log.FieldComponent, log.ComponentAMQP))
		// Bypass the cache until the first subscription is in place and during every outage.
		summaries.Suspend()
		listener.OnGap = summaries.Suspend
		listener.OnReady = summaries.Resume
		go func() {
			if err := listener.Run(consumeCtx); err != nil {
				slogger.Error("Change listener stopped", log.FieldComponent, log.ComponentAMQP, log.FieldError, err)
			}
		}()
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               cfg.Addr(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.Deps{
		Categories: services.NewCategoryService(res.Store, summaries, events),
		Amounts:    services.NewAmountService(res.Store, res.Store, summaries, events),
		Store:      res.Store,
		Summaries:  summaries,
		Logger:     logger,
	})

	serveErr := make(chan error, 1)
	go func() {
		slogger.Info("Starting HTTP server", "addr", srv.Addr, "backend", cfg.DataBackend,
			"amqp_enabled", res.Events != nil, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slogger.Info("Shutdown signal received")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownErr := cli.GracefulShutdown(slogger, cfg.ShutdownTimeout,
		cli.ShutdownStep{Name: "http", Run: srv.Shutdown},
		cli.ShutdownStep{Name: "events", Run: func(context.Context) error { stopConsuming(); return nil }},
		cli.ShutdownStep{Name: "cache", Run: func(context.Context) error { caches.Stop(); return nil }},
		cli.ShutdownStep{Name: "backend", Run: func(context.Context) error { return res.Cleanup() }},
		cli.ShutdownStep{Name: "telemetry", Run: shutdownTracing},
	)
	return errors.Join(runErr, shutdownErr)
}
