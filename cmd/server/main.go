package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wagedash/internal/api"
	"wagedash/internal/config"
	"wagedash/internal/engine"
	"wagedash/internal/logger"
	"wagedash/internal/metrics"
	"wagedash/internal/views"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	recorder := metrics.New()
	assembler := views.NewAssembler(cfg.Views, log, views.WithObserver(recorder))

	// The API is live immediately and answers 503 until the datasets are in.
	h := api.NewHandler(assembler, recorder.Handler(), log)
	e := api.NewServer(cfg.Server, h, log)

	go func() {
		log.Info("loading datasets")
		t0 := time.Now()

		tables, errs := engine.NewLoader(log).LoadAll(cfg.Sources())
		data := views.NewDatasets(tables, errs)
		recorder.ObserveDatasets(data)
		h.SetData(data)

		log.Info("datasets ready",
			slog.Int("loaded", len(tables)),
			slog.Int("failed", len(errs)),
			slog.Duration("took", time.Since(t0)))
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server listening", slog.String("address", cfg.Server.Address))
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
