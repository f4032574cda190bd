package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pliu/rankset/pkg/config"
	"github.com/pliu/rankset/pkg/ingest"
	"github.com/pliu/rankset/pkg/metrics"
)

var (
	debug       = flag.Bool("debug", false, "Enable debug logging")
	metricsPort = flag.Int("metrics.port", 2112, "Port for the Prometheus metrics server")
	configPath  = flag.String("config.path", "config.yaml", "Path to the configuration file")
	demo        = flag.Bool("demo", false, "Run the multiset walk-through and exit")
)

func main() {
	flag.Parse()

	log.DefaultLogger = log.Logger{
		Caller:     1,
		TimeFormat: "2006-01-02 15:04:05",
	}

	if *debug {
		log.DefaultLogger.Level = log.DebugLevel
		log.Debug().Msg("Debug logging enabled")
	}

	if *demo {
		if err := runDemo(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("demo failed")
		}
		return
	}

	log.Info().Msgf("Using config file: %s", *configPath)
	cfg, err := config.GetRanksetConfigFromFile(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ingester, err := ingest.NewIngesterFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ingester")
	}
	go func() {
		if err := ingester.Start(ctx); err != nil {
			log.Error().Err(err).Msg("ingester stopped")
			cancel()
		}
	}()

	addr := fmt.Sprintf(":%d", *metricsPort)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		log.Info().Msgf("Starting Prometheus metrics server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Prometheus metrics server failed")
		}
	}()

	log.Info().Msg("rankset started")
	<-ctx.Done()

	log.Info().Msg("Shutting down server...")

	// The server gets 5 seconds to finish in-flight scrapes.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("rankset stopped")
}
