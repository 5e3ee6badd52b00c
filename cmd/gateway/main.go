package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angeloszaimis/api-gateway/config"
	"github.com/angeloszaimis/api-gateway/internal/cache"
	"github.com/angeloszaimis/api-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/api-gateway/internal/forwarder"
	"github.com/angeloszaimis/api-gateway/internal/httpserver"
	"github.com/angeloszaimis/api-gateway/internal/metrics"
	"github.com/angeloszaimis/api-gateway/internal/middleware"
	"github.com/angeloszaimis/api-gateway/pkg/logger"
)

const gatewayName = "api-gateway"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pools, err := buildPools(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to build pools", slog.Any("err", err))
		os.Exit(1)
	}

	table, err := buildRouteTable(cfg.Gateway.Routes)
	if err != nil {
		log.Error("Failed to build route table", slog.Any("err", err))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	gatewayMetrics := metrics.New(registry)
	breakers := circuitbreaker.NewRegistry(5, 30*time.Second)

	var handler http.Handler = forwarder.New(log, table, pools, breakers, gatewayMetrics)

	if cfg.Cache.Enabled {
		store := cache.NewRedisStore(cfg.Cache.Address, cfg.Cache.Password, cfg.Cache.DB)
		defer store.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := store.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Error("Failed to connect to redis", slog.String("address", cfg.Cache.Address), slog.Any("err", err))
			os.Exit(1)
		}

		handler = cache.Handler(log, store, table, handler)
		log.Info("response cache enabled", slog.String("address", cfg.Cache.Address))
	}

	interceptors := []middleware.Interceptor{
		middleware.NewGatewayHeader(gatewayName),
		middleware.NewCorrelationID(),
		middleware.NewRequestLog(log),
	}
	if cfg.RateLimit.Enabled {
		interceptors = append(interceptors,
			middleware.NewRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
		log.Info("rate limiting enabled",
			slog.Float64("requests_per_second", cfg.RateLimit.RequestsPerSecond),
			slog.Int("burst", cfg.RateLimit.Burst))
	}
	interceptors = append(interceptors, middleware.NewRequestMetrics(gatewayMetrics))

	chain := middleware.NewChain(log, handler, interceptors...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/gateway/health", healthHandler(pools))
	mux.Handle("/", chain)

	srv, err := httpserver.New(cfg.Server.Address, mux)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("gateway listening",
		slog.String("address", cfg.Server.Address),
		slog.Int("routes", len(cfg.Gateway.Routes)),
		slog.Int("pools", len(pools)))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting gateway", slog.Any("err", err))
			os.Exit(1)
		}
	}
}
