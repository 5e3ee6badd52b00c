package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/angeloszaimis/api-gateway/config"
	"github.com/angeloszaimis/api-gateway/internal/balancer"
	"github.com/angeloszaimis/api-gateway/internal/healthcheck"
	"github.com/angeloszaimis/api-gateway/internal/route"
	"github.com/angeloszaimis/api-gateway/internal/strategy"
)

// buildPools creates one balancer per configured pool and starts a health
// watcher for each instance when health checking is enabled.
func buildPools(ctx context.Context, cfg *config.Config, log *slog.Logger) (map[string]*balancer.Balancer, error) {
	var interval time.Duration
	if cfg.HealthCheck.Interval != "" {
		var err error
		interval, err = time.ParseDuration(cfg.HealthCheck.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse health check interval: %w", err)
		}
	}

	pools := make(map[string]*balancer.Balancer, len(cfg.Gateway.Pools))

	for _, pc := range cfg.Gateway.Pools {
		strat, err := strategy.New(pc.Strategy)
		if err != nil {
			return nil, fmt.Errorf("pool %q: %w", pc.Name, err)
		}

		instances := make([]*url.URL, 0, len(pc.Instances))
		for _, raw := range pc.Instances {
			u, err := url.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("pool %q: parse instance %q: %w", pc.Name, raw, err)
			}
			instances = append(instances, u)
		}

		bal := balancer.New(strat, instances)
		pools[pc.Name] = bal

		if interval > 0 {
			for _, instance := range instances {
				go healthcheck.Watch(ctx, bal, instance, interval, log)
			}
		}

		log.Info("pool configured",
			slog.String("pool", pc.Name),
			slog.String("strategy", pc.Strategy),
			slog.Int("instances", len(instances)))
	}

	return pools, nil
}

// buildRouteTable converts route configuration into the matching table.
func buildRouteTable(routes []config.RouteConfig) (*route.Table, error) {
	built := make([]route.Route, 0, len(routes))

	for _, rc := range routes {
		r := route.Route{
			Name:        rc.Name,
			Pattern:     rc.Pattern,
			Pool:        rc.Pool,
			Methods:     rc.Methods,
			StripPrefix: rc.StripPrefix,
			Headers:     rc.Headers,
		}

		if rc.Target != "" {
			u, err := url.Parse(rc.Target)
			if err != nil {
				return nil, fmt.Errorf("route %q: parse target %q: %w", rc.Name, rc.Target, err)
			}
			r.Target = u
		}

		if rc.Timeout != "" {
			timeout, err := time.ParseDuration(rc.Timeout)
			if err != nil {
				return nil, fmt.Errorf("route %q: parse timeout: %w", rc.Name, err)
			}
			r.Timeout = timeout
		}

		if rc.Retries != nil {
			r.Retries = *rc.Retries
		} else {
			r.Retries = route.DefaultRetries
		}

		if rc.CacheTTL != "" {
			ttl, err := time.ParseDuration(rc.CacheTTL)
			if err != nil {
				return nil, fmt.Errorf("route %q: parse cache ttl: %w", rc.Name, err)
			}
			r.CacheTTL = ttl
		}

		built = append(built, r)
	}

	return route.NewTable(built)
}

// healthHandler reports the healthy membership of every pool.
func healthHandler(pools map[string]*balancer.Balancer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		membership := make(map[string][]string, len(pools))
		for name, bal := range pools {
			membership[name] = bal.Healthy()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"pools":  membership,
		})
	})
}
