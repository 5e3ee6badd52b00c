package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/angeloszaimis/api-gateway/internal/balancer"
)

// Watch periodically probes one pool instance's /health endpoint. While the
// instance is unhealthy it is removed from the balancer's rotation; when it
// recovers it is re-added. In-flight requests to a removed instance are
// unaffected.
func Watch(
	ctx context.Context,
	bal *balancer.Balancer,
	instance *url.URL,
	interval time.Duration,
	logger *slog.Logger,
) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true

	for {
		select {
		case <-ctx.Done():
			logger.Info("health watch stopped",
				slog.String("instance", instance.String()))
			return

		case <-ticker.C:
			ok := probe(ctx, client, instance)
			if ok == healthy {
				continue
			}
			healthy = ok

			if healthy {
				bal.AddInstance(instance)
				logger.Info("instance restored to rotation",
					slog.String("instance", instance.String()))
			} else {
				bal.RemoveInstance(instance.String())
				logger.Warn("instance removed from rotation",
					slog.String("instance", instance.String()))
			}
		}
	}
}

func probe(ctx context.Context, client *http.Client, instance *url.URL) bool {
	healthURL := instance.ResolveReference(&url.URL{Path: "/health"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return false
	}

	res, err := client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK
}
