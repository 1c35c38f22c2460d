package metrics

// Package metrics provides Prometheus metrics collection for the starquik services.
//
// This package includes:
// - HTTP request metrics (count, latency, errors)
// - Horizon upstream call metrics (count, latency by outcome)
// - Intent build and submission counters
// - Metrics HTTP server on configurable port
//
// Usage:
//   import "github.com/OshiSharma1222/starquik/internal/metrics"
//
//   metricsServer := metrics.StartMetricsServer(cfg.Metrics, []string{metrics.ServiceHTTP}, logger)
//   defer metricsServer.Stop(context.Background())
//
//   e.Use(metrics.HTTPMiddleware())
