// Package observability provides logging, metrics and context helpers for
// the news admin service.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//	logger = observability.WithComponent(logger, "news_service")
//
// # Metrics
//
// Metrics are registered on an explicit registry so tests and the metrics
// server can each own one:
//
//	reg := prometheus.NewRegistry()
//	metrics := observability.NewMetrics("news_admin", reg)
//	metrics.RecordNewsCreated()
//
// # Standard Fields
//
//   - request_id: chi request identifier
//   - correlation_id: caller supplied or generated correlation identifier
//   - news_id: article identifier
//   - actor_id: authenticated user performing a mutation
//   - component: emitting component
package observability
