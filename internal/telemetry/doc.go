// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//
// Prometheus метрики регистрируются в пакетах coordinator и taskworker;
// все сервисы экспортируют их на /metrics endpoint.
package telemetry
