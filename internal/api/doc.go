// Package api содержит HTTP API сервер движка.
//
// Структура:
//   - handler.go           — Handler с DI (репозитории, координатор, logger)
//   - routes.go            — регистрация маршрутов
//   - middleware.go        — middleware (logging, recovery)
//   - response.go          — унифицированные JSON-ответы и обработка ошибок
//   - dto.go               — Data Transfer Objects (request/response)
//   - workflow_handler.go  — обработчики для /workflows
//   - execution_handler.go — обработчики для /executions
//   - trigger_handler.go   — обработчики для /triggers
//
// API предоставляет REST endpoints для управления workflows, executions
// и триггерами. Управляющие операции (terminate, pause, resume) работают
// только против процесса, в котором выполняется execution.
package api
